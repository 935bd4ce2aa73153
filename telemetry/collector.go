package telemetry

import "time"

// Collector accumulates events within one generation and produces GenerationStats.
type Collector struct {
	runID      string
	generation int
	start      time.Time

	// Event counters for the current generation
	ticks     int
	foodEaten int
}

// NewCollector creates a new stats collector for a run.
func NewCollector(runID string) *Collector {
	return &Collector{runID: runID, start: time.Now()}
}

// StartGeneration resets the counters for generation gen.
func (c *Collector) StartGeneration(gen int) {
	c.generation = gen
	c.start = time.Now()
	c.ticks = 0
	c.foodEaten = 0
}

// RecordTick records one completed tick.
func (c *Collector) RecordTick() {
	c.ticks++
}

// RecordEaten records n food items eaten.
func (c *Collector) RecordEaten(n int) {
	c.foodEaten += n
}

// Generation returns the generation currently being collected.
func (c *Collector) Generation() int {
	return c.generation
}

// Flush computes stats for the finished generation from its fitness vector.
// Counters are not reset; call StartGeneration for the next one.
func (c *Collector) Flush(fitness []float64, best, foodLeft int) GenerationStats {
	minF, maxF, mean, std, p50 := ComputeFitnessStats(fitness)
	return GenerationStats{
		RunID:       c.runID,
		Generation:  c.generation,
		Ticks:       c.ticks,
		Population:  len(fitness),
		FitnessMin:  minF,
		FitnessMax:  maxF,
		FitnessMean: mean,
		FitnessStd:  std,
		FitnessP50:  p50,
		BestIndex:   best,
		FoodEaten:   c.foodEaten,
		FoodLeft:    foodLeft,
		DurationMS:  time.Since(c.start).Milliseconds(),
	}
}
