package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationStats summarizes one finished generation.
type GenerationStats struct {
	RunID      string `csv:"run_id"`
	Generation int    `csv:"generation"`
	Ticks      int    `csv:"ticks"`
	Population int    `csv:"population"`

	// Fitness distribution (food eaten per creature)
	FitnessMin  float64 `csv:"fitness_min"`
	FitnessMax  float64 `csv:"fitness_max"`
	FitnessMean float64 `csv:"fitness_mean"`
	FitnessStd  float64 `csv:"fitness_std"`
	FitnessP50  float64 `csv:"fitness_p50"`

	BestIndex  int   `csv:"best_index"`
	FoodEaten  int   `csv:"food_eaten"`
	FoodLeft   int   `csv:"food_left"`
	DurationMS int64 `csv:"duration_ms"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFitnessStats returns min, max, mean, population std and median.
// All zeros for an empty slice.
func ComputeFitnessStats(values []float64) (minV, maxV, mean, std, p50 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	minV = floats.Min(values)
	maxV = floats.Max(values)
	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	p50 = Percentile(sorted, 0.5)

	return minV, maxV, mean, std, p50
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("generation", s.Generation),
		slog.Int("ticks", s.Ticks),
		slog.Int("population", s.Population),
		slog.Float64("fitness_min", s.FitnessMin),
		slog.Float64("fitness_max", s.FitnessMax),
		slog.Float64("fitness_mean", s.FitnessMean),
		slog.Float64("fitness_std", s.FitnessStd),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Int("best_index", s.BestIndex),
		slog.Int("food_eaten", s.FoodEaten),
		slog.Int("food_left", s.FoodLeft),
		slog.Int64("duration_ms", s.DurationMS),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"ticks", s.Ticks,
		"fitness_min", s.FitnessMin,
		"fitness_max", s.FitnessMax,
		"fitness_mean", s.FitnessMean,
		"fitness_std", s.FitnessStd,
		"best_index", s.BestIndex,
		"food_eaten", s.FoodEaten,
		"duration_ms", s.DurationMS,
	)
}
