package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeFitnessStats(t *testing.T) {
	minV, maxV, mean, std, p50 := ComputeFitnessStats([]float64{4, 1, 3, 2})

	if minV != 1 || maxV != 4 {
		t.Errorf("min/max = %v/%v, want 1/4", minV, maxV)
	}
	if math.Abs(mean-2.5) > 1e-9 {
		t.Errorf("mean = %v, want 2.5", mean)
	}
	// population std of 1..4
	if math.Abs(std-math.Sqrt(1.25)) > 1e-9 {
		t.Errorf("std = %v, want %v", std, math.Sqrt(1.25))
	}
	if math.Abs(p50-2.5) > 1e-9 {
		t.Errorf("p50 = %v, want 2.5", p50)
	}
}

func TestComputeFitnessStatsSingle(t *testing.T) {
	_, _, mean, std, _ := ComputeFitnessStats([]float64{7})
	if mean != 7 || std != 0 {
		t.Errorf("mean/std = %v/%v, want 7/0", mean, std)
	}
}

func TestComputeFitnessStatsEmpty(t *testing.T) {
	minV, maxV, mean, std, p50 := ComputeFitnessStats(nil)
	if minV != 0 || maxV != 0 || mean != 0 || std != 0 || p50 != 0 {
		t.Error("empty slice should return all zeros")
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector("run-1")
	c.StartGeneration(3)
	for i := 0; i < 10; i++ {
		c.RecordTick()
	}
	c.RecordEaten(2)
	c.RecordEaten(3)

	s := c.Flush([]float64{0, 5, 2}, 1, 20)
	if s.RunID != "run-1" || s.Generation != 3 {
		t.Errorf("identity = %q/%d, want run-1/3", s.RunID, s.Generation)
	}
	if s.Ticks != 10 || s.FoodEaten != 5 || s.FoodLeft != 20 {
		t.Errorf("counters = ticks %d eaten %d left %d", s.Ticks, s.FoodEaten, s.FoodLeft)
	}
	if s.Population != 3 || s.FitnessMax != 5 || s.BestIndex != 1 {
		t.Errorf("fitness summary = %+v", s)
	}

	c.StartGeneration(4)
	if s := c.Flush([]float64{1}, 0, 20); s.Ticks != 0 || s.FoodEaten != 0 {
		t.Errorf("counters not reset: %+v", s)
	}
}
