package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/creatures/config"
)

func TestComputeFitnessUsesLastHalf(t *testing.T) {
	tests := []struct {
		name   string
		maxima []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, -4},
		{"even", []float64{100, 100, 2, 4}, -3},
		{"odd", []float64{100, 1, 2}, -1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeFitness(tt.maxima); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("computeFitness(%v) = %v, want %v", tt.maxima, got, tt.want)
			}
		})
	}
}

func TestConfigForDoesNotTouchBase(t *testing.T) {
	base := config.Default()
	fe := NewFitnessEvaluator(NewParamVector(), 1, []int64{1}, base)

	cfg, err := fe.configFor([]float64{0.1, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Evolution.MutationChance != 0.1 || cfg.Evolution.MutationCoeff != 0.5 {
		t.Errorf("applied evolution = %+v", cfg.Evolution)
	}
	if base.Evolution.MutationChance != 0.01 || base.Evolution.MutationCoeff != 0.2 {
		t.Errorf("base config modified: %+v", base.Evolution)
	}

	cfg.Neural.Hidden[0] = 99
	if base.Neural.Hidden[0] == 99 {
		t.Error("hidden layer slice shared with base config")
	}
}

func TestEvaluateShortRun(t *testing.T) {
	base := config.Default()
	base.Population.Size = 4
	base.Population.TicksPerGeneration = 10
	base.Food.Count = 5
	if err := base.Recompute(); err != nil {
		t.Fatal(err)
	}

	fe := NewFitnessEvaluator(NewParamVector(), 2, []int64{1, 2}, base)
	got := fe.Evaluate([]float64{0.01, 0.2})
	if math.IsInf(got, 0) || math.IsNaN(got) || got > 0 {
		t.Errorf("Evaluate = %v, want a finite non-positive score", got)
	}
}
