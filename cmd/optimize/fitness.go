package main

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/creatures/config"
	"github.com/pthm-cable/creatures/game"
	"github.com/pthm-cable/creatures/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
	}
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	err     error
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Seeds run in parallel, each in its own Simulation.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg, err := fe.configFor(x)
	if err != nil {
		slog.Warn("rejecting parameters", "params", x, "error", err)
		return math.Inf(1)
	}

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			maxima, err := fe.runSimulation(cfg, s)
			results[idx] = seedResult{fitness: computeFitness(maxima), err: err}
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, r := range results {
		if r.err != nil {
			slog.Warn("evaluation failed", "params", x, "error", r.err)
			return math.Inf(1)
		}
		total += r.fitness
	}
	return total / float64(len(results))
}

// runSimulation runs one seed for the configured number of generations and
// returns each generation's max fitness.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]float64, error) {
	maxima := make([]float64, 0, fe.generations)
	sim, err := game.NewSimulation(cfg, game.Options{
		Seed: seed,
		StatsCallback: func(stats telemetry.GenerationStats) {
			maxima = append(maxima, stats.FitnessMax)
		},
	})
	if err != nil {
		return nil, err
	}
	defer sim.Close()

	for sim.Generation() < fe.generations {
		if err := sim.AdvanceTick(); err != nil {
			return nil, fmt.Errorf("seed %d: %w", seed, err)
		}
	}
	return maxima, nil
}

// configFor returns a copy of the base config with x applied.
// The copy shares no slices with the base, so seeds may run concurrently.
func (fe *FitnessEvaluator) configFor(x []float64) (*config.Config, error) {
	cfg := *fe.baseConfig
	cfg.Neural.Hidden = slices.Clone(fe.baseConfig.Neural.Hidden)
	fe.params.ApplyToConfig(&cfg, x)
	if err := cfg.Recompute(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// computeFitness is the negated mean of per-generation max fitness over the
// last half of the run. Early generations are dominated by random brains.
func computeFitness(maxima []float64) float64 {
	if len(maxima) == 0 {
		return 0
	}
	tail := maxima[len(maxima)/2:]
	return -stat.Mean(tail, nil)
}
