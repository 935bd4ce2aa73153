// Package game runs the generation loop: it steps a World for a fixed number
// of ticks, then breeds the next generation's brains from the creatures'
// fitness and starts a fresh World.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/pthm-cable/creatures/config"
	"github.com/pthm-cable/creatures/genetic"
	"github.com/pthm-cable/creatures/neural"
	"github.com/pthm-cable/creatures/telemetry"
)

// Options configures a simulation.
type Options struct {
	Seed          int64
	LogStats      bool   // log per-generation stats with slog
	OutputDir     string // write CSV telemetry here; empty disables
	StatsCallback func(telemetry.GenerationStats)
}

// Simulation owns the current World, the genetic algorithm and the rng.
// It is not safe for concurrent use; hand Snapshots to other goroutines.
type Simulation struct {
	cfg      *config.Config
	rng      *rand.Rand
	ga       *genetic.Algorithm
	topology neural.Topology

	world      *World
	generation int
	runID      string

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	statsCallback func(telemetry.GenerationStats)
	logStats      bool
	lastStats     *telemetry.GenerationStats
}

// NewSimulation creates generation 0 with random brains.
func NewSimulation(cfg *config.Config, opts Options) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	selector, err := genetic.NewSelector(cfg.Evolution.Selection, cfg.Evolution.TournamentSize)
	if err != nil {
		return nil, err
	}
	crossover, err := genetic.NewCrossover(cfg.Evolution.Crossover)
	if err != nil {
		return nil, err
	}
	mutator, err := genetic.NewGaussian(float32(cfg.Evolution.MutationChance), float32(cfg.Evolution.MutationCoeff))
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	world, err := NewWorld(cfg, rng, nil)
	if err != nil {
		return nil, err
	}

	outputManager, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := outputManager.WriteConfig(cfg); err != nil {
		outputManager.Close()
		return nil, err
	}

	runID := uuid.NewString()
	s := &Simulation{
		cfg:           cfg,
		rng:           rng,
		ga:            genetic.New(selector, crossover, mutator),
		topology:      neural.Topology(cfg.Derived.Topology),
		world:         world,
		runID:         runID,
		collector:     telemetry.NewCollector(runID),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager: outputManager,
		statsCallback: opts.StatsCallback,
		logStats:      opts.LogStats,
	}
	s.collector.StartGeneration(0)

	slog.Info("simulation started",
		"run_id", runID,
		"seed", opts.Seed,
		"population", world.Len(),
		"topology", s.topology,
		"params", s.topology.ParamCount(),
	)
	return s, nil
}

// AdvanceTick performs one tick of work. While the generation is running it
// steps the world; once the generation is over it evolves instead, so the
// transition consumes a tick of its own.
func (s *Simulation) AdvanceTick() error {
	if s.generationOver() {
		return s.evolve()
	}

	s.perfCollector.StartTick()
	eaten := s.world.Step(s.rng, s.perfCollector)
	s.perfCollector.EndTick()

	s.collector.RecordTick()
	s.collector.RecordEaten(eaten)
	return nil
}

// generationOver reports whether the tick budget is spent, or, when food
// does not respawn, whether all of it has been eaten.
func (s *Simulation) generationOver() bool {
	if s.world.Tick() >= s.cfg.Population.TicksPerGeneration {
		return true
	}
	return !s.cfg.Food.Respawn && s.world.FoodLeft() <= 0
}

// evolve breeds N-1 children from the current generation, adds an unmutated
// copy of the best brain, and replaces the world.
func (s *Simulation) evolve() error {
	s.perfCollector.StartTick()
	s.perfCollector.StartPhase(telemetry.PhaseEvolve)

	population := s.world.Individuals()
	best, err := genetic.Best(population)
	if err != nil {
		return fmt.Errorf("evolving generation %d: %w", s.generation, err)
	}
	children, err := s.ga.Evolve(s.rng, population)
	if err != nil {
		return fmt.Errorf("evolving generation %d: %w", s.generation, err)
	}

	brains := make([]*neural.Network, 0, len(population))
	for _, child := range children {
		brain, err := neural.FromGenome(s.topology, child)
		if err != nil {
			return fmt.Errorf("decoding child brain: %w", err)
		}
		brains = append(brains, brain)
	}
	brains = append(brains, s.world.Brain(best).Clone())

	s.flushGeneration(best)

	next, err := NewWorld(s.cfg, s.rng, brains)
	if err != nil {
		return err
	}
	s.perfCollector.EndTick()

	s.world = next
	s.generation++
	s.collector.StartGeneration(s.generation)
	return nil
}

// flushGeneration reports stats for the generation that just ended.
func (s *Simulation) flushGeneration(best int) {
	stats := s.collector.Flush(s.world.Fitness(), best, s.world.FoodLeft())
	s.lastStats = &stats
	perfStats := s.perfCollector.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.outputManager != nil {
		if err := s.outputManager.WriteGeneration(stats); err != nil {
			slog.Error("failed to write generation stats", "error", err)
		}
		if err := s.outputManager.WritePerf(perfStats, stats.Generation); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// Generation returns the current generation number, starting at 0.
func (s *Simulation) Generation() int {
	return s.generation
}

// Tick returns the tick within the current generation.
func (s *Simulation) Tick() int {
	return s.world.Tick()
}

// RunID returns the unique identifier of this run.
func (s *Simulation) RunID() string {
	return s.runID
}

// Config returns the configuration the simulation was built with.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// World returns the current generation's world.
func (s *Simulation) World() *World {
	return s.world
}

// LastStats returns stats for the most recently finished generation, or
// false before the first one ends.
func (s *Simulation) LastStats() (telemetry.GenerationStats, bool) {
	if s.lastStats == nil {
		return telemetry.GenerationStats{}, false
	}
	return *s.lastStats, true
}

// PerfStats returns the rolling tick timing.
func (s *Simulation) PerfStats() telemetry.PerfStats {
	return s.perfCollector.Stats()
}

// RecordFrame records frame timing in graphics mode.
func (s *Simulation) RecordFrame() {
	s.perfCollector.RecordFrame()
}

// Snapshot copies the observable state of the current generation.
func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{
		RunID:              s.runID,
		Generation:         s.generation,
		Tick:               s.world.Tick(),
		TicksPerGeneration: s.cfg.Population.TicksPerGeneration,
		Width:              s.world.bounds.Width,
		Height:             s.world.bounds.Height,
		Creatures:          s.world.appendCreatures(make([]CreatureView, 0, s.world.Len())),
		Foods:              s.world.appendFoods(make([]FoodView, 0, s.cfg.Food.Count)),
	}
}

// Close flushes and closes telemetry output.
func (s *Simulation) Close() error {
	return s.outputManager.Close()
}
