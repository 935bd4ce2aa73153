package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/creatures/config"
	"github.com/pthm-cable/creatures/game"
	"github.com/pthm-cable/creatures/stream"
	"github.com/pthm-cable/creatures/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Log per-generation stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxGenerations := flag.Int("max-generations", 0, "Stop after N generations (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster runs)")
	wsAddr := flag.String("ws-addr", "", "Serve snapshots over websocket on this address, e.g. :8080")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	steps := *stepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	progress := newProgressLogger(cfg.Telemetry.ProgressEvery)
	opts := game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	}
	if *headless {
		opts.StatsCallback = progress.Observe
	}

	sim, err := game.NewSimulation(cfg, opts)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer sim.Close()

	var hub *stream.Hub
	if *wsAddr != "" {
		hub = stream.NewHub(map[string]any{
			"run_id": sim.RunID(),
			"width":  cfg.Derived.WorldW32,
			"height": cfg.Derived.WorldH32,
		})
		srv := &http.Server{Addr: *wsAddr, Handler: hub.Handler()}
		go func() {
			slog.Info("streaming snapshots", "addr", *wsAddr, "path", "/ws")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("websocket server failed", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	loop := &runLoop{
		sim:            sim,
		hub:            hub,
		steps:          steps,
		maxGenerations: *maxGenerations,
	}

	if *headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		slog.Info("starting headless simulation",
			"seed", rngSeed,
			"max_generations", *maxGenerations,
			"steps_per_update", steps,
		)
		if err := loop.runHeadless(ctx); err != nil {
			slog.Error("simulation failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runGraphics(cfg, loop); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// runLoop advances the simulation and feeds stream clients.
type runLoop struct {
	sim            *game.Simulation
	hub            *stream.Hub
	steps          int
	maxGenerations int

	paused   bool
	stepOnce bool
}

// done reports whether the generation limit was reached.
func (l *runLoop) done() bool {
	return l.maxGenerations > 0 && l.sim.Generation() >= l.maxGenerations
}

// update applies stream commands, then runs up to steps ticks unless paused.
func (l *runLoop) update() error {
	l.applyCommands()

	n := l.steps
	if l.paused {
		n = 0
		if l.stepOnce {
			n = 1
		}
	}
	l.stepOnce = false

	for i := 0; i < n && !l.done(); i++ {
		if err := l.sim.AdvanceTick(); err != nil {
			return err
		}
	}

	if l.hub != nil && l.hub.Len() > 0 {
		l.hub.Broadcast(l.sim.Snapshot())
	}
	return nil
}

func (l *runLoop) applyCommands() {
	if l.hub == nil {
		return
	}
	for {
		select {
		case cmd := <-l.hub.Commands():
			switch cmd.Type {
			case stream.TypePause:
				l.paused = true
			case stream.TypeResume:
				l.paused = false
			case stream.TypeStep:
				l.stepOnce = true
			}
		default:
			return
		}
	}
}

func (l *runLoop) runHeadless(ctx context.Context) error {
	for !l.done() {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "generation", l.sim.Generation(), "tick", l.sim.Tick())
			return nil
		default:
		}

		if err := l.update(); err != nil {
			return err
		}
		if l.paused {
			time.Sleep(10 * time.Millisecond)
		}
	}
	slog.Info("max generations reached", "generation", l.sim.Generation())
	return nil
}

// progressLogger logs a progress line every few generations in headless mode.
type progressLogger struct {
	every int
	start time.Time
	ticks int64
}

func newProgressLogger(every int) *progressLogger {
	if every < 1 {
		every = 1
	}
	return &progressLogger{every: every, start: time.Now()}
}

// Observe is a game.Options.StatsCallback.
func (p *progressLogger) Observe(stats telemetry.GenerationStats) {
	p.ticks += int64(stats.Ticks)
	if (stats.Generation+1)%p.every != 0 {
		return
	}
	elapsed := time.Since(p.start)
	slog.Info("progress",
		"generation", humanize.Comma(int64(stats.Generation)),
		"ticks", humanize.Comma(p.ticks),
		"best", stats.FitnessMax,
		"mean", stats.FitnessMean,
		"elapsed", elapsed.Round(time.Second).String(),
		"started", humanize.Time(p.start),
	)
}
