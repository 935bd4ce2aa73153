package main

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/creatures/camera"
	"github.com/pthm-cable/creatures/config"
	"github.com/pthm-cable/creatures/renderer"
	"github.com/pthm-cable/creatures/ui"
)

const (
	maxStepsPerUpdate = 512
	panSpeed          = 12 // screen pixels per frame
	controlsLegend    = "[Space] pause  [S] step  [,/.] speed  [Arrows] pan  [Wheel/+/-] zoom  [Home] fit  [P] perf"
)

// viewer draws the running simulation and handles input.
type viewer struct {
	loop *runLoop
	cfg  *config.Config

	cam      *camera.Camera
	world    *renderer.WorldRenderer
	hud      *ui.HUD
	perf     *ui.PerfPanel
	showPerf bool
}

// runGraphics opens a window and runs until it is closed or the generation
// limit is reached.
func runGraphics(cfg *config.Config, loop *runLoop) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Creatures")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	cam := camera.New(float32(cfg.Screen.Width), float32(cfg.Screen.Height), cfg.Derived.WorldW32, cfg.Derived.WorldH32)
	v := &viewer{
		loop:  loop,
		cfg:   cfg,
		cam:   cam,
		world: renderer.NewWorldRenderer(cam, float32(cfg.Creature.Size)),
		hud:   ui.NewHUD(),
		perf:  ui.NewPerfPanel(int32(cfg.Screen.Width)-230, 10),
	}

	for !rl.WindowShouldClose() && !loop.done() {
		v.handleInput()
		if err := loop.update(); err != nil {
			return err
		}
		loop.sim.RecordFrame()
		v.draw()
	}
	return nil
}

// handleInput processes keyboard and mouse input.
func (v *viewer) handleInput() {
	if rl.IsWindowResized() {
		w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
		v.cam.Resize(float32(w), float32(h))
		v.perf = ui.NewPerfPanel(int32(w)-230, 10)
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.loop.paused = !v.loop.paused
	}
	if rl.IsKeyPressed(rl.KeyS) {
		v.loop.stepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyComma) {
		v.slower()
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		v.faster()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showPerf = !v.showPerf
	}

	// Camera controls
	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.cam.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.cam.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}
}

func (v *viewer) faster() {
	v.loop.steps = min(v.loop.steps*2, maxStepsPerUpdate)
}

func (v *viewer) slower() {
	v.loop.steps = max(v.loop.steps/2, 1)
}

// draw renders one frame and applies HUD button presses.
func (v *viewer) draw() {
	sim := v.loop.sim
	snap := sim.Snapshot()

	bestEaten := 0
	for _, c := range snap.Creatures {
		bestEaten = max(bestEaten, c.Eaten)
	}
	last, hasLast := sim.LastStats()

	rl.BeginDrawing()
	v.world.Draw(&snap)

	actions := v.hud.Draw(ui.HUDData{
		Generation:         snap.Generation,
		Tick:               snap.Tick,
		TicksPerGeneration: snap.TicksPerGeneration,
		Creatures:          len(snap.Creatures),
		FoodLeft:           sim.World().FoodLeft(),
		BestEaten:          bestEaten,
		MaxEat:             v.cfg.Creature.MaxEat,
		Last:               last,
		HasLast:            hasLast,
		Speed:              v.loop.steps,
		FPS:                rl.GetFPS(),
		Paused:             v.loop.paused,
	})
	if v.showPerf {
		v.perf.Draw(sim.PerfStats())
	}
	v.hud.DrawControls(int32(rl.GetScreenHeight()), controlsLegend)
	rl.EndDrawing()

	if actions.TogglePause {
		v.loop.paused = !v.loop.paused
	}
	if actions.Step {
		v.loop.paused = true
		v.loop.stepOnce = true
	}
	if actions.SpeedUp {
		v.faster()
	}
	if actions.SpeedDown {
		v.slower()
	}
	if actions.ResetView {
		v.cam.Reset()
	}
}
