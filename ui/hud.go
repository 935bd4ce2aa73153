package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/creatures/telemetry"
)

// HUDData holds everything the heads-up display shows.
type HUDData struct {
	Generation         int
	Tick               int
	TicksPerGeneration int
	Creatures          int
	FoodLeft           int
	BestEaten          int // best fitness in the running generation
	MaxEat             int

	// Previous generation, when there is one
	Last    telemetry.GenerationStats
	HasLast bool

	Speed  int
	FPS    int32
	Paused bool
}

// Actions reports which HUD buttons were pressed this frame.
type Actions struct {
	TogglePause bool
	SpeedUp     bool
	SpeedDown   bool
	Step        bool
	ResetView   bool
}

// HUD renders the generation panel and control buttons.
type HUD struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewHUD creates a HUD anchored at the top-left corner.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		x:        10,
		y:        10,
		width:    320,
	}
}

// Draw renders the HUD and returns the buttons pressed.
func (h *HUD) Draw(data HUDData) Actions {
	r := h.renderer
	padding := r.Theme.Padding
	inner := h.width - padding*2

	lines := int32(7)
	if data.HasLast {
		lines += 4
	}
	height := lines*r.Theme.LineHeight + padding*3 + int32(r.Theme.ButtonHeight)
	r.DrawPanel(h.x, h.y, h.width, height)

	x := h.x + padding
	y := h.y + padding

	y = r.DrawSectionHeader(x, y, fmt.Sprintf("Generation %s", humanize.Comma(int64(data.Generation))))

	progress := float32(0)
	if data.TicksPerGeneration > 0 {
		progress = float32(data.Tick) / float32(data.TicksPerGeneration)
	}
	y = r.DrawBar(x, y, "Tick", progress,
		fmt.Sprintf("%s/%s", humanize.Comma(int64(data.Tick)), humanize.Comma(int64(data.TicksPerGeneration))), inner)

	y = r.DrawLabelValue(x, y, "Creatures", fmt.Sprintf("%d", data.Creatures))
	y = r.DrawLabelValue(x, y, "Food left", fmt.Sprintf("%d", data.FoodLeft))

	best := float32(0)
	if data.MaxEat > 0 {
		best = float32(data.BestEaten) / float32(data.MaxEat)
	}
	y = r.DrawBar(x, y, "Best", best, fmt.Sprintf("%d eaten", data.BestEaten), inner)

	status := fmt.Sprintf("%dx  %d fps", data.Speed, data.FPS)
	if data.Paused {
		status = "PAUSED  " + status
	}
	y = r.DrawLabelValue(x, y, "Speed", status)

	if data.HasLast {
		y += 4
		y = r.DrawSectionHeader(x, y, "Previous generation")
		y = r.DrawLabelValue(x, y, "Max / mean", fmt.Sprintf("%.0f / %.1f", data.Last.FitnessMax, data.Last.FitnessMean))
		y = r.DrawLabelValue(x, y, "Food eaten", humanize.Comma(int64(data.Last.FoodEaten)))
	}

	y += 6
	return h.drawButtons(x, y)
}

// drawButtons lays out the control buttons on one row.
func (h *HUD) drawButtons(x, y int32) Actions {
	t := h.renderer.Theme
	bx := float32(x)
	by := float32(y)
	next := func(label string) bool {
		pressed := gui.Button(rl.Rectangle{X: bx, Y: by, Width: t.ButtonWidth, Height: t.ButtonHeight}, label)
		bx += t.ButtonWidth + 4
		return pressed
	}

	var a Actions
	a.TogglePause = next("Pause")
	a.Step = next("Step")
	a.SpeedDown = next("Slower")
	a.SpeedUp = next("Faster")
	a.ResetView = next("Fit")
	return a
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase tick timing.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  (%.0f ticks/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-8s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
