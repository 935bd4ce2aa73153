// Package renderer draws simulation snapshots with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/creatures/camera"
	"github.com/pthm-cable/creatures/game"
)

// Creature proportions, as multiples of the creature size.
const (
	bodyLengthRatio   = 2.0  // nose distance from the center
	eyeDistanceRatio  = 1.0  // half the body length
	eyeballRatio      = 1.1  // just ahead of the eye
	mouthDistance     = 1.9  // 95% of the body length
	eyeSizeRatio      = 1.0 / 3.0
	eyeballSizeRatio  = 1.0 / 5.0
	mouthSizeRatio    = 1.0 / 5.0
	foodSizeRatio     = 1.0 / 3.0
	mouthOpenAngleRad = 10 * math.Pi / 180
)

// Colors
var (
	BackgroundColor = rl.Color{R: 31, G: 38, B: 57, A: 255}
	FoodColor       = rl.Color{R: 0, G: 228, B: 48, A: 255}
	MouthColor      = rl.Color{R: 255, G: 182, B: 193, A: 255}
)

// WorldRenderer draws creatures and food through a camera.
type WorldRenderer struct {
	cam  *camera.Camera
	size float32 // creature size in world units
}

// NewWorldRenderer creates a renderer for creatures of the given size.
func NewWorldRenderer(cam *camera.Camera, creatureSize float32) *WorldRenderer {
	return &WorldRenderer{cam: cam, size: creatureSize}
}

// Camera returns the camera used for drawing.
func (r *WorldRenderer) Camera() *camera.Camera {
	return r.cam
}

// Draw renders food, then creatures. Call between rl.BeginDrawing and
// rl.EndDrawing.
func (r *WorldRenderer) Draw(snap *game.Snapshot) {
	rl.ClearBackground(BackgroundColor)

	foodRadius := r.size * foodSizeRatio
	for _, f := range snap.Foods {
		if f.Eaten || !r.cam.IsVisible(f.X, f.Y, foodRadius) {
			continue
		}
		sx, sy := r.cam.WorldToScreen(f.X, f.Y)
		rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r.cam.Scale(foodRadius), FoodColor)
	}

	reach := r.size * bodyLengthRatio
	for i := range snap.Creatures {
		c := &snap.Creatures[i]
		if !r.cam.IsVisible(c.X, c.Y, reach) {
			continue
		}
		r.drawCreature(c)
	}
}

// drawCreature draws the body triangle, the eye and the open mouth.
func (r *WorldRenderer) drawCreature(c *game.CreatureView) {
	sx, sy := r.cam.WorldToScreen(c.X, c.Y)
	size := r.cam.Scale(r.size)

	nose := offset(sx, sy, c.Heading, size*bodyLengthRatio)
	left := offset(sx, sy, c.Heading+2*math.Pi/3, size)
	right := offset(sx, sy, c.Heading+4*math.Pi/3, size)
	drawTriangle(nose, left, right, CreatureColor(c.Intensity))

	rl.DrawCircleV(offset(sx, sy, c.Heading, size*eyeDistanceRatio), size*eyeSizeRatio, rl.White)
	rl.DrawCircleV(offset(sx, sy, c.Heading, size*eyeballRatio), size*eyeballSizeRatio, rl.Black)

	rl.DrawCircleV(offset(sx, sy, c.Heading-mouthOpenAngleRad, size*mouthDistance), size*mouthSizeRatio, MouthColor)
	rl.DrawCircleV(offset(sx, sy, c.Heading+mouthOpenAngleRad, size*mouthDistance), size*mouthSizeRatio, MouthColor)
}

// CreatureColor fades from white to yellow as a creature eats:
// (1, 1, 1-intensity).
func CreatureColor(intensity float32) rl.Color {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	return rl.Color{R: 255, G: 255, B: uint8(255 * (1 - intensity)), A: 255}
}

// offset returns the point dist along heading from (x, y).
// Heading 0 points up the screen and grows clockwise.
func offset(x, y, heading, dist float32) rl.Vector2 {
	sin, cos := math.Sincos(float64(heading))
	return rl.Vector2{X: x + dist*float32(sin), Y: y - dist*float32(cos)}
}

// drawTriangle draws a filled triangle in either winding order.
func drawTriangle(a, b, c rl.Vector2, color rl.Color) {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if cross > 0 {
		// raylib wants counter-clockwise on screen
		b, c = c, b
	}
	rl.DrawTriangle(a, b, c, color)
}
