package neural

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidEye is returned by NewEye for a non-positive range, angle or cell count.
var ErrInvalidEye = errors.New("neural: invalid eye")

// Point is a world-space position the eye can see.
type Point struct {
	X, Y float32
}

// Eye discretizes a field of view into Cells equal angular buckets.
// Angles are measured clockwise from the heading-0 direction (world -Y),
// the same convention movement uses.
type Eye struct {
	Range float32 // maximum distance seen
	Angle float32 // full field of view in radians, centered on the heading
	Cells int
}

// NewEye validates and returns an eye.
func NewEye(fovRange, fovAngle float32, cells int) (Eye, error) {
	if fovRange <= 0 {
		return Eye{}, fmt.Errorf("%w: range %v", ErrInvalidEye, fovRange)
	}
	if fovAngle <= 0 {
		return Eye{}, fmt.Errorf("%w: angle %v", ErrInvalidEye, fovAngle)
	}
	if cells <= 0 {
		return Eye{}, fmt.Errorf("%w: %d cells", ErrInvalidEye, cells)
	}
	return Eye{Range: fovRange, Angle: fovAngle, Cells: cells}, nil
}

// Sense returns one stimulus per cell for an observer at (x, y) facing heading.
// Each visible point adds (Range-dist)/Range to the cell its bearing falls in;
// contributions accumulate. Cell 0 is the leftmost edge of the field of view.
func (e Eye) Sense(x, y, heading float32, points []Point) []float32 {
	stimuli := make([]float32, e.Cells)
	half := e.Angle / 2

	for _, p := range points {
		dx := float64(p.X - x)
		dy := float64(p.Y - y)
		dist := float32(math.Hypot(dx, dy))
		if dist > e.Range {
			continue
		}

		var rel float32
		if dist > 0 {
			bearing := math.Atan2(dx, -dy)
			rel = float32(wrapPi(bearing - float64(heading)))
		}
		if rel < -half || rel > half {
			continue
		}

		cell := int((rel + half) / e.Angle * float32(e.Cells))
		if cell >= e.Cells {
			cell = e.Cells - 1
		}
		stimuli[cell] += (e.Range - dist) / e.Range
	}
	return stimuli
}

// wrapPi maps a into (-pi, pi].
func wrapPi(a float64) float64 {
	if a > -math.Pi && a <= math.Pi {
		return a
	}
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
