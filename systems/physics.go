// Package systems contains the per-creature tick logic of the simulation.
package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/creatures/components"
)

// Bounds represents the simulation bounds.
type Bounds struct {
	Width, Height float32
}

// Movement bounds the brain's control outputs.
type Movement struct {
	SpeedMin      float32
	SpeedMax      float32
	SpeedAccel    float32 // max |speed delta| per tick
	RotationAccel float32 // max |heading delta| per tick, radians
}

// Act applies one tick of brain output to a creature and moves it.
// Heading accumulates without wrapping; speed is clamped to [SpeedMin, SpeedMax].
// Position is not wrapped; call Wrap afterwards.
func (m Movement) Act(pos *components.Position, body *components.Body, rotationDelta, speedDelta float32) {
	body.Heading += clampFloat(rotationDelta, -m.RotationAccel, m.RotationAccel)
	body.Speed = clampFloat(body.Speed+clampFloat(speedDelta, -m.SpeedAccel, m.SpeedAccel), m.SpeedMin, m.SpeedMax)

	sin, cos := math.Sincos(float64(body.Heading))
	pos.X += body.Speed * float32(sin)
	pos.Y -= body.Speed * float32(cos)
}

// ActOutputs is Act for a raw brain output vector: [rotation delta, speed delta].
// Missing outputs count as zero.
func (m Movement) ActOutputs(pos *components.Position, body *components.Body, outputs []float32) {
	var rot, speed float32
	if len(outputs) > 0 {
		rot = outputs[0]
	}
	if len(outputs) > 1 {
		speed = outputs[1]
	}
	m.Act(pos, body, rot, speed)
}

// SpawnSpeed returns max(U*SpeedMax, SpeedMin).
func (m Movement) SpawnSpeed(rng *rand.Rand) float32 {
	s := rng.Float32() * m.SpeedMax
	if s < m.SpeedMin {
		return m.SpeedMin
	}
	return s
}

// Wrap maps a position onto the torus [0, Width) x [0, Height).
func Wrap(pos *components.Position, b Bounds) {
	pos.X = wrapCoord(pos.X, b.Width)
	pos.Y = wrapCoord(pos.Y, b.Height)
}
