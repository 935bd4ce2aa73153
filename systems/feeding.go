package systems

import (
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/creatures/components"
	"github.com/pthm-cable/creatures/neural"
)

// Mouth describes where a creature eats from and how close food must be.
type Mouth struct {
	Distance    float32 // offset of the mouth from the body center along the heading
	EatDistance float32 // max mouth-to-food distance that counts as eating
	MaxEat      int     // eaten count at which Intensity saturates
}

// Point returns the world position of the mouth.
func (m Mouth) Point(pos components.Position, body components.Body) (x, y float32) {
	sin, cos := math.Sincos(float64(body.Heading))
	return pos.X + m.Distance*float32(sin), pos.Y - m.Distance*float32(cos)
}

// Reaches reports whether food at f is within eating distance of the mouth.
func (m Mouth) Reaches(pos components.Position, body components.Body, f components.Position) bool {
	mx, my := m.Point(pos, body)
	return distanceSq(mx, my, f.X, f.Y) <= m.EatDistance*m.EatDistance
}

// Feed credits one eaten item to c and updates its color intensity.
func (m Mouth) Feed(c *components.Creature) {
	c.Eaten++
	if m.MaxEat <= 0 {
		c.Intensity = 1
		return
	}
	c.Intensity = clampFloat(float32(c.Eaten)/float32(m.MaxEat), 0, 1)
}

// RandomFoodPosition returns a uniform position inside the interior margin:
// [margin*W, (1-margin)*W] x [margin*H, (1-margin)*H].
func RandomFoodPosition(rng *rand.Rand, b Bounds, margin float32) components.Position {
	span := 1 - 2*margin
	return components.Position{
		X: (margin + rng.Float32()*span) * b.Width,
		Y: (margin + rng.Float32()*span) * b.Height,
	}
}

// FeedingSystem handles creatures consuming food entities.
// With Respawn set, eaten food is relocated in place; otherwise it is flagged
// and ignored from then on.
type FeedingSystem struct {
	filter  *ecs.Filter2[components.Position, components.Food]
	mouth   Mouth
	bounds  Bounds
	margin  float32
	respawn bool
}

// NewFeedingSystem creates a new feeding system.
func NewFeedingSystem(w *ecs.World, mouth Mouth, bounds Bounds, margin float32, respawn bool) *FeedingSystem {
	return &FeedingSystem{
		filter:  ecs.NewFilter2[components.Position, components.Food](w),
		mouth:   mouth,
		bounds:  bounds,
		margin:  margin,
		respawn: respawn,
	}
}

// Mouth returns the mouth parameters in use.
func (s *FeedingSystem) Mouth() Mouth {
	return s.mouth
}

// Respawns reports whether eaten food is relocated rather than removed.
func (s *FeedingSystem) Respawns() bool {
	return s.respawn
}

// Each calls fn for every food item, eaten or not.
func (s *FeedingSystem) Each(fn func(pos components.Position, food components.Food)) {
	query := s.filter.Query()
	for query.Next() {
		pos, food := query.Get()
		fn(*pos, *food)
	}
}

// Visible appends the position of every uneaten food item to dst.
func (s *FeedingSystem) Visible(dst []neural.Point) []neural.Point {
	query := s.filter.Query()
	for query.Next() {
		pos, food := query.Get()
		if food.Eaten {
			continue
		}
		dst = append(dst, neural.Point{X: pos.X, Y: pos.Y})
	}
	return dst
}

// Feed checks every food item against the creature's mouth, crediting each
// one reached. Relocations are written immediately, so creatures fed later in
// the same tick see the new positions. Returns the number of items eaten.
func (s *FeedingSystem) Feed(rng *rand.Rand, c *components.Creature, pos *components.Position, body *components.Body) int {
	eaten := 0
	query := s.filter.Query()
	for query.Next() {
		fpos, food := query.Get()
		if food.Eaten || !s.mouth.Reaches(*pos, *body, *fpos) {
			continue
		}

		s.mouth.Feed(c)
		eaten++
		if s.respawn {
			*fpos = RandomFoodPosition(rng, s.bounds, s.margin)
		} else {
			food.Eaten = true
		}
	}
	return eaten
}
