package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/creatures/components"
)

var testMouth = Mouth{Distance: 38, EatDistance: 20 / 1.5, MaxEat: 50}

func newFoodWorld(positions ...components.Position) (*ecs.World, []ecs.Entity) {
	w := ecs.NewWorld()
	mapper := ecs.NewMap2[components.Position, components.Food](w)
	entities := make([]ecs.Entity, len(positions))
	for i := range positions {
		p := positions[i]
		entities[i] = mapper.NewEntity(&p, &components.Food{})
	}
	return w, entities
}

func TestMouthPoint(t *testing.T) {
	pos := components.Position{X: 100, Y: 100}

	tests := []struct {
		heading float32
		wantX   float32
		wantY   float32
	}{
		{0, 100, 62},
		{math.Pi / 2, 138, 100},
		{math.Pi, 100, 138},
		{-math.Pi / 2, 62, 100},
	}
	for _, tt := range tests {
		x, y := testMouth.Point(pos, components.Body{Heading: tt.heading})
		if !near(x, tt.wantX, 1e-3) || !near(y, tt.wantY, 1e-3) {
			t.Errorf("heading %v: mouth at (%v,%v), want (%v,%v)", tt.heading, x, y, tt.wantX, tt.wantY)
		}
	}
}

func TestMouthReaches(t *testing.T) {
	pos := components.Position{X: 100, Y: 100}
	body := components.Body{Heading: 0}

	tests := []struct {
		name string
		food components.Position
		want bool
	}{
		{"at mouth", components.Position{X: 100, Y: 62}, true},
		{"edge of reach", components.Position{X: 100, Y: 62 - 13}, true},
		{"just out of reach", components.Position{X: 100, Y: 62 - 14}, false},
		{"at body center", components.Position{X: 100, Y: 100}, false},
		{"behind", components.Position{X: 100, Y: 138}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testMouth.Reaches(pos, body, tt.food); got != tt.want {
				t.Errorf("Reaches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMouthFeedIntensity(t *testing.T) {
	c := components.Creature{}
	for i := 1; i <= 60; i++ {
		testMouth.Feed(&c)
		want := float32(i) / 50
		if want > 1 {
			want = 1
		}
		if c.Eaten != i {
			t.Fatalf("Eaten = %d, want %d", c.Eaten, i)
		}
		if !near(c.Intensity, want, 1e-6) {
			t.Errorf("after %d: intensity = %v, want %v", i, c.Intensity, want)
		}
	}
}

func TestRandomFoodPositionMargin(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := Bounds{Width: 1600, Height: 900}
	for i := 0; i < 1000; i++ {
		p := RandomFoodPosition(rng, b, 0.05)
		if p.X < 80 || p.X > 1520 || p.Y < 45 || p.Y > 855 {
			t.Fatalf("food position %v outside interior margin", p)
		}
	}
}

func TestFeedRelocates(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	bounds := Bounds{Width: 1600, Height: 900}
	w, foods := newFoodWorld(
		components.Position{X: 100, Y: 62},
		components.Position{X: 800, Y: 450},
	)
	sys := NewFeedingSystem(w, testMouth, bounds, 0.05, true)

	c := components.Creature{}
	pos := components.Position{X: 100, Y: 100}
	body := components.Body{}
	if n := sys.Feed(rng, &c, &pos, &body); n != 1 {
		t.Fatalf("Feed ate %d, want 1", n)
	}
	if c.Eaten != 1 {
		t.Errorf("Eaten = %d, want 1", c.Eaten)
	}

	posMap := ecs.NewMap[components.Position](w)
	foodMap := ecs.NewMap[components.Food](w)
	moved := posMap.Get(foods[0])
	if moved.X == 100 && moved.Y == 62 {
		t.Error("eaten food was not relocated")
	}
	if foodMap.Get(foods[0]).Eaten {
		t.Error("respawning food should not be flagged eaten")
	}
	if untouched := posMap.Get(foods[1]); untouched.X != 800 || untouched.Y != 450 {
		t.Errorf("uneaten food moved to %v", *untouched)
	}

	if got := len(sys.Visible(nil)); got != 2 {
		t.Errorf("Visible returned %d items, want 2", got)
	}
}

func TestFeedScarcity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	w, foods := newFoodWorld(components.Position{X: 100, Y: 62})
	sys := NewFeedingSystem(w, testMouth, Bounds{Width: 1600, Height: 900}, 0.05, false)

	c := components.Creature{}
	pos := components.Position{X: 100, Y: 100}
	body := components.Body{}
	if n := sys.Feed(rng, &c, &pos, &body); n != 1 {
		t.Fatalf("first Feed ate %d, want 1", n)
	}
	if !ecs.NewMap[components.Food](w).Get(foods[0]).Eaten {
		t.Error("food not flagged eaten")
	}
	if n := sys.Feed(rng, &c, &pos, &body); n != 0 {
		t.Errorf("eaten food was eaten again (%d)", n)
	}
	if got := len(sys.Visible(nil)); got != 0 {
		t.Errorf("Visible returned %d items, want 0", got)
	}
}

func TestFeedSeveralInOneTick(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	w, _ := newFoodWorld(
		components.Position{X: 100, Y: 62},
		components.Position{X: 102, Y: 60},
		components.Position{X: 98, Y: 64},
	)
	sys := NewFeedingSystem(w, testMouth, Bounds{Width: 1600, Height: 900}, 0.05, true)

	c := components.Creature{}
	pos := components.Position{X: 100, Y: 100}
	body := components.Body{}
	if n := sys.Feed(rng, &c, &pos, &body); n != 3 {
		t.Errorf("Feed ate %d, want 3", n)
	}
	if c.Eaten != 3 {
		t.Errorf("Eaten = %d, want 3", c.Eaten)
	}
}

func BenchmarkFeed(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	bounds := Bounds{Width: 1600, Height: 900}
	positions := make([]components.Position, 20)
	for i := range positions {
		positions[i] = RandomFoodPosition(rng, bounds, 0.05)
	}
	w, _ := newFoodWorld(positions...)
	sys := NewFeedingSystem(w, testMouth, bounds, 0.05, true)

	c := components.Creature{}
	pos := components.Position{X: 800, Y: 450}
	body := components.Body{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sys.Feed(rng, &c, &pos, &body)
	}
}
