package game

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/creatures/components"
	"github.com/pthm-cable/creatures/config"
	"github.com/pthm-cable/creatures/genetic"
	"github.com/pthm-cable/creatures/neural"
	"github.com/pthm-cable/creatures/systems"
	"github.com/pthm-cable/creatures/telemetry"
)

// World holds one generation: creatures, food and the tick counter.
// Creatures are processed in the order they were spawned.
type World struct {
	ecs *ecs.World

	creatureMapper *ecs.Map3[components.Position, components.Body, components.Creature]
	foodMapper     *ecs.Map2[components.Position, components.Food]

	// Individual component mappers for lookups
	posMap      *ecs.Map1[components.Position]
	bodyMap     *ecs.Map1[components.Body]
	creatureMap *ecs.Map1[components.Creature]

	creatures []ecs.Entity
	brains    map[uint32]*neural.Network

	eye      neural.Eye
	movement systems.Movement
	feeding  *systems.FeedingSystem
	bounds   systems.Bounds

	tick     int
	foodLeft int

	// Reused between creatures to avoid per-tick allocation
	visible []neural.Point
}

// NewWorld spawns one creature per brain and cfg.Food.Count food items.
// A nil brains slice spawns cfg.Population.Size creatures with random brains.
func NewWorld(cfg *config.Config, rng *rand.Rand, brains []*neural.Network) (*World, error) {
	eye, err := neural.NewEye(float32(cfg.Eye.Range), cfg.Derived.EyeAngle32, cfg.Eye.Cells)
	if err != nil {
		return nil, err
	}

	if brains == nil {
		brains = make([]*neural.Network, cfg.Population.Size)
		for i := range brains {
			b, err := neural.Random(rng, cfg.Derived.Topology)
			if err != nil {
				return nil, err
			}
			brains[i] = b
		}
	}
	if len(brains) == 0 {
		return nil, fmt.Errorf("game: world needs at least one creature")
	}

	world := ecs.NewWorld()
	bounds := systems.Bounds{Width: cfg.Derived.WorldW32, Height: cfg.Derived.WorldH32}
	mouth := systems.Mouth{
		Distance:    float32(cfg.Creature.MouthDistance),
		EatDistance: float32(cfg.Creature.EatDistance),
		MaxEat:      cfg.Creature.MaxEat,
	}

	w := &World{
		ecs:            world,
		creatureMapper: ecs.NewMap3[components.Position, components.Body, components.Creature](world),
		foodMapper:     ecs.NewMap2[components.Position, components.Food](world),
		posMap:         ecs.NewMap1[components.Position](world),
		bodyMap:        ecs.NewMap1[components.Body](world),
		creatureMap:    ecs.NewMap1[components.Creature](world),
		creatures:      make([]ecs.Entity, 0, len(brains)),
		brains:         make(map[uint32]*neural.Network, len(brains)),
		eye:            eye,
		movement: systems.Movement{
			SpeedMin:      float32(cfg.Creature.SpeedMin),
			SpeedMax:      float32(cfg.Creature.SpeedMax),
			SpeedAccel:    float32(cfg.Creature.SpeedAccel),
			RotationAccel: cfg.Derived.RotationAccel32,
		},
		feeding:  systems.NewFeedingSystem(world, mouth, bounds, float32(cfg.Food.Margin), cfg.Food.Respawn),
		bounds:   bounds,
		foodLeft: cfg.Food.Count,
		visible:  make([]neural.Point, 0, cfg.Food.Count),
	}

	for i, brain := range brains {
		if brain.Inputs() != eye.Cells {
			return nil, fmt.Errorf("game: brain %d has %d inputs, eye has %d cells", i, brain.Inputs(), eye.Cells)
		}
		w.spawnCreature(rng, uint32(i), brain)
	}
	for i := 0; i < cfg.Food.Count; i++ {
		pos := systems.RandomFoodPosition(rng, bounds, float32(cfg.Food.Margin))
		food := components.Food{}
		w.foodMapper.NewEntity(&pos, &food)
	}

	return w, nil
}

func (w *World) spawnCreature(rng *rand.Rand, id uint32, brain *neural.Network) {
	pos := components.Position{
		X: rng.Float32() * w.bounds.Width,
		Y: rng.Float32() * w.bounds.Height,
	}
	body := components.Body{
		Heading: rng.Float32() * 2 * math.Pi,
		Speed:   w.movement.SpawnSpeed(rng),
	}
	creature := components.Creature{ID: id}

	w.brains[id] = brain
	w.creatures = append(w.creatures, w.creatureMapper.NewEntity(&pos, &body, &creature))
}

// Step advances the world by one tick. Each creature in turn senses the
// current food, thinks, moves, wraps and eats. Returns the number of food
// items eaten this tick. perf may be nil.
func (w *World) Step(rng *rand.Rand, perf *telemetry.PerfCollector) int {
	w.tick++
	eaten := 0

	for _, e := range w.creatures {
		pos := w.posMap.Get(e)
		body := w.bodyMap.Get(e)
		creature := w.creatureMap.Get(e)

		startPhase(perf, telemetry.PhaseSense)
		w.visible = w.feeding.Visible(w.visible[:0])
		vision := w.eye.Sense(pos.X, pos.Y, body.Heading, w.visible)

		startPhase(perf, telemetry.PhaseThink)
		outputs := w.brains[creature.ID].Propagate(vision)

		startPhase(perf, telemetry.PhaseAct)
		w.movement.ActOutputs(pos, body, outputs)
		systems.Wrap(pos, w.bounds)

		startPhase(perf, telemetry.PhaseEat)
		eaten += w.feeding.Feed(rng, creature, pos, body)
	}

	if !w.feeding.Respawns() {
		w.foodLeft -= eaten
	}
	return eaten
}

func startPhase(perf *telemetry.PerfCollector, phase string) {
	if perf != nil {
		perf.StartPhase(phase)
	}
}

// Tick returns the number of ticks stepped in this world.
func (w *World) Tick() int {
	return w.tick
}

// FoodLeft returns the number of uneaten food items. It only drops when food
// does not respawn.
func (w *World) FoodLeft() int {
	return w.foodLeft
}

// Len returns the number of creatures.
func (w *World) Len() int {
	return len(w.creatures)
}

// Brain returns the brain of the i-th creature.
func (w *World) Brain(i int) *neural.Network {
	return w.brains[w.creatureMap.Get(w.creatures[i]).ID]
}

// Individuals returns each creature's genome and fitness (food eaten),
// in creature order.
func (w *World) Individuals() []genetic.Individual {
	out := make([]genetic.Individual, len(w.creatures))
	for i, e := range w.creatures {
		c := w.creatureMap.Get(e)
		out[i] = genetic.Individual{
			Genome:  w.brains[c.ID].Genome(),
			Fitness: float32(c.Eaten),
		}
	}
	return out
}

// Fitness returns each creature's food eaten, in creature order.
func (w *World) Fitness() []float64 {
	out := make([]float64, len(w.creatures))
	for i, e := range w.creatures {
		out[i] = float64(w.creatureMap.Get(e).Eaten)
	}
	return out
}

// appendCreatures appends a view of every creature to dst.
func (w *World) appendCreatures(dst []CreatureView) []CreatureView {
	for _, e := range w.creatures {
		pos := w.posMap.Get(e)
		body := w.bodyMap.Get(e)
		c := w.creatureMap.Get(e)
		dst = append(dst, CreatureView{
			ID:        c.ID,
			X:         pos.X,
			Y:         pos.Y,
			Heading:   body.Heading,
			Speed:     body.Speed,
			Eaten:     c.Eaten,
			Intensity: c.Intensity,
		})
	}
	return dst
}

// appendFoods appends a view of every food item to dst, eaten or not.
func (w *World) appendFoods(dst []FoodView) []FoodView {
	w.feeding.Each(func(pos components.Position, food components.Food) {
		dst = append(dst, FoodView{X: pos.X, Y: pos.Y, Eaten: food.Eaten})
	})
	return dst
}
