package game

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/pthm-cable/creatures/config"
	"github.com/pthm-cable/creatures/neural"
	"github.com/pthm-cable/creatures/telemetry"
)

// smallConfig returns a fast configuration for tests.
func smallConfig(t testing.TB) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Population.Size = 6
	cfg.Population.TicksPerGeneration = 20
	cfg.Food.Count = 8
	if err := cfg.Recompute(); err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	return cfg
}

func newTestSimulation(t testing.TB, cfg *config.Config, opts Options) *Simulation {
	t.Helper()
	s, err := NewSimulation(cfg, opts)
	if err != nil {
		t.Fatalf("NewSimulation failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewWorldRandomBrains(t *testing.T) {
	cfg := smallConfig(t)
	w, err := NewWorld(cfg, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("NewWorld failed: %v", err)
	}

	if w.Len() != cfg.Population.Size {
		t.Errorf("creatures = %d, want %d", w.Len(), cfg.Population.Size)
	}
	if w.FoodLeft() != cfg.Food.Count {
		t.Errorf("food left = %d, want %d", w.FoodLeft(), cfg.Food.Count)
	}
	if got := w.appendFoods(nil); len(got) != cfg.Food.Count {
		t.Errorf("food items = %d, want %d", len(got), cfg.Food.Count)
	}

	for i, c := range w.appendCreatures(nil) {
		if c.ID != uint32(i) {
			t.Errorf("creature %d has ID %d", i, c.ID)
		}
		if c.X < 0 || c.X > cfg.Derived.WorldW32 || c.Y < 0 || c.Y > cfg.Derived.WorldH32 {
			t.Errorf("creature %d spawned outside the world at (%v, %v)", i, c.X, c.Y)
		}
		if c.Speed < float32(cfg.Creature.SpeedMin) || c.Speed > float32(cfg.Creature.SpeedMax) {
			t.Errorf("creature %d spawn speed %v out of range", i, c.Speed)
		}
		if c.Eaten != 0 {
			t.Errorf("creature %d starts with %d eaten", i, c.Eaten)
		}
	}
}

func TestNewWorldRejectsMismatchedBrain(t *testing.T) {
	cfg := smallConfig(t)
	rng := rand.New(rand.NewSource(1))
	brain, err := neural.Random(rng, neural.Topology{cfg.Eye.Cells + 1, 2})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewWorld(cfg, rng, []*neural.Network{brain}); err == nil {
		t.Error("expected error for brain with wrong input count")
	}
	if _, err := NewWorld(cfg, rng, []*neural.Network{}); err == nil {
		t.Error("expected error for empty brain list")
	}
}

func TestWorldStepKeepsFoodAndCreaturesInBounds(t *testing.T) {
	cfg := smallConfig(t)
	rng := rand.New(rand.NewSource(3))
	w, err := NewWorld(cfg, rng, nil)
	if err != nil {
		t.Fatal(err)
	}

	margin := float32(cfg.Food.Margin)
	for tick := 1; tick <= 200; tick++ {
		w.Step(rng, nil)
		if w.Tick() != tick {
			t.Fatalf("tick = %d, want %d", w.Tick(), tick)
		}

		foods := w.appendFoods(nil)
		if len(foods) != cfg.Food.Count {
			t.Fatalf("tick %d: food items = %d, want %d", tick, len(foods), cfg.Food.Count)
		}
		for _, f := range foods {
			if f.X < margin*w.bounds.Width || f.X > (1-margin)*w.bounds.Width ||
				f.Y < margin*w.bounds.Height || f.Y > (1-margin)*w.bounds.Height {
				t.Fatalf("tick %d: food at (%v, %v) outside interior", tick, f.X, f.Y)
			}
		}
		for _, c := range w.appendCreatures(nil) {
			if c.X < 0 || c.X >= w.bounds.Width || c.Y < 0 || c.Y >= w.bounds.Height {
				t.Fatalf("tick %d: creature %d at (%v, %v) not wrapped", tick, c.ID, c.X, c.Y)
			}
		}
	}
	if w.FoodLeft() != cfg.Food.Count {
		t.Errorf("food left = %d with respawning food, want %d", w.FoodLeft(), cfg.Food.Count)
	}
}

func TestGenerationTransition(t *testing.T) {
	cfg := smallConfig(t)
	var flushed []telemetry.GenerationStats
	s := newTestSimulation(t, cfg, Options{
		Seed:          7,
		StatsCallback: func(st telemetry.GenerationStats) { flushed = append(flushed, st) },
	})

	for i := 0; i < cfg.Population.TicksPerGeneration; i++ {
		if err := s.AdvanceTick(); err != nil {
			t.Fatalf("AdvanceTick failed: %v", err)
		}
	}
	if s.Generation() != 0 || s.Tick() != cfg.Population.TicksPerGeneration {
		t.Fatalf("after %d ticks: generation %d tick %d", cfg.Population.TicksPerGeneration, s.Generation(), s.Tick())
	}
	if len(flushed) != 0 {
		t.Fatalf("stats flushed before the generation ended")
	}

	if err := s.AdvanceTick(); err != nil {
		t.Fatalf("AdvanceTick failed: %v", err)
	}
	if s.Generation() != 1 || s.Tick() != 0 {
		t.Errorf("after evolution: generation %d tick %d, want 1 0", s.Generation(), s.Tick())
	}
	if s.World().Len() != cfg.Population.Size {
		t.Errorf("population = %d, want %d", s.World().Len(), cfg.Population.Size)
	}

	if len(flushed) != 1 {
		t.Fatalf("stats flushed %d times, want 1", len(flushed))
	}
	st := flushed[0]
	if st.Generation != 0 || st.Ticks != cfg.Population.TicksPerGeneration || st.Population != cfg.Population.Size {
		t.Errorf("stats = %+v", st)
	}
	if st.RunID != s.RunID() {
		t.Errorf("stats run id %q, want %q", st.RunID, s.RunID())
	}
	if last, ok := s.LastStats(); !ok || last != st {
		t.Errorf("LastStats = %+v, %v", last, ok)
	}
}

func TestElitismKeepsBestGenome(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Evolution.MutationChance = 1
	cfg.Evolution.MutationCoeff = 1
	s := newTestSimulation(t, cfg, Options{Seed: 11})

	// Make creature 2 the clear winner
	w := s.World()
	w.creatureMap.Get(w.creatures[2]).Eaten = 100
	best := w.Brain(2).Genome()

	if err := s.evolve(); err != nil {
		t.Fatalf("evolve failed: %v", err)
	}

	next := s.World()
	if next.Len() != cfg.Population.Size {
		t.Fatalf("population = %d, want %d", next.Len(), cfg.Population.Size)
	}
	last := next.Brain(next.Len() - 1).Genome()
	if !last.Equal(best) {
		t.Error("best genome not carried over unchanged as the last creature")
	}
	// With every gene mutated, no child should match the elite
	for i := 0; i < next.Len()-1; i++ {
		if next.Brain(i).Genome().Equal(best) {
			t.Errorf("child %d identical to the elite", i)
		}
	}
	for _, c := range next.appendCreatures(nil) {
		if c.Eaten != 0 {
			t.Errorf("creature %d starts the generation with %d eaten", c.ID, c.Eaten)
		}
	}
}

func TestScarcityEndsGenerationEarly(t *testing.T) {
	cfg := smallConfig(t)
	cfg.Food.Respawn = false
	cfg.Food.Count = 3
	cfg.Creature.EatDistance = 1e6 // every mouth reaches every item
	cfg.Population.TicksPerGeneration = 1000
	if err := cfg.Recompute(); err != nil {
		t.Fatal(err)
	}

	var flushed []telemetry.GenerationStats
	s := newTestSimulation(t, cfg, Options{
		Seed:          5,
		StatsCallback: func(st telemetry.GenerationStats) { flushed = append(flushed, st) },
	})

	if err := s.AdvanceTick(); err != nil {
		t.Fatal(err)
	}
	w := s.World()
	if w.FoodLeft() != 0 {
		t.Fatalf("food left = %d after one greedy tick, want 0", w.FoodLeft())
	}
	if got := w.Fitness(); got[0] != 3 {
		t.Errorf("first creature ate %v, want all 3 items", got[0])
	}
	for _, f := range w.appendFoods(nil) {
		if !f.Eaten {
			t.Error("uneaten food after every item was consumed")
		}
	}

	if err := s.AdvanceTick(); err != nil {
		t.Fatal(err)
	}
	if s.Generation() != 1 {
		t.Fatalf("generation = %d, want early transition to 1", s.Generation())
	}
	if len(flushed) != 1 || flushed[0].Ticks != 1 || flushed[0].FoodEaten != 3 || flushed[0].FoodLeft != 0 {
		t.Errorf("stats = %+v", flushed)
	}
	if s.World().FoodLeft() != cfg.Food.Count {
		t.Errorf("new generation food left = %d, want %d", s.World().FoodLeft(), cfg.Food.Count)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	cfg := smallConfig(t)
	s := newTestSimulation(t, cfg, Options{Seed: 2})

	snap := s.Snapshot()
	if len(snap.Creatures) != cfg.Population.Size || len(snap.Foods) != cfg.Food.Count {
		t.Fatalf("snapshot sizes %d/%d", len(snap.Creatures), len(snap.Foods))
	}
	if snap.TicksPerGeneration != cfg.Population.TicksPerGeneration || snap.RunID != s.RunID() {
		t.Errorf("snapshot header = %+v", snap)
	}

	x := snap.Creatures[0].X
	snap.Creatures[0].X = -1
	snap.Foods[0].Eaten = true
	again := s.Snapshot()
	if again.Creatures[0].X != x || again.Foods[0].Eaten {
		t.Error("mutating a snapshot changed the simulation")
	}
}

func TestSameSeedSameRun(t *testing.T) {
	cfg := smallConfig(t)
	a := newTestSimulation(t, cfg, Options{Seed: 42})
	b := newTestSimulation(t, cfg, Options{Seed: 42})

	for i := 0; i < 2*cfg.Population.TicksPerGeneration+5; i++ {
		if err := a.AdvanceTick(); err != nil {
			t.Fatal(err)
		}
		if err := b.AdvanceTick(); err != nil {
			t.Fatal(err)
		}
	}

	sa, sb := a.Snapshot(), b.Snapshot()
	if sa.Generation != sb.Generation || sa.Tick != sb.Tick {
		t.Fatalf("runs diverged in time: %d/%d vs %d/%d", sa.Generation, sa.Tick, sb.Generation, sb.Tick)
	}
	if !slices.Equal(sa.Creatures, sb.Creatures) {
		t.Error("creatures differ between runs with the same seed")
	}
	if !slices.Equal(sa.Foods, sb.Foods) {
		t.Error("food differs between runs with the same seed")
	}
}

func BenchmarkWorldStep(b *testing.B) {
	cfg := config.Default()
	rng := rand.New(rand.NewSource(1))
	w, err := NewWorld(cfg, rng, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w.Step(rng, nil)
	}
}
