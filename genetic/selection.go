package genetic

import (
	"fmt"
	"math/rand"
)

// Selector picks one individual from a population and returns its index.
type Selector interface {
	Select(rng *rand.Rand, population []Individual) (int, error)
}

// RouletteWheel selects with probability proportional to fitness.
// Negative fitness counts as zero. When the whole population has zero
// fitness every individual is equally likely.
type RouletteWheel struct{}

func (RouletteWheel) Select(rng *rand.Rand, population []Individual) (int, error) {
	if len(population) == 0 {
		return 0, ErrEmptyPopulation
	}

	var total float64
	for _, ind := range population {
		if ind.Fitness > 0 {
			total += float64(ind.Fitness)
		}
	}
	if total == 0 {
		return rng.Intn(len(population)), nil
	}

	target := rng.Float64() * total
	var acc float64
	last := 0
	for i, ind := range population {
		if ind.Fitness <= 0 {
			continue
		}
		acc += float64(ind.Fitness)
		last = i
		if target < acc {
			return i, nil
		}
	}
	// Rounding can leave target == total; the last weighted individual owns it.
	return last, nil
}

// Tournament draws Size individuals uniformly and keeps the fittest.
// Ties keep the earliest draw.
type Tournament struct {
	Size int
}

func (t Tournament) Select(rng *rand.Rand, population []Individual) (int, error) {
	if len(population) == 0 {
		return 0, ErrEmptyPopulation
	}
	size := t.Size
	if size <= 0 {
		size = 3
	}

	best := rng.Intn(len(population))
	for i := 1; i < size; i++ {
		candidate := rng.Intn(len(population))
		if population[candidate].Fitness > population[best].Fitness {
			best = candidate
		}
	}
	return best, nil
}

// NewSelector returns the selector registered under name.
func NewSelector(name string, tournamentSize int) (Selector, error) {
	switch name {
	case "", "roulette":
		return RouletteWheel{}, nil
	case "tournament":
		return Tournament{Size: tournamentSize}, nil
	default:
		return nil, fmt.Errorf("unknown selection method %q", name)
	}
}
