package genetic

import (
	"fmt"
	"math/rand"
)

// Algorithm breeds a new generation from a scored population.
type Algorithm struct {
	selector  Selector
	crossover Crossover
	mutator   Mutator
}

// New wires the three strategies into an Algorithm.
func New(selector Selector, crossover Crossover, mutator Mutator) *Algorithm {
	return &Algorithm{
		selector:  selector,
		crossover: crossover,
		mutator:   mutator,
	}
}

// Evolve produces len(population)-1 children. Each child has two
// independently selected parents (possibly the same individual), is crossed
// over, then mutated. The caller appends the elite to restore the full size.
func (a *Algorithm) Evolve(rng *rand.Rand, population []Individual) ([]Genome, error) {
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}

	children := make([]Genome, 0, len(population)-1)
	for len(children) < len(population)-1 {
		ia, err := a.selector.Select(rng, population)
		if err != nil {
			return nil, fmt.Errorf("selecting parent: %w", err)
		}
		ib, err := a.selector.Select(rng, population)
		if err != nil {
			return nil, fmt.Errorf("selecting parent: %w", err)
		}

		child, err := a.crossover.Crossover(rng, population[ia].Genome, population[ib].Genome)
		if err != nil {
			return nil, fmt.Errorf("crossing over %d and %d: %w", ia, ib, err)
		}
		children = append(children, a.mutator.Mutate(rng, child))
	}
	return children, nil
}

// Best returns the index of the fittest individual. The first one seen wins ties.
func Best(population []Individual) (int, error) {
	if len(population) == 0 {
		return 0, ErrEmptyPopulation
	}
	best := 0
	for i := 1; i < len(population); i++ {
		if population[i].Fitness > population[best].Fitness {
			best = i
		}
	}
	return best, nil
}
