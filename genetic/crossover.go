package genetic

import (
	"fmt"
	"math/rand"
)

// Crossover combines two equal-length parents into one child.
type Crossover interface {
	Crossover(rng *rand.Rand, a, b Genome) (Genome, error)
}

// Uniform takes every gene from either parent with equal probability.
type Uniform struct{}

func (Uniform) Crossover(rng *rand.Rand, a, b Genome) (Genome, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	child := make(Genome, len(a))
	for i := range a {
		if rng.Float64() < 0.5 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
	}
	return child, nil
}

// SinglePoint copies a prefix from a and the remaining suffix from b.
// The cut index is uniform in [0, len].
type SinglePoint struct{}

func (SinglePoint) Crossover(rng *rand.Rand, a, b Genome) (Genome, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	point := rng.Intn(len(a) + 1)
	child := make(Genome, len(a))
	copy(child[:point], a[:point])
	copy(child[point:], b[point:])
	return child, nil
}

// NewCrossover returns the crossover registered under name.
func NewCrossover(name string) (Crossover, error) {
	switch name {
	case "", "uniform":
		return Uniform{}, nil
	case "single_point":
		return SinglePoint{}, nil
	default:
		return nil, fmt.Errorf("unknown crossover method %q", name)
	}
}
