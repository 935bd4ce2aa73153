package genetic

import (
	"fmt"
	"math/rand"
)

// Mutator perturbs a genome and returns the result.
type Mutator interface {
	Mutate(rng *rand.Rand, g Genome) Genome
}

// Gaussian adds sign*Coefficient*U(0,1) to each gene with probability Chance.
type Gaussian struct {
	Chance      float32
	Coefficient float32
}

// NewGaussian validates the parameters and returns the mutator.
func NewGaussian(chance, coefficient float32) (Gaussian, error) {
	if chance < 0 || chance > 1 {
		return Gaussian{}, fmt.Errorf("%w: chance %v not in [0,1]", ErrInvalidMutation, chance)
	}
	if coefficient < 0 {
		return Gaussian{}, fmt.Errorf("%w: coefficient %v is negative", ErrInvalidMutation, coefficient)
	}
	return Gaussian{Chance: chance, Coefficient: coefficient}, nil
}

func (m Gaussian) Mutate(rng *rand.Rand, g Genome) Genome {
	out := g.Clone()
	if m.Chance == 0 || m.Coefficient == 0 {
		return out
	}
	for i := range out {
		if rng.Float32() >= m.Chance {
			continue
		}
		sign := float32(1)
		if rng.Float64() < 0.5 {
			sign = -1
		}
		out[i] += sign * m.Coefficient * rng.Float32()
	}
	return out
}
