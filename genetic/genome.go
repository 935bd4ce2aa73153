// Package genetic implements a generational genetic algorithm over flat
// floating-point genomes.
package genetic

import "errors"

var (
	// ErrEmptyPopulation is returned when an operation needs at least one individual.
	ErrEmptyPopulation = errors.New("genetic: empty population")
	// ErrLengthMismatch is returned when two genomes of different lengths are combined.
	ErrLengthMismatch = errors.New("genetic: genome length mismatch")
	// ErrInvalidMutation is returned for mutation parameters outside their domain.
	ErrInvalidMutation = errors.New("genetic: invalid mutation parameters")
)

// Genome is the flat, ordered parameter list of one individual.
// Operators never modify a genome they receive; they always return a new one.
type Genome []float32

// Clone returns an independent copy of g.
func (g Genome) Clone() Genome {
	out := make(Genome, len(g))
	copy(out, g)
	return out
}

// Equal reports whether a and b hold bit-identical genes.
func (g Genome) Equal(other Genome) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if g[i] != other[i] {
			return false
		}
	}
	return true
}

// Individual pairs a genome with the fitness it earned.
type Individual struct {
	Genome  Genome
	Fitness float32
}
