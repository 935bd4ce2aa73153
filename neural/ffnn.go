// Package neural provides the feedforward brains and vision sensors used by creatures.
package neural

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/creatures/genetic"
)

var (
	// ErrInvalidTopology is returned for topologies with fewer than two layers
	// or a non-positive layer size.
	ErrInvalidTopology = errors.New("neural: invalid topology")
	// ErrNotEnoughParams is returned when a genome runs out before the last neuron is built.
	ErrNotEnoughParams = errors.New("neural: not enough parameters")
	// ErrTooManyParams is returned when genes remain after the last neuron is built.
	ErrTooManyParams = errors.New("neural: too many parameters")
)

// Topology lists neuron counts per layer, inputs first.
// [9, 5, 3, 2] is a network with 9 inputs, hidden layers of 5 and 3, and 2 outputs.
type Topology []int

// Validate checks that t describes at least one weighted layer.
func (t Topology) Validate() error {
	if len(t) < 2 {
		return fmt.Errorf("%w: need at least 2 layers, got %d", ErrInvalidTopology, len(t))
	}
	for i, n := range t {
		if n <= 0 {
			return fmt.Errorf("%w: layer %d has %d neurons", ErrInvalidTopology, i, n)
		}
	}
	return nil
}

// ParamCount is the genome length for t: the sum of (inputs+1)*outputs over layers.
func (t Topology) ParamCount() int {
	total := 0
	for i := 1; i < len(t); i++ {
		total += (t[i-1] + 1) * t[i]
	}
	return total
}

// Neuron is a ReLU unit.
type Neuron struct {
	Bias    float32
	Weights []float32
}

func (n *Neuron) propagate(inputs []float32) float32 {
	sum := n.Bias
	for i, w := range n.Weights {
		sum += inputs[i] * w
	}
	if sum < 0 {
		return 0
	}
	return sum
}

// Layer is a fully connected layer; every neuron has one weight per input.
type Layer struct {
	Neurons []Neuron
}

func (l *Layer) propagate(inputs []float32) []float32 {
	out := make([]float32, len(l.Neurons))
	for i := range l.Neurons {
		out[i] = l.Neurons[i].propagate(inputs)
	}
	return out
}

// Network is a fixed-topology feedforward network. Propagation keeps no state
// between calls.
type Network struct {
	layers []Layer
}

// NewNetwork assembles a network from explicit layers. Every neuron in a layer
// must have as many weights as the previous layer has neurons.
func NewNetwork(layers []Layer) (*Network, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrInvalidTopology)
	}
	for li, layer := range layers {
		if len(layer.Neurons) == 0 {
			return nil, fmt.Errorf("%w: layer %d is empty", ErrInvalidTopology, li)
		}
		want := len(layer.Neurons[0].Weights)
		if li > 0 {
			want = len(layers[li-1].Neurons)
		}
		for ni, n := range layer.Neurons {
			if len(n.Weights) != want {
				return nil, fmt.Errorf("%w: layer %d neuron %d has %d weights, want %d",
					ErrInvalidTopology, li, ni, len(n.Weights), want)
			}
		}
	}
	return &Network{layers: layers}, nil
}

// Random builds a network whose weights and biases are drawn uniformly from [-1, 1].
func Random(rng *rand.Rand, topology Topology) (*Network, error) {
	if err := topology.Validate(); err != nil {
		return nil, err
	}

	layers := make([]Layer, len(topology)-1)
	for li := range layers {
		in, out := topology[li], topology[li+1]
		neurons := make([]Neuron, out)
		for ni := range neurons {
			weights := make([]float32, in)
			for wi := range weights {
				weights[wi] = rng.Float32()*2 - 1
			}
			neurons[ni] = Neuron{Bias: rng.Float32()*2 - 1, Weights: weights}
		}
		layers[li] = Layer{Neurons: neurons}
	}
	return &Network{layers: layers}, nil
}

// FromGenome rebuilds a network from its flat parameters. The genome is consumed
// layer by layer, neuron by neuron: one bias followed by that neuron's weights.
func FromGenome(topology Topology, genome genetic.Genome) (*Network, error) {
	if err := topology.Validate(); err != nil {
		return nil, err
	}
	if want := topology.ParamCount(); len(genome) < want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrNotEnoughParams, len(genome), want)
	} else if len(genome) > want {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrTooManyParams, len(genome), want)
	}

	pos := 0
	layers := make([]Layer, len(topology)-1)
	for li := range layers {
		in, out := topology[li], topology[li+1]
		neurons := make([]Neuron, out)
		for ni := range neurons {
			weights := make([]float32, in)
			bias := genome[pos]
			copy(weights, genome[pos+1:pos+1+in])
			pos += in + 1
			neurons[ni] = Neuron{Bias: bias, Weights: weights}
		}
		layers[li] = Layer{Neurons: neurons}
	}
	return &Network{layers: layers}, nil
}

// Genome flattens the network in the order FromGenome reads it.
func (n *Network) Genome() genetic.Genome {
	genome := make(genetic.Genome, 0, n.ParamCount())
	for li := range n.layers {
		for _, neuron := range n.layers[li].Neurons {
			genome = append(genome, neuron.Bias)
			genome = append(genome, neuron.Weights...)
		}
	}
	return genome
}

// Propagate feeds inputs through every layer and returns the last layer's
// activations. It panics if len(inputs) differs from Inputs().
func (n *Network) Propagate(inputs []float32) []float32 {
	if len(inputs) != n.Inputs() {
		panic(fmt.Sprintf("neural: propagate got %d inputs, network expects %d", len(inputs), n.Inputs()))
	}
	out := inputs
	for li := range n.layers {
		out = n.layers[li].propagate(out)
	}
	return out
}

// Topology reports the layer sizes of n, inputs first.
func (n *Network) Topology() Topology {
	t := make(Topology, 0, len(n.layers)+1)
	t = append(t, n.Inputs())
	for _, l := range n.layers {
		t = append(t, len(l.Neurons))
	}
	return t
}

// Inputs is the expected input vector length.
func (n *Network) Inputs() int {
	return len(n.layers[0].Neurons[0].Weights)
}

// Outputs is the length of the vector Propagate returns.
func (n *Network) Outputs() int {
	return len(n.layers[len(n.layers)-1].Neurons)
}

// ParamCount is the number of biases plus weights.
func (n *Network) ParamCount() int {
	total := 0
	for _, l := range n.layers {
		for _, neuron := range l.Neurons {
			total += 1 + len(neuron.Weights)
		}
	}
	return total
}

// Clone creates a deep copy of the network.
func (n *Network) Clone() *Network {
	layers := make([]Layer, len(n.layers))
	for li, l := range n.layers {
		neurons := make([]Neuron, len(l.Neurons))
		for ni, neuron := range l.Neurons {
			weights := make([]float32, len(neuron.Weights))
			copy(weights, neuron.Weights)
			neurons[ni] = Neuron{Bias: neuron.Bias, Weights: weights}
		}
		layers[li] = Layer{Neurons: neurons}
	}
	return &Network{layers: layers}
}
