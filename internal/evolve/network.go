// Package evolve is the evolutionary driver for the simulation. It is an
// external consumer of the sim package: networks are handed to the loop only
// through the sim.Policy interface and improved from the fitness it returns.
package evolve

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/vovakirdan/flappy-arena/internal/sim"
)

// Network is a two-layer feed-forward network with one output.
// Hidden units use tanh; the output uses a logistic sigmoid, so Activate
// returns a value in (0, 1).
type Network struct {
	Inputs     int
	Hidden     int
	W1         []float64 // Hidden×Inputs, row-major
	B1         []float64 // Hidden biases
	W2         []float64 // Hidden -> output weights
	B2         float64   // Output bias
	InputScale float64   // Inputs are divided by this before the first layer

	scaled []float64
	hidden []float64
}

var _ sim.Policy = (*Network)(nil)

// NewNetwork creates a randomly initialized network.
func NewNetwork(rng *rand.Rand, inputs, hidden int, inputScale float64) *Network {
	n := &Network{
		Inputs:     inputs,
		Hidden:     hidden,
		W1:         make([]float64, hidden*inputs),
		B1:         make([]float64, hidden),
		W2:         make([]float64, hidden),
		InputScale: inputScale,
	}

	// Xavier initialization
	scale1 := math.Sqrt(2.0 / float64(inputs))
	scale2 := math.Sqrt(2.0 / float64(hidden))
	for i := range n.W1 {
		n.W1[i] = rng.NormFloat64() * scale1
	}
	for i := range n.W2 {
		n.W2[i] = rng.NormFloat64() * scale2
	}
	return n
}

// Activate computes the network output for one observation vector.
// len(inputs) must equal Inputs.
func (n *Network) Activate(inputs []float64) float64 {
	if len(n.scaled) != n.Inputs {
		n.scaled = make([]float64, n.Inputs)
		n.hidden = make([]float64, n.Hidden)
	}

	scale := n.InputScale
	if scale == 0 {
		scale = 1
	}
	floats.ScaleTo(n.scaled, 1/scale, inputs)

	for i := 0; i < n.Hidden; i++ {
		row := n.W1[i*n.Inputs : (i+1)*n.Inputs]
		n.hidden[i] = math.Tanh(floats.Dot(row, n.scaled) + n.B1[i])
	}
	return sigmoid(floats.Dot(n.W2, n.hidden) + n.B2)
}

// Mutate perturbs each weight and bias with probability rate by Gaussian
// noise of standard deviation sigma.
func (n *Network) Mutate(rng *rand.Rand, rate, sigma float64) {
	mutate := func(w []float64) {
		for i := range w {
			if rng.Float64() < rate {
				w[i] += rng.NormFloat64() * sigma
			}
		}
	}
	mutate(n.W1)
	mutate(n.B1)
	mutate(n.W2)
	if rng.Float64() < rate {
		n.B2 += rng.NormFloat64() * sigma
	}
}

// Clone returns a deep copy that shares no weights with n.
func (n *Network) Clone() *Network {
	return &Network{
		Inputs:     n.Inputs,
		Hidden:     n.Hidden,
		W1:         append([]float64(nil), n.W1...),
		B1:         append([]float64(nil), n.B1...),
		W2:         append([]float64(nil), n.W2...),
		B2:         n.B2,
		InputScale: n.InputScale,
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
