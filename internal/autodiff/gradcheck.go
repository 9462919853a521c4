package autodiff

import (
	"fmt"
	"math"

	"go.uber.org/multierr"

	"github.com/born-ml/micrograd/internal/parallel"
)

// Builder constructs an expression over leaves, which already hold the input
// values, and returns its root.
type Builder func(g *Graph, leaves []NodeID) NodeID

// GradientMismatch reports a leaf whose backpropagated gradient disagrees
// with the finite-difference estimate.
type GradientMismatch struct {
	Leaf     int
	Analytic float64
	Numeric  float64
}

// Error implements the error interface.
func (m *GradientMismatch) Error() string {
	return fmt.Sprintf("leaf %d: analytic gradient %g, numerical %g", m.Leaf, m.Analytic, m.Numeric)
}

// NumericalGrad estimates f'(x) by central differences.
func NumericalGrad(f func(float64) float64, x, eps float64) float64 {
	return (f(x+eps) - f(x-eps)) / (2 * eps)
}

// CheckGradients builds the expression at inputs, runs Backward and compares
// every leaf gradient with a central-difference estimate. Values agree when
// |analytic - numeric| <= tol * max(1, |analytic|, |numeric|). All
// mismatches are returned, combined with multierr.
//
// Each perturbed evaluation builds its own graph, so leaves are swept in
// parallel.
func CheckGradients(build Builder, inputs []float64, eps, tol float64) error {
	g := NewGraph(WithCapacity(len(inputs)))
	leaves := leavesOf(g, inputs)
	g.Backward(build(g, leaves))

	numeric := make([]float64, len(inputs))
	parallel.For(len(inputs), func(i int) {
		xs := make([]float64, len(inputs))
		copy(xs, inputs)
		f := func(v float64) float64 {
			xs[i] = v
			h := NewGraph()
			return h.Value(build(h, leavesOf(h, xs)))
		}
		numeric[i] = NumericalGrad(f, inputs[i], eps)
	}, parallel.DefaultConfig())

	var err error
	for i, leaf := range leaves {
		a, n := g.Grad(leaf), numeric[i]
		scale := math.Max(1, math.Max(math.Abs(a), math.Abs(n)))
		if !(math.Abs(a-n) <= tol*scale) {
			err = multierr.Append(err, &GradientMismatch{Leaf: i, Analytic: a, Numeric: n})
		}
	}
	return err
}

func leavesOf(g *Graph, xs []float64) []NodeID {
	ids := make([]NodeID, len(xs))
	for i, x := range xs {
		ids[i] = g.Leaf(x)
	}
	return ids
}
