package autodiff_test

import (
	"math"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

var samples = [][2]float64{
	{3, 2},
	{-1.5, 4},
	{0, 7},
	{2.25, -0.5},
	{-3, -3},
}

func TestGraph_Leaf(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(3)

	assert.Equal(t, 1, g.Len())
	assert.Equal(t, 3.0, g.Value(x))
	assert.Equal(t, 0.0, g.Grad(x))

	n := g.Node(x)
	assert.True(t, n.IsLeaf())
	assert.Empty(t, n.Operands())
	assert.Equal(t, ops.None, n.Rule.Kind)
}

func TestAdd(t *testing.T) {
	for _, s := range samples {
		g := autodiff.NewGraph()
		a, b := g.Leaf(s[0]), g.Leaf(s[1])
		out := g.Add(a, b)

		assert.Equal(t, s[0]+s[1], g.Value(out))

		g.Backward(out)
		assert.Equal(t, 1.0, g.Grad(out))
		assert.Equal(t, 1.0, g.Grad(a))
		assert.Equal(t, 1.0, g.Grad(b))
	}
}

func TestMul(t *testing.T) {
	for _, s := range samples {
		g := autodiff.NewGraph()
		a, b := g.Leaf(s[0]), g.Leaf(s[1])
		out := g.Mul(a, b)

		assert.Equal(t, s[0]*s[1], g.Value(out))

		g.Backward(out)
		assert.Equal(t, s[1], g.Grad(a))
		assert.Equal(t, s[0], g.Grad(b))
	}
}

func TestPow(t *testing.T) {
	for _, s := range samples {
		for n := 1; n <= 4; n++ {
			g := autodiff.NewGraph()
			a := g.Leaf(s[0])
			out := g.Pow(a, float64(n))

			assert.InDelta(t, math.Pow(s[0], float64(n)), g.Value(out), 1e-12)

			g.Backward(out)
			assert.InDelta(t, float64(n)*math.Pow(s[0], float64(n-1)), g.Grad(a), 1e-12)
		}
	}
}

func TestReLU(t *testing.T) {
	tests := []struct {
		in, want, grad float64
	}{
		{3, 3, 1},
		{0.001, 0.001, 1},
		{-2, 0, 0},
		{0, 0, 0},
	}

	for _, tt := range tests {
		g := autodiff.NewGraph()
		a := g.Leaf(tt.in)
		out := g.ReLU(a)

		assert.Equal(t, tt.want, g.Value(out))

		g.Backward(out)
		assert.Equal(t, tt.grad, g.Grad(a), "relu'(%g)", tt.in)
	}
}

// y = x*x through one shared leaf must see both consumer slots.
func TestBackward_SharedOperand(t *testing.T) {
	for _, s := range samples {
		g := autodiff.NewGraph()
		x := g.Leaf(s[0])
		y := g.Mul(x, x)

		g.Backward(y)
		assert.Equal(t, 2*s[0], g.Grad(x))
		assert.Equal(t, []autodiff.NodeID{x, x}, g.Node(y).Operands())
	}
}

func TestBackward_Chained(t *testing.T) {
	g := autodiff.NewGraph()
	x, y := g.Leaf(3), g.Leaf(2)
	k := g.Mul(x, y)
	require.Equal(t, 6.0, g.Value(k))

	g.Backward(k)
	assert.Equal(t, 2.0, g.Grad(x))
	assert.Equal(t, 3.0, g.Grad(y))
}

func TestBackward_Pow(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(3)
	m := g.Pow(x, 2)
	require.Equal(t, 9.0, g.Value(m))

	g.Backward(m)
	assert.Equal(t, 6.0, g.Grad(x))
}

// A shared intermediate must receive every consumer's contribution before
// its own rule runs: f = (a*b) + (a*b)**2 with c = a*b reused.
func TestBackward_SharedIntermediate(t *testing.T) {
	g := autodiff.NewGraph()
	a, b := g.Leaf(2), g.Leaf(-3)
	c := g.Mul(a, b)
	f := g.Add(c, g.Pow(c, 2))

	g.Backward(f)

	// df/dc = 1 + 2c = -11
	assert.Equal(t, -11.0, g.Grad(c))
	assert.Equal(t, -11.0*-3, g.Grad(a))
	assert.Equal(t, -11.0*2, g.Grad(b))
}

// Nodes not reachable from root are left alone.
func TestBackward_Unreachable(t *testing.T) {
	g := autodiff.NewGraph()
	x, y := g.Leaf(1), g.Leaf(2)
	side := g.Mul(x, y)
	root := g.Add(x, g.Leaf(5))

	g.Backward(root)
	assert.Equal(t, 1.0, g.Grad(x))
	assert.Equal(t, 0.0, g.Grad(y))
	assert.Equal(t, 0.0, g.Grad(side))
}

// Backward does not reset: a second pass doubles the direct operands of root.
func TestBackward_NotIdempotent(t *testing.T) {
	g := autodiff.NewGraph()
	x, y := g.Leaf(3), g.Leaf(2)
	k := g.Mul(x, y)

	g.Backward(k)
	g.Backward(k)
	assert.Equal(t, 1.0, g.Grad(k))
	assert.Equal(t, 4.0, g.Grad(x))
	assert.Equal(t, 6.0, g.Grad(y))

	g.ZeroGrad()
	g.Backward(k)
	assert.Equal(t, 2.0, g.Grad(x))
	assert.Equal(t, 3.0, g.Grad(y))
}

func TestBackward_RepeatedCompounds(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(1)
	a := g.Mul(x, g.Leaf(2))
	root := g.Mul(a, g.Leaf(3))

	g.Backward(root)
	assert.Equal(t, 3.0, g.Grad(a))
	assert.Equal(t, 6.0, g.Grad(x))

	// a doubles; x receives 2 * (3+3) on top of its first 6.
	g.Backward(root)
	assert.Equal(t, 1.0, g.Grad(root))
	assert.Equal(t, 6.0, g.Grad(a))
	assert.Equal(t, 18.0, g.Grad(x))
}

func TestBackwardChecked(t *testing.T) {
	g := autodiff.NewGraph()
	x, y := g.Leaf(3), g.Leaf(2)
	k := g.Mul(x, y)

	require.NoError(t, g.BackwardChecked(k))
	assert.Equal(t, 2.0, g.Grad(x))

	err := g.BackwardChecked(k)
	require.ErrorIs(t, err, autodiff.ErrResidualGradient)
	assert.Equal(t, 2.0, g.Grad(x), "graph must be untouched on error")

	g.ZeroGrad()
	require.NoError(t, g.BackwardChecked(k))
	assert.Equal(t, 3.0, g.Grad(y))
}

func TestBackward_Leaf(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(4)

	g.Backward(x)
	assert.Equal(t, 1.0, g.Grad(x))
}

func TestBackward_LongChain(t *testing.T) {
	const depth = 200_000

	g := autodiff.NewGraph(autodiff.WithCapacity(depth + 2))
	x := g.Leaf(1)
	one := g.Leaf(1)
	cur := x
	for i := 0; i < depth; i++ {
		cur = g.Add(cur, one)
	}

	g.Backward(cur)
	assert.Equal(t, 1.0, g.Grad(x))
	assert.Equal(t, float64(depth), g.Grad(one))
	assert.Equal(t, float64(depth+1), g.Value(cur))
}

func TestTopoOrder(t *testing.T) {
	g := autodiff.NewGraph()
	a, b := g.Leaf(1), g.Leaf(2)
	c := g.Mul(a, b)
	d := g.Add(c, a)
	e := g.ReLU(d)
	_ = g.Leaf(9) // unreachable

	order := g.TopoOrder(e)
	require.Len(t, order, 5)
	assert.Equal(t, e, order[0])

	pos := make(map[autodiff.NodeID]int, len(order))
	for i, id := range order {
		_, dup := pos[id]
		require.False(t, dup, "node %d visited twice", id)
		pos[id] = i
	}
	for _, id := range order {
		for _, op := range g.Node(id).Operands() {
			assert.Less(t, pos[id], pos[op], "node %d must precede operand %d", id, op)
		}
	}
}

func TestApply(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(2)

	id, err := g.Apply(ops.Rule{Kind: ops.Pow, Exponent: 3}, x)
	require.NoError(t, err)
	assert.Equal(t, 8.0, g.Value(id))

	_, err = g.Apply(ops.Rule{Kind: ops.Add}, x)
	assert.ErrorIs(t, err, autodiff.ErrInvalidRule)
	assert.ErrorIs(t, err, ops.ErrArity)

	_, err = g.Apply(ops.Leaf())
	assert.ErrorIs(t, err, autodiff.ErrInvalidRule)

	_, err = g.Apply(ops.Rule{Kind: ops.ReLU}, autodiff.NodeID(42))
	assert.ErrorIs(t, err, autodiff.ErrUnknownNode)
}

func TestGraph_InvalidHandlePanics(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(1)

	assert.Panics(t, func() { g.Add(x, autodiff.NodeID(7)) })
	assert.Panics(t, func() { g.Value(-1) })
	assert.Panics(t, func() { g.Backward(autodiff.NodeID(3)) })
	assert.False(t, g.Contains(autodiff.NodeID(1)))
	assert.True(t, g.Contains(x))
}

// Domain errors propagate as NaN without being special-cased.
func TestPow_DomainError(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(-8)
	r := g.Pow(x, 1.0/3)
	y := g.Add(r, g.Leaf(1))

	assert.True(t, math.IsNaN(g.Value(y)))

	g.Backward(y)
	assert.True(t, math.IsNaN(g.Grad(x)))
}

func TestGraph_Nodes(t *testing.T) {
	g := autodiff.NewGraph()
	x := g.Leaf(2)
	g.ReLU(x)

	nodes := g.Nodes()
	require.Len(t, nodes, 2)
	nodes[0].Grad = 99
	assert.Equal(t, 0.0, g.Grad(x), "Nodes returns copies")

	g.AddGrad(x, 1.5)
	g.AddGrad(x, 1.5)
	assert.Equal(t, 3.0, g.Grad(x))
}

func TestWithLogger(t *testing.T) {
	var lines []string
	log := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})

	g := autodiff.NewGraph(autodiff.WithLogger(log))
	x := g.Leaf(2)
	g.Backward(g.Pow(x, 2))

	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"nodes"=2`)
}
