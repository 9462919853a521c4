// Package autodiff implements reverse-mode automatic differentiation over
// scalar values.
//
// Architecture:
//   - Graph: an arena holding every node of one computation, in creation order
//   - NodeID: an index into the arena, used for operands and by callers
//   - ops.Rule: the tagged derivative rule stored on each node
//   - Backward: orders the nodes reachable from a root and applies each rule
//
// Usage:
//
//	g := autodiff.NewGraph()
//	x := g.Leaf(3)
//	y := g.Leaf(2)
//	k := g.Mul(x, y)
//
//	g.Backward(k)
//	fmt.Println(g.Grad(x), g.Grad(y)) // 2 3
//
// A Graph is not safe for concurrent use. Independent graphs may be built and
// differentiated on separate goroutines.
package autodiff

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

// Graph is an arena of scalar nodes. Operands are always created before the
// nodes that consume them, so the graph is acyclic by construction and
// ascending NodeID order is a valid evaluation order.
type Graph struct {
	nodes []Node
	log   logr.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger used for diagnostics. Defaults to logr.Discard().
func WithLogger(log logr.Logger) Option {
	return func(g *Graph) {
		g.log = log
	}
}

// WithCapacity pre-allocates room for n nodes.
func WithCapacity(n int) Option {
	return func(g *Graph) {
		if n > cap(g.nodes) {
			g.nodes = make([]Node, 0, n)
		}
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		nodes: make([]Node, 0, 64), // Pre-allocate for common case
		log:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Leaf adds an input node holding v.
func (g *Graph) Leaf(v float64) NodeID {
	return g.push(Node{Data: v, Rule: ops.Leaf()})
}

// Add returns a node holding a + b.
func (g *Graph) Add(a, b NodeID) NodeID {
	return g.mustApply(ops.Rule{Kind: ops.Add}, a, b)
}

// Mul returns a node holding a * b.
func (g *Graph) Mul(a, b NodeID) NodeID {
	return g.mustApply(ops.Rule{Kind: ops.Mul}, a, b)
}

// Pow returns a node holding a raised to the constant exponent n.
func (g *Graph) Pow(a NodeID, n float64) NodeID {
	return g.mustApply(ops.Rule{Kind: ops.Pow, Exponent: n}, a)
}

// ReLU returns a node holding max(0, a).
func (g *Graph) ReLU(a NodeID) NodeID {
	return g.mustApply(ops.Rule{Kind: ops.ReLU}, a)
}

// Apply adds a node computed by rule r from the given operands. It is the
// generic form of Add, Mul, Pow and ReLU, used when the rule is data (for
// example when replaying a snapshot). A leaf rule with no operands is
// rejected; use Leaf.
func (g *Graph) Apply(r ops.Rule, operands ...NodeID) (NodeID, error) {
	if r.Kind == ops.None {
		return 0, fmt.Errorf("%w: leaf nodes are created with Leaf", ErrInvalidRule)
	}
	if err := r.Check(len(operands)); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}
	for _, id := range operands {
		if !g.Contains(id) {
			return 0, fmt.Errorf("%w: %d", ErrUnknownNode, id)
		}
	}
	return g.apply(r, operands), nil
}

func (g *Graph) mustApply(r ops.Rule, operands ...NodeID) NodeID {
	for _, id := range operands {
		g.check(id)
	}
	return g.apply(r, operands)
}

func (g *Graph) apply(r ops.Rule, operands []NodeID) NodeID {
	n := Node{Rule: r, arity: uint8(len(operands))}
	var in [ops.MaxOperands]float64
	for i, id := range operands {
		n.operands[i] = id
		in[i] = g.nodes[id].Data
	}
	n.Data = ops.Forward(r, in)
	return g.push(n)
}

func (g *Graph) push(n Node) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	return id
}

// Contains reports whether id addresses a node of g.
func (g *Graph) Contains(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

// check panics on a handle that does not belong to the arena. A handle taken
// from another graph that happens to be in range is not detected.
func (g *Graph) check(id NodeID) {
	if !g.Contains(id) {
		panic(fmt.Sprintf("autodiff: node %d out of range [0,%d)", id, len(g.nodes)))
	}
}

// Value returns the forward value of id.
func (g *Graph) Value(id NodeID) float64 {
	g.check(id)
	return g.nodes[id].Data
}

// Grad returns the gradient accumulated on id.
func (g *Graph) Grad(id NodeID) float64 {
	g.check(id)
	return g.nodes[id].Grad
}

// Node returns a copy of the node record for id.
func (g *Graph) Node(id NodeID) Node {
	g.check(id)
	return g.nodes[id]
}

// Nodes returns copies of all node records in creation order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// AddGrad accumulates delta into the gradient of id.
func (g *Graph) AddGrad(id NodeID, delta float64) {
	g.check(id)
	g.nodes[id].Grad += delta
}

// ZeroGrad resets every gradient in the graph to zero. Backward never does
// this on its own.
func (g *Graph) ZeroGrad() {
	for i := range g.nodes {
		g.nodes[i].Grad = 0
	}
}
