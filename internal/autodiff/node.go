package autodiff

import (
	"fmt"

	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

// NodeID is a handle to a node inside one Graph.
type NodeID int32

// Node is one scalar in the computation graph.
type Node struct {
	Data float64  // Forward value, fixed at creation.
	Grad float64  // d(root)/d(node), accumulated by Backward.
	Rule ops.Rule // Derivative rule; ops.None for leaves.

	operands [ops.MaxOperands]NodeID
	arity    uint8
}

// Operands returns the nodes consumed to produce this one, in order. The
// same NodeID appears twice for an expression like x*x.
func (n Node) Operands() []NodeID {
	out := make([]NodeID, n.arity)
	copy(out, n.operands[:n.arity])
	return out
}

// IsLeaf reports whether the node was created by Graph.Leaf.
func (n Node) IsLeaf() bool {
	return n.Rule.Kind == ops.None
}

// String formats the node the way Dump prints a single line.
func (n Node) String() string {
	return fmt.Sprintf("Value: data=%g, grad=%g, op=%s", n.Data, n.Grad, n.Rule.Kind.Symbol())
}
