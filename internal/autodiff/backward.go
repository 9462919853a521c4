package autodiff

import (
	"fmt"
	"slices"

	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

// TopoOrder returns every node reachable from root, root first, such that
// each node appears before all of its operands.
//
// It is a depth-first postorder over operands, reversed. The walk keeps an
// explicit stack so a long chain cannot exhaust the goroutine stack.
func (g *Graph) TopoOrder(root NodeID) []NodeID {
	g.check(root)

	type frame struct {
		id   NodeID
		next uint8 // Index of the next operand to descend into.
	}

	visited := make([]bool, len(g.nodes))
	order := make([]NodeID, 0, int(root)+1)
	stack := []frame{{id: root}}
	visited[root] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := &g.nodes[top.id]
		if top.next < n.arity {
			child := n.operands[top.next]
			top.next++
			if !visited[child] {
				visited[child] = true
				stack = append(stack, frame{id: child})
			}
			continue
		}
		order = append(order, top.id)
		stack = stack[:len(stack)-1]
	}

	slices.Reverse(order)
	return order
}

// Backward computes d(root)/d(n) for every node n reachable from root.
//
// Algorithm:
//  1. Order the reachable nodes so every consumer precedes its operands
//  2. Seed root's gradient with 1
//  3. Walk the order, adding each node's rule contributions into its operands
//
// Gradients are accumulated, never reset. Calling Backward twice on the same
// graph without ZeroGrad reseeds root with 1 but lets every rule read its
// node's already accumulated gradient: direct operands of root double, and
// deeper nodes compound (x -> a=x*2 -> root=a*3 gives x a gradient of 6,
// then 18). Use BackwardChecked to have that detected.
func (g *Graph) Backward(root NodeID) {
	g.backward(root, g.TopoOrder(root))
}

// BackwardChecked is Backward with a precondition: every node reachable from
// root must have a zero gradient. It returns ErrResidualGradient, leaving the
// graph untouched, if one does not.
func (g *Graph) BackwardChecked(root NodeID) error {
	order := g.TopoOrder(root)
	for _, id := range order {
		if grad := g.nodes[id].Grad; grad != 0 {
			return fmt.Errorf("%w: node %d has %g", ErrResidualGradient, id, grad)
		}
	}
	g.backward(root, order)
	return nil
}

func (g *Graph) backward(root NodeID, order []NodeID) {
	g.nodes[root].Grad = 1

	for _, id := range order {
		n := &g.nodes[id]
		if n.Rule.Kind == ops.None {
			continue
		}

		var in [ops.MaxOperands]float64
		for i := uint8(0); i < n.arity; i++ {
			in[i] = g.nodes[n.operands[i]].Data
		}

		contrib := ops.Backward(n.Rule, in, n.Data, n.Grad)
		for i := uint8(0); i < n.arity; i++ {
			g.nodes[n.operands[i]].Grad += contrib[i]
		}
	}

	g.log.V(1).Info("backward complete", "root", root, "nodes", len(order), "graph", len(g.nodes))
}
