package serialization

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

// Snapshot captures every node of g: rule, operands, value and gradient.
// root is recorded for readers that want to dump from it; a root that is not
// a node of g (a negative NodeID, say) is omitted.
func Snapshot(g *autodiff.Graph, root autodiff.NodeID) *GraphSnapshot {
	nodes := g.Nodes()
	snap := &GraphSnapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Nodes:     make([]NodeRecord, len(nodes)),
	}
	if g.Contains(root) {
		r := int32(root)
		snap.Root = &r
	}

	for i, n := range nodes {
		rec := NodeRecord{
			ID:    int32(i),
			Op:    n.Rule.Kind.String(),
			Value: Float(n.Data),
			Grad:  Float(n.Grad),
		}
		if n.Rule.Kind == ops.Pow {
			rec.Exponent = Float(n.Rule.Exponent)
		}
		for _, id := range n.Operands() {
			rec.Operands = append(rec.Operands, int32(id))
		}
		snap.Nodes[i] = rec
	}
	return snap
}

// Restore rebuilds a graph from a snapshot by replaying every operation in
// ID order, then restores the recorded gradients. A replayed value that does
// not match the recorded one is reported as ErrValueMismatch.
func Restore(snap *GraphSnapshot, opts ...autodiff.Option) (*autodiff.Graph, error) {
	if err := ValidateSnapshot(snap); err != nil {
		return nil, err
	}

	g := autodiff.NewGraph(append([]autodiff.Option{autodiff.WithCapacity(len(snap.Nodes))}, opts...)...)
	operands := make([]autodiff.NodeID, 0, ops.MaxOperands)

	for _, rec := range snap.Nodes {
		kind, _ := ops.ParseKind(rec.Op) // checked by ValidateSnapshot

		var id autodiff.NodeID
		if kind == ops.None {
			id = g.Leaf(float64(rec.Value))
		} else {
			operands = operands[:0]
			for _, op := range rec.Operands {
				operands = append(operands, autodiff.NodeID(op))
			}
			var err error
			id, err = g.Apply(ops.Rule{Kind: kind, Exponent: float64(rec.Exponent)}, operands...)
			if err != nil {
				return nil, fmt.Errorf("node %d: %w", rec.ID, err)
			}
		}

		if got := g.Value(id); !same(got, float64(rec.Value)) {
			return nil, fmt.Errorf("%w: node %d recorded %g, replayed %g", ErrValueMismatch, rec.ID, float64(rec.Value), got)
		}
		g.AddGrad(id, float64(rec.Grad))
	}

	return g, nil
}
