package serialization

import (
	"fmt"

	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

// Validation limits for security and resource protection.
const (
	MaxPayloadSize = 256 * 1024 * 1024 // 256MB - maximum JSON payload
	MaxNodeCount   = 10_000_000        // Maximum number of nodes in a snapshot
)

// ValidateSnapshot checks the structure of a snapshot before it is replayed:
// IDs must equal positions, ops must be known with matching arity, and every
// operand must refer to an earlier node. The last rule is what keeps a
// restored graph acyclic.
func ValidateSnapshot(snap *GraphSnapshot) error {
	if len(snap.Nodes) > MaxNodeCount {
		return fmt.Errorf("%w: got %d, max %d", ErrTooManyNodes, len(snap.Nodes), MaxNodeCount)
	}

	for i, rec := range snap.Nodes {
		if rec.ID != int32(i) {
			return &ValidationError{
				Type:    "id_order",
				Node:    rec.ID,
				Details: fmt.Sprintf("found at position %d", i),
			}
		}

		kind, err := ops.ParseKind(rec.Op)
		if err != nil {
			return &ValidationError{Type: "unknown_op", Node: rec.ID, Details: err.Error()}
		}
		if err := (ops.Rule{Kind: kind}).Check(len(rec.Operands)); err != nil {
			return &ValidationError{Type: "arity", Node: rec.ID, Details: err.Error()}
		}

		for _, op := range rec.Operands {
			if op < 0 || op >= rec.ID {
				return &ValidationError{
					Type:    "forward_reference",
					Node:    rec.ID,
					Details: fmt.Sprintf("operand %d is not an earlier node", op),
				}
			}
		}
	}

	if snap.Root != nil {
		if r := *snap.Root; r < 0 || int(r) >= len(snap.Nodes) {
			return &ValidationError{
				Type:    "root",
				Node:    -1,
				Details: fmt.Sprintf("root %d out of range [0,%d)", r, len(snap.Nodes)),
			}
		}
	}

	return nil
}
