package program

import (
	"fmt"

	"github.com/born-ml/micrograd/internal/autodiff"
	"github.com/born-ml/micrograd/internal/autodiff/ops"
)

// Bindings maps program names to the nodes built for them.
type Bindings map[string]autodiff.NodeID

// Build evaluates p into g and returns the node for every name along with
// the root. p must have passed Validate.
func Build(p *Program, g *autodiff.Graph) (Bindings, autodiff.NodeID, error) {
	b := make(Bindings, len(p.Nodes))
	args := make([]autodiff.NodeID, 0, ops.MaxOperands)

	for _, st := range p.Nodes {
		rule := st.Rule()
		if rule.Kind == ops.None {
			if st.Value == nil {
				return nil, 0, fmt.Errorf("%w: leaf %s has no value", ErrInvalidProgram, st.Name)
			}
			b[st.Name] = g.Leaf(*st.Value)
			continue
		}

		args = args[:0]
		for _, name := range st.Args {
			id, ok := b[name]
			if !ok {
				return nil, 0, fmt.Errorf("%s: %w: %s", st.Name, ErrUnknownName, name)
			}
			args = append(args, id)
		}

		id, err := g.Apply(rule, args...)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", st.Name, err)
		}
		b[st.Name] = id
	}

	root, ok := b[p.Root]
	if !ok {
		return nil, 0, fmt.Errorf("root: %w: %s", ErrUnknownName, p.Root)
	}
	return b, root, nil
}
