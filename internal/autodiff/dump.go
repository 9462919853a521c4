package autodiff

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a human-readable tree of id and its operands:
//
//	Value: data=6, grad=1, op=*
//	Children:
//	  Value: data=3, grad=2, op=
//	  Value: data=2, grad=3, op=
//
// An operation node reached a second time through a shared operand prints its
// own line followed by a back-reference instead of its subtree again, so the
// output stays linear in the graph size:
//
//	  Value: data=4, grad=0, op=*
//	  (node 1, see above)
//
// Leaves are always printed in full. The tree is cut at maxDepth levels below
// id; maxDepth < 0 means unbounded.
func (g *Graph) Dump(w io.Writer, id NodeID, maxDepth int) error {
	g.check(id)
	d := dumper{g: g, w: w, maxDepth: maxDepth, seen: make([]bool, len(g.nodes))}
	d.node(id, 0)
	return d.err
}

// Sprint returns Dump's output as a string.
func (g *Graph) Sprint(id NodeID, maxDepth int) string {
	var sb strings.Builder
	_ = g.Dump(&sb, id, maxDepth) // strings.Builder never fails
	return sb.String()
}

type dumper struct {
	g        *Graph
	w        io.Writer
	maxDepth int
	seen     []bool
	err      error
}

func (d *dumper) printf(depth int, format string, args ...any) {
	if d.err != nil {
		return
	}
	_, d.err = fmt.Fprintf(d.w, "%s"+format+"\n", append([]any{strings.Repeat("  ", depth)}, args...)...)
}

func (d *dumper) node(id NodeID, depth int) {
	n := d.g.nodes[id]
	d.printf(depth, "%s", n)
	if n.arity == 0 {
		return
	}
	if d.seen[id] {
		d.printf(depth, "(node %d, see above)", id)
		return
	}
	d.seen[id] = true
	if d.maxDepth >= 0 && depth >= d.maxDepth {
		d.printf(depth, "...")
		return
	}
	d.printf(depth, "Children:")
	for _, child := range n.operands[:n.arity] {
		d.node(child, depth+1)
	}
}
