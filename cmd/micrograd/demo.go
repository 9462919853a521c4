package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/born-ml/micrograd/autodiff"
)

func newDemoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Differentiate x*y, x+y, x^2 and relu(x) for x=3, y=2",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDemo(cmd.OutOrStdout(), opts)
		},
	}
}

type demoCase struct {
	name  string
	build func(g *autodiff.Graph, x, y autodiff.NodeID) autodiff.NodeID
}

var demoCases = []demoCase{
	{"k = x * y", func(g *autodiff.Graph, x, y autodiff.NodeID) autodiff.NodeID { return g.Mul(x, y) }},
	{"z = x + y", func(g *autodiff.Graph, x, y autodiff.NodeID) autodiff.NodeID { return g.Add(x, y) }},
	{"m = x^2", func(g *autodiff.Graph, x, _ autodiff.NodeID) autodiff.NodeID { return g.Pow(x, 2) }},
	{"n = relu(x)", func(g *autodiff.Graph, x, _ autodiff.NodeID) autodiff.NodeID { return g.ReLU(x) }},
}

// runDemo builds each case on its own graph, so gradients never carry over
// from one case to the next.
func runDemo(w io.Writer, opts *rootOptions) error {
	for _, c := range demoCases {
		g := autodiff.NewGraph(autodiff.WithLogger(opts.log.WithName("demo")))
		x, y := g.Leaf(3), g.Leaf(2)
		root := c.build(g, x, y)
		g.Backward(root)

		if _, err := fmt.Fprintf(w, "# %s\n", c.name); err != nil {
			return err
		}
		if err := g.Dump(w, root, opts.maxDepth); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
