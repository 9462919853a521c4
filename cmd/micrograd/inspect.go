package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/micrograd/autodiff"
	"github.com/born-ml/micrograd/internal/serialization"
)

func newInspectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [snapshot.mgrd]",
		Short: "Verify a snapshot, rebuild its graph and dump it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectSnapshot(cmd.OutOrStdout(), args[0], opts)
		},
	}
}

func inspectSnapshot(w io.Writer, path string, opts *rootOptions) error {
	snap, err := serialization.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	g, err := serialization.Restore(snap, autodiff.WithLogger(opts.log.WithName("inspect")))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fmt.Fprintf(w, "snapshot %s (%d nodes, taken %s)\n", snap.ID, g.Len(), snap.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	for _, k := range slices.Sorted(maps.Keys(snap.Metadata)) {
		fmt.Fprintf(w, "  %s: %s\n", k, snap.Metadata[k])
	}

	if snap.Root != nil {
		return g.Dump(w, autodiff.NodeID(*snap.Root), opts.maxDepth)
	}

	// Without a root, list every node with its operands.
	for i, n := range g.Nodes() {
		ids := make([]string, 0, 2)
		for _, op := range n.Operands() {
			ids = append(ids, fmt.Sprint(op))
		}
		if _, err := fmt.Fprintf(w, "%d: %s [%s] %s\n", i, n, strings.Join(ids, " "), n.Rule); err != nil {
			return err
		}
	}
	return nil
}
