package main

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose  bool
	maxDepth int
	log      logr.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{log: logr.Discard()}

	rootCmd := &cobra.Command{
		Use:   "micrograd",
		Short: "Scalar reverse-mode automatic differentiation",
		Long: `micrograd builds computation graphs over scalar values and backpropagates
gradients through them. Graphs come from the built-in demo or from YAML
programs; results can be saved as checksummed snapshots.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			opts.log = newLogger(cmd.ErrOrStderr(), opts.verbose)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log backward passes")
	rootCmd.PersistentFlags().IntVar(&opts.maxDepth, "max-depth", -1, "truncate dumps this many levels below the root (-1: unbounded)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "micrograd %s\n", version)
		},
	}

	rootCmd.AddCommand(
		versionCmd,
		newDemoCmd(opts),
		newRunCmd(opts),
		newInspectCmd(opts),
	)
	return rootCmd
}
