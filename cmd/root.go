// Package cmd contains all the commands included in the graphbuild binary.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand returns the graphbuild command tree. Running the root
// command with a single base argument is shorthand for "graphbuild build".
func NewRootCommand() *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:   "graphbuild <base>",
		Short: "Build the adjacency list of a graph too large for memory",
		Long: `graphbuild converts a line-oriented N-Quads dump into an adjacency list.

Labels are mapped to dense vertex IDs with a partitioned dictionary, edges are
rewritten to IDs in one pass per partition, and the adjacency list is merged
bucket by bucket, so peak memory is bounded by the largest partition or bucket
instead of the whole graph.

Flags can also be set through GRAPHBUILD_* environment variables or a
graphbuild.yaml file in /etc/graphbuild, $HOME/.graphbuild or the working
directory.`,
		Args:          exactArgs(1),
		RunE:          func(cmd *cobra.Command, args []string) error { return runBuild(cmd, v, args[0]) },
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return newUsageError(err) })

	cmd.PersistentFlags().String(configFlag, "", "path to a config file (default graphbuild.yaml in the standard locations)")
	addStoreFlags(cmd.Flags())
	addBuildFlags(cmd.Flags())
	cmd.PreRunE = preRunFunc(v)

	cmd.AddCommand(NewBuildCommand(v), NewVerifyCommand(v))

	return cmd
}

// preRunFunc binds flags to v and loads the config file.
func preRunFunc(v *viper.Viper) func(*cobra.Command, []string) error {
	bind := bindFlagsFunc(v)
	return func(cmd *cobra.Command, args []string) error {
		bind(cmd, args)
		file, err := cmd.Flags().GetString(configFlag)
		if err != nil {
			return newUsageError(err)
		}
		return readConfig(v, file)
	}
}

// exactArgs is cobra.ExactArgs reporting a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return newUsageError(cobra.ExactArgs(n)(cmd, args))
	}
}
