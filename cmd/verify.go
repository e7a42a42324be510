package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/graphbuild/adjlist"
	"github.com/hupe1980/graphbuild/blobstore"
)

// NewVerifyCommand returns the command that checks a produced adjacency list.
func NewVerifyCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <adjfile>",
		Short: "Check that an adjacency list is well formed and symmetric",
		Long: `The verify command reads an adjacency list and checks that vertex IDs ascend
below N, that every neighbor list is strictly ascending and matches its degree,
and that every neighbor relation is listed in both directions.`,
		Args:          exactArgs(1),
		RunE:          func(cmd *cobra.Command, args []string) error { return runVerify(cmd, v, args[0]) },
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return newUsageError(err) })

	addStoreFlags(cmd.Flags())
	cmd.PreRunE = preRunFunc(v)

	return cmd
}

func runVerify(cmd *cobra.Command, v *viper.Viper, adjfile string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	store, name, err := openStore(ctx, v, adjfile)
	if err != nil {
		return err
	}
	r, err := blobstore.OpenReader(ctx, store, name)
	if err != nil {
		return fmt.Errorf("open %s: %w", adjfile, err)
	}
	defer r.Close()

	rep, err := adjlist.Verify(r)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "n = %d\n", rep.N)
	fmt.Fprintf(out, "m = %d\n", rep.M)
	fmt.Fprintf(out, "vertices = %d\n", rep.Vertices)
	fmt.Fprintf(out, "self_loops = %d\n", rep.SelfLoops)
	fmt.Fprintf(out, "symmetric = %t\n", rep.Symmetric)
	return nil
}
