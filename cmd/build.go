package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/graphbuild"
)

// NewBuildCommand returns the command that runs the pipeline on one dump.
func NewBuildCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <base>",
		Short: "Build '<base>_adj' from the dump stored as '<base>'",
		Long: `The build command reads the dump named base and writes its adjacency list to
'<base>_adj'. Intermediate artifacts are named after base as well and are
removed when the run ends unless --keep-intermediates is set.`,
		Example: `  graphbuild build /data/btc --partitions 16 --workers 4 --compression zstd
  graphbuild build btc --store-engine s3 --store-bucket graphs --store-prefix dumps`,
		Args:          exactArgs(1),
		RunE:          func(cmd *cobra.Command, args []string) error { return runBuild(cmd, v, args[0]) },
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return newUsageError(err) })

	flags := cmd.Flags()
	addStoreFlags(flags)
	addBuildFlags(flags)

	cmd.PreRunE = preRunFunc(v)

	return cmd
}

func runBuild(cmd *cobra.Command, v *viper.Viper, base string) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout := v.GetDuration(timeoutFlag); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	logger, err := newLogger(v, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	store, name, err := openStore(ctx, v, base)
	if err != nil {
		return err
	}

	opts := append(buildOptions(v), graphbuild.WithLogger(logger))
	if textfile := v.GetString(metricsTextfileConf); textfile != "" {
		collector := graphbuild.NewPrometheusCollector("graphbuild")
		opts = append(opts, graphbuild.WithMetricsCollector(collector))
		defer func() {
			// Failed runs are flushed too, so stage errors reach the collector.
			if werr := collector.WriteToTextfile(textfile); werr != nil && err == nil {
				err = fmt.Errorf("write metrics: %w", werr)
			}
		}()
	}

	res, err := graphbuild.Build(ctx, store, name, opts...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "n = %d\n", res.N)
	fmt.Fprintf(out, "m = %d\n", res.M)
	return nil
}
