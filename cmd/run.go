package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runOnce bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the correlation pipeline",
	Long:  "Runs the fetch/cluster/detect loop on the configured intervals. With --once, runs a single cycle, prints the resulting state as JSON, and exits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := newEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if runOnce {
			env.Engine.RunCycle(ctx)
			if err := env.Engine.Snapshot(ctx); err != nil {
				zap.L().Warn("run: snapshot failed", zap.Error(err))
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(env.Engine.State())
		}

		zap.L().Info("run: starting pipeline loop",
			zap.Duration("feed_interval", cfg.Intervals.FeedInterval()),
			zap.Duration("market_interval", cfg.Intervals.MarketInterval()),
		)
		if err := env.Engine.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	rootCmd.AddCommand(runCmd)
}
