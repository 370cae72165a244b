package main

import (
	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/spf13/cobra"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Process scheduled jobs such as review reminders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, c, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			logx.Info("🔄 Starting job worker...")
			if err := c.Jobs.Start(ctx); err != nil {
				return err
			}
			logx.Info("✅ Worker stopped")
			return nil
		},
	}
}
