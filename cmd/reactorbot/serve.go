package main

import (
	"context"
	"errors"

	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/Abraxas-365/reactorbot/pkg/webhook"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var withWorker bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve GitHub webhooks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, c, cleanup, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			app := webhook.NewApp(webhook.ServerConfig{
				AppName:      "reactorbot",
				Version:      version,
				BodyLimit:    c.Config.Server.BodyLimit,
				ReadTimeout:  c.Config.Server.ReadTimeout,
				WriteTimeout: c.Config.Server.WriteTimeout,
				Gatherer:     c.Metrics,
			}, webhook.NewHandler(c.Dispatcher, logx.Component("webhook")))

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logx.Infof("🚀 Server listening on port %s", c.Config.Server.Port)
				return app.Listen(":" + c.Config.Server.Port)
			})
			g.Go(func() error {
				<-ctx.Done()
				logx.Info("🛑 Shutting down gracefully...")
				if err := app.ShutdownWithTimeout(c.Config.Server.ShutdownTimeout); err != nil {
					logx.Errorf("Server forced to shutdown: %v", err)
				}
				return nil
			})
			if withWorker {
				g.Go(func() error {
					return c.Jobs.Start(ctx)
				})
			}

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logx.Info("✅ Server exited successfully")
			return nil
		},
	}
	cmd.Flags().BoolVar(&withWorker, "with-worker", false, "also run the job worker in this process")
	return cmd
}
