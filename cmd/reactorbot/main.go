// Command reactorbot runs the GitHub automation bot: the webhook server,
// the background job worker and the backfill sweep.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Abraxas-365/reactorbot/pkg/config"
	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/fsx"
	"github.com/Abraxas-365/reactorbot/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/reactorbot/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/reactorbot/pkg/kernel"
	"github.com/Abraxas-365/reactorbot/pkg/logx"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logx.WithError(err).Error("reactorbot failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "reactorbot",
		Short:         "Webhook-driven GitHub automation bot",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if logLevel != "" {
				logx.SetLevel(logx.ParseLevel(logLevel))
			}
			logx.SetContextFields(contextFields)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (trace, debug, info, warn, error)")

	root.AddCommand(newServeCmd(), newWorkerCmd(), newSweepCmd())
	return root
}

// contextFields surfaces the request and delivery ids on every entry
// logged WithContext.
func contextFields(ctx context.Context) logx.Fields {
	fields := logx.Fields{}
	if id, ok := kernel.RequestIDFrom(ctx); ok {
		fields["request_id"] = id
	}
	if id, ok := kernel.DeliveryIDFrom(ctx); ok {
		fields["delivery_id"] = id.String()
	}
	return fields
}

// bootstrap loads configuration and builds the container under a context
// cancelled on SIGINT or SIGTERM. The rules file may live on local disk or
// at an s3://bucket/key location.
func bootstrap(cmd *cobra.Command) (context.Context, *Container, func(), error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		stop()
		return nil, nil, nil, errx.Wrap(err, "unable to load AWS SDK config", errx.TypeInternal)
	}

	files := fsx.NewRouter(fsxlocal.NewLocalFileSystem(""))
	files.Mount("s3", fsxs3.NewS3FileSystem(s3.NewFromConfig(awsCfg)))

	cfg, err := config.Load(ctx, files)
	if err != nil {
		stop()
		return nil, nil, nil, err
	}

	c, err := NewContainer(ctx, cfg, awsCfg)
	if err != nil {
		stop()
		return nil, nil, nil, err
	}

	return ctx, c, func() {
		c.Cleanup()
		stop()
	}, nil
}
