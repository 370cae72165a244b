// Composition root. Owns infrastructure (Redis, GitHub, mail, metrics) and
// wires the reactors onto the dispatcher. This is the only place that knows
// about every module.
package main

import (
	"context"
	"slices"

	"github.com/Abraxas-365/reactorbot/pkg/config"
	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/githubx"
	"github.com/Abraxas-365/reactorbot/pkg/jobx"
	"github.com/Abraxas-365/reactorbot/pkg/jobx/jobxredis"
	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/Abraxas-365/reactorbot/pkg/notifx"
	"github.com/Abraxas-365/reactorbot/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/reactorbot/pkg/notifx/notifxses"
	"github.com/Abraxas-365/reactorbot/pkg/reactor"
	"github.com/Abraxas-365/reactorbot/pkg/reactors"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the wired dispatcher.
type Container struct {
	Config *config.Config
	AWS    aws.Config

	// Infrastructure
	Redis   *redis.Client
	Metrics *prometheus.Registry
	GitHub  *githubx.Client
	Mail    *notifx.Client

	// Engine
	Jobs       *jobx.Client
	Dispatcher *reactor.Dispatcher
}

// NewContainer connects infrastructure and builds the dispatcher.
func NewContainer(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (*Container, error) {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg, AWS: awsCfg}
	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initEngine(); err != nil {
		c.Cleanup()
		return nil, err
	}

	logx.Info("✅ Application container initialized")
	return c, nil
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure(ctx context.Context) error {
	logx.Info("🏗️ Initializing infrastructure...")

	// 1. Redis
	c.Redis = redis.NewClient(&redis.Options{
		Addr:     c.Config.Redis.Address(),
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	})
	if err := c.Redis.Ping(ctx).Err(); err != nil {
		return errx.Wrap(err, "failed to connect to Redis", errx.TypeExternal).
			WithDetail("addr", c.Config.Redis.Address())
	}
	logx.Info("  ✅ Redis connected")

	// 2. Metrics
	c.Metrics = prometheus.NewRegistry()
	c.Metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 3. GitHub
	gh, err := c.newGitHub(ctx)
	if err != nil {
		return err
	}
	c.GitHub = gh
	if c.Config.GitHub.UsesApp() {
		logx.Infof("  ✅ GitHub client configured (app %d)", c.Config.GitHub.AppID)
	} else {
		logx.Info("  ✅ GitHub client configured (token)")
	}

	// 4. Mail
	if err := c.initMail(); err != nil {
		return err
	}

	logx.Info("✅ Infrastructure initialized")
	return nil
}

func (c *Container) newGitHub(ctx context.Context) (*githubx.Client, error) {
	key, err := c.Config.GitHub.PrivateKeyPEM()
	if err != nil {
		return nil, err
	}
	return githubx.NewClient(ctx, githubx.Config{
		Token:          c.Config.GitHub.Token,
		AppID:          c.Config.GitHub.AppID,
		InstallationID: c.Config.GitHub.InstallationID,
		PrivateKey:     key,
		BaseURL:        c.Config.GitHub.BaseURL,
		MaxAttempts:    c.Config.GitHub.MaxAttempts,
	}, githubx.WithLogger(logx.Component("github")))
}

func (c *Container) initMail() error {
	var provider notifx.EmailSender

	switch c.Config.Notifx.Provider {
	case "ses":
		client := ses.NewFromConfig(c.AWS, func(o *ses.Options) {
			o.Region = c.Config.Notifx.AWSRegion
		})
		provider = notifxses.NewSESProvider(client, c.Config.Notifx.From(),
			notifxses.WithConfigurationSet(c.Config.Notifx.ConfigSet))
		logx.Infof("  ✅ SES mail provider configured (region: %s)", c.Config.Notifx.AWSRegion)

	case "console":
		provider = notifxconsole.NewConsoleProvider(logx.Component("mail"))
		logx.Info("  ✅ Console mail provider configured")

	default:
		return errx.New("unknown NOTIFX_PROVIDER (use 'console' or 'ses')", errx.TypeValidation).
			WithDetail("provider", c.Config.Notifx.Provider)
	}

	opts := []notifx.ClientOption{notifx.WithFrom(c.Config.Notifx.From())}
	c.Mail = notifx.NewClient(provider, opts...)
	return nil
}

// ---------------------------------------------------------------------------
// Engine: job queue, reactors, dispatcher
// ---------------------------------------------------------------------------

func (c *Container) initEngine() error {
	logx.Info("📦 Initializing engine...")

	queues := c.Config.Jobx.Queues
	if q := c.Config.Rules.Reminder.Queue; q != "" && !slices.Contains(queues, q) {
		queues = append(slices.Clone(queues), q)
	}
	c.Jobs = jobx.NewClient(
		jobxredis.NewRedisQueue(c.Redis, c.Config.Redis.Prefix),
		jobx.WithQueues(queues...),
		jobx.WithConcurrency(c.Config.Jobx.Concurrency),
		jobx.WithPollInterval(c.Config.Jobx.PollInterval),
		jobx.WithShutdownTimeout(c.Config.Jobx.ShutdownTimeout),
		jobx.WithDequeueTimeout(c.Config.Jobx.DequeueTimeout),
		jobx.WithRetryDelay(c.Config.Jobx.RetryDelay, c.Config.Jobx.MaxRetryDelay),
	)
	reminders := reactors.NewReminderHandler(c.GitHub, c.Mail, c.Config.Rules.Reminder)
	c.Jobs.Register(reactors.ReminderJobType, reminders.Handle)

	rs, err := reactors.Build(c.Config.Engine.Reactors, reactors.Deps{
		GitHub: c.GitHub,
		Jobs:   c.Jobs,
		Rules:  c.Config.Rules,
	})
	if err != nil {
		return err
	}

	observer, err := reactor.NewPrometheusObserver(c.Config.Engine.MetricsNamespace, c.Metrics)
	if err != nil {
		return err
	}

	c.Dispatcher, err = reactor.New(rs,
		reactor.WithLogger(logx.Component("reactor")),
		reactor.WithObserver(observer),
		reactor.WithReactorTimeout(c.Config.Engine.ReactorTimeout),
	)
	if err != nil {
		return err
	}

	logx.Infof("  ✅ Dispatcher ready with reactors %v", c.Dispatcher.Reactors())
	return nil
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// Cleanup releases infrastructure connections.
func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
