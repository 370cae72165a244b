// Package config loads reactorbot configuration from the environment and
// the optional rules file named by REACTORBOT_RULES_FILE.
package config

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"

	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/fsx"
	"github.com/Abraxas-365/reactorbot/pkg/fsx/fsxlocal"
	"github.com/hashicorp/go-multierror"
)

var configErrors = errx.NewRegistry("CONFIG")

var (
	ErrInvalid   = configErrors.Register("INVALID", errx.TypeValidation, 0, "Invalid configuration")
	ErrRulesFile = configErrors.Register("RULES_FILE", errx.TypeValidation, 0, "Invalid rules file")
)

// Config is the full application configuration.
type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	GitHub GitHubConfig
	Jobx   JobxConfig
	Notifx NotifxConfig
	Engine EngineConfig
	Rules  Rules
}

// Load reads the environment and the rules file, then validates the result.
// The rules file is read through files; nil reads local disk.
func Load(ctx context.Context, files fsx.FileReader) (*Config, error) {
	if files == nil {
		files = fsxlocal.NewLocalFileSystem("")
	}

	cfg := &Config{
		Server: loadServerConfig(),
		Redis:  loadRedisConfig(),
		GitHub: loadGitHubConfig(),
		Jobx:   loadJobxConfig(),
		Notifx: loadNotifxConfig(),
		Engine: loadEngineConfig(),
		Rules:  defaultRules(),
	}

	if location := RulesLocation(); location != "" {
		rules, err := LoadRules(ctx, files, location)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RulesLocation returns REACTORBOT_RULES_FILE: a local path or an
// s3://bucket/key URI.
func RulesLocation() string {
	return getEnv("REACTORBOT_RULES_FILE", "")
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	add := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	if c.GitHub.Token == "" && c.GitHub.AppID == 0 {
		add("GITHUB_TOKEN or GITHUB_APP_ID is required")
	}
	if c.GitHub.UsesApp() {
		if c.GitHub.InstallationID == 0 {
			add("GITHUB_INSTALLATION_ID is required with GITHUB_APP_ID")
		}
		if c.GitHub.PrivateKey == "" && c.GitHub.PrivateKeyPath == "" {
			add("GITHUB_PRIVATE_KEY or GITHUB_PRIVATE_KEY_PATH is required with GITHUB_APP_ID")
		}
	}
	if c.GitHub.MaxAttempts < 1 {
		add("GITHUB_MAX_ATTEMPTS must be at least 1, got %d", c.GitHub.MaxAttempts)
	}
	if c.Engine.SweepConcurrency < 1 {
		add("REACTORBOT_SWEEP_CONCURRENCY must be at least 1, got %d", c.Engine.SweepConcurrency)
	}
	if c.Jobx.Concurrency < 1 {
		add("JOBX_CONCURRENCY must be at least 1, got %d", c.Jobx.Concurrency)
	}
	switch c.Notifx.Provider {
	case "console", "ses":
	default:
		add("NOTIFX_PROVIDER must be console or ses, got %q", c.Notifx.Provider)
	}

	for i, rule := range c.Rules.Labels {
		if rule.Label == "" {
			add("labels[%d]: label is required", i)
		}
		if rule.Title == "" && rule.Body == "" {
			add("labels[%d]: title or body pattern is required", i)
		}
		for _, pattern := range []string{rule.Title, rule.Body} {
			if _, err := regexp.Compile(pattern); err != nil {
				add("labels[%d]: %v", i, err)
			}
		}
	}
	if c.Rules.Reminder.Delay < 0 {
		add("reminder.delay must not be negative")
	}
	for _, r := range c.Rules.Reminder.Recipients {
		if _, err := mail.ParseAddress(r); err != nil {
			add("reminder.recipients: %q: %v", r, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return configErrors.NewWithCause(ErrInvalid, err)
	}
	return nil
}
