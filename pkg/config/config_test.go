package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/config"
	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/Abraxas-365/reactorbot/pkg/fsx"
	"github.com/Abraxas-365/reactorbot/pkg/fsx/fsxlocal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rulesYAML = `
labels:
  - label: bug
    title: '(?i)\bfix'
  - label: docs
    title: '(?i)^docs'
status:
  required_labels: [ready-for-review]
reminder:
  delay: 48h
  recipients: [team@example.com]
`

func TestLoad_FromEnvAndRulesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(rulesYAML), 0o600))

	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("REACTORBOT_RULES_FILE", path)
	t.Setenv("REACTORBOT_REACTORS", "labeler, status")
	t.Setenv("JOBX_POLL_INTERVAL", "250ms")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := config.Load(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"labeler", "status"}, cfg.Engine.Reactors)
	assert.Equal(t, 250*time.Millisecond, cfg.Jobx.PollInterval)
	assert.Equal(t, "localhost:6380", cfg.Redis.Address())

	require.Len(t, cfg.Rules.Labels, 2)
	assert.Equal(t, "bug", cfg.Rules.Labels[0].Label)
	assert.Equal(t, "reactorbot/labels", cfg.Rules.Status.Context, "defaults survive partial rules")
	assert.Equal(t, []string{"ready-for-review"}, cfg.Rules.Status.RequiredLabels)
	assert.Equal(t, 48*time.Hour, cfg.Rules.Reminder.Delay)
	assert.Equal(t, "default", cfg.Rules.Reminder.Queue)
}

type memFiles map[string]string

func (m memFiles) ReadFile(_ context.Context, path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fsx.NotFound(path)
	}
	return []byte(data), nil
}

func (m memFiles) Exists(_ context.Context, path string) (bool, error) {
	_, ok := m[path]
	return ok, nil
}

func TestLoad_RulesFromMountedScheme(t *testing.T) {
	files := fsx.NewRouter(fsxlocal.NewLocalFileSystem(""))
	files.Mount("s3", memFiles{"config-bucket/rules.yaml": rulesYAML})

	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("REACTORBOT_RULES_FILE", "s3://config-bucket/rules.yaml")

	cfg, err := config.Load(context.Background(), files)
	require.NoError(t, err)
	assert.Len(t, cfg.Rules.Labels, 2)
}

func TestLoad_MissingRulesFile(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("REACTORBOT_RULES_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, config.ErrRulesFile))
	assert.True(t, fsx.IsNotFound(err))
}

func TestLoad_RequiresCredentials(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GITHUB_APP_ID", "")

	_, err := config.Load(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errx.HasCode(err, config.ErrInvalid))
	assert.Contains(t, err.Error(), "GITHUB_TOKEN or GITHUB_APP_ID is required")
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &config.Config{
		GitHub: config.GitHubConfig{AppID: 1, MaxAttempts: 0},
		Engine: config.EngineConfig{SweepConcurrency: 1},
		Jobx:   config.JobxConfig{Concurrency: 1},
		Notifx: config.NotifxConfig{Provider: "pigeon"},
		Rules: config.Rules{
			Labels:   []config.LabelRule{{Label: "bug", Title: "("}},
			Reminder: config.ReminderRule{Recipients: []string{"not an address"}},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"GITHUB_INSTALLATION_ID",
		"GITHUB_PRIVATE_KEY",
		"GITHUB_MAX_ATTEMPTS",
		"NOTIFX_PROVIDER",
		"labels[0]",
		"reminder.recipients",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestParseRules_RejectsUnknownKeys(t *testing.T) {
	_, err := config.ParseRules([]byte("labelz: []\n"))
	assert.True(t, errx.HasCode(err, config.ErrRulesFile))
}

func TestParseRules_EmptyFileKeepsDefaults(t *testing.T) {
	rules, err := config.ParseRules(nil)
	require.NoError(t, err)
	assert.Equal(t, "reactorbot/labels", rules.Status.Context)
}

func TestGitHubConfig_PrivateKeyPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, []byte("pem-data"), 0o600))

	key, err := config.GitHubConfig{PrivateKeyPath: path}.PrivateKeyPEM()
	require.NoError(t, err)
	assert.Equal(t, "pem-data", string(key))

	key, err = config.GitHubConfig{PrivateKey: "inline", PrivateKeyPath: path}.PrivateKeyPEM()
	require.NoError(t, err)
	assert.Equal(t, "inline", string(key))
}
