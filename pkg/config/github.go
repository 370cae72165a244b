package config

import "os"

// GitHubConfig selects GitHub credentials. Token takes precedence over app
// credentials.
type GitHubConfig struct {
	Token string

	AppID          int64
	InstallationID int64
	// PrivateKey holds the PEM key inline; PrivateKeyPath points at a file.
	PrivateKey     string
	PrivateKeyPath string

	BaseURL     string
	MaxAttempts int
}

func loadGitHubConfig() GitHubConfig {
	return GitHubConfig{
		Token:          getEnv("GITHUB_TOKEN", ""),
		AppID:          getEnvInt64("GITHUB_APP_ID", 0),
		InstallationID: getEnvInt64("GITHUB_INSTALLATION_ID", 0),
		PrivateKey:     getEnv("GITHUB_PRIVATE_KEY", ""),
		PrivateKeyPath: getEnv("GITHUB_PRIVATE_KEY_PATH", ""),
		BaseURL:        getEnv("GITHUB_BASE_URL", ""),
		MaxAttempts:    getEnvInt("GITHUB_MAX_ATTEMPTS", 4),
	}
}

// UsesApp reports whether app credentials are configured.
func (c GitHubConfig) UsesApp() bool {
	return c.Token == "" && c.AppID != 0
}

// PrivateKeyPEM returns the app private key, reading PrivateKeyPath when the
// key is not inline.
func (c GitHubConfig) PrivateKeyPEM() ([]byte, error) {
	if c.PrivateKey != "" {
		return []byte(c.PrivateKey), nil
	}
	if c.PrivateKeyPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.PrivateKeyPath)
	if err != nil {
		return nil, configErrors.NewWithCause(ErrInvalid, err).WithDetail("path", c.PrivateKeyPath)
	}
	return data, nil
}
