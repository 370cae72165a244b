// Package githubx wraps the GitHub REST API calls the reactors need. Every
// effect is retried with backoff while GitHub answers with a transient
// error (see IsTransient).
package githubx

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
	"github.com/Abraxas-365/reactorbot/pkg/logx"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// DefaultMaxAttempts bounds retries of a single API call.
const DefaultMaxAttempts = 4

// Config selects how the client authenticates. A personal access token wins
// over app credentials when both are set.
type Config struct {
	Token string

	AppID          int64
	InstallationID int64
	PrivateKey     []byte

	// BaseURL points at a GitHub Enterprise API, e.g. https://ghe.example.com/api/v3/
	BaseURL string

	MaxAttempts int
}

// Client performs GitHub effects with retries.
type Client struct {
	gh          *github.Client
	maxAttempts int
	newBackOff  func() backoff.BackOff
	logger      *logx.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMaxAttempts sets how many times a call is attempted.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackOff replaces the delay policy between attempts.
func WithBackOff(factory func() backoff.BackOff) Option {
	return func(c *Client) {
		if factory != nil {
			c.newBackOff = factory
		}
	}
}

// WithLogger sets the logger used to report retries.
func WithLogger(l *logx.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New wraps an existing go-github client.
func New(gh *github.Client, opts ...Option) *Client {
	c := &Client{
		gh:          gh,
		maxAttempts: DefaultMaxAttempts,
		newBackOff:  asyncx.DefaultBackOff,
		logger:      logx.Component("githubx"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient builds an authenticated client from cfg.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	var ts oauth2.TokenSource
	switch {
	case cfg.Token != "":
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	case cfg.AppID != 0 && cfg.InstallationID != 0 && len(cfg.PrivateKey) > 0:
		app, err := NewAppTokenSource(cfg.AppID, cfg.InstallationID, cfg.PrivateKey, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		ts = oauth2.ReuseTokenSource(nil, app)
	default:
		return nil, githubErrors.New(ErrMissingCredentials)
	}

	gh, err := newGitHub(oauth2.NewClient(ctx, ts), cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxAttempts > 0 {
		opts = append([]Option{WithMaxAttempts(cfg.MaxAttempts)}, opts...)
	}
	return New(gh, opts...), nil
}

func newGitHub(httpClient *http.Client, baseURL string) (*github.Client, error) {
	gh := github.NewClient(httpClient)
	if baseURL == "" {
		return gh, nil
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	gh.BaseURL = u
	return gh, nil
}

// GitHub exposes the underlying go-github client.
func (c *Client) GitHub() *github.Client {
	return c.gh
}

// call runs op under the client's retry policy.
func call[T any](ctx context.Context, c *Client, name string, classify asyncx.Classifier, op func(ctx context.Context) (T, error)) (T, error) {
	return asyncx.Retry(ctx, classify, c.maxAttempts,
		func(ctx context.Context, _ int) (T, error) { return op(ctx) },
		asyncx.WithBackOff(c.newBackOff),
		asyncx.WithNotify(func(err error, attempt int, delay time.Duration) {
			c.logger.WithError(err).WithFields(logx.Fields{
				"call":    name,
				"attempt": attempt,
				"delay":   delay.String(),
			}).Warn("github call failed, retrying")
		}),
	)
}
