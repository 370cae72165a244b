package githubx

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/Abraxas-365/reactorbot/pkg/asyncx"
	"github.com/Abraxas-365/reactorbot/pkg/errx"
	"github.com/google/go-github/v53/github"
)

var githubErrors = errx.NewRegistry("GITHUB")

var (
	ErrMissingCredentials = githubErrors.Register("MISSING_CREDENTIALS", errx.TypeValidation, 0, "No GitHub token or app credentials configured")
	ErrInvalidPrivateKey  = githubErrors.Register("INVALID_PRIVATE_KEY", errx.TypeValidation, 0, "GitHub app private key is not a valid RSA PEM key")
	ErrInstallationToken  = githubErrors.Register("INSTALLATION_TOKEN", errx.TypeExternal, 0, "Failed to obtain GitHub installation token")
)

// IsTransient reports whether a GitHub API error is worth retrying: not
// found (eventual consistency after webhooks), server errors, rate limits
// and network timeouts. Cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil || asyncx.IsCancelled(err) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rateLimit *github.RateLimitError
	if errors.As(err, &rateLimit) {
		return true
	}
	var abuse *github.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return true
	}

	if code, ok := StatusCode(err); ok {
		return code == http.StatusNotFound || code >= http.StatusInternalServerError
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// StatusCode extracts the HTTP status of a GitHub API error.
func StatusCode(err error) (int, bool) {
	var resp *github.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil {
		return resp.Response.StatusCode, true
	}
	return 0, false
}

// IsNotFound reports whether err is a GitHub 404.
func IsNotFound(err error) bool {
	code, ok := StatusCode(err)
	return ok && code == http.StatusNotFound
}
