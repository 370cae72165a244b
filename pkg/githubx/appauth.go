package githubx

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// appJWTTTL is below GitHub's ten minute ceiling for app JWTs.
const appJWTTTL = 9 * time.Minute

// AppTokenSource mints installation access tokens for a GitHub App. Wrap it
// in oauth2.ReuseTokenSource so tokens are reused until they expire.
type AppTokenSource struct {
	appID          int64
	installationID int64
	key            *rsa.PrivateKey
	baseURL        string
	transport      http.RoundTripper
	now            func() time.Time
}

var _ oauth2.TokenSource = (*AppTokenSource)(nil)

// NewAppTokenSource parses pemKey and returns a token source for the
// installation. baseURL may be empty for github.com.
func NewAppTokenSource(appID, installationID int64, pemKey []byte, baseURL string) (*AppTokenSource, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(pemKey)
	if err != nil {
		return nil, githubErrors.NewWithCause(ErrInvalidPrivateKey, err)
	}
	return &AppTokenSource{
		appID:          appID,
		installationID: installationID,
		key:            key,
		baseURL:        baseURL,
		transport:      http.DefaultTransport,
		now:            time.Now,
	}, nil
}

// AppJWT signs a short-lived RS256 token identifying the app itself.
func (s *AppTokenSource) AppJWT() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer: strconv.FormatInt(s.appID, 10),
		// backdated to tolerate clock drift
		IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
		ExpiresAt: jwt.NewNumericDate(now.Add(appJWTTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
}

// Token exchanges a fresh app JWT for an installation token.
func (s *AppTokenSource) Token() (*oauth2.Token, error) {
	signed, err := s.AppJWT()
	if err != nil {
		return nil, githubErrors.NewWithCause(ErrInstallationToken, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: signed, TokenType: "Bearer"}),
			Base:   s.transport,
		},
	}
	gh, err := newGitHub(httpClient, s.baseURL)
	if err != nil {
		return nil, err
	}

	tok, _, err := gh.Apps.CreateInstallationToken(ctx, s.installationID, nil)
	if err != nil {
		return nil, githubErrors.NewWithCause(ErrInstallationToken, err).
			WithDetail("installation_id", s.installationID)
	}
	return &oauth2.Token{
		AccessToken: tok.GetToken(),
		TokenType:   "Bearer",
		Expiry:      tok.GetExpiresAt().Time,
	}, nil
}
