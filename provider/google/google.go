// Package google verifies Google-issued ID tokens against Google's published
// signing keys and extracts normalized identity claims.
package google

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/vinolog/go-auth"
)

const defaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

func defaultIssuers() []string {
	return []string{"accounts.google.com", "https://accounts.google.com"}
}

// Config holds Google ID token verification options.
type Config struct {
	// ClientID is the OAuth client id this service expects as the token's
	// audience. Required.
	ClientID string

	// JWKSURL overrides Google's certificate endpoint, mainly for tests.
	JWKSURL string

	// Issuers overrides the accepted "iss" values.
	Issuers []string

	HTTPClient *http.Client

	Logger auth.Logger
}

// Verifier implements auth.IdentityVerifier for Google ID tokens. Key
// resolution goes through a background-refreshed JWKS so key rotation needs
// no restart; refresh failures only surface when an unknown kid shows up.
type Verifier struct {
	clientID string
	issuers  []string
	jwks     *keyfunc.JWKS
	logger   auth.Logger
}

// New fetches Google's JWKS and returns a ready Verifier. Call Close when
// done to stop the background refresh.
func New(ctx context.Context, cfg Config) (*Verifier, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("google verifier requires a client id", errors.CategoryBadInput)
	}

	jwksURL := cfg.JWKSURL
	if jwksURL == "" {
		jwksURL = defaultJWKSURL
	}

	issuers := cfg.Issuers
	if len(issuers) == 0 {
		issuers = defaultIssuers()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		Ctx:    ctx,
		Client: cfg.HTTPClient,
		RefreshErrorHandler: func(err error) {
			logger.Warn("google JWKS refresh failed", "error", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to fetch google JWKS")
	}

	return &Verifier{
		clientID: cfg.ClientID,
		issuers:  issuers,
		jwks:     jwks,
		logger:   logger,
	}, nil
}

// Close stops the JWKS background refresh.
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

type idTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Picture       string `json:"picture,omitempty"`
}

// Verify checks the token's signature, expiry, audience, and issuer, then
// extracts normalized claims. Every failure collapses into the same
// invalid-identity-token error so callers leak nothing about the cause.
func (v *Verifier) Verify(ctx context.Context, identityToken string) (*auth.ExternalClaims, error) {
	if strings.TrimSpace(identityToken) == "" {
		return nil, v.invalid(nil, "empty token")
	}

	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(identityToken, claims, v.jwks.Keyfunc,
		jwt.WithAudience(v.clientID),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, v.invalid(err, "parse")
	}
	if !token.Valid {
		return nil, v.invalid(nil, "invalid token")
	}

	if !v.issuerAllowed(claims.Issuer) {
		return nil, v.invalid(nil, "issuer mismatch")
	}

	return v.normalize(claims)
}

func (v *Verifier) issuerAllowed(issuer string) bool {
	for _, allowed := range v.issuers {
		if issuer == allowed {
			return true
		}
	}
	return false
}

// normalize trims and lowercases the email and requires subject, email, and
// display name. A missing name is an error rather than a silent default: the
// reconciler needs it.
func (v *Verifier) normalize(claims *idTokenClaims) (*auth.ExternalClaims, error) {
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return nil, v.invalid(nil, "missing subject")
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, v.invalid(nil, "missing email")
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		return nil, v.invalid(nil, "missing display name")
	}

	return &auth.ExternalClaims{
		Subject: subject,
		Email:   email,
		Name:    name,
		Picture: strings.TrimSpace(claims.Picture),
	}, nil
}

func (v *Verifier) invalid(cause error, reason string) error {
	v.logger.Debug("google identity token rejected", "reason", reason, "error", cause)

	if cause == nil {
		return errors.New(auth.ErrIdentityTokenInvalid.Message, errors.CategoryAuth).
			WithTextCode(auth.TextCodeIdentityTokenInvalid)
	}

	return errors.Wrap(cause, errors.CategoryAuth, auth.ErrIdentityTokenInvalid.Message).
		WithTextCode(auth.TextCodeIdentityTokenInvalid)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

var _ auth.IdentityVerifier = (*Verifier)(nil)
