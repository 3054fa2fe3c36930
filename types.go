package auth

import (
	"context"
	"fmt"
	"time"
)

// Logger is the minimal logging surface the package needs. Messages take a
// format string followed by alternating key/value pairs.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// ExternalClaims is the normalized claim set extracted from a verified
// identity token. Values are never persisted directly; the reconciler maps
// them onto a User row.
type ExternalClaims struct {
	// Subject is the provider-stable user id, e.g. Google's "sub" claim.
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier verifies a third party identity token and extracts its
// claims. Implementations live under provider/.
type IdentityVerifier interface {
	Verify(ctx context.Context, identityToken string) (*ExternalClaims, error)
}

// TokenService issues and validates session tokens.
type TokenService interface {
	Issue(userID string) (string, error)
	SignClaims(claims *SessionClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// UserStore is the read-only lookup the request path relies on. The login
// path goes through Users, which extends this.
type UserStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
}

// Authenticator turns identity tokens into session tokens and session tokens
// back into users.
type Authenticator interface {
	LoginWithIdentityToken(ctx context.Context, identityToken string) (*LoginResult, error)
	LoginWithEmail(ctx context.Context, email string) (*LoginResult, error)
	SessionFromToken(token string) (AuthClaims, error)
	UserFromClaims(ctx context.Context, claims AuthClaims) (*User, error)
}

// LoginResult is what a successful login hands back to the HTTP layer.
type LoginResult struct {
	Token       string `json:"token"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetGoogleClientID() string
	GetAuthScheme() string
	GetContextKey() string
	DevLoginEnabled() bool
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
