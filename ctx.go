package auth

import (
	"context"

	"github.com/google/uuid"
)

var principalCtxKey = &contextKey{"principal"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// Principal is the authenticated identity attached to a single request. It is
// created per request and discarded when the request ends; storing it
// anywhere process-global would leak one caller's identity into another's.
type Principal struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
}

// Outcome is the explicit result of request authentication: either a
// principal was established or the request proceeds anonymously. Fail-open is
// a visible return value here, not a swallowed error.
type Outcome struct {
	principal *Principal
}

// Authenticated returns an Outcome carrying the given principal.
func Authenticated(p *Principal) Outcome {
	return Outcome{principal: p}
}

// Anonymous returns the unauthenticated Outcome.
func Anonymous() Outcome {
	return Outcome{}
}

// IsAuthenticated reports whether a principal was established.
func (o Outcome) IsAuthenticated() bool {
	return o.principal != nil
}

// Principal returns the established principal, or nil for anonymous outcomes.
func (o Outcome) Principal() *Principal {
	return o.principal
}

// WithPrincipal sets the Principal in the given context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext finds the principal from the context.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*Principal)
	if !ok || raw == nil {
		return nil, false
	}
	return raw, true
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// PrincipalFromUser builds a request principal from a persisted user.
func PrincipalFromUser(user *User) *Principal {
	if user == nil {
		return nil
	}
	return &Principal{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}
