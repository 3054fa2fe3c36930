// Package authware authenticates inbound HTTP requests from their bearer
// token. It runs once per request, never rejects by itself, and records its
// result as an explicit auth.Outcome: token problems of any kind resolve to
// an anonymous request, and deciding whether anonymous is acceptable belongs
// to the routing layer downstream.
package authware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vinolog/go-auth"
)

const defaultAuthScheme = "Bearer"
const defaultContextKey = "user"

// Config configures the request authenticator.
type Config struct {
	// Filter skips authentication entirely when it returns true.
	Filter func(*fiber.Ctx) bool

	// Validator validates the session token. Required.
	Validator auth.TokenValidator

	// Users loads the user referenced by a validated token. Required.
	Users auth.UserStore

	// AuthScheme is the expected Authorization scheme. Defaults to "Bearer".
	AuthScheme string

	// ContextKey is the fiber locals key the principal is stored under.
	// Defaults to "user".
	ContextKey string

	Logger auth.Logger
}

// New builds the fiber middleware. Panics when Validator or Users is missing,
// matching how fiber middlewares fail fast on bad wiring.
func New(cfg Config) fiber.Handler {
	if cfg.Validator == nil {
		panic("authware: Config.Validator is required")
	}
	if cfg.Users == nil {
		panic("authware: Config.Users is required")
	}
	if cfg.AuthScheme == "" {
		cfg.AuthScheme = defaultAuthScheme
	}
	if cfg.ContextKey == "" {
		cfg.ContextKey = defaultContextKey
	}
	if cfg.Logger == nil {
		cfg.Logger = silentLogger{}
	}

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		// Re-entrant call: a principal is already attached, do not overwrite.
		if _, ok := auth.PrincipalFromContext(c.UserContext()); ok {
			return c.Next()
		}

		outcome, claims := authenticate(c, cfg)
		if outcome.IsAuthenticated() {
			principal := outcome.Principal()
			c.Locals(cfg.ContextKey, principal)

			ctx := auth.WithClaimsContext(c.UserContext(), claims)
			ctx = auth.WithPrincipal(ctx, principal)
			c.SetUserContext(ctx)
		}

		return c.Next()
	}
}

// authenticate resolves the request to an explicit outcome. It never returns
// an error: every failure path is an anonymous outcome plus a log line that
// keeps the distinction between failure kinds.
func authenticate(c *fiber.Ctx, cfg Config) (auth.Outcome, auth.AuthClaims) {
	raw, ok := extractBearer(c.Get(fiber.HeaderAuthorization), cfg.AuthScheme)
	if !ok {
		// Absent or malformed header is not an error; many routes are public.
		return auth.Anonymous(), nil
	}

	claims, err := cfg.Validator.Validate(raw)
	if err != nil {
		switch {
		case auth.IsTokenExpiredError(err):
			cfg.Logger.Debug("authware rejected expired token", "path", c.Path())
		case auth.IsSignatureError(err):
			cfg.Logger.Warn("authware rejected token with bad signature", "path", c.Path())
		default:
			cfg.Logger.Debug("authware rejected malformed token", "path", c.Path())
		}
		return auth.Anonymous(), nil
	}

	user, err := cfg.Users.GetByIdentifier(c.UserContext(), claims.UserID())
	if err != nil {
		// Deleted between issuance and now, or storage trouble: either way a
		// dangling principal is worse than an anonymous request.
		cfg.Logger.Warn("authware could not load session user", "user_id", claims.UserID(), "error", err)
		return auth.Anonymous(), nil
	}

	return auth.Authenticated(auth.PrincipalFromUser(user)), claims
}

// extractBearer pulls the raw token out of an Authorization header value.
func extractBearer(header, scheme string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], scheme) {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

// RequireAuthenticated rejects requests that reached this point without a
// principal. Apply it after New on routes that are not public.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := auth.PrincipalFromContext(c.UserContext()); !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}
		return c.Next()
	}
}

type silentLogger struct{}

func (silentLogger) Debug(string, ...any) {}
func (silentLogger) Info(string, ...any)  {}
func (silentLogger) Warn(string, ...any)  {}
func (silentLogger) Error(string, ...any) {}
