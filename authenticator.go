package auth

import (
	"context"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Auther orchestrates the login pipeline: identity token verification,
// reconciliation against the users table, and session token issuance.
type Auther struct {
	verifier     IdentityVerifier
	reconciler   *Reconciler
	users        UserStore
	tokenService TokenService
	devLogin     bool
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(verifier IdentityVerifier, reconciler *Reconciler, users UserStore, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenTTL(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Auther{
		verifier:     verifier,
		reconciler:   reconciler,
		users:        users,
		tokenService: tokenService,
		devLogin:     cfg.DevLoginEnabled(),
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService replaces the token service, mainly for tests that need a
// fixed clock.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// LoginWithIdentityToken verifies a Google identity token, reconciles the
// claims into a user, and issues a session token. Verification failures keep
// CategoryAuth so the HTTP layer can answer 401 without echoing provider
// detail; persistence failures stay CategoryInternal.
func (s *Auther) LoginWithIdentityToken(ctx context.Context, identityToken string) (*LoginResult, error) {
	claims, err := s.verifier.Verify(ctx, identityToken)
	if err != nil {
		s.logger.Warn("Login identity token verification failed", "error", err)
		return nil, err
	}

	user, err := s.reconciler.Reconcile(ctx, claims)
	if err != nil {
		s.logger.Error("Login reconciliation failed", "subject", claims.Subject, "error", err)
		return nil, err
	}

	token, err := s.tokenService.Issue(user.ID.String())
	if err != nil {
		s.logger.Error("Login token issuance failed", "user_id", user.ID.String(), "error", err)
		return nil, err
	}

	s.logger.Info("Login succeeded", "user_id", user.ID.String())

	return user.Summary(token), nil
}

// LoginWithEmail issues a token for an existing user looked up by email with
// no identity verification at all. It exists as a development convenience and
// is rejected unless explicitly enabled; never enable it in production.
func (s *Auther) LoginWithEmail(ctx context.Context, email string) (*LoginResult, error) {
	if !s.devLogin {
		return nil, ErrDevLoginDisabled
	}

	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, errors.New("email is required", errors.CategoryBadInput)
	}

	user, err := s.users.GetByIdentifier(ctx, normalized)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, WrapPersistence(err, "failed to look up user by email")
	}

	token, err := s.tokenService.Issue(user.ID.String())
	if err != nil {
		return nil, err
	}

	s.logger.Warn("Development login used", "user_id", user.ID.String())

	return user.Summary(token), nil
}

// SessionFromToken validates a session token and returns its claims.
func (s *Auther) SessionFromToken(raw string) (AuthClaims, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Debug("SessionFromToken validation failed", "error", err)
		return nil, err
	}
	return claims, nil
}

// UserFromClaims loads the user referenced by validated session claims. A
// missing row (deleted between issuance and now) comes back as
// ErrIdentityNotFound so callers can fall back to anonymous.
func (s *Auther) UserFromClaims(ctx context.Context, claims AuthClaims) (*User, error) {
	user, err := s.users.GetByIdentifier(ctx, claims.UserID())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, WrapPersistence(err, "failed to load user for session")
	}
	return user, nil
}

var _ Authenticator = (*Auther)(nil)
