package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// EnvConfig loads auth options from the environment. The signing secret and
// Google client id have no defaults on purpose: shipped configuration must
// provide them.
type EnvConfig struct {
	SigningKey     string        `env:"AUTH_SIGNING_SECRET"`
	TokenTTL       time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"1h"`
	Issuer         string        `env:"AUTH_ISSUER" envDefault:"vinolog"`
	Audience       []string      `env:"AUTH_AUDIENCE" envSeparator:","`
	GoogleClientID string        `env:"AUTH_GOOGLE_CLIENT_ID"`
	AuthScheme     string        `env:"AUTH_SCHEME" envDefault:"Bearer"`
	ContextKey     string        `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	DevLogin       bool          `env:"AUTH_DEV_LOGIN" envDefault:"false"`
}

// NewConfigFromEnv parses and validates configuration from the environment.
func NewConfigFromEnv() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse auth environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid auth configuration")
	}

	return cfg, nil
}

// Validate enforces the configuration invariants: a signing secret of at
// least 256 bits, a positive TTL, and a Google client id.
func (c *EnvConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SigningKey, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.GoogleClientID, validation.Required),
		validation.Field(&c.TokenTTL, validation.Required, validation.By(positiveDuration)),
		validation.Field(&c.AuthScheme, validation.Required),
		validation.Field(&c.ContextKey, validation.Required),
	)
}

func positiveDuration(value any) error {
	d, ok := value.(time.Duration)
	if !ok || d <= 0 {
		return errors.New("must be a positive duration", errors.CategoryBadInput)
	}
	return nil
}

func (c *EnvConfig) GetSigningKey() string      { return c.SigningKey }
func (c *EnvConfig) GetTokenTTL() time.Duration { return c.TokenTTL }
func (c *EnvConfig) GetIssuer() string          { return c.Issuer }
func (c *EnvConfig) GetAudience() []string      { return c.Audience }
func (c *EnvConfig) GetGoogleClientID() string  { return c.GoogleClientID }
func (c *EnvConfig) GetAuthScheme() string      { return c.AuthScheme }
func (c *EnvConfig) GetContextKey() string      { return c.ContextKey }
func (c *EnvConfig) DevLoginEnabled() bool      { return c.DevLogin }

var _ Config = (*EnvConfig)(nil)
