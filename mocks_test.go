package auth_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	auth "github.com/vinolog/go-auth"
)

const sqliteCreateUsers = `CREATE TABLE users (
    id TEXT NOT NULL PRIMARY KEY,
    google_subject TEXT,
    email TEXT NOT NULL,
    display_name TEXT NOT NULL,
    avatar_url TEXT,
    created_at TIMESTAMP,
    updated_at TIMESTAMP,
    CONSTRAINT uq_users_google_subject UNIQUE (google_subject),
    CONSTRAINT uq_users_email UNIQUE (email)
);`

func setupTestDB(t *testing.T) (*bun.DB, auth.Users) {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	bunDB := bun.NewDB(db, sqlitedialect.New())

	_, err = bunDB.Exec(sqliteCreateUsers)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = bunDB.Exec("DROP TABLE users;")
		_ = bunDB.Close()
	})

	return bunDB, auth.NewUsersRepository(bunDB)
}

type stubVerifier struct {
	claims *auth.ExternalClaims
	err    error
}

func (s *stubVerifier) Verify(ctx context.Context, identityToken string) (*auth.ExternalClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

type testConfig struct {
	signingKey string
	ttl        time.Duration
	devLogin   bool
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey != "" {
		return c.signingKey
	}
	return string(testSigningKey)
}

func (c testConfig) GetTokenTTL() time.Duration {
	if c.ttl > 0 {
		return c.ttl
	}
	return time.Hour
}

func (c testConfig) GetIssuer() string         { return "vinolog" }
func (c testConfig) GetAudience() []string     { return []string{"vinolog-mobile"} }
func (c testConfig) GetGoogleClientID() string { return "client-id.apps.googleusercontent.com" }
func (c testConfig) GetAuthScheme() string     { return "Bearer" }
func (c testConfig) GetContextKey() string     { return "user" }
func (c testConfig) DevLoginEnabled() bool     { return c.devLogin }

var _ auth.Config = testConfig{}

func googleClaims() *auth.ExternalClaims {
	return &auth.ExternalClaims{
		Subject: "g-123",
		Email:   "a@b.com",
		Name:    "Ana",
	}
}
