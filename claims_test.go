package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	auth "github.com/vinolog/go-auth"
)

func TestNewSessionClaims(t *testing.T) {
	issuedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	claims := auth.NewSessionClaims("user-1", "vinolog", []string{"vinolog-mobile"}, issuedAt, time.Hour)

	assert.Equal(t, "user-1", claims.Subject())
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, issuedAt, claims.IssuedAt())
	assert.Equal(t, issuedAt.Add(time.Hour), claims.Expires())
}

func TestSessionClaimsZeroTimes(t *testing.T) {
	claims := &auth.SessionClaims{}

	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
	assert.Equal(t, "", claims.UserID())
}

func TestSessionClaimsUserIDFallsBackToSubject(t *testing.T) {
	claims := auth.NewSessionClaims("user-2", "vinolog", nil, time.Now(), time.Hour)
	claims.UID = ""

	assert.Equal(t, "user-2", claims.UserID())
}
