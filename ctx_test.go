package auth_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/vinolog/go-auth"
)

func TestPrincipalContextRoundTrip(t *testing.T) {
	principal := &auth.Principal{
		UserID:      uuid.New(),
		Email:       "a@b.com",
		DisplayName: "Ana",
	}

	ctx := auth.WithPrincipal(context.Background(), principal)

	found, ok := auth.PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, principal, found)
}

func TestPrincipalFromContextMissing(t *testing.T) {
	_, ok := auth.PrincipalFromContext(context.Background())
	assert.False(t, ok)

	// A nil principal stored by mistake still reads back as "no principal".
	ctx := auth.WithPrincipal(context.Background(), nil)
	_, ok = auth.PrincipalFromContext(ctx)
	assert.False(t, ok)
}

func TestPrincipalDoesNotLeakAcrossContexts(t *testing.T) {
	// Concurrent requests each carry their own context; one request's
	// principal must never be visible from another's.
	const requests = 16

	var wg sync.WaitGroup
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			principal := &auth.Principal{UserID: uuid.New()}
			ctx := auth.WithPrincipal(context.Background(), principal)

			found, ok := auth.PrincipalFromContext(ctx)
			assert.True(t, ok)
			assert.Equal(t, principal.UserID, found.UserID)

			_, ok = auth.PrincipalFromContext(context.Background())
			assert.False(t, ok)
		}()
	}
	wg.Wait()
}

func TestOutcome(t *testing.T) {
	anon := auth.Anonymous()
	assert.False(t, anon.IsAuthenticated())
	assert.Nil(t, anon.Principal())

	principal := &auth.Principal{UserID: uuid.New()}
	authed := auth.Authenticated(principal)
	assert.True(t, authed.IsAuthenticated())
	assert.Equal(t, principal, authed.Principal())
}

func TestPrincipalFromUser(t *testing.T) {
	assert.Nil(t, auth.PrincipalFromUser(nil))

	user := &auth.User{
		ID:          uuid.New(),
		Email:       "a@b.com",
		DisplayName: "Ana",
	}

	principal := auth.PrincipalFromUser(user)
	require.NotNil(t, principal)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, "a@b.com", principal.Email)
}
