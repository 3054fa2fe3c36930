package auth_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"

	auth "github.com/vinolog/go-auth"
)

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "structured expired error",
			err:      auth.ErrTokenExpired,
			expected: true,
		},
		{
			name:     "legacy expired error (string match)",
			err:      errors.New("some wrapper: token is expired"),
			expected: true,
		},
		{
			name:     "different error",
			err:      auth.ErrIdentityNotFound,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.IsTokenExpiredError(tt.err))
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "structured malformed error",
			err:      auth.ErrTokenMalformed,
			expected: true,
		},
		{
			name:     "legacy malformed error (string match)",
			err:      errors.New("token is malformed"),
			expected: true,
		},
		{
			name:     "legacy missing JWT error (string match)",
			err:      errors.New("missing or malformed JWT"),
			expected: true,
		},
		{
			name:     "different error",
			err:      errors.New("invalid token"),
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.IsMalformedError(tt.err))
		})
	}
}

func TestStructuredErrorProperties(t *testing.T) {
	t.Run("ErrIdentityTokenInvalid", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, auth.ErrIdentityTokenInvalid.Category)
		assert.Equal(t, auth.TextCodeIdentityTokenInvalid, auth.ErrIdentityTokenInvalid.TextCode)
	})

	t.Run("ErrTokenSignature", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, auth.ErrTokenSignature.Category)
		assert.Equal(t, auth.TextCodeTokenSignature, auth.ErrTokenSignature.TextCode)
	})

	t.Run("ErrIdentityNotFound", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryNotFound, auth.ErrIdentityNotFound.Category)
		assert.Equal(t, "identity not found", auth.ErrIdentityNotFound.Message)
	})
}

func TestWrapPersistence(t *testing.T) {
	wrapped := auth.WrapPersistence(errors.New("disk on fire"), "failed to write user")
	assert.Equal(t, goerrors.CategoryInternal, wrapped.Category)
	assert.Contains(t, wrapped.Error(), "failed to write user")
}
