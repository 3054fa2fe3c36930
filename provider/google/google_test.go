package google_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/vinolog/go-auth"
	"github.com/vinolog/go-auth/provider/google"
)

const (
	testKID      = "test-signing-key"
	testClientID = "client-id.apps.googleusercontent.com"
	testIssuer   = "https://accounts.google.com"
)

type jwksEnv struct {
	key      *rsa.PrivateKey
	server   *httptest.Server
	verifier *google.Verifier
}

func newJWKSEnv(t *testing.T) *jwksEnv {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": testKID,
				"use": "sig",
				"alg": "RS256",
				"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
			},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	t.Cleanup(server.Close)

	verifier, err := google.New(context.Background(), google.Config{
		ClientID: testClientID,
		JWKSURL:  server.URL,
	})
	require.NoError(t, err)
	t.Cleanup(verifier.Close)

	return &jwksEnv{key: key, server: server, verifier: verifier}
}

func (e *jwksEnv) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID

	signed, err := token.SignedString(e.key)
	require.NoError(t, err)
	return signed
}

func baseClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":     testIssuer,
		"aud":     testClientID,
		"sub":     "g-123",
		"email":   "a@b.com",
		"name":    "Ana",
		"picture": "https://lh3.googleusercontent.com/a/photo",
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}
}

func TestVerifyExtractsNormalizedClaims(t *testing.T) {
	env := newJWKSEnv(t)

	claims := baseClaims()
	claims["email"] = "  Ana@B.Com "

	got, err := env.verifier.Verify(context.Background(), env.sign(t, claims))
	require.NoError(t, err)

	assert.Equal(t, "g-123", got.Subject)
	assert.Equal(t, "ana@b.com", got.Email)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, "https://lh3.googleusercontent.com/a/photo", got.Picture)
}

func TestVerifyAcceptsBareIssuer(t *testing.T) {
	env := newJWKSEnv(t)

	claims := baseClaims()
	claims["iss"] = "accounts.google.com"

	_, err := env.verifier.Verify(context.Background(), env.sign(t, claims))
	require.NoError(t, err)
}

func TestVerifyRejections(t *testing.T) {
	env := newJWKSEnv(t)

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
	}{
		{
			name: "expired token",
			mutate: func(c jwt.MapClaims) {
				c["exp"] = time.Now().Add(-time.Hour).Unix()
			},
		},
		{
			name: "wrong audience",
			mutate: func(c jwt.MapClaims) {
				c["aud"] = "someone-else.apps.googleusercontent.com"
			},
		},
		{
			name: "unknown issuer",
			mutate: func(c jwt.MapClaims) {
				c["iss"] = "https://evil.example.com"
			},
		},
		{
			name: "missing expiry",
			mutate: func(c jwt.MapClaims) {
				delete(c, "exp")
			},
		},
		{
			name: "missing subject",
			mutate: func(c jwt.MapClaims) {
				delete(c, "sub")
			},
		},
		{
			name: "missing email",
			mutate: func(c jwt.MapClaims) {
				delete(c, "email")
			},
		},
		{
			name: "missing display name",
			mutate: func(c jwt.MapClaims) {
				delete(c, "name")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := baseClaims()
			tt.mutate(claims)

			_, err := env.verifier.Verify(context.Background(), env.sign(t, claims))
			require.Error(t, err)
			assert.Contains(t, err.Error(), auth.ErrIdentityTokenInvalid.Message)
		})
	}
}

func TestVerifyRejectsSymmetricSignature(t *testing.T) {
	env := newJWKSEnv(t)

	// HS256 tokens must never pass, regardless of the claim set.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, baseClaims())
	token.Header["kid"] = testKID
	signed, err := token.SignedString([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	_, err = env.verifier.Verify(context.Background(), signed)
	require.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	env := newJWKSEnv(t)

	_, err := env.verifier.Verify(context.Background(), "")
	require.Error(t, err)

	_, err = env.verifier.Verify(context.Background(), "not-a-jwt")
	require.Error(t, err)
}

func TestNewRequiresClientID(t *testing.T) {
	_, err := google.New(context.Background(), google.Config{})
	require.Error(t, err)
}
