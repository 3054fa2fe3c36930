package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes surfaced to API clients. They identify the failure class without
// leaking validation internals.
const (
	TextCodeIdentityTokenInvalid = "IDENTITY_TOKEN_INVALID"
	TextCodeTokenExpired         = "TOKEN_EXPIRED"
	TextCodeTokenSignature       = "TOKEN_SIGNATURE_INVALID"
	TextCodeTokenMalformed       = "TOKEN_MALFORMED"
	TextCodeIdentityNotFound     = "IDENTITY_NOT_FOUND"
)

// ErrIdentityTokenInvalid covers every way the third party identity token can
// fail verification: bad signature, expiry, wrong audience, or garbage input.
// Callers surface it as a generic 401.
var ErrIdentityTokenInvalid = errors.New("identity token failed verification", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityTokenInvalid)

// ErrTokenExpired is returned when a session token is past its expiry.
var ErrTokenExpired = errors.New("session token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenSignature is returned when a session token parses but its signature
// does not verify against the configured secret.
var ErrTokenSignature = errors.New("session token signature is invalid", errors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature)

// ErrTokenMalformed is returned when a session token cannot be parsed at all.
var ErrTokenMalformed = errors.New("session token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound)

// ErrDevLoginDisabled rejects the legacy email login when the gate is off.
var ErrDevLoginDisabled = errors.New("development login is disabled", errors.CategoryAuth)

// WrapPersistence marks a storage failure as fatal to the request. These are
// surfaced as 500 and logged with full context, never retried at this layer.
func WrapPersistence(err error, msg string) *errors.Error {
	return errors.Wrap(err, errors.CategoryInternal, msg)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsSignatureError will check for signature mismatches
func IsSignatureError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenSignature) {
		return true
	}
	return strings.Contains(err.Error(), "signature is invalid")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
