// Package auth implements Google sign-in for the vinolog API: it verifies
// Google-issued identity tokens, reconciles them against persisted users, and
// issues the short-lived bearer tokens that gate every other endpoint.
//
// Login path:
//   - provider/google.Verifier checks the identity token's signature against
//     Google's published keys, its audience, and its expiry, then extracts a
//     normalized ExternalClaims value.
//   - Reconciler maps those claims onto a users row, creating one on first
//     login and updating only the profile fields that actually drifted.
//   - TokenService signs a session token whose subject is the internal user
//     id. Tokens are self-contained; nothing is stored server side.
//
// Request path:
//   - middleware/authware extracts the bearer token, validates it, loads the
//     user, and attaches a Principal to the request context. Token problems
//     never abort the request here: the middleware resolves to an anonymous
//     outcome and leaves authorization decisions to downstream handlers.
//
// There is no refresh or revocation flow. A leaked token stays valid until
// its natural expiry, so keep the configured TTL short.
package auth
