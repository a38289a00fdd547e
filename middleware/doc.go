// Package middleware exposes HTTP middleware that authenticates requests with
// boardauth access tokens and gates routes by account role.
//
// # Guards
//
//   - [Guard] verifies the access token and stores the Identity in the request context.
//   - [RequireRole] rejects identities whose role is not listed.
//
// The token is read from the Authorization Bearer header, falling back to the
// access_token cookie.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to the validator).
//   - Access Redis. Access tokens are verified statelessly.
package middleware
