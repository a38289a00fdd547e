// Package jwt issues and verifies stateless access tokens carrying a member id
// (sub) and role. Verification is signature and expiry only; revocation applies
// to refresh tokens, never to access tokens.
package jwt
