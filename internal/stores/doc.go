// Package stores manages short-lived, single-use credentials on a
// [ttlstore.Store]: email verification codes and password-reset tokens.
//
// # Design
//
// Each credential is one versioned binary record under a TTL. Consumption is
// read, compare, delete; the delete's removed-count decides which of two
// racing consumers wins. Expiry is left entirely to the store TTL. Secret
// comparisons are constant-time.
//
// # What this package must NOT do
//
//   - Send email, hash passwords, or touch the member directory.
//   - Log plaintext codes or tokens.
//   - Map a store failure to [ErrCredentialInvalid].
package stores
