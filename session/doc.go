// Package session manages multi-device refresh-token sessions on Redis:
// issuance, rotation on refresh, single revocation and revoke-all.
//
// # Storage layout
//
// Each refresh token has one record (member id, role, issue time) under its own
// key with the session TTL, and each member has a set of live tokens whose TTL
// is reset to the session TTL on every issuance. Records use a compact
// versioned binary encoding.
//
// # Write ordering
//
// Issuance adds the index entry before writing the record, and rotation
// writes the new session before deleting the old record. The old record's
// delete count decides the winner of concurrent refreshes; losers discard the
// session they just created.
//
// # What this package must NOT do
//
//   - Import boardauth (no upward imports).
//   - Consult the store when validating access tokens.
//   - Log refresh tokens.
package session
