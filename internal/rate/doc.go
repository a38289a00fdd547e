// Package rate provides Redis-backed fixed-window limits for the credential
// flows: verification-code requests, sign-up code attempts and failed
// sign-ins, all keyed by normalized email.
//
// # Window semantics
//
// INCR, then EXPIRE on the first hit of a window. Counters live under the
// "rl" key namespace.
//
// # What this package must NOT do
//
//   - Fail open. A counter the store cannot read refuses the request.
package rate
