// Package flows implements the credential use-cases behind every Engine
// method as plain functions over explicit dependency structs.
//
// Each Run* function returns a result carrying a failure kind rather than a
// root-package error. The root package maps kinds to its public errors,
// metrics and log events.
//
// # What this package must NOT do
//
//   - Import boardauth.
//   - Log or return plaintext codes, tokens or passwords.
package flows
