// Package directory provides boardauth.MemberDirectory implementations: an
// in-memory one for development and tests, and a PostgreSQL one backed by a
// pgx pool with goose-managed schema.
package directory
