// Package boardauth manages the short-lived credentials of the task-board
// backend: email verification codes, password-reset tokens and refresh-token
// sessions, all held in a TTL key-value store (Redis).
//
// Build an Engine once at startup and share it:
//
//	engine, err := boardauth.New().
//		WithConfig(cfg).
//		WithRedis(rdb).
//		WithDirectory(members).
//		WithMailer(mailer).
//		Build()
//
// Every Engine method is safe for concurrent use. Refresh tokens rotate on
// every use; of several concurrent refreshes of one token at most one wins.
// Verification codes and reset tokens are single use.
//
// Errors are sentinel values matched with errors.Is. Store failures surface
// as ErrStoreUnavailable or ErrSessionPersistenceFailed and are never
// reported as an invalid credential.
package boardauth
