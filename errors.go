package boardauth

import "errors"

var (
	// ErrInvalidOrExpiredCredential covers verification codes and reset
	// tokens that are wrong, expired, already used or never issued.
	ErrInvalidOrExpiredCredential = errors.New("invalid or expired credential")
	// ErrInvalidRefreshToken covers unknown, expired, revoked and already
	// rotated refresh tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrStoreUnavailable means the credential store failed or timed out.
	ErrStoreUnavailable = errors.New("credential store unavailable")
	// ErrSessionPersistenceFailed means a session could not be written or a
	// rotation could not retire the previous token.
	ErrSessionPersistenceFailed = errors.New("session persistence failed")
	ErrMemberNotFound           = errors.New("member not found")
	ErrMemberExists             = errors.New("member already exists")
	// ErrInvalidCredentials is returned for both unknown email and wrong password.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPasswordPolicy      = errors.New("password policy violation")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrEmailDeliveryFailed = errors.New("email delivery failed")
	ErrRateLimited         = errors.New("rate limited")
	ErrTokenInvalid        = errors.New("access token invalid")
	ErrEngineNotReady      = errors.New("engine not initialized")
	// ErrDirectoryUnavailable wraps member directory failures.
	ErrDirectoryUnavailable = errors.New("member directory unavailable")
)
