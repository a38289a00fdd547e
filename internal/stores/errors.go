package stores

import "errors"

var (
	// ErrCredentialInvalid covers absent, expired, mismatched and already
	// consumed credentials alike.
	ErrCredentialInvalid = errors.New("credential invalid or expired")
	// ErrStoreUnavailable wraps store failures. It never means "absent".
	ErrStoreUnavailable = errors.New("credential store unavailable")
)
