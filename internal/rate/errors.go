package rate

import "errors"

var (
	// ErrRateLimited is returned once a window's budget is spent.
	ErrRateLimited = errors.New("rate limited")
	// ErrStoreUnavailable wraps counter store failures. Limits fail closed.
	ErrStoreUnavailable = errors.New("rate limit store unavailable")
)
