// Package ttlstore is the narrow key-value contract every credential manager
// is written against, plus its Redis implementation.
//
// Absence is reported as found=false with a nil error. Any transport failure,
// including a per-operation timeout, is wrapped in [ErrUnavailable] and must
// never be read as "absent".
package ttlstore

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable wraps every store failure.
var ErrUnavailable = errors.New("ttl store unavailable")

// Store is a TTL key-value store with set members.
type Store interface {
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Delete reports how many of keys existed and were removed by this call.
	Delete(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, keys ...string) (int64, error)

	AddToSet(ctx context.Context, key, member string) error
	RemoveFromSet(ctx context.Context, key string, members ...string) error
	Members(ctx context.Context, key string) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// IncrWithExpiry increments a counter and starts its window on the first hit.
	IncrWithExpiry(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Counter(ctx context.Context, key string) (int64, error)

	Ping(ctx context.Context) error
}
