package stores

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/boardauth/internal/keys"
	"github.com/MrEthical07/boardauth/internal/ttlstore"
)

// DefaultResetTokenTTL is how long a password-reset link stays usable.
const DefaultResetTokenTTL = 30 * time.Minute

// ResetConfig wires a ResetTokens manager.
type ResetConfig struct {
	TTL      time.Duration
	Generate func() (string, error)
	Now      func() time.Time
}

// ResetTokens issues and consumes single-use password-reset tokens. Several
// tokens may be live for one email at once; each is keyed by itself.
type ResetTokens struct {
	store    ttlstore.Store
	keys     keys.Scheme
	ttl      time.Duration
	generate func() (string, error)
	now      func() time.Time
}

func NewResetTokens(store ttlstore.Store, scheme keys.Scheme, cfg ResetConfig) *ResetTokens {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultResetTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ResetTokens{
		store:    store,
		keys:     scheme,
		ttl:      cfg.TTL,
		generate: cfg.Generate,
		now:      cfg.Now,
	}
}

// Issue stores a new token bound to email and returns it.
func (r *ResetTokens) Issue(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", errors.New("reset email required")
	}
	if r.generate == nil {
		return "", errors.New("reset token generator not configured")
	}

	token, err := r.generate()
	if err != nil {
		return "", err
	}

	encoded, err := encodeCredentialRecord(credentialRecord{
		IssuedAt: r.now().Unix(),
		Payload:  email,
	})
	if err != nil {
		return "", err
	}

	if err := r.store.SetWithExpiry(ctx, r.keys.Reset(token), encoded, r.ttl); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return token, nil
}

// ValidateAndConsume deletes the token and returns the email it was bound to.
// The token is burned even if the caller's follow-up write fails.
func (r *ResetTokens) ValidateAndConsume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrCredentialInvalid
	}

	key := r.keys.Reset(token)
	data, found, err := r.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return "", ErrCredentialInvalid
	}

	record, err := decodeCredentialRecord(data)
	if err != nil || record.Payload == "" {
		return "", ErrCredentialInvalid
	}

	removed, err := r.store.Delete(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if removed == 0 {
		return "", ErrCredentialInvalid
	}
	return record.Payload, nil
}
