package stores

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/boardauth/internal/keys"
	"github.com/MrEthical07/boardauth/internal/ttlstore"
)

// DefaultVerificationCodeTTL is how long an emailed sign-up code stays valid.
const DefaultVerificationCodeTTL = 210 * time.Second

// VerificationConfig wires a VerificationCodes manager.
type VerificationConfig struct {
	TTL      time.Duration
	Generate func() (string, error)
	Now      func() time.Time
}

// VerificationCodes issues and consumes single-use, email-scoped codes.
// At most one code is live per email; issuing again replaces it.
type VerificationCodes struct {
	store    ttlstore.Store
	keys     keys.Scheme
	ttl      time.Duration
	generate func() (string, error)
	now      func() time.Time
}

func NewVerificationCodes(store ttlstore.Store, scheme keys.Scheme, cfg VerificationConfig) *VerificationCodes {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultVerificationCodeTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &VerificationCodes{
		store:    store,
		keys:     scheme,
		ttl:      cfg.TTL,
		generate: cfg.Generate,
		now:      cfg.Now,
	}
}

// TTL returns the lifetime applied to newly issued codes.
func (v *VerificationCodes) TTL() time.Duration {
	return v.ttl
}

// Issue stores a fresh code for email and returns it. On error no code is
// considered issued.
func (v *VerificationCodes) Issue(ctx context.Context, email string) (string, error) {
	if email == "" {
		return "", errors.New("verification email required")
	}
	if v.generate == nil {
		return "", errors.New("verification code generator not configured")
	}

	code, err := v.generate()
	if err != nil {
		return "", err
	}

	encoded, err := encodeCredentialRecord(credentialRecord{
		IssuedAt: v.now().Unix(),
		Payload:  code,
	})
	if err != nil {
		return "", err
	}

	if err := v.store.SetWithExpiry(ctx, v.keys.Verification(email), encoded, v.ttl); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return code, nil
}

// ValidateAndConsume deletes the stored code iff it equals code. A mismatch
// leaves the stored code in place. When two callers race on the right code,
// only the one whose delete removed the key succeeds.
func (v *VerificationCodes) ValidateAndConsume(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return ErrCredentialInvalid
	}

	key := v.keys.Verification(email)
	data, found, err := v.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return ErrCredentialInvalid
	}

	record, err := decodeCredentialRecord(data)
	if err != nil {
		return ErrCredentialInvalid
	}
	if subtle.ConstantTimeCompare([]byte(record.Payload), []byte(code)) != 1 {
		return ErrCredentialInvalid
	}

	removed, err := v.store.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if removed == 0 {
		return ErrCredentialInvalid
	}
	return nil
}
