package rate

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/boardauth/internal/keys"
	"github.com/MrEthical07/boardauth/internal/ttlstore"
)

const (
	scopeVerification = "vreq"
	scopeSignUp       = "signup"
	scopeSignIn       = "signin"
)

// Config holds per-email budgets. A non-positive max disables that limit.
type Config struct {
	MaxVerificationRequests int
	VerificationWindow      time.Duration
	MaxSignUpAttempts       int
	SignUpWindow            time.Duration
	MaxSignInFailures       int
	SignInCooldown          time.Duration
}

// Limiter enforces fixed-window, per-email limits with store counters.
type Limiter struct {
	store  ttlstore.Store
	keys   keys.Scheme
	config Config
}

// New creates a Limiter.
func New(store ttlstore.Store, scheme keys.Scheme, cfg Config) *Limiter {
	return &Limiter{store: store, keys: scheme, config: cfg}
}

// AllowVerificationRequest counts one code request for email.
func (l *Limiter) AllowVerificationRequest(ctx context.Context, email string) error {
	return l.spend(ctx, scopeVerification, email, l.config.MaxVerificationRequests, l.config.VerificationWindow)
}

// AllowSignUpAttempt counts one code submission for email. It runs before the
// code is checked, so a refused attempt never consumes the stored code.
func (l *Limiter) AllowSignUpAttempt(ctx context.Context, email string) error {
	return l.spend(ctx, scopeSignUp, email, l.config.MaxSignUpAttempts, l.config.SignUpWindow)
}

// CheckSignIn refuses once email has used up its failed sign-in budget.
func (l *Limiter) CheckSignIn(ctx context.Context, email string) error {
	if l.config.MaxSignInFailures <= 0 {
		return nil
	}
	count, err := l.store.Counter(ctx, l.keys.RateLimit(scopeSignIn, email))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count >= int64(l.config.MaxSignInFailures) {
		return ErrRateLimited
	}
	return nil
}

// RecordSignInFailure counts a failed sign-in for email.
func (l *Limiter) RecordSignInFailure(ctx context.Context, email string) error {
	if l.config.MaxSignInFailures <= 0 {
		return nil
	}
	if _, err := l.store.IncrWithExpiry(ctx, l.keys.RateLimit(scopeSignIn, email), l.config.SignInCooldown); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ResetSignIn clears the failure counter after a successful sign-in or
// password reset.
func (l *Limiter) ResetSignIn(ctx context.Context, email string) error {
	if l.config.MaxSignInFailures <= 0 {
		return nil
	}
	if _, err := l.store.Delete(ctx, l.keys.RateLimit(scopeSignIn, email)); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (l *Limiter) spend(ctx context.Context, scope, subject string, max int, window time.Duration) error {
	if max <= 0 {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}

	count, err := l.store.IncrWithExpiry(ctx, l.keys.RateLimit(scope, subject), window)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if count > int64(max) {
		return ErrRateLimited
	}
	return nil
}
