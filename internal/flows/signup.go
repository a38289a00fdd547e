package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/boardauth/internal/rate"
	"github.com/MrEthical07/boardauth/internal/stores"
)

// SignUpFailureKind classifies sign-up failures for root-level mapping.
type SignUpFailureKind int

const (
	SignUpFailureNone SignUpFailureKind = iota
	SignUpFailurePolicy
	SignUpFailureExists
	SignUpFailureRateLimited
	SignUpFailureHash
	SignUpFailureCode
	SignUpFailureStore
	SignUpFailureDirectory
)

type SignUpRequest struct {
	Email    string
	Password string
	Code     string
}

type SignUpResult struct {
	Failure SignUpFailureKind
	Err     error
	Member  Member
}

type SignUpLimiter interface {
	AllowSignUpAttempt(ctx context.Context, email string) error
}

type CodeConsumer interface {
	ValidateAndConsume(ctx context.Context, email, code string) error
}

// SignUpDeps captures sign-up dependencies.
type SignUpDeps struct {
	Directory        MemberDirectory
	Limiter          SignUpLimiter
	Codes            CodeConsumer
	ValidatePassword func(string) error
	HashPassword     func(string) (string, error)
}

// RunSignUp creates a member after consuming the email's verification code.
// Hashing runs before consumption so a hashing failure does not burn the code;
// a failed member write after consumption requires a fresh code.
func RunSignUp(ctx context.Context, req SignUpRequest, deps SignUpDeps) SignUpResult {
	if err := deps.ValidatePassword(req.Password); err != nil {
		return SignUpResult{Failure: SignUpFailurePolicy, Err: err}
	}

	if _, err := deps.Directory.FindByEmail(ctx, req.Email); err == nil {
		return SignUpResult{Failure: SignUpFailureExists, Err: ErrMemberExists}
	} else if !errors.Is(err, ErrMemberNotFound) {
		return SignUpResult{Failure: SignUpFailureDirectory, Err: err}
	}

	if deps.Limiter != nil {
		if err := deps.Limiter.AllowSignUpAttempt(ctx, req.Email); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return SignUpResult{Failure: SignUpFailureRateLimited, Err: err}
			}
			return SignUpResult{Failure: SignUpFailureStore, Err: err}
		}
	}

	hash, err := deps.HashPassword(req.Password)
	if err != nil {
		return SignUpResult{Failure: SignUpFailureHash, Err: err}
	}

	if err := deps.Codes.ValidateAndConsume(ctx, req.Email, req.Code); err != nil {
		if errors.Is(err, stores.ErrCredentialInvalid) {
			return SignUpResult{Failure: SignUpFailureCode, Err: err}
		}
		return SignUpResult{Failure: SignUpFailureStore, Err: err}
	}

	member, err := deps.Directory.Create(ctx, req.Email, hash)
	if err != nil {
		if errors.Is(err, ErrMemberExists) {
			return SignUpResult{Failure: SignUpFailureExists, Err: err}
		}
		return SignUpResult{Failure: SignUpFailureDirectory, Err: err}
	}

	return SignUpResult{Member: member}
}
