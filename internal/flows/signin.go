package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/boardauth/internal/rate"
	"github.com/MrEthical07/boardauth/session"
)

// SignInFailureKind classifies sign-in failures for root-level mapping.
type SignInFailureKind int

const (
	SignInFailureNone SignInFailureKind = iota
	SignInFailureRateLimited
	SignInFailureStore
	SignInFailureDirectory
	SignInFailureCredentials
	SignInFailureSession
)

type SignInResult struct {
	Failure  SignInFailureKind
	Err      error
	Member   Member
	Tokens   session.TokenPair
	Rehashed bool
}

type SignInLimiter interface {
	CheckSignIn(ctx context.Context, email string) error
	RecordSignInFailure(ctx context.Context, email string) error
	ResetSignIn(ctx context.Context, email string) error
}

// SignInDeps captures sign-in dependencies.
type SignInDeps struct {
	Directory      MemberDirectory
	Limiter        SignInLimiter
	Sessions       SessionIssuer
	VerifyPassword func(password, hash string) (bool, error)
	NeedsUpgrade   func(hash string) (bool, error)
	HashPassword   func(string) (string, error)
	// DummyHash is verified against for unknown emails so both failure
	// paths cost one password verification.
	DummyHash string
	Warn      func(msg string, err error)
}

// RunSignIn verifies credentials and issues a session. Unknown email and wrong
// password produce the same failure kind.
func RunSignIn(ctx context.Context, email, password string, deps SignInDeps) SignInResult {
	if deps.Limiter != nil {
		if err := deps.Limiter.CheckSignIn(ctx, email); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return SignInResult{Failure: SignInFailureRateLimited, Err: err}
			}
			return SignInResult{Failure: SignInFailureStore, Err: err}
		}
	}

	member, err := deps.Directory.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrMemberNotFound) {
			return SignInResult{Failure: SignInFailureDirectory, Err: err}
		}
		if deps.DummyHash != "" {
			_, _ = deps.VerifyPassword(password, deps.DummyHash)
		}
		recordFailure(ctx, email, deps)
		return SignInResult{Failure: SignInFailureCredentials, Err: err}
	}

	ok, err := deps.VerifyPassword(password, member.PasswordHash)
	if err != nil || !ok {
		if err != nil {
			warn(deps.Warn, "password verification error", err)
		}
		recordFailure(ctx, email, deps)
		return SignInResult{Failure: SignInFailureCredentials, Err: err}
	}

	if deps.Limiter != nil {
		if err := deps.Limiter.ResetSignIn(ctx, email); err != nil {
			warn(deps.Warn, "sign-in counter reset failed", err)
		}
	}

	rehashed := maybeUpgradeHash(ctx, member, password, deps)

	tokens, err := deps.Sessions.IssueSession(ctx, member.ID, member.Role)
	if err != nil {
		return SignInResult{Failure: SignInFailureSession, Err: err, Member: member}
	}

	return SignInResult{Member: member, Tokens: tokens, Rehashed: rehashed}
}

func recordFailure(ctx context.Context, email string, deps SignInDeps) {
	if deps.Limiter == nil {
		return
	}
	if err := deps.Limiter.RecordSignInFailure(ctx, email); err != nil {
		warn(deps.Warn, "sign-in failure not counted", err)
	}
}

func maybeUpgradeHash(ctx context.Context, member Member, password string, deps SignInDeps) bool {
	if deps.NeedsUpgrade == nil || deps.HashPassword == nil {
		return false
	}
	needs, err := deps.NeedsUpgrade(member.PasswordHash)
	if err != nil || !needs {
		return false
	}

	upgraded, err := deps.HashPassword(password)
	if err != nil {
		warn(deps.Warn, "password rehash failed", err)
		return false
	}
	if err := deps.Directory.UpdatePasswordHash(ctx, member.Email, upgraded); err != nil {
		warn(deps.Warn, "password rehash write failed", err)
		return false
	}
	return true
}

func warn(fn func(string, error), msg string, err error) {
	if fn != nil {
		fn(msg, err)
	}
}
