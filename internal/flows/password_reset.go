package flows

import (
	"context"
	"errors"
	"net/url"

	"github.com/MrEthical07/boardauth/internal/stores"
)

// PasswordResetFailureKind classifies reset failures for root-level mapping.
type PasswordResetFailureKind int

const (
	PasswordResetFailureNone PasswordResetFailureKind = iota
	PasswordResetFailurePolicy
	PasswordResetFailureHash
	PasswordResetFailureInvalid
	PasswordResetFailureStore
	PasswordResetFailureIssue
	PasswordResetFailureDirectory
	PasswordResetFailureDelivery
	PasswordResetFailureRevoke
)

type ForgotPasswordResult struct {
	Failure PasswordResetFailureKind
	Err     error
	// Sent is false when the email belongs to no member.
	Sent bool
}

type ResetPasswordResult struct {
	Failure  PasswordResetFailureKind
	Err      error
	MemberID string
}

type ResetTokenManager interface {
	Issue(ctx context.Context, email string) (string, error)
	ValidateAndConsume(ctx context.Context, token string) (string, error)
}

type SignInResetter interface {
	ResetSignIn(ctx context.Context, email string) error
}

// PasswordResetDeps captures forgot/reset dependencies.
type PasswordResetDeps struct {
	Directory        MemberDirectory
	Tokens           ResetTokenManager
	Sessions         SessionRevoker
	Mailer           Mailer
	Limiter          SignInResetter
	ValidatePassword func(string) error
	HashPassword     func(string) (string, error)
	LinkBaseURL      string
	Warn             func(msg string, err error)
}

// RunForgotPassword emails a reset link to a known member. Unknown emails
// succeed without sending anything.
func RunForgotPassword(ctx context.Context, email string, deps PasswordResetDeps) ForgotPasswordResult {
	if _, err := deps.Directory.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ForgotPasswordResult{}
		}
		return ForgotPasswordResult{Failure: PasswordResetFailureDirectory, Err: err}
	}

	token, err := deps.Tokens.Issue(ctx, email)
	if err != nil {
		if errors.Is(err, stores.ErrStoreUnavailable) {
			return ForgotPasswordResult{Failure: PasswordResetFailureStore, Err: err}
		}
		return ForgotPasswordResult{Failure: PasswordResetFailureIssue, Err: err}
	}

	link, err := ResetLink(deps.LinkBaseURL, token)
	if err != nil {
		return ForgotPasswordResult{Failure: PasswordResetFailureIssue, Err: err}
	}
	if err := deps.Mailer.Send(ctx, email, TemplatePasswordReset, map[string]string{"link": link}); err != nil {
		return ForgotPasswordResult{Failure: PasswordResetFailureDelivery, Err: err}
	}

	return ForgotPasswordResult{Sent: true}
}

// RunResetPassword consumes the token, writes the new hash, then revokes every
// session of the member. Sessions are only revoked after the hash write
// succeeded.
func RunResetPassword(ctx context.Context, token, newPassword string, deps PasswordResetDeps) ResetPasswordResult {
	if err := deps.ValidatePassword(newPassword); err != nil {
		return ResetPasswordResult{Failure: PasswordResetFailurePolicy, Err: err}
	}

	hash, err := deps.HashPassword(newPassword)
	if err != nil {
		return ResetPasswordResult{Failure: PasswordResetFailureHash, Err: err}
	}

	email, err := deps.Tokens.ValidateAndConsume(ctx, token)
	if err != nil {
		if errors.Is(err, stores.ErrCredentialInvalid) {
			return ResetPasswordResult{Failure: PasswordResetFailureInvalid, Err: err}
		}
		return ResetPasswordResult{Failure: PasswordResetFailureStore, Err: err}
	}

	member, err := deps.Directory.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ResetPasswordResult{Failure: PasswordResetFailureInvalid, Err: err}
		}
		return ResetPasswordResult{Failure: PasswordResetFailureDirectory, Err: err}
	}

	if err := deps.Directory.UpdatePasswordHash(ctx, email, hash); err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return ResetPasswordResult{Failure: PasswordResetFailureInvalid, Err: err}
		}
		return ResetPasswordResult{Failure: PasswordResetFailureDirectory, Err: err}
	}

	if err := deps.Sessions.RevokeAll(ctx, member.ID); err != nil {
		return ResetPasswordResult{Failure: PasswordResetFailureRevoke, Err: err, MemberID: member.ID}
	}

	if deps.Limiter != nil {
		if err := deps.Limiter.ResetSignIn(ctx, email); err != nil {
			warn(deps.Warn, "sign-in counter reset failed", err)
		}
	}

	return ResetPasswordResult{MemberID: member.ID}
}

// ResetLink appends authToken to base, keeping any existing query.
func ResetLink(base, token string) (string, error) {
	if base == "" {
		return "", errors.New("reset link base url not configured")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
