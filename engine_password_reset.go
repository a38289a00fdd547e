package boardauth

import (
	"context"
	"fmt"

	"github.com/MrEthical07/boardauth/internal"
	"github.com/MrEthical07/boardauth/internal/flows"
)

// ForgotPassword emails a reset link when email belongs to a member. Unknown
// emails succeed silently.
func (e *Engine) ForgotPassword(ctx context.Context, email string) (err error) {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, span := e.startSpan(ctx, "ForgotPassword")
	defer func() { endSpan(span, err) }()

	email, err = normalizeEmail(email)
	if err != nil {
		return err
	}

	e.metrics.Inc(MetricPasswordResetRequest)
	res := e.flows.ForgotPassword(ctx, email)
	switch res.Failure {
	case flows.PasswordResetFailureNone:
		return nil
	case flows.PasswordResetFailureDelivery:
		e.metrics.Inc(MetricEmailDeliveryFailure)
		e.event(ctx, e.log.Warn(), "forgot_password").Err(res.Err).Msg("reset email not delivered")
		return wrapKind(ErrEmailDeliveryFailed, res.Err)
	case flows.PasswordResetFailureStore:
		e.metrics.Inc(MetricStoreUnavailable)
		return wrapKind(ErrStoreUnavailable, res.Err)
	case flows.PasswordResetFailureDirectory:
		return res.Err
	default:
		return fmt.Errorf("issue reset token: %w", res.Err)
	}
}

// ResetPassword sets a new password using a reset token, then revokes every
// session of the member. The token is spent even if a later step fails.
func (e *Engine) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, span := e.startSpan(ctx, "ResetPassword")
	defer func() { endSpan(span, err) }()

	if !internal.IsOpaqueToken(token) {
		e.metrics.Inc(MetricPasswordResetFailure)
		return ErrInvalidOrExpiredCredential
	}

	res := e.flows.ResetPassword(ctx, token, newPassword)
	if res.Failure == flows.PasswordResetFailureNone {
		e.metrics.Inc(MetricPasswordResetSuccess)
		e.event(ctx, e.log.Info(), "reset_password").Str("member_id", res.MemberID).Msg("password reset")
		return nil
	}

	e.metrics.Inc(MetricPasswordResetFailure)
	switch res.Failure {
	case flows.PasswordResetFailurePolicy:
		return res.Err
	case flows.PasswordResetFailureInvalid:
		return ErrInvalidOrExpiredCredential
	case flows.PasswordResetFailureStore:
		e.metrics.Inc(MetricStoreUnavailable)
		return wrapKind(ErrStoreUnavailable, res.Err)
	case flows.PasswordResetFailureRevoke:
		e.metrics.Inc(MetricStoreUnavailable)
		e.event(ctx, e.log.Error(), "reset_password").Str("member_id", res.MemberID).Err(res.Err).
			Msg("password changed but sessions not revoked")
		return sessionError(res.Err)
	case flows.PasswordResetFailureHash:
		return fmt.Errorf("hash password: %w", res.Err)
	default:
		return res.Err
	}
}
