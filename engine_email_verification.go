package boardauth

import (
	"context"

	"github.com/MrEthical07/boardauth/internal/flows"
)

// RequestVerificationCode emails a fresh sign-up code to email, replacing
// any earlier code. A delivery failure returns ErrEmailDeliveryFailed; the
// stored code then expires unused.
func (e *Engine) RequestVerificationCode(ctx context.Context, email string) (err error) {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, span := e.startSpan(ctx, "RequestVerificationCode")
	defer func() { endSpan(span, err) }()

	email, err = normalizeEmail(email)
	if err != nil {
		return err
	}

	res := e.flows.RequestVerificationCode(ctx, email)
	switch res.Failure {
	case flows.VerificationFailureNone:
		e.metrics.Inc(MetricVerificationCodeIssued)
		return nil
	case flows.VerificationFailureRateLimited:
		e.metrics.Inc(MetricRateLimitHit)
		return ErrRateLimited
	case flows.VerificationFailureDelivery:
		e.metrics.Inc(MetricVerificationCodeFailure)
		e.metrics.Inc(MetricEmailDeliveryFailure)
		e.event(ctx, e.log.Warn(), "verification_code").Err(res.Err).Msg("code email not delivered")
		return wrapKind(ErrEmailDeliveryFailed, res.Err)
	default:
		e.metrics.Inc(MetricVerificationCodeFailure)
		e.metrics.Inc(MetricStoreUnavailable)
		return wrapKind(ErrStoreUnavailable, res.Err)
	}
}
