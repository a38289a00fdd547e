package boardauth

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/boardauth/internal"
	"go.opentelemetry.io/otel/attribute"
)

// Refresh rotates refreshToken: the returned pair replaces it and the old
// token stops working. Of concurrent refreshes of one token at most one
// succeeds.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (_ TokenPair, err error) {
	if err := e.ready(); err != nil {
		return TokenPair{}, err
	}
	ctx, span := e.startSpan(ctx, "Refresh")
	defer func() { endSpan(span, err) }()

	// Issued tokens are always UUIDs; anything else cannot be in the store.
	if !internal.IsOpaqueToken(refreshToken) {
		e.metrics.Inc(MetricRefreshFailure)
		return TokenPair{}, ErrInvalidRefreshToken
	}

	start := time.Now()
	res := e.flows.Refresh(ctx, refreshToken)
	e.metrics.Observe(MetricRefreshLatency, time.Since(start))

	if res.Err != nil {
		e.metrics.Inc(MetricRefreshFailure)
		err := sessionError(res.Err)
		if errors.Is(err, ErrStoreUnavailable) {
			e.metrics.Inc(MetricStoreUnavailable)
		}
		if !errors.Is(err, ErrInvalidRefreshToken) {
			e.event(ctx, e.log.Warn(), "refresh").Err(err).Msg("refresh failed")
		}
		return TokenPair{}, err
	}

	e.metrics.Inc(MetricRefreshSuccess)
	e.metrics.Inc(MetricSessionCreated)
	span.SetAttributes(attribute.String("member.id", res.MemberID))
	return res.Tokens, nil
}

// SignOut revokes one refresh token. Unknown or already revoked tokens
// succeed.
func (e *Engine) SignOut(ctx context.Context, refreshToken string) (err error) {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, span := e.startSpan(ctx, "SignOut")
	defer func() { endSpan(span, err) }()

	if !internal.IsOpaqueToken(refreshToken) {
		e.metrics.Inc(MetricSignOut)
		return nil
	}
	if err := e.flows.SignOut(ctx, refreshToken); err != nil {
		e.metrics.Inc(MetricStoreUnavailable)
		return sessionError(err)
	}
	e.metrics.Inc(MetricSignOut)
	return nil
}

// SignOutEverywhere revokes every session of memberID.
func (e *Engine) SignOutEverywhere(ctx context.Context, memberID string) (err error) {
	if err := e.ready(); err != nil {
		return err
	}
	ctx, span := e.startSpan(ctx, "SignOutEverywhere")
	defer func() { endSpan(span, err) }()

	if err := e.flows.SignOutEverywhere(ctx, memberID); err != nil {
		err = sessionError(err)
		if errors.Is(err, ErrStoreUnavailable) {
			e.metrics.Inc(MetricStoreUnavailable)
		}
		return err
	}
	e.metrics.Inc(MetricSignOutAll)
	e.event(ctx, e.log.Info(), "sign_out_all").Str("member_id", memberID).Msg("all sessions revoked")
	return nil
}
