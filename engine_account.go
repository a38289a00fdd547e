package boardauth

import (
	"context"
	"fmt"

	"github.com/MrEthical07/boardauth/internal/flows"
	"go.opentelemetry.io/otel/attribute"
)

// SignUp registers a member once the email's verification code checks out.
// The code is consumed even if the member write fails afterwards; the caller
// then needs a new code.
func (e *Engine) SignUp(ctx context.Context, req SignUpRequest) (_ Member, err error) {
	if err := e.ready(); err != nil {
		return Member{}, err
	}
	ctx, span := e.startSpan(ctx, "SignUp")
	defer func() { endSpan(span, err) }()

	email, err := normalizeEmail(req.Email)
	if err != nil {
		e.metrics.Inc(MetricSignUpFailure)
		return Member{}, err
	}

	res := e.flows.SignUp(ctx, flows.SignUpRequest{
		Email:    email,
		Password: req.Password,
		Code:     req.VerificationCode,
	})
	if res.Failure != flows.SignUpFailureNone {
		e.metrics.Inc(MetricSignUpFailure)
		err := e.mapSignUpFailure(res)
		e.event(ctx, e.log.Info(), "sign_up").Err(err).Msg("sign-up rejected")
		return Member{}, err
	}

	member := fromFlowMember(res.Member)
	e.metrics.Inc(MetricSignUpSuccess)
	span.SetAttributes(attribute.String("member.id", member.ID))
	e.event(ctx, e.log.Info(), "sign_up").Str("member_id", member.ID).Msg("member registered")
	return member, nil
}

func (e *Engine) mapSignUpFailure(res flows.SignUpResult) error {
	switch res.Failure {
	case flows.SignUpFailurePolicy:
		return res.Err
	case flows.SignUpFailureExists:
		return ErrMemberExists
	case flows.SignUpFailureRateLimited:
		e.metrics.Inc(MetricRateLimitHit)
		return ErrRateLimited
	case flows.SignUpFailureCode:
		return ErrInvalidOrExpiredCredential
	case flows.SignUpFailureStore:
		e.metrics.Inc(MetricStoreUnavailable)
		return wrapKind(ErrStoreUnavailable, res.Err)
	case flows.SignUpFailureHash:
		return fmt.Errorf("hash password: %w", res.Err)
	default:
		return res.Err
	}
}

// SignIn verifies email and password and opens a new session. Unknown email
// and wrong password are indistinguishable to the caller.
func (e *Engine) SignIn(ctx context.Context, email, password string) (_ SignInResult, err error) {
	if err := e.ready(); err != nil {
		return SignInResult{}, err
	}
	ctx, span := e.startSpan(ctx, "SignIn")
	defer func() { endSpan(span, err) }()

	normalized, nerr := normalizeEmail(email)
	if nerr != nil {
		e.metrics.Inc(MetricSignInFailure)
		return SignInResult{}, ErrInvalidCredentials
	}

	res := e.flows.SignIn(ctx, normalized, password)
	if res.Failure != flows.SignInFailureNone {
		e.metrics.Inc(MetricSignInFailure)
		err := e.mapSignInFailure(res)
		e.event(ctx, e.log.Info(), "sign_in").Err(err).Msg("sign-in rejected")
		return SignInResult{}, err
	}

	if res.Rehashed {
		e.metrics.Inc(MetricPasswordRehash)
	}
	e.metrics.Inc(MetricSignInSuccess)
	e.metrics.Inc(MetricSessionCreated)

	member := fromFlowMember(res.Member)
	span.SetAttributes(attribute.String("member.id", member.ID))
	e.event(ctx, e.log.Info(), "sign_in").Str("member_id", member.ID).Msg("session issued")
	return SignInResult{Member: member, Tokens: res.Tokens}, nil
}

func (e *Engine) mapSignInFailure(res flows.SignInResult) error {
	switch res.Failure {
	case flows.SignInFailureRateLimited:
		e.metrics.Inc(MetricRateLimitHit)
		return ErrRateLimited
	case flows.SignInFailureStore:
		e.metrics.Inc(MetricStoreUnavailable)
		return wrapKind(ErrStoreUnavailable, res.Err)
	case flows.SignInFailureCredentials:
		return ErrInvalidCredentials
	case flows.SignInFailureSession:
		return sessionError(res.Err)
	default:
		return res.Err
	}
}
