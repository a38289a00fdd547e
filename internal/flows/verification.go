package flows

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/MrEthical07/boardauth/internal/rate"
)

// VerificationFailureKind classifies code-request failures for root-level mapping.
type VerificationFailureKind int

const (
	VerificationFailureNone VerificationFailureKind = iota
	VerificationFailureRateLimited
	VerificationFailureStore
	VerificationFailureIssue
	VerificationFailureDelivery
)

type VerificationResult struct {
	Failure VerificationFailureKind
	Err     error
}

type VerificationLimiter interface {
	AllowVerificationRequest(ctx context.Context, email string) error
}

type CodeIssuer interface {
	Issue(ctx context.Context, email string) (string, error)
	TTL() time.Duration
}

// VerificationDeps captures code-request dependencies.
type VerificationDeps struct {
	Limiter VerificationLimiter
	Codes   CodeIssuer
	Mailer  Mailer
}

// RunRequestVerificationCode stores a new code and emails it. A delivery
// failure leaves the stored code to expire on its own.
func RunRequestVerificationCode(ctx context.Context, email string, deps VerificationDeps) VerificationResult {
	if deps.Limiter != nil {
		if err := deps.Limiter.AllowVerificationRequest(ctx, email); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				return VerificationResult{Failure: VerificationFailureRateLimited, Err: err}
			}
			return VerificationResult{Failure: VerificationFailureStore, Err: err}
		}
	}

	code, err := deps.Codes.Issue(ctx, email)
	if err != nil {
		return VerificationResult{Failure: VerificationFailureIssue, Err: err}
	}

	minutes := int(deps.Codes.TTL().Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	vars := map[string]string{
		"code":        code,
		"ttl_minutes": strconv.Itoa(minutes),
	}
	if err := deps.Mailer.Send(ctx, email, TemplateVerificationCode, vars); err != nil {
		return VerificationResult{Failure: VerificationFailureDelivery, Err: err}
	}

	return VerificationResult{}
}
