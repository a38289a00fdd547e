package flows

import (
	"context"
	"errors"

	"github.com/MrEthical07/boardauth/session"
)

// RefreshFailureKind classifies refresh failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureInvalid
	RefreshFailureStore
	RefreshFailurePersistence
	RefreshFailureIssueAccess
)

type RefreshResult struct {
	Failure  RefreshFailureKind
	Err      error
	MemberID string
	Tokens   session.TokenPair
}

// RefreshDeps captures refresh dependencies.
type RefreshDeps struct {
	Sessions SessionRotator
}

// RunRefresh rotates a refresh token.
func RunRefresh(ctx context.Context, refreshToken string, deps RefreshDeps) RefreshResult {
	tokens, rec, err := deps.Sessions.Refresh(ctx, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidRefreshToken):
			return RefreshResult{Failure: RefreshFailureInvalid, Err: err}
		case errors.Is(err, session.ErrStoreUnavailable):
			return RefreshResult{Failure: RefreshFailureStore, Err: err}
		case errors.Is(err, session.ErrPersistenceFailed):
			return RefreshResult{Failure: RefreshFailurePersistence, Err: err}
		default:
			return RefreshResult{Failure: RefreshFailureIssueAccess, Err: err}
		}
	}

	return RefreshResult{MemberID: rec.MemberID, Tokens: tokens}
}
