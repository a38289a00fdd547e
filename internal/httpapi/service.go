package httpapi

import (
	"context"

	"github.com/MrEthical07/boardauth"
)

// Service is the subset of *boardauth.Engine the handlers call.
type Service interface {
	SignUp(ctx context.Context, req boardauth.SignUpRequest) (boardauth.Member, error)
	SignIn(ctx context.Context, email, password string) (boardauth.SignInResult, error)
	SignOut(ctx context.Context, refreshToken string) error
	SignOutEverywhere(ctx context.Context, memberID string) error
	Refresh(ctx context.Context, refreshToken string) (boardauth.TokenPair, error)
	RequestVerificationCode(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	CheckEmailAvailability(ctx context.Context, email string) (bool, error)
	ValidateAccessToken(token string) (boardauth.Identity, error)
	ActiveSessions(ctx context.Context, memberID string) (int, error)
	Member(ctx context.Context, memberID string) (boardauth.Member, error)
	Ready(ctx context.Context) error
	MetricsSnapshot() boardauth.MetricsSnapshot
}

var _ Service = (*boardauth.Engine)(nil)
