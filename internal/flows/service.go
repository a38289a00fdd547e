package flows

import "context"

// Service is the flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired.
func (s Service) Initialized() bool {
	return s.deps.SignIn.Directory != nil && s.deps.SignIn.Sessions != nil
}

func (s Service) SignUp(ctx context.Context, req SignUpRequest) SignUpResult {
	return RunSignUp(ctx, req, s.deps.SignUp)
}

func (s Service) SignIn(ctx context.Context, email, password string) SignInResult {
	return RunSignIn(ctx, email, password, s.deps.SignIn)
}

func (s Service) Refresh(ctx context.Context, refreshToken string) RefreshResult {
	return RunRefresh(ctx, refreshToken, s.deps.Refresh)
}

func (s Service) SignOut(ctx context.Context, refreshToken string) error {
	return RunSignOut(ctx, refreshToken, s.deps.SignOut)
}

func (s Service) SignOutEverywhere(ctx context.Context, memberID string) error {
	return RunSignOutEverywhere(ctx, memberID, s.deps.SignOut)
}

func (s Service) RequestVerificationCode(ctx context.Context, email string) VerificationResult {
	return RunRequestVerificationCode(ctx, email, s.deps.Verification)
}

func (s Service) ForgotPassword(ctx context.Context, email string) ForgotPasswordResult {
	return RunForgotPassword(ctx, email, s.deps.PasswordReset)
}

func (s Service) ResetPassword(ctx context.Context, token, newPassword string) ResetPasswordResult {
	return RunResetPassword(ctx, token, newPassword, s.deps.PasswordReset)
}
