package flows

import (
	"context"
	"errors"
)

// SignOutDeps captures sign-out dependencies.
type SignOutDeps struct {
	Sessions SessionRevoker
}

// RunSignOut revokes one refresh token. Unknown tokens succeed.
func RunSignOut(ctx context.Context, refreshToken string, deps SignOutDeps) error {
	return deps.Sessions.RevokeOne(ctx, refreshToken)
}

// RunSignOutEverywhere revokes every session of memberID.
func RunSignOutEverywhere(ctx context.Context, memberID string, deps SignOutDeps) error {
	if memberID == "" {
		return errors.New("member id required")
	}
	return deps.Sessions.RevokeAll(ctx, memberID)
}
