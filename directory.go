package boardauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/boardauth/internal/flows"
)

// directoryAdapter presents a MemberDirectory to the flows package.
type directoryAdapter struct {
	dir MemberDirectory
}

func (a directoryAdapter) FindByEmail(ctx context.Context, email string) (flows.Member, error) {
	m, err := a.dir.FindByEmail(ctx, email)
	if err != nil {
		return flows.Member{}, translateDirectoryErr(err)
	}
	return toFlowMember(m), nil
}

func (a directoryAdapter) Create(ctx context.Context, email, passwordHash string) (flows.Member, error) {
	m, err := a.dir.Create(ctx, NewMember{Email: email, PasswordHash: passwordHash, Role: RoleUser})
	if err != nil {
		return flows.Member{}, translateDirectoryErr(err)
	}
	return toFlowMember(m), nil
}

func (a directoryAdapter) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	return translateDirectoryErr(a.dir.UpdatePasswordHash(ctx, email, passwordHash))
}

func translateDirectoryErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrMemberNotFound):
		return flows.ErrMemberNotFound
	case errors.Is(err, ErrMemberExists):
		return flows.ErrMemberExists
	default:
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
}

func toFlowMember(m Member) flows.Member {
	return flows.Member{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         string(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}

func fromFlowMember(m flows.Member) Member {
	return Member{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         Role(m.Role),
		CreatedAt:    m.CreatedAt,
	}
}
