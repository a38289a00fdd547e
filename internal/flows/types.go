package flows

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/boardauth/session"
)

const (
	TemplateVerificationCode = "verification-code"
	TemplatePasswordReset    = "password-reset"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberExists   = errors.New("member already exists")
)

// Member is the directory view the flows need.
type Member struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// MemberDirectory reports absence with ErrMemberNotFound and duplicate
// creation with ErrMemberExists.
type MemberDirectory interface {
	FindByEmail(ctx context.Context, email string) (Member, error)
	Create(ctx context.Context, email, passwordHash string) (Member, error)
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
}

type Mailer interface {
	Send(ctx context.Context, to, templateID string, vars map[string]string) error
}

type SessionIssuer interface {
	IssueSession(ctx context.Context, memberID, role string) (session.TokenPair, error)
}

type SessionRotator interface {
	Refresh(ctx context.Context, oldToken string) (session.TokenPair, *session.Record, error)
}

type SessionRevoker interface {
	RevokeOne(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, memberID string) error
}
