package boardauth

import (
	"context"
	"time"

	"github.com/MrEthical07/boardauth/internal/flows"
	"github.com/MrEthical07/boardauth/session"
)

// Role is the account-level role carried in access tokens. Board-level
// permissions are decided elsewhere.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the authenticated principal of a request.
type Identity struct {
	MemberID string
	Role     Role
}

// Member is a registered account as the directory stores it.
type Member struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// NewMember is the input for MemberDirectory.Create.
type NewMember struct {
	Email        string
	PasswordHash string
	Role         Role
}

// MemberDirectory persists members. Implementations return ErrMemberNotFound
// for absent members and ErrMemberExists for duplicate emails.
type MemberDirectory interface {
	FindByEmail(ctx context.Context, email string) (Member, error)
	FindByID(ctx context.Context, id string) (Member, error)
	Create(ctx context.Context, m NewMember) (Member, error)
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
}

// Mailer delivers a templated email. Delivery is at most once from the
// Engine's point of view; it never retries.
type Mailer interface {
	Send(ctx context.Context, to, templateID string, vars map[string]string) error
}

// PasswordHasher hashes new passwords and verifies stored ones.
// NeedsUpgrade reports whether a stored hash should be rewritten after a
// successful verification.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
	NeedsUpgrade(encodedHash string) (bool, error)
}

// TokenPair is the access and refresh token handed to a client.
type TokenPair = session.TokenPair

// SignUpRequest registers a new member after email verification.
type SignUpRequest struct {
	Email            string
	Password         string
	VerificationCode string
}

// SignInResult is returned by a successful SignIn.
type SignInResult struct {
	Member Member
	Tokens TokenPair
}

// Email template identifiers passed to Mailer.Send.
const (
	TemplateVerificationCode = flows.TemplateVerificationCode
	TemplatePasswordReset    = flows.TemplatePasswordReset
)
