package boardauth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/MrEthical07/boardauth/internal/flows"
	"github.com/MrEthical07/boardauth/jwt"
	"github.com/MrEthical07/boardauth/session"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Engine is the auth facade. Build it with New().Build(); it is immutable
// afterwards and safe for concurrent use.
type Engine struct {
	config    Config
	flows     flows.Service
	directory MemberDirectory
	sessions  *session.Manager
	jwt       *jwt.Manager
	metrics   *Metrics
	log       zerolog.Logger
	tracer    trace.Tracer
}

// Config returns a copy of the active configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// MetricsSnapshot returns current counter values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return (*Metrics)(nil).Snapshot()
	}
	return e.metrics.Snapshot()
}

// Ready reports whether the credential store answers.
func (e *Engine) Ready(ctx context.Context) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.sessions.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IssueAccessToken signs an access token for id without creating a session.
func (e *Engine) IssueAccessToken(id Identity) (string, error) {
	if err := e.ready(); err != nil {
		return "", err
	}
	if id.MemberID == "" || !id.Role.Valid() {
		return "", errors.New("invalid identity")
	}
	return e.sessions.IssueAccessToken(id.MemberID, string(id.Role))
}

// ValidateAccessToken verifies signature and expiry and returns the identity.
func (e *Engine) ValidateAccessToken(token string) (Identity, error) {
	if err := e.ready(); err != nil {
		return Identity{}, err
	}
	claims, err := e.jwt.ParseAccess(token)
	if err != nil {
		return Identity{}, ErrTokenInvalid
	}
	role := Role(claims.Role)
	if claims.Subject == "" || !role.Valid() {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{MemberID: claims.Subject, Role: role}, nil
}

// ActiveSessions counts the member's live refresh tokens.
func (e *Engine) ActiveSessions(ctx context.Context, memberID string) (int, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	n, err := e.sessions.ActiveSessions(ctx, memberID)
	if err != nil {
		e.metrics.Inc(MetricStoreUnavailable)
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n, nil
}

// Member looks up a member by id.
func (e *Engine) Member(ctx context.Context, memberID string) (Member, error) {
	if err := e.ready(); err != nil {
		return Member{}, err
	}
	m, err := e.directory.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return Member{}, ErrMemberNotFound
		}
		return Member{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return m, nil
}

// CheckEmailAvailability reports whether no member uses email.
func (e *Engine) CheckEmailAvailability(ctx context.Context, email string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	_, err = e.directory.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrMemberNotFound):
		return true, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
}

func (e *Engine) ready() error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	return nil
}

func (e *Engine) validatePassword(p string) error {
	n := len(p)
	if n < e.config.Password.MinLength {
		return fmt.Errorf("%w: shorter than %d bytes", ErrPasswordPolicy, e.config.Password.MinLength)
	}
	if n > e.config.Password.MaxLength {
		return fmt.Errorf("%w: longer than %d bytes", ErrPasswordPolicy, e.config.Password.MaxLength)
	}
	return nil
}

// normalizeEmail lower-cases and trims email and rejects anything that is not
// a bare address.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(email) > 254 {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (e *Engine) startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	ctx, span := e.tracer.Start(ctx, "boardauth."+op)
	if ip := clientIPFromContext(ctx); ip != "" {
		span.SetAttributes(attribute.String("client.address", ip))
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		span.SetAttributes(attribute.String("user_agent.original", ua))
	}
	return ctx, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// event starts a log event tagged with op and the request origin.
func (e *Engine) event(ctx context.Context, ev *zerolog.Event, op string) *zerolog.Event {
	ev = ev.Str("op", op)
	if ip := clientIPFromContext(ctx); ip != "" {
		ev = ev.Str("client_ip", ip)
	}
	return ev
}

func wrapKind(kind, cause error) error {
	if cause == nil {
		return kind
	}
	if errors.Is(cause, kind) {
		return cause
	}
	return fmt.Errorf("%w: %v", kind, cause)
}

// sessionError maps session manager errors to root kinds.
func sessionError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrInvalidRefreshToken):
		return ErrInvalidRefreshToken
	case errors.Is(err, session.ErrPersistenceFailed):
		return wrapKind(ErrSessionPersistenceFailed, err)
	case errors.Is(err, session.ErrStoreUnavailable):
		return wrapKind(ErrStoreUnavailable, err)
	default:
		return err
	}
}
