package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/boardauth/internal"
	"github.com/MrEthical07/boardauth/internal/keys"
	"github.com/MrEthical07/boardauth/internal/ttlstore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidRefreshToken covers unknown, expired, revoked and already-rotated tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrPersistenceFailed means a session could not be written, or a rotation
	// could not retire the old token.
	ErrPersistenceFailed = errors.New("session persistence failed")
	// ErrStoreUnavailable wraps store failures on reads and revocations.
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// DefaultRefreshTTL is fourteen days.
const DefaultRefreshTTL = 14 * 24 * time.Hour

// AccessSigner mints stateless access tokens.
type AccessSigner interface {
	CreateAccess(memberID, role string) (string, error)
}

// Config tunes a Manager.
type Config struct {
	KeyPrefix  string
	RefreshTTL time.Duration
	OpTimeout  time.Duration

	// NewToken overrides refresh-token generation. Defaults to UUIDv4.
	NewToken func() (string, error)
	Now      func() time.Time
	Logger   *zerolog.Logger
}

// Manager owns refresh-token records and the per-member session index.
//
// For every live record R of member M, R's token is in M's index. Writes are
// ordered so a failure can only leave an index entry without a record, which
// is harmless: such entries are skipped by ActiveSessions and swept by RevokeAll.
type Manager struct {
	store    ttlstore.Store
	keys     keys.Scheme
	signer   AccessSigner
	ttl      time.Duration
	newToken func() (string, error)
	now      func() time.Time
	log      zerolog.Logger
}

// NewManager builds a Manager on a Redis client.
func NewManager(client redis.UniversalClient, signer AccessSigner, cfg Config) (*Manager, error) {
	if client == nil {
		return nil, errors.New("redis client required")
	}
	return newManager(ttlstore.NewRedis(client, cfg.OpTimeout), signer, cfg)
}

func newManager(store ttlstore.Store, signer AccessSigner, cfg Config) (*Manager, error) {
	if signer == nil {
		return nil, errors.New("access signer required")
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.NewToken == nil {
		cfg.NewToken = func() (string, error) { return internal.NewOpaqueToken(nil) }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	return &Manager{
		store:    store,
		keys:     keys.New(cfg.KeyPrefix),
		signer:   signer,
		ttl:      cfg.RefreshTTL,
		newToken: cfg.NewToken,
		now:      cfg.Now,
		log:      log,
	}, nil
}

// RefreshTTL returns the lifetime applied to new refresh tokens.
func (m *Manager) RefreshTTL() time.Duration {
	return m.ttl
}

// IssueAccessToken signs an access token without touching the store.
func (m *Manager) IssueAccessToken(memberID, role string) (string, error) {
	return m.signer.CreateAccess(memberID, role)
}

// IssueSession creates a new refresh token for the member and returns it with
// a fresh access token.
func (m *Manager) IssueSession(ctx context.Context, memberID, role string) (TokenPair, error) {
	if memberID == "" {
		return TokenPair{}, errors.New("memberID required")
	}

	access, err := m.signer.CreateAccess(memberID, role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := m.persist(ctx, &Record{MemberID: memberID, Role: role, IssuedAt: m.now().Unix()})
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// persist writes index entry, index TTL, then the record.
func (m *Manager) persist(ctx context.Context, rec *Record) (string, error) {
	token, err := m.newToken()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	data, err := Encode(rec)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}

	indexKey := m.keys.MemberIndex(rec.MemberID)
	if err := m.store.AddToSet(ctx, indexKey, token); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
	}
	if err := m.store.Expire(ctx, indexKey, m.ttl); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, errors.Join(err, m.dropIndexEntry(ctx, rec.MemberID, token)))
	}
	if err := m.store.SetWithExpiry(ctx, m.keys.Refresh(token), data, m.ttl); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistenceFailed, errors.Join(err, m.dropIndexEntry(ctx, rec.MemberID, token)))
	}

	return token, nil
}

// Refresh rotates oldToken: a new session is issued and oldToken stops
// working. Of several concurrent refreshes of the same token at most one
// succeeds; the rest get ErrInvalidRefreshToken.
func (m *Manager) Refresh(ctx context.Context, oldToken string) (TokenPair, *Record, error) {
	if oldToken == "" {
		return TokenPair{}, nil, ErrInvalidRefreshToken
	}

	oldKey := m.keys.Refresh(oldToken)
	data, found, err := m.store.Get(ctx, oldKey)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return TokenPair{}, nil, ErrInvalidRefreshToken
	}

	rec, err := Decode(data)
	if err != nil {
		m.log.Warn().Err(err).Str("op", "refresh").Msg("discarding undecodable session record")
		_, _ = m.store.Delete(ctx, oldKey)
		return TokenPair{}, nil, ErrInvalidRefreshToken
	}

	access, err := m.signer.CreateAccess(rec.MemberID, rec.Role)
	if err != nil {
		return TokenPair{}, nil, fmt.Errorf("sign access token: %w", err)
	}

	next := &Record{MemberID: rec.MemberID, Role: rec.Role, IssuedAt: m.now().Unix()}
	refresh, err := m.persist(ctx, next)
	if err != nil {
		return TokenPair{}, nil, err
	}

	removed, err := m.store.Delete(ctx, oldKey)
	if err != nil {
		m.discard(ctx, rec.MemberID, refresh)
		return TokenPair{}, nil, fmt.Errorf("%w: retire old token: %v", ErrPersistenceFailed, err)
	}
	if removed == 0 {
		// Lost a race with another refresh or a revoke.
		m.discard(ctx, rec.MemberID, refresh)
		return TokenPair{}, nil, ErrInvalidRefreshToken
	}

	if err := m.store.RemoveFromSet(ctx, m.keys.MemberIndex(rec.MemberID), oldToken); err != nil {
		m.log.Warn().Err(err).Str("op", "refresh").Str("member_id", rec.MemberID).
			Msg("rotated token left in session index")
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, next, nil
}

// RevokeOne retires a single refresh token. Unknown tokens are a no-op, and
// retrying after a store error is safe.
func (m *Manager) RevokeOne(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	key := m.keys.Refresh(token)
	data, found, err := m.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !found {
		return nil
	}

	if _, err := m.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	rec, err := Decode(data)
	if err != nil {
		m.log.Warn().Err(err).Str("op", "revoke_one").Msg("revoked undecodable session record")
		return nil
	}
	if err := m.store.RemoveFromSet(ctx, m.keys.MemberIndex(rec.MemberID), token); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// RevokeAll retires every refresh token in the member's index. Only the tokens
// it read are removed from the index, so a session issued concurrently keeps
// its entry and a later RevokeAll still reaches it.
func (m *Manager) RevokeAll(ctx context.Context, memberID string) error {
	if memberID == "" {
		return errors.New("memberID required")
	}

	indexKey := m.keys.MemberIndex(memberID)
	tokens, err := m.store.Members(ctx, indexKey)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(tokens) == 0 {
		return nil
	}

	recordKeys := make([]string, 0, len(tokens))
	for _, token := range tokens {
		recordKeys = append(recordKeys, m.keys.Refresh(token))
	}

	removed, err := m.store.Delete(ctx, recordKeys...)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if err := m.store.RemoveFromSet(ctx, indexKey, tokens...); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	m.log.Debug().Str("member_id", memberID).Int64("revoked", removed).Msg("revoked all sessions")
	return nil
}

// ActiveSessions counts index entries whose record still exists.
func (m *Manager) ActiveSessions(ctx context.Context, memberID string) (int, error) {
	tokens, err := m.store.Members(ctx, m.keys.MemberIndex(memberID))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(tokens) == 0 {
		return 0, nil
	}

	recordKeys := make([]string, 0, len(tokens))
	for _, token := range tokens {
		recordKeys = append(recordKeys, m.keys.Refresh(token))
	}
	n, err := m.store.Exists(ctx, recordKeys...)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return int(n), nil
}

// Ping checks store reachability.
func (m *Manager) Ping(ctx context.Context) error {
	if err := m.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (m *Manager) discard(ctx context.Context, memberID, token string) {
	if _, err := m.store.Delete(ctx, m.keys.Refresh(token)); err != nil {
		m.log.Warn().Err(err).Str("op", "discard").Str("member_id", memberID).
			Msg("failed to discard freshly issued session")
		return
	}
	_ = m.dropIndexEntry(ctx, memberID, token)
}

// dropIndexEntry logs and returns the cleanup error, nil on success.
func (m *Manager) dropIndexEntry(ctx context.Context, memberID, token string) error {
	if err := m.store.RemoveFromSet(ctx, m.keys.MemberIndex(memberID), token); err != nil {
		m.log.Warn().Err(err).Str("member_id", memberID).Msg("orphan session index entry left behind")
		return fmt.Errorf("cleanup index entry: %w", err)
	}
	return nil
}
