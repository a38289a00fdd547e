package directory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/MrEthical07/boardauth"
)

// Memory keeps members in process memory. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	byEmail map[string]boardauth.Member
	byID    map[string]string
	nextID  int64
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		byEmail: make(map[string]boardauth.Member),
		byID:    make(map[string]string),
		now:     time.Now,
	}
}

func (m *Memory) FindByEmail(_ context.Context, email string) (boardauth.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	member, ok := m.byEmail[email]
	if !ok {
		return boardauth.Member{}, boardauth.ErrMemberNotFound
	}
	return member, nil
}

func (m *Memory) FindByID(_ context.Context, id string) (boardauth.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email, ok := m.byID[id]
	if !ok {
		return boardauth.Member{}, boardauth.ErrMemberNotFound
	}
	return m.byEmail[email], nil
}

// Create assigns sequential ids starting at 1.
func (m *Memory) Create(_ context.Context, nm boardauth.NewMember) (boardauth.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byEmail[nm.Email]; exists {
		return boardauth.Member{}, boardauth.ErrMemberExists
	}
	role := nm.Role
	if role == "" {
		role = boardauth.RoleUser
	}

	m.nextID++
	member := boardauth.Member{
		ID:           strconv.FormatInt(m.nextID, 10),
		Email:        nm.Email,
		PasswordHash: nm.PasswordHash,
		Role:         role,
		CreatedAt:    m.now().UTC(),
	}
	m.byEmail[member.Email] = member
	m.byID[member.ID] = member.Email
	return member, nil
}

func (m *Memory) UpdatePasswordHash(_ context.Context, email, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	member, ok := m.byEmail[email]
	if !ok {
		return boardauth.ErrMemberNotFound
	}
	member.PasswordHash = passwordHash
	m.byEmail[email] = member
	return nil
}
