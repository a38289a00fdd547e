package directory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrEthical07/boardauth"
)

func TestMemoryCreateAndFind(t *testing.T) {
	d := NewMemory()
	ctx := context.Background()

	m, err := d.Create(ctx, boardauth.NewMember{Email: "a@b.co", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.ID != "1" || m.Role != boardauth.RoleUser {
		t.Fatalf("unexpected member %+v", m)
	}

	byEmail, err := d.FindByEmail(ctx, "a@b.co")
	if err != nil || byEmail.ID != m.ID {
		t.Fatalf("find by email: %+v %v", byEmail, err)
	}
	byID, err := d.FindByID(ctx, m.ID)
	if err != nil || byID.Email != "a@b.co" {
		t.Fatalf("find by id: %+v %v", byID, err)
	}

	if _, err := d.Create(ctx, boardauth.NewMember{Email: "a@b.co", PasswordHash: "h2"}); !errors.Is(err, boardauth.ErrMemberExists) {
		t.Fatalf("expected ErrMemberExists, got %v", err)
	}
}

func TestMemoryNotFound(t *testing.T) {
	d := NewMemory()
	ctx := context.Background()

	if _, err := d.FindByEmail(ctx, "x@y.z"); !errors.Is(err, boardauth.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if _, err := d.FindByID(ctx, "42"); !errors.Is(err, boardauth.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
	if err := d.UpdatePasswordHash(ctx, "x@y.z", "h"); !errors.Is(err, boardauth.ErrMemberNotFound) {
		t.Fatalf("expected ErrMemberNotFound, got %v", err)
	}
}

func TestMemoryUpdatePasswordHash(t *testing.T) {
	d := NewMemory()
	ctx := context.Background()

	if _, err := d.Create(ctx, boardauth.NewMember{Email: "a@b.co", PasswordHash: "old"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := d.UpdatePasswordHash(ctx, "a@b.co", "new"); err != nil {
		t.Fatalf("update: %v", err)
	}
	m, _ := d.FindByEmail(ctx, "a@b.co")
	if m.PasswordHash != "new" {
		t.Fatalf("hash not updated: %q", m.PasswordHash)
	}
}

func TestMemoryConcurrentCreateSingleWinner(t *testing.T) {
	d := NewMemory()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := d.Create(ctx, boardauth.NewMember{Email: "race@b.co", PasswordHash: "h"}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one create to win, got %d", wins)
	}
}
