package stores

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/boardauth/internal"
	"github.com/MrEthical07/boardauth/internal/keys"
	"github.com/MrEthical07/boardauth/internal/ttlstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, ttlstore.Store) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, ttlstore.NewRedis(rdb, time.Second)
}

func fixed(values ...string) func() (string, error) {
	var i int
	var mu sync.Mutex
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		v := values[i%len(values)]
		i++
		return v, nil
	}
}

func TestVerificationCodeLifecycle(t *testing.T) {
	_, store := newTestRedis(t)
	ctx := context.Background()
	codes := NewVerificationCodes(store, keys.New("t"), VerificationConfig{Generate: fixed("042917")})

	code, err := codes.Issue(ctx, "a@x.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if code != "042917" {
		t.Fatalf("code = %q", code)
	}

	if err := codes.ValidateAndConsume(ctx, "a@x.io", "111111"); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("wrong code err = %v", err)
	}
	if err := codes.ValidateAndConsume(ctx, "a@x.io", "042917"); err != nil {
		t.Fatalf("right code after wrong attempt: %v", err)
	}
	if err := codes.ValidateAndConsume(ctx, "a@x.io", "042917"); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("second consume err = %v", err)
	}
}

func TestVerificationCodeExpires(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()
	codes := NewVerificationCodes(store, keys.New("t"), VerificationConfig{Generate: fixed("042917")})

	if _, err := codes.Issue(ctx, "a@x.io"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if ttl := mr.TTL("t:vc:a@x.io"); ttl != DefaultVerificationCodeTTL {
		t.Fatalf("ttl = %v, want %v", ttl, DefaultVerificationCodeTTL)
	}

	mr.FastForward(211 * time.Second)
	if err := codes.ValidateAndConsume(ctx, "a@x.io", "042917"); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("expired code err = %v", err)
	}
}

func TestVerificationReissueSupersedes(t *testing.T) {
	_, store := newTestRedis(t)
	ctx := context.Background()
	codes := NewVerificationCodes(store, keys.New("t"), VerificationConfig{Generate: fixed("123456", "654321")})

	first, _ := codes.Issue(ctx, "a@x.io")
	second, _ := codes.Issue(ctx, "a@x.io")

	if err := codes.ValidateAndConsume(ctx, "a@x.io", first); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("superseded code err = %v", err)
	}
	if err := codes.ValidateAndConsume(ctx, "a@x.io", second); err != nil {
		t.Fatalf("latest code: %v", err)
	}
}

func TestVerificationConcurrentConsumeSingleWinner(t *testing.T) {
	_, store := newTestRedis(t)
	ctx := context.Background()
	codes := NewVerificationCodes(store, keys.New("t"), VerificationConfig{
		Generate: func() (string, error) { return internal.NewOTP(nil, 6) },
	})

	code, err := codes.Issue(ctx, "race@x.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	const workers = 16
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := codes.ValidateAndConsume(ctx, "race@x.io", code); err == nil {
				wins.Add(1)
			} else if !errors.Is(err, ErrCredentialInvalid) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("wins = %d, want 1", wins.Load())
	}
}

func TestVerificationStoreFailureIsNotInvalid(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()
	codes := NewVerificationCodes(store, keys.New("t"), VerificationConfig{Generate: fixed("042917")})

	if _, err := codes.Issue(ctx, "a@x.io"); err != nil {
		t.Fatalf("issue: %v", err)
	}

	mr.SetError("ERR injected failure")
	err := codes.ValidateAndConsume(ctx, "a@x.io", "042917")
	if !errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
	if _, err := codes.Issue(ctx, "a@x.io"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("issue err = %v, want ErrStoreUnavailable", err)
	}

	mr.SetError("")
	if err := codes.ValidateAndConsume(ctx, "a@x.io", "042917"); err != nil {
		t.Fatalf("code should survive the outage: %v", err)
	}
}

func TestResetTokenLifecycle(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()
	tokens := NewResetTokens(store, keys.New("t"), ResetConfig{Generate: fixed("tok_xyz")})

	token, err := tokens.Issue(ctx, "a@x.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token != "tok_xyz" {
		t.Fatalf("token = %q", token)
	}
	if ttl := mr.TTL("t:pr:tok_xyz"); ttl != DefaultResetTokenTTL {
		t.Fatalf("ttl = %v", ttl)
	}

	email, err := tokens.ValidateAndConsume(ctx, "tok_xyz")
	if err != nil || email != "a@x.io" {
		t.Fatalf("consume = (%q, %v)", email, err)
	}
	if _, err := tokens.ValidateAndConsume(ctx, "tok_xyz"); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("second consume err = %v", err)
	}
}

func TestResetTokenExpires(t *testing.T) {
	mr, store := newTestRedis(t)
	ctx := context.Background()
	tokens := NewResetTokens(store, keys.New("t"), ResetConfig{
		Generate: func() (string, error) { return internal.NewOpaqueToken(nil) },
	})

	token, err := tokens.Issue(ctx, "a@x.io")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mr.FastForward(1801 * time.Second)
	if _, err := tokens.ValidateAndConsume(ctx, token); !errors.Is(err, ErrCredentialInvalid) {
		t.Fatalf("expired token err = %v", err)
	}
}

func TestResetTokensAreIndependent(t *testing.T) {
	_, store := newTestRedis(t)
	ctx := context.Background()
	tokens := NewResetTokens(store, keys.New("t"), ResetConfig{Generate: fixed("one", "two")})

	one, _ := tokens.Issue(ctx, "a@x.io")
	two, _ := tokens.Issue(ctx, "a@x.io")

	if _, err := tokens.ValidateAndConsume(ctx, one); err != nil {
		t.Fatalf("consume first: %v", err)
	}
	if _, err := tokens.ValidateAndConsume(ctx, two); err != nil {
		t.Fatalf("consume second: %v", err)
	}
}

func TestCredentialRecordRejectsCorruptData(t *testing.T) {
	if _, err := decodeCredentialRecord([]byte{9, 0, 0}); err == nil {
		t.Fatal("expected bad version to be rejected")
	}

	encoded, err := encodeCredentialRecord(credentialRecord{IssuedAt: 1, Payload: "x"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := decodeCredentialRecord(append(encoded, 0)); err == nil {
		t.Fatal("expected trailing bytes to be rejected")
	}
	if _, err := decodeCredentialRecord(encoded[:len(encoded)-1]); err == nil {
		t.Fatal("expected truncated payload to be rejected")
	}
}
