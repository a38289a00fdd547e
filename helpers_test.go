package boardauth_test

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/MrEthical07/boardauth"
	"github.com/MrEthical07/boardauth/directory"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const testCode = "042917"

type sentMail struct {
	to         string
	templateID string
	vars       map[string]string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail error
}

func (m *recordingMailer) Send(_ context.Context, to, templateID string, vars map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, sentMail{to: to, templateID: templateID, vars: vars})
	return nil
}

func (m *recordingMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatal("no mail sent")
	}
	return m.sent[len(m.sent)-1]
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testEnv struct {
	engine *boardauth.Engine
	mr     *miniredis.Miniredis
	dir    *directory.Memory
	mailer *recordingMailer
}

func testConfig() boardauth.Config {
	cfg := boardauth.DefaultConfig()
	cfg.JWT.PrivateKey = []byte("0123456789abcdef0123456789abcdef")
	cfg.PasswordReset.LinkBaseURL = "https://board.example.com/reset-password"
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	return cfg
}

func newTestEnv(t *testing.T, configure ...func(*boardauth.Builder)) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	env := &testEnv{mr: mr, dir: directory.NewMemory(), mailer: &recordingMailer{}}
	b := boardauth.New().
		WithConfig(testConfig()).
		WithRedis(rdb).
		WithDirectory(env.dir).
		WithMailer(env.mailer).
		WithCodeGenerator(func() (string, error) { return testCode, nil })
	for _, f := range configure {
		f(b)
	}

	env.engine, err = b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return env
}

// register signs up email with password through the verification-code flow.
func (env *testEnv) register(t *testing.T, email, password string) boardauth.Member {
	t.Helper()
	ctx := context.Background()
	if err := env.engine.RequestVerificationCode(ctx, email); err != nil {
		t.Fatalf("RequestVerificationCode failed: %v", err)
	}
	m, err := env.engine.SignUp(ctx, boardauth.SignUpRequest{
		Email:            email,
		Password:         password,
		VerificationCode: testCode,
	})
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	return m
}

func (env *testEnv) signIn(t *testing.T, email, password string) boardauth.SignInResult {
	t.Helper()
	res, err := env.engine.SignIn(context.Background(), email, password)
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	return res
}

func resetTokenFromLink(t *testing.T, link string) string {
	t.Helper()
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("bad reset link %q: %v", link, err)
	}
	token := u.Query().Get("authToken")
	if token == "" {
		t.Fatalf("reset link %q has no token", link)
	}
	return token
}

func mustErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}
