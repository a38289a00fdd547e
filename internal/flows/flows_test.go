package flows

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrEthical07/boardauth/internal/rate"
	"github.com/MrEthical07/boardauth/internal/stores"
	"github.com/MrEthical07/boardauth/session"
)

type fakeDirectory struct {
	mu      sync.Mutex
	members map[string]Member
	updates int
}

func (d *fakeDirectory) FindByEmail(_ context.Context, email string) (Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.members[email]
	if !ok {
		return Member{}, ErrMemberNotFound
	}
	return m, nil
}

func (d *fakeDirectory) Create(_ context.Context, email, hash string) (Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.members[email]; ok {
		return Member{}, ErrMemberExists
	}
	m := Member{ID: "m-" + email, Email: email, PasswordHash: hash, Role: "USER"}
	d.members[email] = m
	return m, nil
}

func (d *fakeDirectory) UpdatePasswordHash(_ context.Context, email, hash string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.members[email]
	if !ok {
		return ErrMemberNotFound
	}
	m.PasswordHash = hash
	d.members[email] = m
	d.updates++
	return nil
}

type fakeLimiter struct {
	checkErr error
	failures int
	resets   int
}

func (l *fakeLimiter) CheckSignIn(context.Context, string) error { return l.checkErr }
func (l *fakeLimiter) RecordSignInFailure(context.Context, string) error {
	l.failures++
	return nil
}
func (l *fakeLimiter) ResetSignIn(context.Context, string) error {
	l.resets++
	return nil
}

type fakeSessions struct {
	issued    int
	revokeErr error
	revoked   []string
}

func (s *fakeSessions) IssueSession(_ context.Context, memberID, _ string) (session.TokenPair, error) {
	s.issued++
	return session.TokenPair{AccessToken: "a-" + memberID, RefreshToken: "r-" + memberID}, nil
}
func (s *fakeSessions) RevokeOne(context.Context, string) error { return nil }
func (s *fakeSessions) RevokeAll(_ context.Context, memberID string) error {
	if s.revokeErr != nil {
		return s.revokeErr
	}
	s.revoked = append(s.revoked, memberID)
	return nil
}

type fakeResetTokens struct {
	tokens   map[string]string
	consumed int
}

func (r *fakeResetTokens) Issue(_ context.Context, email string) (string, error) {
	r.tokens["tok"] = email
	return "tok", nil
}

func (r *fakeResetTokens) ValidateAndConsume(_ context.Context, token string) (string, error) {
	email, ok := r.tokens[token]
	if !ok {
		return "", stores.ErrCredentialInvalid
	}
	delete(r.tokens, token)
	r.consumed++
	return email, nil
}

// verifier records every hash it was asked to check.
type verifier struct {
	checked []string
}

func (v *verifier) verify(password, hash string) (bool, error) {
	v.checked = append(v.checked, hash)
	return hash == "hash:"+password, nil
}

func hashPassword(p string) (string, error) { return "hash:" + p, nil }

func newSignInDeps(dir *fakeDirectory, lim *fakeLimiter, ss *fakeSessions, v *verifier) SignInDeps {
	return SignInDeps{
		Directory:      dir,
		Limiter:        lim,
		Sessions:       ss,
		VerifyPassword: v.verify,
		HashPassword:   hashPassword,
		DummyHash:      "hash:dummy",
	}
}

func TestSignInUnknownEmailVerifiesDummyHash(t *testing.T) {
	dir := &fakeDirectory{members: map[string]Member{}}
	lim := &fakeLimiter{}
	ss := &fakeSessions{}
	v := &verifier{}

	res := RunSignIn(context.Background(), "ghost@example.com", "pw", newSignInDeps(dir, lim, ss, v))

	if res.Failure != SignInFailureCredentials {
		t.Fatalf("expected credentials failure, got %v", res.Failure)
	}
	if len(v.checked) != 1 || v.checked[0] != "hash:dummy" {
		t.Fatalf("dummy hash not verified: %v", v.checked)
	}
	if lim.failures != 1 || ss.issued != 0 {
		t.Fatalf("unexpected side effects: failures=%d issued=%d", lim.failures, ss.issued)
	}
}

func TestSignInWrongPasswordSameKind(t *testing.T) {
	dir := &fakeDirectory{members: map[string]Member{
		"ada@example.com": {ID: "1", Email: "ada@example.com", PasswordHash: "hash:right", Role: "USER"},
	}}
	lim := &fakeLimiter{}

	res := RunSignIn(context.Background(), "ada@example.com", "wrong", newSignInDeps(dir, lim, &fakeSessions{}, &verifier{}))

	if res.Failure != SignInFailureCredentials || lim.failures != 1 {
		t.Fatalf("unexpected result %+v failures=%d", res, lim.failures)
	}
}

func TestSignInSuccessResetsCounter(t *testing.T) {
	dir := &fakeDirectory{members: map[string]Member{
		"ada@example.com": {ID: "1", Email: "ada@example.com", PasswordHash: "hash:right", Role: "USER"},
	}}
	lim := &fakeLimiter{}
	ss := &fakeSessions{}
	deps := newSignInDeps(dir, lim, ss, &verifier{})
	deps.NeedsUpgrade = func(string) (bool, error) { return true, nil }

	res := RunSignIn(context.Background(), "ada@example.com", "right", deps)

	if res.Failure != SignInFailureNone || res.Tokens.RefreshToken != "r-1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if lim.resets != 1 || ss.issued != 1 || !res.Rehashed || dir.updates != 1 {
		t.Fatalf("unexpected side effects resets=%d issued=%d rehashed=%v updates=%d",
			lim.resets, ss.issued, res.Rehashed, dir.updates)
	}
}

func TestSignInLimiterFailureKinds(t *testing.T) {
	dir := &fakeDirectory{members: map[string]Member{}}
	ss := &fakeSessions{}

	for _, tt := range []struct {
		err  error
		want SignInFailureKind
	}{
		{rate.ErrRateLimited, SignInFailureRateLimited},
		{errors.New("redis down"), SignInFailureStore},
	} {
		res := RunSignIn(context.Background(), "ada@example.com", "pw",
			newSignInDeps(dir, &fakeLimiter{checkErr: tt.err}, ss, &verifier{}))
		if res.Failure != tt.want {
			t.Fatalf("limiter error %v: expected %v, got %v", tt.err, tt.want, res.Failure)
		}
	}
}

func newResetDeps(dir *fakeDirectory, tokens *fakeResetTokens, ss *fakeSessions) PasswordResetDeps {
	return PasswordResetDeps{
		Directory: dir,
		Tokens:    tokens,
		Sessions:  ss,
		ValidatePassword: func(p string) error {
			if len(p) < 8 {
				return errors.New("too short")
			}
			return nil
		},
		HashPassword: hashPassword,
	}
}

func TestResetPasswordPolicyFailureKeepsToken(t *testing.T) {
	dir := &fakeDirectory{members: map[string]Member{"ada@example.com": {ID: "1", Email: "ada@example.com"}}}
	tokens := &fakeResetTokens{tokens: map[string]string{"tok": "ada@example.com"}}

	res := RunResetPassword(context.Background(), "tok", "short", newResetDeps(dir, tokens, &fakeSessions{}))

	if res.Failure != PasswordResetFailurePolicy || tokens.consumed != 0 {
		t.Fatalf("unexpected result %+v consumed=%d", res, tokens.consumed)
	}
}

func TestResetPasswordRevokesAfterWrite(t *testing.T) {
	dir := &fakeDirectory{members: map[string]Member{"ada@example.com": {ID: "1", Email: "ada@example.com"}}}
	tokens := &fakeResetTokens{tokens: map[string]string{"tok": "ada@example.com"}}
	ss := &fakeSessions{}

	res := RunResetPassword(context.Background(), "tok", "long enough", newResetDeps(dir, tokens, ss))

	if res.Failure != PasswordResetFailureNone || res.MemberID != "1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if dir.members["ada@example.com"].PasswordHash != "hash:long enough" {
		t.Fatal("hash not written")
	}
	if len(ss.revoked) != 1 || ss.revoked[0] != "1" {
		t.Fatalf("sessions not revoked: %v", ss.revoked)
	}

	res = RunResetPassword(context.Background(), "tok", "long enough", newResetDeps(dir, tokens, ss))
	if res.Failure != PasswordResetFailureInvalid {
		t.Fatalf("reused token: expected invalid, got %v", res.Failure)
	}
}

func TestResetPasswordRevokeFailureReportsMember(t *testing.T) {
	dir := &fakeDirectory{members: map[string]Member{"ada@example.com": {ID: "1", Email: "ada@example.com"}}}
	tokens := &fakeResetTokens{tokens: map[string]string{"tok": "ada@example.com"}}
	ss := &fakeSessions{revokeErr: errors.New("redis down")}

	res := RunResetPassword(context.Background(), "tok", "long enough", newResetDeps(dir, tokens, ss))

	if res.Failure != PasswordResetFailureRevoke || res.MemberID != "1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if dir.updates != 1 {
		t.Fatal("hash should be written before revocation")
	}
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	dir := &fakeDirectory{members: map[string]Member{}}
	tokens := &fakeResetTokens{tokens: map[string]string{}}

	res := RunForgotPassword(context.Background(), "ghost@example.com", newResetDeps(dir, tokens, &fakeSessions{}))

	if res.Failure != PasswordResetFailureNone || res.Sent || len(tokens.tokens) != 0 {
		t.Fatalf("unexpected result %+v tokens=%v", res, tokens.tokens)
	}
}

func TestResetLinkKeepsQuery(t *testing.T) {
	link, err := ResetLink("https://board.example.com/reset?lang=en", "abc")
	if err != nil {
		t.Fatalf("ResetLink failed: %v", err)
	}
	if link != "https://board.example.com/reset?authToken=abc&lang=en" {
		t.Fatalf("unexpected link %q", link)
	}
}
