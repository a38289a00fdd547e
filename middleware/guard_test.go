package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrEthical07/boardauth"
)

type stubValidator map[string]boardauth.Identity

func (s stubValidator) ValidateAccessToken(token string) (boardauth.Identity, error) {
	id, ok := s[token]
	if !ok {
		return boardauth.Identity{}, boardauth.ErrTokenInvalid
	}
	return id, nil
}

var testValidator = stubValidator{
	"user-token":  {MemberID: "7", Role: boardauth.RoleUser},
	"admin-token": {MemberID: "1", Role: boardauth.RoleAdmin},
}

func echoIdentity() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(id.MemberID))
	})
}

func TestGuardBearerHeader(t *testing.T) {
	h := Guard(testValidator)(echoIdentity())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer user-token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "7" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestGuardCookieFallback(t *testing.T) {
	h := Guard(testValidator)(echoIdentity())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "admin-token"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || rec.Body.String() != "1" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestGuardRejects(t *testing.T) {
	h := Guard(testValidator)(echoIdentity())

	cases := map[string]func(*http.Request){
		"missing":      func(*http.Request) {},
		"bad scheme":   func(r *http.Request) { r.Header.Set("Authorization", "Basic user-token") },
		"empty bearer": func(r *http.Request) { r.Header.Set("Authorization", "Bearer ") },
		"unknown":      func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
	}
	for name, mutate := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		mutate(req)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func TestGuardCustomErrorHandler(t *testing.T) {
	var gotErr error
	h := Guard(testValidator, WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, status int, err error) {
		gotErr = err
		w.WriteHeader(status)
	}))(echoIdentity())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized || !errors.Is(gotErr, boardauth.ErrTokenInvalid) {
		t.Fatalf("unexpected %d %v", rec.Code, gotErr)
	}
}

func TestRequireRole(t *testing.T) {
	h := Guard(testValidator)(RequireRole([]boardauth.Role{boardauth.RoleAdmin})(echoIdentity()))

	for token, want := range map[string]int{
		"admin-token": http.StatusOK,
		"user-token":  http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("%s: expected %d, got %d", token, want, rec.Code)
		}
	}
}

func TestRequireRoleWithoutGuard(t *testing.T) {
	h := RequireRole([]boardauth.Role{boardauth.RoleUser})(echoIdentity())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGuardMissingTokenError(t *testing.T) {
	var gotErr error
	h := Guard(testValidator, WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, status int, err error) {
		gotErr = err
		w.WriteHeader(status)
	}))(echoIdentity())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized || !errors.Is(gotErr, ErrMissingToken) {
		t.Fatalf("unexpected %d %v", rec.Code, gotErr)
	}
}
