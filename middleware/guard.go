package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/boardauth"
)

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "access_token"

// ErrMissingToken is passed to the error handler when the request carries
// no access token at all.
var ErrMissingToken = errors.New("middleware: missing access token")

type identityContextKey struct{}

// Validator verifies an access token. *boardauth.Engine implements it.
type Validator interface {
	ValidateAccessToken(token string) (boardauth.Identity, error)
}

// ErrorHandler writes the response for a rejected request. status is 401 or 403.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, status int, err error)

// Option customizes a guard.
type Option func(*options)

type options struct {
	onError ErrorHandler
}

// WithErrorHandler replaces the default plain-text error response.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		if h != nil {
			o.onError = h
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{onError: defaultError}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func defaultError(w http.ResponseWriter, _ *http.Request, status int, _ error) {
	http.Error(w, http.StatusText(status), status)
}

// IdentityFromContext returns the identity stored by Guard.
func IdentityFromContext(ctx context.Context) (boardauth.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(boardauth.Identity)
	return id, ok
}

// WithIdentity stores id in ctx the way Guard does.
func WithIdentity(ctx context.Context, id boardauth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// Guard rejects requests without a valid access token with 401.
func Guard(v Validator, opts ...Option) func(http.Handler) http.Handler {
	o := buildOptions(opts)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if v == nil {
				o.onError(w, r, http.StatusUnauthorized, boardauth.ErrEngineNotReady)
				return
			}

			token, ok := AccessToken(r)
			if !ok {
				o.onError(w, r, http.StatusUnauthorized, ErrMissingToken)
				return
			}

			id, err := v.ValidateAccessToken(token)
			if err != nil {
				o.onError(w, r, http.StatusUnauthorized, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole must run after Guard. Requests whose identity role is not in
// roles get 403.
func RequireRole(roles []boardauth.Role, opts ...Option) func(http.Handler) http.Handler {
	o := buildOptions(opts)
	allowed := make(map[boardauth.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				o.onError(w, r, http.StatusUnauthorized, ErrMissingToken)
				return
			}
			if _, ok := allowed[id.Role]; !ok {
				o.onError(w, r, http.StatusForbidden, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessToken extracts the access token from the Bearer header or the
// access_token cookie.
func AccessToken(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
