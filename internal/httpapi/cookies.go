package httpapi

import (
	"net/http"
	"time"

	"github.com/MrEthical07/boardauth"
	"github.com/MrEthical07/boardauth/middleware"
)

// RefreshTokenCookie carries the refresh token.
const RefreshTokenCookie = "refresh_token"

// CookieConfig controls the auth cookies. Both are HTTP-only.
type CookieConfig struct {
	Secure     bool
	SameSite   http.SameSite
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (c CookieConfig) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.Domain,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

func (c CookieConfig) setTokens(w http.ResponseWriter, pair boardauth.TokenPair, now time.Time) {
	access := c.cookie(middleware.AccessTokenCookie, pair.AccessToken)
	access.MaxAge = int(c.AccessTTL / time.Second)
	http.SetCookie(w, access)

	refresh := c.cookie(RefreshTokenCookie, pair.RefreshToken)
	refresh.Expires = now.Add(c.RefreshTTL)
	http.SetCookie(w, refresh)
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		ck := c.cookie(name, "")
		ck.MaxAge = -1
		http.SetCookie(w, ck)
	}
}

func refreshToken(r *http.Request) (string, bool) {
	c, err := r.Cookie(RefreshTokenCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
