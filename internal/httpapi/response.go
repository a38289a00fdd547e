package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrEthical07/boardauth"
	"github.com/rs/zerolog/hlog"
)

// Response codes are part of the client contract; existing spellings are kept.
const (
	CodeOK                  = "OK"
	CodeMemberCreated       = "MEMBER_CREATED"
	CodeBadRequest          = "BAD_REQUEST"
	CodeInvalidCode         = "INVALID_VERIFYCATION_CODE"
	CodeInvalidAuthToken    = "INVALID_AUTH_TOKEN"
	CodeRefreshTokenMissing = "REFRESH_TOKEN_NOT_EXISTS"
	CodeInvalidEmail        = "INVALID_EMAIL_FORM"
	CodeEmailExists         = "EMAIL_ALREADY_EXSITS"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidJWT          = "INVALID_JWT_TOKEN"
	CodeInvalidCredentials  = "INVALID_AUTH_FORMAT"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeForbidden           = "FORBIDDEN"
	CodeMemberNotFound      = "MEMBER_NOT_FOUND"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
	CodeInternal            = "INTERNAL_SERVER_ERROR"
	CodeSendEmailFail       = "SEND_EMAIL_FAIL"
	CodeUnavailable         = "SERVICE_UNAVAILABLE"
)

// Envelope wraps every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, code, message string, data any) {
	writeJSON(w, status, Envelope{Success: true, Code: code, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Envelope{Success: false, Code: code, Message: message})
}

type failure struct {
	status  int
	code    string
	message string
}

var failures = []struct {
	err error
	failure
}{
	{boardauth.ErrInvalidOrExpiredCredential, failure{http.StatusBadRequest, CodeInvalidCode, "invalid or expired verification code"}},
	{boardauth.ErrInvalidRefreshToken, failure{http.StatusUnauthorized, CodeInvalidRefreshToken, "invalid refresh token"}},
	{boardauth.ErrInvalidCredentials, failure{http.StatusUnauthorized, CodeInvalidCredentials, "invalid email or password"}},
	{boardauth.ErrTokenInvalid, failure{http.StatusUnauthorized, CodeInvalidJWT, "invalid access token"}},
	{boardauth.ErrMemberExists, failure{http.StatusBadRequest, CodeEmailExists, "email already registered"}},
	{boardauth.ErrMemberNotFound, failure{http.StatusNotFound, CodeMemberNotFound, "member not found"}},
	{boardauth.ErrPasswordPolicy, failure{http.StatusBadRequest, CodeBadRequest, "password does not meet the policy"}},
	{boardauth.ErrInvalidEmail, failure{http.StatusBadRequest, CodeInvalidEmail, "invalid email"}},
	{boardauth.ErrRateLimited, failure{http.StatusTooManyRequests, CodeTooManyRequests, "too many requests"}},
	{boardauth.ErrEmailDeliveryFailed, failure{http.StatusInternalServerError, CodeSendEmailFail, "failed to send email"}},
	{boardauth.ErrStoreUnavailable, failure{http.StatusServiceUnavailable, CodeUnavailable, "service temporarily unavailable"}},
	{boardauth.ErrSessionPersistenceFailed, failure{http.StatusServiceUnavailable, CodeUnavailable, "service temporarily unavailable"}},
	{boardauth.ErrDirectoryUnavailable, failure{http.StatusServiceUnavailable, CodeUnavailable, "service temporarily unavailable"}},
}

func failureFor(err error) failure {
	for _, f := range failures {
		if errors.Is(err, f.err) {
			return f.failure
		}
	}
	return failure{http.StatusInternalServerError, CodeInternal, "internal server error"}
}

// writeError maps err to a response. Server-side failures are logged with
// the request logger.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	f := failureFor(err)
	if f.status >= http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Str("code", f.code).Msg("request failed")
	}
	writeFail(w, f.status, f.code, f.message)
}
