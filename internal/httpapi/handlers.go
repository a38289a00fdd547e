package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/boardauth"
	"github.com/MrEthical07/boardauth/middleware"
)

type memberResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toMemberResponse(m boardauth.Member) memberResponse {
	return memberResponse{ID: m.ID, Email: m.Email, Role: string(m.Role), CreatedAt: m.CreatedAt}
}

type meResponse struct {
	Member         memberResponse `json:"member"`
	ActiveSessions int            `json:"activeSessions"`
}

func badRequest(w http.ResponseWriter, err error) {
	writeFail(w, http.StatusBadRequest, CodeBadRequest, err.Error())
}

func (h *handler) readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(r.Context()); err != nil {
		writeFail(w, http.StatusServiceUnavailable, CodeUnavailable, err.Error())
		return
	}
	writeOK(w, http.StatusOK, CodeOK, "ready", nil)
}

func (h *handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	res, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cookies.setTokens(w, res.Tokens, h.now())
	writeOK(w, http.StatusOK, CodeOK, "signed in", toMemberResponse(res.Member))
}

func (h *handler) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	m, err := h.svc.SignUp(r.Context(), boardauth.SignUpRequest{
		Email:            req.Email,
		Password:         req.Password,
		VerificationCode: req.VerificationCode,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, CodeMemberCreated, "member created", toMemberResponse(m))
}

func (h *handler) signOut(w http.ResponseWriter, r *http.Request) {
	token, ok := refreshToken(r)
	if !ok {
		writeFail(w, http.StatusBadRequest, CodeRefreshTokenMissing, "refresh token cookie missing")
		return
	}
	if err := h.svc.SignOut(r.Context(), token); err != nil {
		writeError(w, r, err)
		return
	}
	h.cookies.clear(w)
	writeOK(w, http.StatusOK, CodeOK, "signed out", nil)
}

func (h *handler) signOutAll(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	if err := h.svc.SignOutEverywhere(r.Context(), id.MemberID); err != nil {
		writeError(w, r, err)
		return
	}
	h.cookies.clear(w)
	writeOK(w, http.StatusOK, CodeOK, "signed out of all sessions", nil)
}

func (h *handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	token, ok := refreshToken(r)
	if !ok {
		writeFail(w, http.StatusBadRequest, CodeRefreshTokenMissing, "refresh token cookie missing")
		return
	}

	pair, err := h.svc.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, boardauth.ErrInvalidRefreshToken) {
			h.cookies.clear(w)
		}
		writeError(w, r, err)
		return
	}

	h.cookies.setTokens(w, pair, h.now())
	writeOK(w, http.StatusOK, CodeOK, "tokens refreshed", nil)
}

func (h *handler) emailAvailability(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := validate.Var(email, "required,email"); err != nil {
		writeFail(w, http.StatusBadRequest, CodeInvalidEmail, "invalid email")
		return
	}

	available, err := h.svc.CheckEmailAvailability(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, CodeOK, "email availability", available)
}

func (h *handler) verificationCode(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, CodeInvalidEmail, err.Error())
		return
	}
	if err := h.svc.RequestVerificationCode(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, CodeOK, "verification code sent", nil)
}

func (h *handler) passwordResetLink(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(r, &req); err != nil {
		writeFail(w, http.StatusBadRequest, CodeInvalidEmail, err.Error())
		return
	}
	// Unknown emails get the same response.
	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, CodeOK, "if the email is registered, a reset link was sent", nil)
}

func (h *handler) passwordReset(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err)
		return
	}

	err := h.svc.ResetPassword(r.Context(), req.AuthToken, req.Password)
	switch {
	case errors.Is(err, boardauth.ErrInvalidOrExpiredCredential):
		writeFail(w, http.StatusBadRequest, CodeInvalidAuthToken, "invalid or expired reset token")
		return
	case err != nil:
		writeError(w, r, err)
		return
	}
	h.cookies.clear(w)
	writeOK(w, http.StatusOK, CodeOK, "password reset", nil)
}

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	m, err := h.svc.Member(r.Context(), id.MemberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	n, err := h.svc.ActiveSessions(r.Context(), id.MemberID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, CodeOK, "current member", meResponse{Member: toMemberResponse(m), ActiveSessions: n})
}
