package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/afisha-board/backend/internal/api/httpx"
	"github.com/afisha-board/backend/internal/api/validate"
	"github.com/afisha-board/backend/internal/middleware"
	"github.com/afisha-board/backend/internal/services"
	"github.com/afisha-board/backend/internal/session"
)

type AuthHandler struct {
	users        *services.UserService
	gate         *session.Gate
	cookieTTL    time.Duration
	cookieSecure bool
}

func NewAuthHandler(users *services.UserService, gate *session.Gate, cookieTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		users:        users,
		gate:         gate,
		cookieTTL:    cookieTTL,
		cookieSecure: cookieSecure,
	}
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}

	u, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		var verrs validate.Errs
		switch {
		case errors.Is(err, services.ErrDuplicateUsername):
			httpx.WriteError(w, http.StatusBadRequest, "duplicate_username", "a user with that name already exists", nil)
		case errors.As(err, &verrs):
			httpx.WriteError(w, http.StatusBadRequest, "validation", "validation failed", verrs)
		default:
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		}
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid request body", nil)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// one message for unknown user and wrong password
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", nil)
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}

	token, err := h.gate.Establish(r.Context(), u.ID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		MaxAge:   int(h.cookieTTL.Seconds()),
	})
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  u,
	})
}

// Logout clears the session and drops the cookie. It never fails: an absent
// or already-cleared session just falls through to the same response.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	_ = h.gate.Clear(r.Context(), middleware.TokenFromRequest(r))
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		MaxAge:   -1,
	})
	httpx.Redirect(w, r, "/login")
}
