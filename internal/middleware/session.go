package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/afisha-board/backend/internal/api/httpx"
	"github.com/afisha-board/backend/internal/session"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session"

type userIDKeyType struct{}

var userIDKey userIDKeyType

func UserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// TokenFromRequest extracts the session token: cookie first, then a bearer
// header for non-browser clients.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	ah := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return strings.TrimSpace(ah[len("Bearer "):])
	}
	return ""
}

// SessionAuth guards protected routes behind the session gate.
type SessionAuth struct {
	Gate *session.Gate
}

func (m *SessionAuth) resolve(r *http.Request) (string, error) {
	return m.Gate.Resolve(r.Context(), TokenFromRequest(r))
}

// Require rejects unauthenticated requests with 401.
func (m *SessionAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := m.resolve(r)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	})
}

// RequireOrLogin sends unauthenticated browsers to the login page instead of
// erroring. Missing auth is a control-flow branch here, not a failure.
func (m *SessionAuth) RequireOrLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, err := m.resolve(r)
		if err != nil {
			httpx.Redirect(w, r, "/login")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, uid)))
	})
}
