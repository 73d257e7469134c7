package session

import (
	"context"
	"errors"

	"github.com/afisha-board/backend/internal/auth"
)

// ErrUnauthenticated means the token did not resolve to a live session. It is
// a control-flow signal for callers (redirect to login), not a fault.
var ErrUnauthenticated = errors.New("unauthenticated")

// Gate is the single entry point for session-scoped authorization: it mints
// tokens on login, resolves them on every protected request and revokes them
// on logout.
type Gate struct {
	tm    *auth.TokenManager
	store Store
}

func NewGate(tm *auth.TokenManager, store Store) *Gate {
	return &Gate{tm: tm, store: store}
}

// Establish binds a fresh session token to userID and returns the token.
func (g *Gate) Establish(ctx context.Context, userID string) (string, error) {
	token, jti, err := g.tm.Issue(userID)
	if err != nil {
		return "", err
	}
	if err := g.store.Put(ctx, jti, userID, g.tm.TTL()); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user id bound to token. The token must both carry a
// valid signature and still be present in the store; a logged-out token fails
// even before its expiry.
func (g *Gate) Resolve(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	claims, err := g.tm.Parse(token)
	if err != nil {
		return "", ErrUnauthenticated
	}
	userID, ok, err := g.store.Get(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if !ok || userID != claims.UserID {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// Clear revokes the session behind token. Clearing an unknown, malformed or
// already-cleared token is a no-op.
func (g *Gate) Clear(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := g.tm.Parse(token)
	if err != nil {
		return nil
	}
	return g.store.Delete(ctx, claims.ID)
}
