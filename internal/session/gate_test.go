package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afisha-board/backend/internal/auth"
)

func newTestGate(t *testing.T, ttl time.Duration) *Gate {
	t.Helper()
	return NewGate(auth.NewTokenManager("test-secret", ttl), NewMemoryStore())
}

func TestGateEstablishResolve(t *testing.T) {
	g := newTestGate(t, time.Hour)
	ctx := context.Background()

	token, err := g.Establish(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	uid, err := g.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestGateResolveRejectsGarbage(t *testing.T) {
	g := newTestGate(t, time.Hour)
	ctx := context.Background()

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := g.Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	}
}

func TestGateResolveRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	other := NewGate(auth.NewTokenManager("other-secret", time.Hour), NewMemoryStore())
	token, err := other.Establish(ctx, "user-1")
	require.NoError(t, err)

	g := newTestGate(t, time.Hour)
	_, err = g.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGateClearRevokes(t *testing.T) {
	g := newTestGate(t, time.Hour)
	ctx := context.Background()

	token, err := g.Establish(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, g.Clear(ctx, token))
	_, err = g.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// clearing again is not an error
	require.NoError(t, g.Clear(ctx, token))
	require.NoError(t, g.Clear(ctx, "garbage"))
	require.NoError(t, g.Clear(ctx, ""))
}

func TestGateResolveExpiredSession(t *testing.T) {
	g := newTestGate(t, -time.Minute)
	ctx := context.Background()

	token, err := g.Establish(ctx, "user-1")
	require.NoError(t, err)

	_, err = g.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "sid", "user-1", -time.Second))
	_, ok, err := s.Get(ctx, "sid")
	require.NoError(t, err)
	assert.False(t, ok)
}
