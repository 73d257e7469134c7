// Package session binds opaque session tokens to authenticated user
// identities. The binding is explicit state passed into every caller, never a
// process-wide global.
package session

import (
	"context"
	"sync"
	"time"
)

// Store persists active session ids. A session id maps to exactly one user id
// at a time; absence is reported via ok=false, not an error.
type Store interface {
	Put(ctx context.Context, id, userID string, ttl time.Duration) error
	Get(ctx context.Context, id string) (userID string, ok bool, err error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	userID  string
	expires time.Time
}

// MemoryStore is a mutex-guarded in-process Store, suitable for single-node
// deployments and tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Put(_ context.Context, id, userID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memoryEntry{userID: userID, expires: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(e.expires) {
		delete(s.sessions, id)
		return "", false, nil
	}
	return e.userID, true, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
