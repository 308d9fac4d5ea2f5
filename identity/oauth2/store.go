package oauth2client

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrSessionNotFound = errors.New("oauth2client: session not found")

// SessionStore persists sessions under a caller-chosen key. Load returns
// ErrSessionNotFound when nothing is stored; deleting a missing key is not
// an error.
type SessionStore interface {
	Load(ctx context.Context, key string) (StoredSession, error)
	Save(ctx context.Context, key string, session StoredSession) error
	Delete(ctx context.Context, key string) error
}

type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]StoredSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string]StoredSession{}}
}

func (s *MemorySessionStore) Load(_ context.Context, key string) (StoredSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[strings.TrimSpace(key)]
	if !ok {
		return StoredSession{}, ErrSessionNotFound
	}
	session.Scopes = append([]string(nil), session.Scopes...)
	return session, nil
}

func (s *MemorySessionStore) Save(_ context.Context, key string, session StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = map[string]StoredSession{}
	}
	session.Scopes = append([]string(nil), session.Scopes...)
	s.sessions[strings.TrimSpace(key)] = session
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, strings.TrimSpace(key))
	return nil
}

var _ SessionStore = (*MemorySessionStore)(nil)
