package sqlstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	oauth2client "github.com/goliatone/go-authprovider/identity/oauth2"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type countingSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]oauth2client.StoredSession
	loadCalls int
}

func (s *countingSessionStore) Load(_ context.Context, key string) (oauth2client.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadCalls++
	session, ok := s.sessions[key]
	if !ok {
		return oauth2client.StoredSession{}, oauth2client.ErrSessionNotFound
	}
	return session, nil
}

func (s *countingSessionStore) Save(_ context.Context, key string, session oauth2client.StoredSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = map[string]oauth2client.StoredSession{}
	}
	s.sessions[key] = session
	return nil
}

func (s *countingSessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

func (s *countingSessionStore) loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadCalls
}

func TestCachedSessionStore_MissFetchThenHit(t *testing.T) {
	base := &countingSessionStore{sessions: map[string]oauth2client.StoredSession{
		"default": {AccessToken: "at-1"},
	}}
	store, err := NewCachedSessionStore(base, newTestCacheService(t))
	if err != nil {
		t.Fatalf("new cached store: %v", err)
	}

	for range 2 {
		session, err := store.Load(context.Background(), "default")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if session.AccessToken != "at-1" {
			t.Fatalf("unexpected access token %q", session.AccessToken)
		}
	}
	if base.loads() != 1 {
		t.Fatalf("expected second load to be a cache hit, base loads=%d", base.loads())
	}
}

func TestCachedSessionStore_SaveInvalidates(t *testing.T) {
	base := &countingSessionStore{sessions: map[string]oauth2client.StoredSession{
		"default": {AccessToken: "at-1"},
	}}
	store, err := NewCachedSessionStore(base, newTestCacheService(t))
	if err != nil {
		t.Fatalf("new cached store: %v", err)
	}
	if _, err := store.Load(context.Background(), "default"); err != nil {
		t.Fatalf("prime cache: %v", err)
	}

	if err := store.Save(context.Background(), "default", oauth2client.StoredSession{AccessToken: "at-2"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	session, err := store.Load(context.Background(), "default")
	if err != nil {
		t.Fatalf("load after save: %v", err)
	}
	if session.AccessToken != "at-2" || base.loads() != 2 {
		t.Fatalf("expected refreshed read after invalidation, got %q loads=%d", session.AccessToken, base.loads())
	}

	if err := store.Delete(context.Background(), "default"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(context.Background(), "default"); !errors.Is(err, oauth2client.ErrSessionNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestSessionCacheKey_Contract(t *testing.T) {
	const expected = "go-authprovider::session::v1::team%2Falpha%20one"
	if key := SessionCacheKey(" team/alpha one "); key != expected {
		t.Fatalf("unexpected cache key: got %q want %q", key, expected)
	}
}

func TestNewCachedSessionStore_RequiresDependencies(t *testing.T) {
	if _, err := NewCachedSessionStore(nil, newTestCacheService(t)); err == nil {
		t.Fatalf("expected base store to be required")
	}
	if _, err := NewCachedSessionStore(&countingSessionStore{}, nil); err == nil {
		t.Fatalf("expected cache service to be required")
	}
}

func newTestCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
