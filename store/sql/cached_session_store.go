package sqlstore

import (
	"context"
	"net/url"
	"strings"

	oauth2client "github.com/goliatone/go-authprovider/identity/oauth2"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const sessionCacheKeyPrefix = "go-authprovider::session::v1"

// CachedSessionStore is a read-through cache in front of another store.
// Writes go to the base store first and then drop the cached entry.
type CachedSessionStore struct {
	base  oauth2client.SessionStore
	cache repositorycache.CacheService
}

func NewCachedSessionStore(base oauth2client.SessionStore, cacheService repositorycache.CacheService) (*CachedSessionStore, error) {
	if base == nil {
		return nil, storeError(ErrorStoreNotConfigured, "sqlstore: base session store is required", nil, nil)
	}
	if cacheService == nil {
		return nil, storeError(ErrorStoreNotConfigured, "sqlstore: session cache service is required", nil, nil)
	}
	return &CachedSessionStore{base: base, cache: cacheService}, nil
}

// SessionCacheKey is go-authprovider::session::v1::<key> with the key
// URL-path escaped.
func SessionCacheKey(key string) string {
	return sessionCacheKeyPrefix + "::" + url.PathEscape(strings.TrimSpace(key))
}

func (s *CachedSessionStore) Load(ctx context.Context, key string) (oauth2client.StoredSession, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return oauth2client.StoredSession{}, storeError(ErrorStoreNotConfigured, "sqlstore: cached session store is not configured", nil, nil)
	}
	session, err := repositorycache.GetOrFetch(ctx, s.cache, SessionCacheKey(key), func(ctx context.Context) (oauth2client.StoredSession, error) {
		return s.base.Load(ctx, key)
	})
	if err != nil {
		return oauth2client.StoredSession{}, err
	}
	session.Scopes = append([]string(nil), session.Scopes...)
	return session, nil
}

func (s *CachedSessionStore) Save(ctx context.Context, key string, session oauth2client.StoredSession) error {
	if s == nil || s.base == nil || s.cache == nil {
		return storeError(ErrorStoreNotConfigured, "sqlstore: cached session store is not configured", nil, nil)
	}
	if err := s.base.Save(ctx, key, session); err != nil {
		return err
	}
	return s.cache.Delete(ctx, SessionCacheKey(key))
}

func (s *CachedSessionStore) Delete(ctx context.Context, key string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return storeError(ErrorStoreNotConfigured, "sqlstore: cached session store is not configured", nil, nil)
	}
	if err := s.base.Delete(ctx, key); err != nil {
		return err
	}
	return s.cache.Delete(ctx, SessionCacheKey(key))
}

var _ oauth2client.SessionStore = (*CachedSessionStore)(nil)
