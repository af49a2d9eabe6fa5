package redis

import (
	"context"
	"errors"
	"time"

	"github.com/campusconnect/collab-hub/internal/domain/profile"
	"github.com/campusconnect/collab-hub/internal/domain/shared"
)

// ProfileCache implements profile.Cache using the generic Redis Cache.
// It holds the whole candidate pool under one key: the matching engine
// always scores against the full pool, so per-profile caching would only
// multiply round trips.
type ProfileCache struct {
	cache *Cache
}

// NewProfileCache creates a new ProfileCache.
func NewProfileCache(cache *Cache) *ProfileCache {
	return &ProfileCache{cache: cache}
}

// GetPool returns the cached candidate pool.
// A miss surfaces as shared.ErrNotFound so callers fall through to the store.
func (c *ProfileCache) GetPool(ctx context.Context) ([]*profile.Profile, error) {
	var pool []*profile.Profile
	err := c.cache.Get(ctx, PoolKey(), &pool)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return pool, nil
}

// SetPool stores the candidate pool with the given TTL.
func (c *ProfileCache) SetPool(ctx context.Context, profiles []*profile.Profile, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLPoolCache
	}
	return c.cache.Set(ctx, PoolKey(), profiles, ttl)
}

// Invalidate drops the cached pool.
func (c *ProfileCache) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, PoolKey())
}
