package cache

import (
	"context"
	"time"
)

// Cache defines the contract for the cache layer.
// Implementations: Redis (infrastructure/cache.RedisCache) and a no-op fallback.
type Cache interface {
	// Get loads the cached value into dest.
	// found = false on cache miss, dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value (JSON encoded) with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the keys from the cache.
	Delete(ctx context.Context, keys ...string) error

	// Ping checks the connection.
	Ping(ctx context.Context) error
}
