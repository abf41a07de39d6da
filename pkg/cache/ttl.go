package cache

import (
	"context"
	"time"
)

// ttlCache replaces the TTL of every Set with a fixed value.
type ttlCache struct {
	Cache
	ttl time.Duration
}

// WithTTL returns a cache that stores every entry in c with the given TTL,
// regardless of the TTL requested by the caller. A ttl <= 0 returns c as is.
func WithTTL(c Cache, ttl time.Duration) Cache {
	if ttl <= 0 {
		return c
	}
	return &ttlCache{Cache: c, ttl: ttl}
}

func (c *ttlCache) Set(ctx context.Context, key string, data []byte, _ time.Duration) error {
	return c.Cache.Set(ctx, key, data, c.ttl)
}
