package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheGenerationKey = "availability:slot:generation"

// SlotCache is the read-path cache for slot availability. Entries expire on
// their TTL and the whole cache is invalidated at once by bumping a
// generation counter, which orphans every key of the previous generation.
//
// The cache is a rendering aid only: a stale "available" badge is corrected
// on the next refresh. The write-path check never consults it.
type SlotCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewSlotCache creates a cache with the given entry TTL.
func NewSlotCache(redisClient *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{redis: redisClient, ttl: ttl}
}

// Get returns the cached availability for a slot and whether it was present.
// Any Redis error is reported as a miss; the caller refetches from the store.
func (c *SlotCache) Get(ctx context.Context, key SlotKey) (available bool, ok bool) {
	if c == nil || c.redis == nil {
		return false, false
	}
	gen, err := c.generation(ctx)
	if err != nil {
		return false, false
	}
	val, err := c.redis.Get(ctx, c.entryKey(gen, key)).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

// Put stores the availability of a slot under the current generation.
// Failures are dropped; the cache never blocks a query path.
func (c *SlotCache) Put(ctx context.Context, key SlotKey, available bool) {
	if c == nil || c.redis == nil {
		return
	}
	gen, err := c.generation(ctx)
	if err != nil {
		return
	}
	val := "0"
	if available {
		val = "1"
	}
	c.redis.Set(ctx, c.entryKey(gen, key), val, c.ttl)
}

// Invalidate drops every cached entry by advancing the generation.
func (c *SlotCache) Invalidate(ctx context.Context) error {
	if c == nil || c.redis == nil {
		return nil
	}
	if err := c.redis.Incr(ctx, cacheGenerationKey).Err(); err != nil {
		return fmt.Errorf("availability: invalidate cache: %w", err)
	}
	return nil
}

func (c *SlotCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.redis.Get(ctx, cacheGenerationKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return gen, nil
}

func (c *SlotCache) entryKey(gen int64, key SlotKey) string {
	return fmt.Sprintf("availability:slot:%d:%s:%s:%s:%s", gen, key.Date, key.Time, key.Method, key.LocationKey)
}
