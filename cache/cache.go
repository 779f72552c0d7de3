package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a thin JSON cache over Redis. A nil *Cache is a valid no-op
// cache, so callers never branch on whether Redis is configured.
type Cache struct {
	client *redis.Client
	log    *zap.Logger
}

// New connects to Redis at addr. An empty addr disables caching.
func New(addr string, log *zap.Logger) *Cache {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warn("redis unreachable, cache disabled", zap.Error(err))
		return nil
	}
	return &Cache{client: client, log: log}
}

// Get unmarshals the cached value for key into dest. Returns false on
// miss or any error; cache errors never surface to callers.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.Warn("cache entry corrupt, dropping", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return false
	}
	return true
}

// Set stores value under key for ttl.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate removes keys, e.g. after an admin product mutation.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil {
		return
	}
	c.client.Del(ctx, keys...)
}
