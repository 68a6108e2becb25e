// Package cache provides the Redis-backed duplicate scan cache.
package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"hireline/internal/platform/redis"
)

// RedisCache stores serialized scan results with a TTL so stale results age
// out as the pool grows.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached value or (nil, nil) on miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return raw, nil
}

// Set stores the value under the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, c.ttl).Err()
}
