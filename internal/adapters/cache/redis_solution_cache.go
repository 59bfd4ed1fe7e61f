package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "driver-route-planner:"

// Redis backed solution cache. Entries expire through Redis TTLs.
type RedisSolutionCache struct {
	rdb *redis.Client
}

// Connect using a redis:// URL such as REDIS_URL.
func NewRedisSolutionCache(url string) (*RedisSolutionCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis solution cache: parse url: %w", err)
	}
	return &RedisSolutionCache{rdb: redis.NewClient(opt)}, nil
}

func NewRedisSolutionCacheFromClient(rdb *redis.Client) *RedisSolutionCache {
	return &RedisSolutionCache{rdb: rdb}
}

// Ping verifies the connection.
func (c *RedisSolutionCache) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis solution cache: ping: %w", err)
	}
	return nil
}

func (c *RedisSolutionCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis solution cache: get %q: %w", key, err)
	}
	return payload, true, nil
}

func (c *RedisSolutionCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis solution cache: set %q: %w", key, err)
	}
	return nil
}

func (c *RedisSolutionCache) Close() error {
	return c.rdb.Close()
}
