package ranking

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// CacheKeyPrefix namespaces response cache entries in Redis.
const CacheKeyPrefix = "rankings:cache"

// ResponseCache stores rendered responses. Fetch reports a miss as false
// with a nil error.
type ResponseCache interface {
	Fetch(ctx context.Context, key string, dst any) (bool, error)
	Store(ctx context.Context, key string, value any) error
}

// RedisCache keys every entry by the served dataset version, so a reload
// retires old entries without a flush. TTL reclaims them.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	version func() string
	healthy func() bool
}

// NewRedisCache builds the cache. healthy may be nil.
func NewRedisCache(client *redis.Client, ttl time.Duration, version func() string, healthy func() bool) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, version: version, healthy: healthy}
}

// Key returns the full Redis key for a logical key.
func (c *RedisCache) Key(key string) string {
	return CacheKeyPrefix + ":" + c.version() + ":" + key
}

func (c *RedisCache) usable() bool {
	return c.healthy == nil || c.healthy()
}

func (c *RedisCache) Fetch(ctx context.Context, key string, dst any) (bool, error) {
	if !c.usable() {
		return false, nil
	}
	data, err := c.client.Get(ctx, c.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Store(ctx context.Context, key string, value any) error {
	if !c.usable() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.Key(key), data, c.ttl).Err()
}
