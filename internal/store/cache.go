package store

import (
	"context"
	"encoding/json"
	"log"
	"reflect"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the slice of the go-redis API the cache uses. Narrowed so
// tests can substitute a fake without a running server.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Cache is a best-effort key-value layer in front of the store. It is an
// optional enhancement, not a correctness dependency: every failure mode
// (no backend, backend error, garbage value) degrades to "behave as if
// nothing were cached". Failures never reach callers but are logged for
// diagnostics.
type Cache struct {
	client redisClient
	ttl    time.Duration
	logger *log.Logger
}

// NewCache wraps a Redis client. A nil client yields a cache where every
// read misses and every write is a no-op.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	c := &Cache{ttl: ttl, logger: log.Default()}
	if client != nil {
		c.client = client
	}
	return c
}

func newCacheWithClient(client redisClient, ttl time.Duration, logger *log.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// GetRaw returns the stored string for key. ok is false on miss, missing
// backend, or any backend error.
func (c *Cache) GetRaw(ctx context.Context, key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.logger.Printf("cache get %s: %v", key, err)
		return "", false
	}
	return val, true
}

// SetRaw stores value under key, best effort.
func (c *Cache) SetRaw(ctx context.Context, key, value string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		c.logger.Printf("cache set %s: %v", key, err)
	}
}

// RemoveRaw deletes key, best effort.
func (c *Cache) RemoveRaw(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Printf("cache del %s: %v", key, err)
	}
}

// GetJSON unmarshals the value stored under key into out and reports whether
// it succeeded. Miss, backend error, and unparsable value all leave out
// untouched and return false, so the caller's fallback stays in effect.
// Decoding goes through a scratch value so a stored blob that fails halfway
// (valid JSON, wrong field type) cannot partially populate out.
func (c *Cache) GetJSON(ctx context.Context, key string, out interface{}) bool {
	raw, ok := c.GetRaw(ctx, key)
	if !ok {
		return false
	}

	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}

	tmp := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal([]byte(raw), tmp.Interface()); err != nil {
		c.logger.Printf("cache parse %s: %v", key, err)
		return false
	}
	rv.Elem().Set(tmp.Elem())
	return true
}

// SetJSON serializes value and delegates to SetRaw.
func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		if c != nil && c.logger != nil {
			c.logger.Printf("cache marshal %s: %v", key, err)
		}
		return
	}
	c.SetRaw(ctx, key, string(data))
}
