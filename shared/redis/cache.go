package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// setIfVersion stores ARGV[2] under KEYS[1] only while the version counter in
// KEYS[2] still reads ARGV[1]. ARGV[3] is the TTL in milliseconds, 0 for none.
var setIfVersion = goredis.NewScript(`
local current = redis.call('GET', KEYS[2])
if (current or '') ~= ARGV[1] then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
  redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// ViewCache is a generic JSON-backed Redis cache for read model projections.
// Bind it to a specific view type T; each instance holds a Redis client and an
// optional TTL (pass 0 for keys that should not expire).
type ViewCache[T any] struct {
	client goredis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

// NewViewCache creates a ViewCache backed by the provided Redis client.
func NewViewCache[T any](client goredis.Cmdable, ttl time.Duration, log *zap.Logger) *ViewCache[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &ViewCache[T]{client: client, ttl: ttl, log: log}
}

// Get retrieves and unmarshals a value from Redis.
// Returns (nil, false) on any miss or deserialisation error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("view cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Set marshals value and stores it in Redis under key.
// Errors are logged rather than returned; a failed cache write is non-fatal.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("view cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete removes a key from Redis.
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("view cache delete failed", zap.String("key", key), zap.Error(err))
	}
}

func versionKey(key string) string {
	return key + ":version"
}

// Version reads the invalidation counter of key. Read it before loading the
// value to cache and pass it to SetIfVersion. ok is false when Redis could
// not be read, in which case the caller should skip caching.
func (c *ViewCache[T]) Version(ctx context.Context, key string) (version string, ok bool) {
	v, err := c.client.Get(ctx, versionKey(key)).Result()
	if err == goredis.Nil {
		return "", true
	}
	if err != nil {
		c.log.Warn("view cache version read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return v, true
}

// SetIfVersion stores value unless key was invalidated after version was
// read. It reports whether the value was stored.
func (c *ViewCache[T]) SetIfVersion(ctx context.Context, key, version string, value *T) bool {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("view cache marshal failed", zap.String("key", key), zap.Error(err))
		return false
	}
	stored, err := setIfVersion.Run(ctx, c.client,
		[]string{key, versionKey(key)}, version, data, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.log.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return stored == 1
}

// Invalidate bumps the version of key and removes the cached value, so
// loads that started earlier can no longer store theirs.
func (c *ViewCache[T]) Invalidate(ctx context.Context, key string) {
	_, err := c.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Incr(ctx, versionKey(key))
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		c.log.Warn("view cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
