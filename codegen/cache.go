package codegen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss indicates the key is not cached.
var ErrCacheMiss = errors.New("cache miss")

// ResponseCache stores generated content keyed by prompt digest, so that
// re-running the pipeline does not re-bill identical prompts.
type ResponseCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, content string) error
}

// CacheKey derives the cache key from the model and the full prompt.
func CacheKey(model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// MemoryCache is an in-process fallback cache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	content, ok := c.items[key]
	if !ok {
		return "", ErrCacheMiss
	}
	return content, nil
}

func (c *MemoryCache) Set(_ context.Context, key, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = content
	return nil
}

// RedisCache persists responses in Redis with a TTL, shared across runs
// and across machines.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	content, err := c.client.Get(ctx, c.redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *RedisCache) Set(ctx context.Context, key, content string) error {
	return c.client.Set(ctx, c.redisKey(key), content, c.ttl).Err()
}

func (c *RedisCache) redisKey(key string) string {
	return "codegen:cache:" + key
}
