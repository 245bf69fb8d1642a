package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonathan/content-agent/internal/logger"
	"github.com/jonathan/content-agent/internal/types"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultCacheTTL is how long search results are reused.
const DefaultCacheTTL = 6 * time.Hour

// Cache stores serialized search results.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get implements Cache. Expired entries are evicted on read.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements Cache. A zero ttl never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	rdb    *goredis.Client
	prefix string
}

// NewRedisCache connects to the Redis server at redisURL (redis://host:port/db) and pings it.
func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisCacheFromClient(rdb), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(rdb *goredis.Client) *RedisCache {
	return &RedisCache{rdb: rdb, prefix: "content-agent:"}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

// CachedSearcher serves repeated searches from a Cache. Cache failures are
// logged and fall through to the backend.
type CachedSearcher struct {
	next  Searcher
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedSearcher wraps next. Zero ttl uses DefaultCacheTTL; nil log discards.
func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration, log *logger.Logger) *CachedSearcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CachedSearcher{next: next, cache: cache, ttl: ttl, log: log.With("component", "paper_cache")}
}

// Name implements Searcher.
func (c *CachedSearcher) Name() string { return c.next.Name() }

// Search implements Searcher. Empty results are not cached.
func (c *CachedSearcher) Search(ctx context.Context, topic string, max int) ([]types.Paper, error) {
	max = clampMax(max)
	key := cacheKey(c.next.Name(), topic, max)

	raw, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", "key", key, "error", err)
	}
	if ok {
		var papers []types.Paper
		if err := json.Unmarshal(raw, &papers); err == nil {
			return papers, nil
		}
		c.log.Warn("discarding corrupt cache entry", "key", key)
	}

	c.log.Debug("cache miss", "key", key)
	papers, err := c.next.Search(ctx, topic, max)
	if err != nil || len(papers) == 0 {
		return papers, err
	}
	if raw, err := json.Marshal(papers); err == nil {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.log.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return papers, nil
}

func cacheKey(backend, topic string, max int) string {
	return fmt.Sprintf("papers:%s:%d:%s", backend, max, normalizeTitle(topic))
}
