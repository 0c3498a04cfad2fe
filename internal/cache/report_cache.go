// Package cache provides a two-tier cache for rendered report documents:
// an in-memory LRU for hot entries and an optional Redis tier shared across
// instances.
package cache

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
)

const defaultMemoryItems = 256

// memoryEntry holds a cached document with its expiry.
type memoryEntry struct {
	document  []byte
	expiresAt time.Time
}

// ReportCache caches rendered documents by content key. The memory tier is
// always present; the Redis tier is enabled only when a Redis URL is
// configured. Cache failures degrade to a miss, never an error.
type ReportCache struct {
	memory     *lru.Cache[string, memoryEntry]
	redis      *redis.Client
	defaultTTL time.Duration
	logger     *logrus.Logger
}

// NewReportCache creates a report cache from configuration. When the Redis
// tier is configured the connection is verified before use.
func NewReportCache(config domain.CacheConfig, logger *logrus.Logger) (*ReportCache, error) {
	items := config.MemoryItems
	if items <= 0 {
		items = defaultMemoryItems
	}

	memory, err := lru.New[string, memoryEntry](items)
	if err != nil {
		return nil, err
	}

	ttl := config.DefaultTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	c := &ReportCache{
		memory:     memory,
		defaultTTL: ttl,
		logger:     logger,
	}

	if config.RedisURL != "" {
		opts, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(opts)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, falling back to memory-only cache")
		} else {
			c.redis = client
		}
	}

	return c, nil
}

// Get retrieves a cached document. The memory tier is consulted first; a
// Redis hit is promoted into memory.
func (c *ReportCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if entry, ok := c.memory.Get(key); ok {
		if time.Now().Before(entry.expiresAt) {
			return entry.document, true
		}
		c.memory.Remove(key)
	}

	if c.redis == nil {
		return nil, false
	}

	val, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Redis cache read failed")
		return nil, false
	}

	c.memory.Add(key, memoryEntry{document: val, expiresAt: time.Now().Add(c.defaultTTL)})
	return val, true
}

// Set stores a document in both tiers.
func (c *ReportCache) Set(ctx context.Context, key string, document []byte) {
	c.memory.Add(key, memoryEntry{document: document, expiresAt: time.Now().Add(c.defaultTTL)})

	if c.redis == nil {
		return
	}
	if err := c.redis.Set(ctx, key, document, c.defaultTTL).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Redis cache write failed")
	}
}

// Ping checks the Redis tier; memory-only caches are always healthy.
func (c *ReportCache) Ping(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Ping(ctx).Err()
}

// Close releases the Redis connection, if any.
func (c *ReportCache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
