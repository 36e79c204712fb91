package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"ai-knowledge-router-be/internal/pkg/logger"
	"ai-knowledge-router-be/pkg/store"

	goredis "github.com/redis/go-redis/v9"
)

// QueryCacheConfig configures the search result cache
type QueryCacheConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

// QueryCache stores normalized search results in Redis. A nil cache, a
// disabled cache and Redis errors all behave as a miss.
type QueryCache struct {
	redis  *goredis.Client
	config QueryCacheConfig
	logger logger.ILogger
}

func NewQueryCache(redis *goredis.Client, config QueryCacheConfig, logger logger.ILogger) *QueryCache {
	if config.TTL <= 0 {
		config.TTL = 30 * time.Minute
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "search:web:"
	}
	return &QueryCache{
		redis:  redis,
		config: config,
		logger: logger,
	}
}

func (c *QueryCache) key(query string) string {
	hash := sha256.Sum256([]byte(strings.ToLower(strings.Join(strings.Fields(query), " "))))
	return c.config.KeyPrefix + hex.EncodeToString(hash[:])
}

func (c *QueryCache) enabled() bool {
	return c != nil && c.config.Enabled && c.redis != nil
}

// Get returns cached results for query
func (c *QueryCache) Get(ctx context.Context, query string) ([]store.ScoredDocument, bool) {
	if !c.enabled() {
		return nil, false
	}

	key := c.key(query)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.Warn(module, "Failed to read search cache", map[string]interface{}{
				"error": err.Error(),
				"key":   key,
			})
		}
		return nil, false
	}

	var docs []store.ScoredDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		c.logger.Warn(module, "Dropping corrupt search cache entry", map[string]interface{}{
			"error": err.Error(),
			"key":   key,
		})
		_ = c.redis.Del(ctx, key).Err()
		return nil, false
	}
	return docs, true
}

// Set caches results for query. Failures are logged and ignored.
func (c *QueryCache) Set(ctx context.Context, query string, docs []store.ScoredDocument) {
	if !c.enabled() {
		return
	}

	data, err := json.Marshal(docs)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, c.key(query), data, c.config.TTL).Err(); err != nil {
		c.logger.Warn(module, "Failed to write search cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
