package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
	"github.com/abdulghaffar349/leaderboard-service/pkg/metrics"
)

const backendRedis = "redis"

var _ PopularityCache = (*RedisCache)(nil)

// RedisCache keeps flags and responses in Redis with native key expiry.
type RedisCache struct {
	client      redis.Cmdable
	threshold   int
	popularTTL  time.Duration
	responseTTL time.Duration
	scanCount   int64
	logger      logger.Logger
}

// NewRedisCache constructs a cache on client.
func NewRedisCache(client redis.Cmdable, opts ...Option) *RedisCache {
	s := newSettings(opts)
	return &RedisCache{
		client:      client,
		threshold:   s.threshold,
		popularTTL:  s.popularTTL,
		responseTTL: s.responseTTL,
		scanCount:   s.scanCount,
		logger:      s.logger,
	}
}

// Backend implements PopularityCache.
func (c *RedisCache) Backend() string { return backendRedis }

// IsPopular implements PopularityCache.
func (c *RedisCache) IsPopular(ctx context.Context, gameID string) (bool, error) {
	n, err := c.client.Exists(ctx, PopularKey(gameID)).Result()
	if err != nil {
		metrics.RecordCacheError(backendRedis)
		return false, fmt.Errorf("%w: exists: %w", ErrBackend, err)
	}
	return n > 0, nil
}

// TrackPopularity implements PopularityCache.
func (c *RedisCache) TrackPopularity(ctx context.Context, gameID string, userCount int) error {
	if userCount < c.threshold {
		return nil
	}
	if err := c.client.SetEx(ctx, PopularKey(gameID), "true", c.popularTTL).Err(); err != nil {
		metrics.RecordCacheError(backendRedis)
		return fmt.Errorf("%w: setex: %w", ErrBackend, err)
	}
	metrics.RecordPopularityMark()
	return nil
}

// CacheLeaderboard implements PopularityCache.
func (c *RedisCache) CacheLeaderboard(ctx context.Context, gameID string, limit int, entries []types.ScoreRecord) error {
	popular, err := c.IsPopular(ctx, gameID)
	if err != nil || !popular {
		return err
	}

	if entries == nil {
		entries = []types.ScoreRecord{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := c.client.SetEx(ctx, ResponseKey(gameID, limit), data, c.responseTTL).Err(); err != nil {
		metrics.RecordCacheError(backendRedis)
		return fmt.Errorf("%w: setex: %w", ErrBackend, err)
	}
	return nil
}

// GetCachedLeaderboard implements PopularityCache.
func (c *RedisCache) GetCachedLeaderboard(ctx context.Context, gameID string, limit int) ([]types.ScoreRecord, bool, error) {
	data, err := c.client.Get(ctx, ResponseKey(gameID, limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss(backendRedis)
		return nil, false, nil
	}
	if err != nil {
		metrics.RecordCacheError(backendRedis)
		return nil, false, fmt.Errorf("%w: get: %w", ErrBackend, err)
	}

	var entries []types.ScoreRecord
	if err := json.Unmarshal(data, &entries); err != nil {
		metrics.RecordCacheError(backendRedis)
		return nil, false, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	metrics.RecordCacheHit(backendRedis)
	return entries, true, nil
}

// Invalidate implements PopularityCache. An empty pattern deletes only the
// cache's own key families, never other data sharing the Redis instance.
func (c *RedisCache) Invalidate(ctx context.Context, pattern string) {
	metrics.RecordCacheInvalidation()

	patterns := []string{pattern}
	if pattern == "" {
		patterns = allPatterns()
	}
	for _, p := range patterns {
		n, err := c.deleteMatching(ctx, p)
		if err != nil {
			metrics.RecordCacheError(backendRedis)
			metrics.RecordErrorByComponent("cache", "invalidate")
			c.logger.Error(ctx, "cache invalidation failed",
				logger.String("pattern", p),
				logger.Error(err),
			)
			continue
		}
		if n > 0 {
			c.logger.Debug(ctx, "cache invalidated",
				logger.String("pattern", p),
				logger.Int("keys", n),
			)
		}
	}
}

func (c *RedisCache) deleteMatching(ctx context.Context, pattern string) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, c.scanCount).Result()
		if err != nil {
			return deleted, fmt.Errorf("scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, fmt.Errorf("del: %w", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}
