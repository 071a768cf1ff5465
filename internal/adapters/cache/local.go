package cache

import (
	"context"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/tidwall/match"

	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
	"github.com/abdulghaffar349/leaderboard-service/pkg/metrics"
)

const backendLocal = "local"

var _ PopularityCache = (*LocalCache)(nil)

// LocalCache keeps flags and responses in two expiring LRUs, one per TTL.
// Only the response LRU is size bounded; a popularity flag leaves only when
// its TTL runs out or it is invalidated. Keys and patterns use the same
// layout as RedisCache.
type LocalCache struct {
	threshold int
	flags     *expirable.LRU[string, struct{}]
	responses *expirable.LRU[string, []types.ScoreRecord]
	logger    logger.Logger
}

// NewLocalCache constructs an in-process cache.
func NewLocalCache(opts ...Option) *LocalCache {
	s := newSettings(opts)
	return &LocalCache{
		threshold: s.threshold,
		flags:     expirable.NewLRU[string, struct{}](0, nil, s.popularTTL),
		responses: expirable.NewLRU[string, []types.ScoreRecord](s.size, nil, s.responseTTL),
		logger:    s.logger,
	}
}

// Backend implements PopularityCache.
func (c *LocalCache) Backend() string { return backendLocal }

// IsPopular implements PopularityCache.
func (c *LocalCache) IsPopular(_ context.Context, gameID string) (bool, error) {
	_, ok := c.flags.Get(PopularKey(gameID))
	return ok, nil
}

// TrackPopularity implements PopularityCache.
func (c *LocalCache) TrackPopularity(_ context.Context, gameID string, userCount int) error {
	if userCount < c.threshold {
		return nil
	}
	c.flags.Add(PopularKey(gameID), struct{}{})
	metrics.RecordPopularityMark()
	return nil
}

// CacheLeaderboard implements PopularityCache.
func (c *LocalCache) CacheLeaderboard(ctx context.Context, gameID string, limit int, entries []types.ScoreRecord) error {
	if popular, _ := c.IsPopular(ctx, gameID); !popular {
		return nil
	}
	c.responses.Add(ResponseKey(gameID, limit), clone(entries))
	return nil
}

// GetCachedLeaderboard implements PopularityCache.
func (c *LocalCache) GetCachedLeaderboard(_ context.Context, gameID string, limit int) ([]types.ScoreRecord, bool, error) {
	entries, ok := c.responses.Get(ResponseKey(gameID, limit))
	if !ok {
		metrics.RecordCacheMiss(backendLocal)
		return nil, false, nil
	}
	metrics.RecordCacheHit(backendLocal)
	return clone(entries), true, nil
}

// Invalidate implements PopularityCache.
func (c *LocalCache) Invalidate(ctx context.Context, pattern string) {
	metrics.RecordCacheInvalidation()

	if pattern == "" {
		c.flags.Purge()
		c.responses.Purge()
		c.logger.Debug(ctx, "cache flushed")
		return
	}

	removed := 0
	for _, k := range c.responses.Keys() {
		if match.Match(k, pattern) && c.responses.Remove(k) {
			removed++
		}
	}
	for _, k := range c.flags.Keys() {
		if match.Match(k, pattern) && c.flags.Remove(k) {
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug(ctx, "cache invalidated",
			logger.String("pattern", pattern),
			logger.Int("keys", removed),
		)
	}
}

func clone(entries []types.ScoreRecord) []types.ScoreRecord {
	out := make([]types.ScoreRecord, len(entries))
	copy(out, entries)
	return out
}
