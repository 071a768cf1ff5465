// Package cache implements the popularity-aware leaderboard read cache.
//
// A game becomes popular once its member count reaches a threshold; the flag
// lives for a TTL and is refreshed by every qualifying write. Only popular
// games have their leaderboard responses cached, keyed by (game, limit).
package cache

import (
	"context"

	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
)

// PopularityCache tracks popular games and caches their leaderboard reads.
type PopularityCache interface {
	// IsPopular reports whether a live popularity flag exists for gameID.
	IsPopular(ctx context.Context, gameID string) (bool, error)

	// TrackPopularity sets or refreshes the flag when userCount reaches the
	// threshold. Lower counts are ignored and never clear a live flag.
	TrackPopularity(ctx context.Context, gameID string, userCount int) error

	// CacheLeaderboard stores entries under (gameID, limit). No-op for games
	// that are not popular.
	CacheLeaderboard(ctx context.Context, gameID string, limit int, entries []types.ScoreRecord) error

	// GetCachedLeaderboard returns the cached entries and whether they were present.
	GetCachedLeaderboard(ctx context.Context, gameID string, limit int) ([]types.ScoreRecord, bool, error)

	// Invalidate removes every key matching pattern, or every cache key when
	// pattern is empty. Failures are logged, never returned.
	Invalidate(ctx context.Context, pattern string)

	// Backend names the implementation ("redis" or "local").
	Backend() string
}
