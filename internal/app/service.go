// Package service provides the ranking service: it applies score updates to
// the ranked store, tracks game popularity and serves leaderboard reads
// through the popularity cache.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/cache"
	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/repository"
	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
	"github.com/abdulghaffar349/leaderboard-service/pkg/metrics"
)

// Service owns one ranked store and one popularity cache for the process lifetime.
type Service struct {
	mu sync.RWMutex

	store repository.Store
	cache cache.PopularityCache
	clock func() time.Time

	started   bool
	startedAt time.Time

	// writes counts accepted writes per game (*atomic.Uint64).
	writes sync.Map

	logger logger.Logger
}

// New constructs a Service over store and popularity.
func New(store repository.Store, popularity cache.PopularityCache, opts ...Option) *Service {
	s := &Service{
		store: store,
		cache: popularity,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start marks the service as serving.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true
	s.startedAt = s.clock()
	s.logger.Info(ctx, "ranking service started",
		logger.String("store", s.store.Backend()),
		logger.String("cache", s.cache.Backend()),
	)
	return nil
}

// Stop marks the service as stopped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "ranking service stopped")
}

// UpdateScore records u in the ranked store, refreshes the game's popularity
// and invalidates its cached responses. A store failure is returned before
// any of that bookkeeping happens.
func (s *Service) UpdateScore(ctx context.Context, u types.ScoreUpdate) (types.UpdateResult, error) {
	if u.GameID == "" {
		return types.UpdateResult{}, ErrInvalidGame
	}
	ts := u.Timestamp
	if ts.IsZero() {
		ts = s.clock()
	}

	board := s.store.SelectGame(u.GameID)
	if err := board.UpdateMemberScore(ctx, u.UserID, u.Score, ts); err != nil {
		metrics.RecordScoreUpdateError()
		return types.UpdateResult{}, fmt.Errorf("update score: %w", err)
	}

	count, err := board.GetMemberCount(ctx)
	if err != nil {
		s.logger.Warn(ctx, "member count unavailable, popularity not tracked",
			logger.String("gameId", u.GameID),
			logger.Error(err),
		)
	} else if err := s.cache.TrackPopularity(ctx, u.GameID, count); err != nil {
		s.cacheFailed(ctx, "track popularity", u.GameID, err)
	}

	s.writeCounter(u.GameID).Add(1)
	s.cache.Invalidate(ctx, cache.GamePattern(u.GameID))
	metrics.RecordScoreUpdate()

	return types.UpdateResult{GameID: u.GameID, UserID: u.UserID, Score: u.Score}, nil
}

// GetMembers returns the top limit records of gameID. Unpopular games are
// always read from the store; popular games go through the cache. A store
// read that overlapped a write to the same game is returned but not cached.
func (s *Service) GetMembers(ctx context.Context, gameID string, limit int) ([]types.ScoreRecord, error) {
	board := s.store.SelectGame(gameID)
	metrics.RecordLeaderboardRead()

	popular, err := s.cache.IsPopular(ctx, gameID)
	if err != nil {
		s.cacheFailed(ctx, "is popular", gameID, err)
		popular = false
	}
	if !popular {
		return board.GetMembers(ctx, limit)
	}

	cached, found, err := s.cache.GetCachedLeaderboard(ctx, gameID, limit)
	if err != nil {
		s.cacheFailed(ctx, "get cached leaderboard", gameID, err)
	}
	if found {
		return cached, nil
	}

	writes := s.writeCounter(gameID)
	before := writes.Load()
	members, err := board.GetMembers(ctx, limit)
	if err != nil {
		return nil, err
	}
	if writes.Load() != before {
		s.logger.Debug(ctx, "leaderboard changed during read, not caching", logger.String("gameId", gameID))
		return members, nil
	}
	if err := s.cache.CacheLeaderboard(ctx, gameID, limit, members); err != nil {
		s.cacheFailed(ctx, "cache leaderboard", gameID, err)
	}
	return members, nil
}

// writeCounter returns the write counter of gameID. It is bumped before the
// game's cache entries are invalidated.
func (s *Service) writeCounter(gameID string) *atomic.Uint64 {
	v, _ := s.writes.LoadOrStore(gameID, new(atomic.Uint64))
	return v.(*atomic.Uint64)
}

// GetGameSize returns the number of members of gameID.
func (s *Service) GetGameSize(ctx context.Context, gameID string) (int, error) {
	return s.store.SelectGame(gameID).GetMemberCount(ctx)
}

// GetLeaderboard returns the member count and the top limit records of gameID.
// An unknown game yields an empty leaderboard.
func (s *Service) GetLeaderboard(ctx context.Context, gameID string, limit int) (types.Leaderboard, error) {
	if gameID == "" {
		return types.Leaderboard{}, ErrInvalidGame
	}

	members, err := s.GetMembers(ctx, gameID, limit)
	if err != nil {
		return types.Leaderboard{}, fmt.Errorf("get members: %w", err)
	}
	count, err := s.GetGameSize(ctx, gameID)
	if err != nil {
		return types.Leaderboard{}, fmt.Errorf("get game size: %w", err)
	}
	if members == nil {
		members = []types.ScoreRecord{}
	}
	return types.Leaderboard{Count: count, Leaderboard: members}, nil
}

// ExportDataToDB writes every game changed since the last export to the archive.
func (s *Service) ExportDataToDB(ctx context.Context) error {
	err := s.store.ExportAll(ctx)
	if err != nil && !errors.Is(err, repository.ErrNoArchive) {
		metrics.RecordErrorByComponent("export", "partial")
	}
	return err
}

// ResetCache drops every popularity flag and cached response.
func (s *Service) ResetCache(ctx context.Context) {
	s.cache.Invalidate(ctx, "")
	s.logger.Info(ctx, "popularity cache cleared")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dirty := len(s.store.DirtyGames())
	metrics.UpdateDirtyGames(dirty)

	stats := map[string]interface{}{
		"started":    s.started,
		"store":      s.store.Backend(),
		"cache":      s.cache.Backend(),
		"dirtyGames": dirty,
	}
	if s.started {
		stats["uptimeSeconds"] = int64(s.clock().Sub(s.startedAt).Seconds())
	}
	return stats
}

func (s *Service) cacheFailed(ctx context.Context, op, gameID string, err error) {
	metrics.RecordErrorByComponent("cache", op)
	s.logger.Warn(ctx, "cache operation failed",
		logger.String("op", op),
		logger.String("gameId", gameID),
		logger.Error(err),
	)
}
