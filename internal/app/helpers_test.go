package service_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/cache"
	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/repository"
	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var errBoom = errors.New("boom")

// spyCache wraps a real cache and counts calls.
type spyCache struct {
	cache.PopularityCache

	mu            sync.Mutex
	tracked       int
	stores        int
	invalidations []string
	failReads     bool
}

func newSpyCache(threshold int) *spyCache {
	return &spyCache{PopularityCache: cache.NewLocalCache(cache.WithThreshold(threshold))}
}

func (c *spyCache) TrackPopularity(ctx context.Context, gameID string, n int) error {
	c.mu.Lock()
	c.tracked++
	c.mu.Unlock()
	return c.PopularityCache.TrackPopularity(ctx, gameID, n)
}

func (c *spyCache) CacheLeaderboard(ctx context.Context, gameID string, limit int, e []types.ScoreRecord) error {
	c.mu.Lock()
	c.stores++
	c.mu.Unlock()
	return c.PopularityCache.CacheLeaderboard(ctx, gameID, limit, e)
}

func (c *spyCache) GetCachedLeaderboard(ctx context.Context, gameID string, limit int) ([]types.ScoreRecord, bool, error) {
	if c.failReads {
		return nil, false, errBoom
	}
	return c.PopularityCache.GetCachedLeaderboard(ctx, gameID, limit)
}

func (c *spyCache) Invalidate(ctx context.Context, pattern string) {
	c.mu.Lock()
	c.invalidations = append(c.invalidations, pattern)
	c.mu.Unlock()
	c.PopularityCache.Invalidate(ctx, pattern)
}

// failingStore rejects every write.
type failingStore struct {
	*repository.MemoryStore
}

func (s failingStore) SelectGame(gameID string) repository.Board {
	return failingBoard{Board: s.MemoryStore.SelectGame(gameID)}
}

type failingBoard struct {
	repository.Board
}

func (failingBoard) UpdateMemberScore(context.Context, string, int64, time.Time) error {
	return errBoom
}

func at(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// interleavingStore runs onRead once, in the middle of the next GetMembers.
type interleavingStore struct {
	*repository.MemoryStore
	onRead func()
}

func (s *interleavingStore) SelectGame(gameID string) repository.Board {
	return interleavingBoard{Board: s.MemoryStore.SelectGame(gameID), store: s}
}

type interleavingBoard struct {
	repository.Board
	store *interleavingStore
}

func (b interleavingBoard) GetMembers(ctx context.Context, limit int) ([]types.ScoreRecord, error) {
	members, err := b.Board.GetMembers(ctx, limit)
	if hook := b.store.onRead; hook != nil {
		b.store.onRead = nil
		hook()
	}
	return members, err
}
