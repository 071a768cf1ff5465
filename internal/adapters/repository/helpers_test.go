package repository

import (
	"context"
	"sync"

	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

func init() {
	_ = logger.Init()
}

// fakeArchive records upserts and can fail or run a hook per game.
type fakeArchive struct {
	mu       sync.Mutex
	docs     map[string][]types.ScoreRecord
	calls    map[string]int
	fail     map[string]error
	onUpsert func(gameID string)
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{
		docs:  make(map[string][]types.ScoreRecord),
		calls: make(map[string]int),
		fail:  make(map[string]error),
	}
}

func (a *fakeArchive) Upsert(_ context.Context, gameID string, scores []types.ScoreRecord) error {
	a.mu.Lock()
	a.calls[gameID]++
	err := a.fail[gameID]
	hook := a.onUpsert
	if err == nil {
		a.docs[gameID] = append([]types.ScoreRecord(nil), scores...)
	}
	a.mu.Unlock()

	if hook != nil {
		hook(gameID)
	}
	return err
}

func (a *fakeArchive) doc(gameID string) ([]types.ScoreRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.docs[gameID]
	return d, ok
}

func (a *fakeArchive) callCount(gameID string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[gameID]
}
