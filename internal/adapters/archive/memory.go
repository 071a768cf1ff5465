// Package archive is the durable store for exported leaderboards: one
// document per game holding its full ranking, replaced on every export.
package archive

import (
	"context"
	"sync"

	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/repository"
	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
)

var _ repository.Archive = (*MemoryArchive)(nil)

// MemoryArchive keeps documents in process memory. Used when no database is
// configured and in tests.
type MemoryArchive struct {
	mu   sync.RWMutex
	docs map[string][]types.ScoreRecord
}

// NewMemoryArchive returns an empty archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{docs: make(map[string][]types.ScoreRecord)}
}

// Upsert replaces the document for gameID.
func (a *MemoryArchive) Upsert(_ context.Context, gameID string, scores []types.ScoreRecord) error {
	doc := make([]types.ScoreRecord, len(scores))
	copy(doc, scores)

	a.mu.Lock()
	a.docs[gameID] = doc
	a.mu.Unlock()
	return nil
}

// Load returns the document for gameID.
func (a *MemoryArchive) Load(_ context.Context, gameID string) ([]types.ScoreRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	doc, ok := a.docs[gameID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]types.ScoreRecord, len(doc))
	copy(out, doc)
	return out, nil
}

// Len returns the number of archived games.
func (a *MemoryArchive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.docs)
}

// Close is a no-op.
func (a *MemoryArchive) Close() {}
