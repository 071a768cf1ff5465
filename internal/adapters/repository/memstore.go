package repository

import (
	"container/list"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/abdulghaffar349/leaderboard-service/internal/domain/scoring"
	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/metrics"
)

const backendMemory = "memory"

// MemoryStore keeps every game's ranking in process memory.
//
// Per game it holds score buckets (users at a score, in insertion order) and
// the user's current record. A user appears in exactly the bucket of its
// recorded score. Each game has its own lock; the game map has an RWMutex so
// reads and writes on different games do not contend.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*memGame

	dirty    *DirtyTracker
	exporter *exporter
}

type memGame struct {
	mu      sync.Mutex
	buckets map[int64]*bucket
	records map[string]types.ScoreRecord
}

// bucket is an insertion-ordered set of user ids.
type bucket struct {
	order *list.List
	index map[string]*list.Element
}

func newBucket() *bucket {
	return &bucket{order: list.New(), index: make(map[string]*list.Element)}
}

func (b *bucket) add(userID string) {
	if _, ok := b.index[userID]; ok {
		return
	}
	b.index[userID] = b.order.PushBack(userID)
}

func (b *bucket) remove(userID string) {
	if el, ok := b.index[userID]; ok {
		b.order.Remove(el)
		delete(b.index, userID)
	}
}

func (b *bucket) len() int { return len(b.index) }

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := newSettings(opts)
	dirty := NewDirtyTracker()
	return &MemoryStore{
		games:    make(map[string]*memGame),
		dirty:    dirty,
		exporter: newExporter(backendMemory, dirty, s),
	}
}

// Backend implements Store.
func (s *MemoryStore) Backend() string { return backendMemory }

// SelectGame implements Store.
func (s *MemoryStore) SelectGame(gameID string) Board {
	return &memBoard{store: s, gameID: gameID}
}

// MarkDirty implements Store.
func (s *MemoryStore) MarkDirty(gameID string) { s.dirty.Mark(gameID) }

// ResetDirty implements Store.
func (s *MemoryStore) ResetDirty() { s.dirty.Reset() }

// DirtyGames implements Store.
func (s *MemoryStore) DirtyGames() []string { return s.dirty.Games() }

// ExportAll implements Store using a consistent per-game snapshot.
func (s *MemoryStore) ExportAll(ctx context.Context) error {
	return s.exporter.exportAll(ctx, func(_ context.Context, gameID string) ([]types.ScoreRecord, error) {
		g := s.game(gameID)
		if g == nil {
			return []types.ScoreRecord{}, nil
		}
		return g.members(0), nil
	})
}

// GameCount returns the number of games held.
func (s *MemoryStore) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

func (s *MemoryStore) game(gameID string) *memGame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[gameID]
}

func (s *MemoryStore) gameOrCreate(gameID string) *memGame {
	if g := s.game(gameID); g != nil {
		return g
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok {
		g = &memGame{
			buckets: make(map[int64]*bucket),
			records: make(map[string]types.ScoreRecord),
		}
		s.games[gameID] = g
		metrics.UpdateTrackedGames(len(s.games))
	}
	return g
}

func (g *memGame) update(userID string, score int64, ts time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	rec := types.ScoreRecord{UserID: userID, Score: score, Timestamp: ts}
	if prev, ok := g.records[userID]; ok {
		if prev.Score == score {
			// Same bucket: keep the position, refresh the record.
			g.records[userID] = rec
			return
		}
		if b := g.buckets[prev.Score]; b != nil {
			b.remove(userID)
			if b.len() == 0 {
				delete(g.buckets, prev.Score)
			}
		}
	}

	b, ok := g.buckets[score]
	if !ok {
		b = newBucket()
		g.buckets[score] = b
	}
	b.add(userID)
	g.records[userID] = rec
}

func (g *memGame) members(limit int) []types.ScoreRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	scores := make([]int64, 0, len(g.buckets))
	for sc := range g.buckets {
		scores = append(scores, sc)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i] > scores[j] })

	n := len(g.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]types.ScoreRecord, 0, n)
	for _, sc := range scores {
		for el := g.buckets[sc].order.Front(); el != nil; el = el.Next() {
			if len(out) == n {
				return out
			}
			out = append(out, g.records[el.Value.(string)])
		}
	}
	return out
}

func (g *memGame) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}

// memBoard is a MemoryStore handle bound to one game.
type memBoard struct {
	store  *MemoryStore
	gameID string
}

func (b *memBoard) GameID() string { return b.gameID }

func (b *memBoard) UpdateMemberScore(_ context.Context, userID string, score int64, ts time.Time) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(backendMemory, "update", float64(time.Since(start).Microseconds())/1000)
	}()

	if err := validateMember(userID, score, ts, scoring.MaxTimestampMillis); err != nil {
		metrics.RecordStoreError(backendMemory, "update")
		return err
	}
	b.store.gameOrCreate(b.gameID).update(userID, score, scoring.Time(ts.UnixMilli()))
	b.store.dirty.Mark(b.gameID)
	return nil
}

func (b *memBoard) GetMembers(_ context.Context, limit int) ([]types.ScoreRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreLatency(backendMemory, "read", float64(time.Since(start).Microseconds())/1000)
	}()

	g := b.store.game(b.gameID)
	if g == nil {
		return []types.ScoreRecord{}, nil
	}
	return g.members(limit), nil
}

func (b *memBoard) GetMemberCount(_ context.Context) (int, error) {
	g := b.store.game(b.gameID)
	if g == nil {
		return 0, nil
	}
	return g.count(), nil
}

// validateMember applies the input domain shared by both stores. maxTS is
// the store's timestamp ceiling.
func validateMember(userID string, score int64, ts time.Time, maxTS int64) error {
	if userID == "" {
		return ErrInvalidMember
	}
	if score < 0 || score > scoring.MaxScore {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidScore, score, scoring.MaxScore)
	}
	if ms := ts.UnixMilli(); ms < 0 || ms > maxTS {
		return fmt.Errorf("%w: %s", ErrInvalidTimestamp, ts.Format(time.RFC3339))
	}
	return nil
}
