package repository

import (
	"sort"
	"sync"

	"github.com/abdulghaffar349/leaderboard-service/pkg/metrics"
)

// DirtyTracker records which games changed since the last export.
type DirtyTracker struct {
	mu    sync.Mutex
	games map[string]struct{}
}

// NewDirtyTracker returns an empty tracker.
func NewDirtyTracker() *DirtyTracker {
	return &DirtyTracker{games: make(map[string]struct{})}
}

// Mark adds gameID to the dirty set.
func (d *DirtyTracker) Mark(gameID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.games[gameID] = struct{}{}
	metrics.UpdateDirtyGames(len(d.games))
}

// Drain swaps in a fresh set and returns the old one's members.
// Marks arriving after the swap land in the fresh set.
func (d *DirtyTracker) Drain() []string {
	d.mu.Lock()
	old := d.games
	d.games = make(map[string]struct{})
	metrics.UpdateDirtyGames(0)
	d.mu.Unlock()

	return sortedKeys(old)
}

// Reset clears the dirty set.
func (d *DirtyTracker) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.games = make(map[string]struct{})
	metrics.UpdateDirtyGames(0)
}

// Games returns a sorted copy of the dirty set.
func (d *DirtyTracker) Games() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return sortedKeys(d.games)
}

// Len returns the number of dirty games.
func (d *DirtyTracker) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.games)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
