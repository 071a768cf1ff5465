// Package repository holds the ranked stores: per-game leaderboards ordered
// by score, with dirty tracking for batched export to a durable archive.
package repository

import (
	"context"
	"time"

	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
)

// Store provides per-game ranked storage and batched export.
type Store interface {
	// SelectGame returns a handle bound to gameID. Games are created
	// implicitly by their first update.
	SelectGame(gameID string) Board

	// ExportAll drains the dirty set and upserts the full ranking of every
	// drained game into the archive. A failure for one game does not stop
	// the others; failed games are marked dirty again for the next cycle.
	ExportAll(ctx context.Context) error

	MarkDirty(gameID string)
	ResetDirty()
	// DirtyGames returns the games written since the last export, sorted.
	DirtyGames() []string

	// Backend names the implementation ("memory" or "redis").
	Backend() string
}

// Board is a single game's leaderboard.
type Board interface {
	GameID() string

	// UpdateMemberScore upserts userID's record, replacing any prior score,
	// and marks the game dirty once the write succeeded.
	UpdateMemberScore(ctx context.Context, userID string, score int64, ts time.Time) error

	// GetMembers returns up to limit records by score descending.
	// limit <= 0 returns every member.
	GetMembers(ctx context.Context, limit int) ([]types.ScoreRecord, error)

	// GetMemberCount returns the number of distinct users in the game.
	GetMemberCount(ctx context.Context) (int, error)
}

// Archive is the durable store the export writes to.
type Archive interface {
	// Upsert replaces the stored ranking of gameID with scores.
	Upsert(ctx context.Context, gameID string, scores []types.ScoreRecord) error
}
