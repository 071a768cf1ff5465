// Package types contains common types used across the application
package types

import "time"

// ScoreRecord is a participant's current entry on a game leaderboard.
type ScoreRecord struct {
	UserID    string    `json:"userId"`
	Score     int64     `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// ScoreUpdate is an inbound score submission for one user in one game.
// A zero Timestamp means "now".
type ScoreUpdate struct {
	GameID    string
	UserID    string
	Score     int64
	Timestamp time.Time
}

// UpdateResult echoes an accepted update.
type UpdateResult struct {
	GameID string `json:"gameId"`
	UserID string `json:"userId"`
	Score  int64  `json:"score"`
}

// Leaderboard is the read model returned to clients: the total number of
// members in the game and the requested top slice.
type Leaderboard struct {
	Count       int           `json:"count"`
	Leaderboard []ScoreRecord `json:"leaderboard"`
}
