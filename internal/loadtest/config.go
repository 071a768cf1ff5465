package loadtest

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Games          int           // Number of distinct games
	UsersPerGame   int           // Users submitting to each game
	UpdatesPerUser int           // Score submissions per user; the last one wins
	MaxScore       int64         // Upper bound for generated scores
	TopN           int           // Leaderboard limit to verify
	Workers        int           // Concurrent submitters
	Timeout        time.Duration // HTTP request timeout
	OutputFile     string        // Optional JSON dump of generated events
	Verbose        bool          // Log every failed request
}

// ScoreEvent is the POST /api/update-score body.
type ScoreEvent struct {
	EventType string `json:"eventType"`
	GameID    string `json:"gameId"`
	UserID    string `json:"userId"`
	Score     int64  `json:"score"`
	Timestamp string `json:"timestamp"`
}

// Entry represents a leaderboard entry as served by the API.
type Entry struct {
	UserID    string    `json:"userId"`
	Score     int64     `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// Leaderboard is the data part of GET /api/leaderboard/{gameId}.
type Leaderboard struct {
	Count       int     `json:"count"`
	Leaderboard []Entry `json:"leaderboard"`
}

// Stats holds run statistics.
type Stats struct {
	EventsGenerated  int
	EventsSubmitted  int
	EventsSuccessful int
	EventsFailed     int
	GamesVerified    int
	GamesMismatched  int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
