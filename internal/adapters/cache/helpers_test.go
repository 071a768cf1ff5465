package cache

import (
	"time"

	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func sampleEntries() []types.ScoreRecord {
	ts := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	return []types.ScoreRecord{
		{UserID: "a", Score: 30, Timestamp: ts},
		{UserID: "b", Score: 20, Timestamp: ts},
	}
}
