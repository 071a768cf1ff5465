package loadtest

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

const eventTypeScoreUpdate = "scoreUpdate"

// userPlan is the ordered list of submissions for one user in one game.
// Submitting a plan sequentially keeps the last event authoritative.
type userPlan struct {
	GameID string
	UserID string
	Events []ScoreEvent
}

// expected maps gameID -> userID -> final score.
type expected map[string]map[string]int64

// generatePlans builds a plan per (game, user) with strictly increasing
// timestamps per user, starting at base.
func generatePlans(cfg *Config, base time.Time) ([]userPlan, expected) {
	plans := make([]userPlan, 0, cfg.Games*cfg.UsersPerGame)
	want := make(expected, cfg.Games)

	for g := 0; g < cfg.Games; g++ {
		gameID := "game-" + uuid.NewString()
		want[gameID] = make(map[string]int64, cfg.UsersPerGame)

		for u := 0; u < cfg.UsersPerGame; u++ {
			userID := uuid.NewString()
			plan := userPlan{GameID: gameID, UserID: userID, Events: make([]ScoreEvent, cfg.UpdatesPerUser)}

			for i := range plan.Events {
				ts := base.Add(time.Duration(u*cfg.UpdatesPerUser+i) * time.Millisecond)
				plan.Events[i] = ScoreEvent{
					EventType: eventTypeScoreUpdate,
					GameID:    gameID,
					UserID:    userID,
					Score:     rand.Int64N(cfg.MaxScore + 1),
					Timestamp: ts.UTC().Format(time.RFC3339Nano),
				}
			}
			want[gameID][userID] = plan.Events[len(plan.Events)-1].Score
			plans = append(plans, plan)
		}
	}
	return plans, want
}
