package loadtest

import (
	"fmt"
	"sort"
)

// verifyGame checks one served leaderboard against the scores the run
// submitted. Tie order is backend specific, so only scores are compared
// position by position.
func verifyGame(want map[string]int64, lb Leaderboard, limit int) error {
	if lb.Count != len(want) {
		return fmt.Errorf("count %d, want %d", lb.Count, len(want))
	}

	n := min(limit, len(want))
	if len(lb.Leaderboard) != n {
		return fmt.Errorf("returned %d entries, want %d", len(lb.Leaderboard), n)
	}

	scores := make([]int64, 0, len(want))
	for _, s := range want {
		scores = append(scores, s)
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i] > scores[j] })

	seen := make(map[string]struct{}, n)
	for i, e := range lb.Leaderboard {
		if _, dup := seen[e.UserID]; dup {
			return fmt.Errorf("user %s listed twice", e.UserID)
		}
		seen[e.UserID] = struct{}{}

		final, ok := want[e.UserID]
		if !ok {
			return fmt.Errorf("unknown user %s at position %d", e.UserID, i+1)
		}
		if e.Score != final {
			return fmt.Errorf("user %s has score %d, want last submitted %d", e.UserID, e.Score, final)
		}
		if e.Score != scores[i] {
			return fmt.Errorf("position %d has score %d, want %d", i+1, e.Score, scores[i])
		}
	}
	return nil
}
