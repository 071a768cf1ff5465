package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// LeaderboardHandler handles leaderboard reads.
type LeaderboardHandler struct {
	ranking      Ranking
	errs         errorWriter
	defaultLimit int
	maxLimit     int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(ranking Ranking, errs errorWriter, defaultLimit, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		ranking:      ranking,
		errs:         errs,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// HandleGetLeaderboard handles GET /api/leaderboard/{gameId}?limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"

	gameID := chi.URLParam(r, "gameId")
	if gameID == "" {
		h.errs.writeError(w, r, NewKind(op, ErrBadRequest, "Invalid or missing gameId"))
		return
	}

	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > h.maxLimit {
			h.errs.writeError(w, r, NewKind(op, ErrBadRequest,
				fmt.Sprintf("Limit must be a number between 1 and %d", h.maxLimit)))
			return
		}
		limit = n
	}

	board, err := h.ranking.GetLeaderboard(r.Context(), gameID, limit)
	if err != nil {
		h.errs.writeError(w, r, Wrap(op, err))
		return
	}
	writeSuccess(w, board)
}
