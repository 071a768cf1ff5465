package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/repository"
	service "github.com/abdulghaffar349/leaderboard-service/internal/app"
	"github.com/abdulghaffar349/leaderboard-service/internal/domain/scoring"
	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
)

const (
	eventTypeScoreUpdate = "scoreUpdate"
	maxBodyBytes         = 1 << 20
)

// validationError is a client-facing message for a rejected request.
type validationError string

func (e validationError) Error() string { return string(e) }

const (
	errEventType     validationError = `Invalid event type. Must be "scoreUpdate"`
	errUserID        validationError = "Invalid or missing userId"
	errGameID        validationError = "Invalid or missing gameId"
	errTimestamp     validationError = "Invalid timestamp; must be RFC3339"
	errTimestampSpan validationError = "Timestamp out of range"
)

type errorWriter interface {
	writeError(w http.ResponseWriter, r *http.Request, err error)
}

// updateScoreRequest keeps raw JSON values so type mismatches (a numeric
// userId, a string score) are reported as validation failures.
type updateScoreRequest struct {
	EventType any `json:"eventType"`
	GameID    any `json:"gameId"`
	UserID    any `json:"userId"`
	Score     any `json:"score"`
	Timestamp any `json:"timestamp"`
}

// toUpdate validates the request in field order and converts it.
func (req updateScoreRequest) toUpdate() (types.ScoreUpdate, error) {
	var u types.ScoreUpdate

	if et, ok := req.EventType.(string); !ok || et != eventTypeScoreUpdate {
		return u, errEventType
	}

	userID, ok := req.UserID.(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return u, errUserID
	}
	gameID, ok := req.GameID.(string)
	if !ok || strings.TrimSpace(gameID) == "" {
		return u, errGameID
	}

	scoreErr := validationError(fmt.Sprintf("Score must be an integer between 0 and %d", scoring.MaxScore))
	num, ok := req.Score.(json.Number)
	if !ok {
		return u, scoreErr
	}
	score, err := num.Int64()
	if err != nil || score < 0 || score > scoring.MaxScore {
		return u, scoreErr
	}

	var ts time.Time
	if req.Timestamp != nil {
		raw, ok := req.Timestamp.(string)
		if !ok {
			return u, errTimestamp
		}
		ts, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return u, errTimestamp
		}
		if ms := ts.UnixMilli(); ms < 0 || ms > scoring.MaxTimestampMillis {
			return u, errTimestampSpan
		}
	}

	return types.ScoreUpdate{GameID: gameID, UserID: userID, Score: score, Timestamp: ts}, nil
}

// ScoresHandler handles score submissions.
type ScoresHandler struct {
	ranking Ranking
	errs    errorWriter
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(ranking Ranking, errs errorWriter) *ScoresHandler {
	return &ScoresHandler{ranking: ranking, errs: errs}
}

// HandleUpdateScore handles POST /api/update-score requests.
func (h *ScoresHandler) HandleUpdateScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_score"

	var req updateScoreRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.errs.writeError(w, r, WrapKind(op, ErrBadRequest, "Invalid JSON body", err))
		return
	}

	update, err := req.toUpdate()
	if err != nil {
		h.errs.writeError(w, r, NewKind(op, ErrBadRequest, err.Error()))
		return
	}

	result, err := h.ranking.UpdateScore(r.Context(), update)
	if err != nil {
		if isValidation(err) {
			h.errs.writeError(w, r, WrapKind(op, ErrBadRequest, "Invalid score update", err))
			return
		}
		h.errs.writeError(w, r, Wrap(op, err))
		return
	}
	writeSuccess(w, result)
}

func isValidation(err error) bool {
	return errors.Is(err, service.ErrInvalidGame) ||
		errors.Is(err, repository.ErrInvalidMember) ||
		errors.Is(err, repository.ErrInvalidScore) ||
		errors.Is(err, repository.ErrInvalidTimestamp)
}

