// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abdulghaffar349/leaderboard-service/internal/adapters/http/swagger"
	"github.com/abdulghaffar349/leaderboard-service/internal/domain/types"
	"github.com/abdulghaffar349/leaderboard-service/pkg/logger"
)

// Default limits for GET /api/leaderboard/{gameId}.
const (
	defaultLimit    = 10
	defaultMaxLimit = 100
)

// Envelope statuses.
const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

const genericErrorMessage = "Something went wrong!"

// Ranking is the service surface the handlers need.
type Ranking interface {
	UpdateScore(ctx context.Context, u types.ScoreUpdate) (types.UpdateResult, error)
	GetLeaderboard(ctx context.Context, gameID string, limit int) (types.Leaderboard, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	ranking      Ranking
	stats        StatsProvider
	maxLimit     int
	defaultLimit int
	development  bool
	logger       logger.Logger
}

// NewServer creates a new API server.
func NewServer(ranking Ranking, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		ranking:      ranking,
		stats:        stats,
		maxLimit:     defaultMaxLimit,
		defaultLimit: defaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	return s
}

// Routes builds the chi router with every endpoint mounted.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer, MetricsMiddleware)

	health := NewHealthHandler()
	r.Get("/healthz", health.HandleHealth)
	r.Get("/metrics", health.HandleMetrics)
	r.Get("/stats", NewStatsHandler(s.stats).HandleStats)
	swagger.Mount(r)

	scores := NewScoresHandler(s.ranking, s)
	board := NewLeaderboardHandler(s.ranking, s, s.defaultLimit, s.maxLimit)
	r.Route("/api", func(r chi.Router) {
		r.Post("/update-score", scores.HandleUpdateScore)
		r.Get("/leaderboard/{gameId}", board.HandleGetLeaderboard)
	})

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)
	return r
}

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Status: statusSuccess, Data: data})
}

// writeError maps err's kind to a status. Internal failures are logged and
// reported generically unless the server runs in development mode.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *Error
	message := err.Error()
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		message = apiErr.Message
	}

	switch {
	case errors.Is(err, ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, envelope{Status: statusFail, Message: message})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Status: statusFail, Message: message})
	default:
		s.logger.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err),
		)
		body := envelope{Status: statusError, Message: genericErrorMessage}
		if s.development {
			body.Error = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, body)
	}
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, NewKind("api.not_found", ErrNotFound,
		"Cannot find "+r.URL.RequestURI()+" on this server!"))
}
