package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fortuna/faceoff/internal/league"
	"github.com/fortuna/faceoff/internal/scoring"
	"github.com/fortuna/faceoff/internal/service"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/internal/store/repository"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// GameReader serves games, summaries and the clock
type GameReader interface {
	ListGames(ctx context.Context, season string) ([]*service.GameView, error)
	LiveGames(ctx context.Context) ([]*service.GameView, error)
	GetGame(ctx context.Context, gameID string) (*service.GameView, error)
	GetSummary(ctx context.Context, gameID string) (*scoring.GameSummary, error)
	TickClock(ctx context.Context, gameID string) (*store.Game, error)
}

// StatsReader serves league tables
type StatsReader interface {
	Leaders(ctx context.Context, season string, limit int) ([]league.LeaderRow, error)
	Standings(ctx context.Context, season, source string) ([]service.StandingsLine, error)
}

// ScoringWriter records live scoring entries
type ScoringWriter interface {
	RecordGoal(ctx context.Context, gameID string, entry service.GoalEntry) (*service.EntryResult, error)
	RecordShot(ctx context.Context, gameID string, entry service.ShotEntry) (*service.EntryResult, error)
}

// TeamReader serves teams and rosters
type TeamReader interface {
	ListTeams(ctx context.Context) ([]service.TeamView, error)
	GetTeamRoster(ctx context.Context, teamID string) (*service.Roster, error)
}

// Deps are the services behind the API
type Deps struct {
	Games         GameReader
	Stats         StatsReader
	Scoring       ScoringWriter
	Teams         TeamReader
	CurrentSeason string
	Version       string
	// Health reports backing store reachability; nil means always healthy
	Health func(ctx context.Context) error
	// Scheduler reports background loop settings on /health; optional
	Scheduler func() map[string]interface{}
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	deps Deps
}

// NewHandler creates a new handler
func NewHandler(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if h.deps.Health != nil {
		if err := h.deps.Health(r.Context()); err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	body := map[string]interface{}{
		"status":  status,
		"service": "faceoff",
		"version": h.deps.Version,
	}
	if h.deps.Scheduler != nil {
		body["scheduler"] = h.deps.Scheduler()
	}
	respondJSON(w, code, body)
}

// ListGames returns a season's games, defaulting to the current season
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.deps.Games.ListGames(r.Context(), h.season(r))
	if err != nil {
		respondServiceError(w, r, "Failed to fetch games", err)
		return
	}

	respondJSON(w, http.StatusOK, games)
}

// LiveGames returns games currently in progress
func (h *Handler) LiveGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.deps.Games.LiveGames(r.Context())
	if err != nil {
		respondServiceError(w, r, "Failed to fetch live games", err)
		return
	}

	respondJSON(w, http.StatusOK, games)
}

// GetGame returns one game with its teams
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	game, err := h.deps.Games.GetGame(r.Context(), mux.Vars(r)["gameID"])
	if err != nil {
		respondServiceError(w, r, "Failed to fetch game", err)
		return
	}

	respondJSON(w, http.StatusOK, game)
}

// GetGameSummary returns goal-lines, linescore, box score and goaltenders
func (h *Handler) GetGameSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.deps.Games.GetSummary(r.Context(), mux.Vars(r)["gameID"])
	if err != nil {
		respondServiceError(w, r, "Failed to build game summary", err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetLeaders returns the season's scoring leaders
func (h *Handler) GetLeaders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit parameter", err)
			return
		}
		limit = n
	}

	leaders, err := h.deps.Stats.Leaders(r.Context(), h.season(r), limit)
	if err != nil {
		respondServiceError(w, r, "Failed to fetch leaders", err)
		return
	}

	respondJSON(w, http.StatusOK, leaders)
}

// GetStandings returns ranked standings from the view or computed from games
func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	standings, err := h.deps.Stats.Standings(r.Context(), h.season(r), r.URL.Query().Get("source"))
	if err != nil {
		respondServiceError(w, r, "Failed to fetch standings", err)
		return
	}

	respondJSON(w, http.StatusOK, standings)
}

// GetTeams returns all teams
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.deps.Teams.ListTeams(r.Context())
	if err != nil {
		respondServiceError(w, r, "Failed to fetch teams", err)
		return
	}

	respondJSON(w, http.StatusOK, teams)
}

// GetTeamRoster returns a team's current roster
func (h *Handler) GetTeamRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.deps.Teams.GetTeamRoster(r.Context(), mux.Vars(r)["teamID"])
	if err != nil {
		respondServiceError(w, r, "Failed to fetch roster", err)
		return
	}

	respondJSON(w, http.StatusOK, roster)
}

func (h *Handler) season(r *http.Request) string {
	if s := r.URL.Query().Get("season"); s != "" {
		return s
	}
	return h.deps.CurrentSeason
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	respondJSON(w, status, response)
}

// respondServiceError maps service errors onto status codes
func respondServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidEntry):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg(message)
	}

	respondError(w, status, message, err)
}
