package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fortuna/faceoff/internal/league"
	"github.com/fortuna/faceoff/internal/scoring"
	"github.com/fortuna/faceoff/internal/service"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/internal/store/repository"
)

type fakeGames struct {
	seasons []string
}

func (f *fakeGames) ListGames(_ context.Context, season string) ([]*service.GameView, error) {
	f.seasons = append(f.seasons, season)
	return []*service.GameView{{Game: &store.Game{ID: "g1", Season: season}}}, nil
}

func (f *fakeGames) LiveGames(context.Context) ([]*service.GameView, error) {
	return []*service.GameView{{Game: &store.Game{ID: "g7", Status: store.GameStatusInProgress}}}, nil
}

func (f *fakeGames) GetGame(_ context.Context, gameID string) (*service.GameView, error) {
	if gameID != "g1" {
		return nil, fmt.Errorf("fetching game: %w", repository.ErrNotFound)
	}
	return &service.GameView{Game: &store.Game{ID: "g1"}, HomeLabel: "AUR"}, nil
}

func (f *fakeGames) GetSummary(_ context.Context, gameID string) (*scoring.GameSummary, error) {
	if gameID != "g1" {
		return nil, fmt.Errorf("fetching game: %w", repository.ErrNotFound)
	}
	return &scoring.GameSummary{
		Game:  &store.Game{ID: "g1"},
		Goals: []scoring.GoalLine{{Period: 1, Time: "04:12", TeamID: "A", Assists: []scoring.PlayerRef{}}},
	}, nil
}

func (f *fakeGames) TickClock(_ context.Context, gameID string) (*store.Game, error) {
	return &store.Game{
		ID:     gameID,
		Period: sql.NullInt32{Int32: 2, Valid: true},
		Clock:  sql.NullString{String: "10:01", Valid: true},
	}, nil
}

type fakeStats struct {
	limit  int
	source string
}

func (f *fakeStats) Leaders(_ context.Context, _ string, limit int) ([]league.LeaderRow, error) {
	f.limit = limit
	return []league.LeaderRow{{PlayerID: "p1", Points: 3}}, nil
}

func (f *fakeStats) Standings(_ context.Context, _ string, source string) ([]service.StandingsLine, error) {
	f.source = source
	if source == "bogus" {
		return nil, fmt.Errorf("standings source %q: %w", source, service.ErrInvalidEntry)
	}
	return []service.StandingsLine{{Rank: 1, PointsPctLabel: "-"}}, nil
}

type fakeScoring struct {
	goal service.GoalEntry
}

func (f *fakeScoring) RecordGoal(_ context.Context, _ string, entry service.GoalEntry) (*service.EntryResult, error) {
	f.goal = entry
	if len(entry.AssistIDs) > 2 {
		return nil, fmt.Errorf("too many: %w", service.ErrInvalidEntry)
	}
	return &service.EntryResult{PlayID: "play-1"}, nil
}

func (f *fakeScoring) RecordShot(_ context.Context, _ string, _ service.ShotEntry) (*service.EntryResult, error) {
	return nil, errors.New("connection reset")
}

type fakeTeams struct{}

func (fakeTeams) ListTeams(context.Context) ([]service.TeamView, error) {
	return []service.TeamView{{Team: store.Team{ID: "A", Name: "Aurora"}, Label: "AUR"}}, nil
}

func (fakeTeams) GetTeamRoster(_ context.Context, teamID string) (*service.Roster, error) {
	return &service.Roster{Team: service.TeamView{Team: store.Team{ID: teamID}}, Players: []store.Player{}}, nil
}

type harness struct {
	games   *fakeGames
	stats   *fakeStats
	scoring *fakeScoring
	router  http.Handler
}

func newHarness(health func(context.Context) error) *harness {
	h := &harness{games: &fakeGames{}, stats: &fakeStats{}, scoring: &fakeScoring{}}
	h.router = NewRouter(NewHandler(Deps{
		Games:         h.games,
		Stats:         h.stats,
		Scoring:       h.scoring,
		Teams:         fakeTeams{},
		CurrentSeason: "2025-26",
		Version:       "test",
		Health:        health,
	}))
	return h
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestRoutesStatus(t *testing.T) {
	h := newHarness(nil)

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"health", "GET", "/health", "", http.StatusOK},
		{"games", "GET", "/api/v1/games", "", http.StatusOK},
		{"live games", "GET", "/api/v1/games/live", "", http.StatusOK},
		{"game", "GET", "/api/v1/games/g1", "", http.StatusOK},
		{"missing game", "GET", "/api/v1/games/nope", "", http.StatusNotFound},
		{"summary", "GET", "/api/v1/games/g1/summary", "", http.StatusOK},
		{"missing summary", "GET", "/api/v1/games/nope/summary", "", http.StatusNotFound},
		{"leaders", "GET", "/api/v1/leaders?limit=5", "", http.StatusOK},
		{"bad limit", "GET", "/api/v1/leaders?limit=-1", "", http.StatusBadRequest},
		{"standings", "GET", "/api/v1/standings?source=computed", "", http.StatusOK},
		{"bad standings source", "GET", "/api/v1/standings?source=bogus", "", http.StatusBadRequest},
		{"teams", "GET", "/api/v1/teams", "", http.StatusOK},
		{"roster", "GET", "/api/v1/teams/A/roster", "", http.StatusOK},
		{"goal", "POST", "/api/v1/games/g1/goals", `{"team_id":"A","scorer_id":"p1","assist_ids":["p2"],"period":1,"time":"04:12"}`, http.StatusCreated},
		{"goal too many assists", "POST", "/api/v1/games/g1/goals", `{"team_id":"A","assist_ids":["a","b","c"],"period":1,"time":"04:12"}`, http.StatusBadRequest},
		{"goal bad json", "POST", "/api/v1/games/g1/goals", `{"team_id":`, http.StatusBadRequest},
		{"goal unknown field", "POST", "/api/v1/games/g1/goals", `{"team":"A"}`, http.StatusBadRequest},
		{"shot store failure", "POST", "/api/v1/games/g1/shots", `{"team_id":"A","period":1,"time":"01:00"}`, http.StatusInternalServerError},
		{"clock tick", "POST", "/api/v1/games/g1/clock/tick", "", http.StatusOK},
		{"wrong method", "GET", "/api/v1/games/g1/goals", "", http.StatusMethodNotAllowed},
		{"wrong method on read route", "POST", "/api/v1/standings", "", http.StatusMethodNotAllowed},
		{"unknown route", "GET", "/api/v1/nowhere", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSeasonDefaultsToCurrent(t *testing.T) {
	h := newHarness(nil)

	h.do("GET", "/api/v1/games", "")
	h.do("GET", "/api/v1/games?season=2024-25", "")

	if len(h.games.seasons) != 2 || h.games.seasons[0] != "2025-26" || h.games.seasons[1] != "2024-25" {
		t.Errorf("unexpected seasons %v", h.games.seasons)
	}
}

func TestLeadersLimitPassedThrough(t *testing.T) {
	h := newHarness(nil)
	h.do("GET", "/api/v1/leaders?limit=10", "")
	if h.stats.limit != 10 {
		t.Errorf("expected limit 10, got %d", h.stats.limit)
	}
}

func TestRecordGoalDecodesEntry(t *testing.T) {
	h := newHarness(nil)
	rec := h.do("POST", "/api/v1/games/g1/goals", `{"team_id":"A","scorer_id":"p1","assist_ids":["p2","p3"],"period":3,"time":"19:59"}`)

	var body service.EntryResult
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.PlayID != "play-1" {
		t.Errorf("expected play id in response, got %+v", body)
	}

	got := h.scoring.goal
	if got.TeamID != "A" || got.ScorerID != "p1" || len(got.AssistIDs) != 2 || got.Period != 3 || got.Time != "19:59" {
		t.Errorf("unexpected decoded entry %+v", got)
	}
}

func TestTickClockResponse(t *testing.T) {
	h := newHarness(nil)
	rec := h.do("POST", "/api/v1/games/g1/clock/tick", "")

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["clock"] != "10:01" || body["period"] != float64(2) {
		t.Errorf("unexpected body %v", body)
	}
}

func TestLiveGamesRoute(t *testing.T) {
	h := newHarness(nil)
	rec := h.do("GET", "/api/v1/games/live", "")

	var body []service.GameView
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body) != 1 || body[0].Game.ID != "g7" {
		t.Errorf("expected the live game, got %+v", body)
	}
}

func TestPreflight(t *testing.T) {
	h := newHarness(nil)

	for _, path := range []string{"/api/v1/games/g1/goals", "/api/v1/games/g1/shots", "/api/v1/games/g1/clock/tick"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://scorer.example")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		rec := httptest.NewRecorder()
		h.router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("OPTIONS %s: expected 204, got %d", path, rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("OPTIONS %s: allow-origin = %q", path, got)
		}
		if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "POST") {
			t.Errorf("OPTIONS %s: POST not allowed", path)
		}
	}
}

func TestMethodNotAllowedBody(t *testing.T) {
	h := newHarness(nil)
	rec := h.do("GET", "/api/v1/games/g1/goals", "")

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != float64(http.StatusMethodNotAllowed) {
		t.Errorf("unexpected body %v", body)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header on 405")
	}
}

func TestHealthOK(t *testing.T) {
	h := newHarness(func(context.Context) error { return nil })
	rec := h.do("GET", "/health", "")

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("expected 200 ok, got %d %v", rec.Code, body)
	}
	if _, ok := body["scheduler"]; ok {
		t.Error("scheduler status without a reporter")
	}
}

func TestHealthIncludesSchedulerStatus(t *testing.T) {
	router := NewRouter(NewHandler(Deps{
		Version: "test",
		Scheduler: func() map[string]interface{} {
			return map[string]interface{}{"current_season": "2025-26"}
		},
	}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	var body struct {
		Status    string            `json:"status"`
		Scheduler map[string]string `json:"scheduler"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Scheduler["current_season"] != "2025-26" {
		t.Errorf("unexpected health body %+v", body)
	}
}

func TestHealthDegraded(t *testing.T) {
	h := newHarness(func(context.Context) error { return errors.New("db down") })
	rec := h.do("GET", "/health", "")

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "degraded") {
		t.Errorf("expected degraded status, got %s", rec.Body.String())
	}
}

func TestErrorBody(t *testing.T) {
	h := newHarness(nil)
	rec := h.do("GET", "/api/v1/games/nope", "")

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "Failed to fetch game" || body["status"] != float64(404) {
		t.Errorf("unexpected error body %v", body)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header")
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
