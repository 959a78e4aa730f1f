package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/faceoff/internal/cache"
	"github.com/fortuna/faceoff/internal/clock"
	"github.com/fortuna/faceoff/internal/publisher"
	"github.com/fortuna/faceoff/internal/scoring"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/internal/store/repository"
	"github.com/rs/zerolog/log"
)

// GameService handles game lookups, summaries and the running clock
type GameService struct {
	gameRepo   *repository.GameRepository
	teamRepo   *repository.TeamRepository
	playerRepo *repository.PlayerRepository
	eventRepo  *repository.EventRepository
	cache      Cache
	publisher  Publisher
	ttl        time.Duration
}

// NewGameService creates a new game service. c and pub may be nil.
func NewGameService(db *store.Database, c Cache, pub Publisher, ttl time.Duration) *GameService {
	return &GameService{
		gameRepo:   repository.NewGameRepository(db),
		teamRepo:   repository.NewTeamRepository(db),
		playerRepo: repository.NewPlayerRepository(db),
		eventRepo:  repository.NewEventRepository(db),
		cache:      c,
		publisher:  pub,
		ttl:        ttl,
	}
}

// GameView is a game with both teams resolved
type GameView struct {
	Game      *store.Game `json:"game"`
	HomeTeam  *store.Team `json:"home_team"`
	AwayTeam  *store.Team `json:"away_team"`
	HomeLabel string      `json:"home_label"`
	AwayLabel string      `json:"away_label"`
}

// GetGame retrieves a game by ID or slug with team details
func (s *GameService) GetGame(ctx context.Context, gameID string) (*GameView, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching game: %w", err)
	}

	teams, err := s.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}

	return newGameView(game, scoring.IndexTeams(teams)), nil
}

// ListGames retrieves a season's schedule with team details
func (s *GameService) ListGames(ctx context.Context, season string) ([]*GameView, error) {
	games, err := s.gameRepo.GetBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetching season games: %w", err)
	}

	teams, err := s.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	idx := scoring.IndexTeams(teams)

	views := make([]*GameView, 0, len(games))
	for i := range games {
		views = append(views, newGameView(&games[i], idx))
	}
	return views, nil
}

// GetSummary builds the full summary of one game, serving it from cache when fresh
func (s *GameService) GetSummary(ctx context.Context, gameID string) (*scoring.GameSummary, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching game: %w", err)
	}

	return readThrough(ctx, s.cache, cache.SummaryKey(game.ID), s.ttl, func() (*scoring.GameSummary, error) {
		return s.buildSummary(ctx, game)
	})
}

func (s *GameService) buildSummary(ctx context.Context, game *store.Game) (*scoring.GameSummary, error) {
	events, err := s.eventRepo.ListByGame(ctx, game.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}

	players, err := s.playerRepo.GetByTeams(ctx, game.HomeTeamID, game.AwayTeamID)
	if err != nil {
		return nil, fmt.Errorf("fetching rosters: %w", err)
	}

	var teams []store.Team
	for _, id := range []string{game.HomeTeamID, game.AwayTeamID} {
		team, err := s.teamRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetching team %s: %w", id, err)
		}
		teams = append(teams, *team)
	}

	return scoring.Summarize(game, events, players, teams), nil
}

// TickClock advances a game's stored clock by one second and announces it
func (s *GameService) TickClock(ctx context.Context, gameID string) (*store.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("fetching game: %w", err)
	}

	period := 1
	if game.Period.Valid && game.Period.Int32 > 0 {
		period = int(game.Period.Int32)
	}
	next := clock.Increment(game.Clock.String)

	if err := s.gameRepo.UpdateClock(ctx, game.ID, period, next); err != nil {
		return nil, fmt.Errorf("storing clock: %w", err)
	}

	game.Period.Int32, game.Period.Valid = int32(period), true
	game.Clock.String, game.Clock.Valid = next, true
	game.Status = store.GameStatusInProgress

	s.Changed(ctx, game, publisher.Notice{GameID: game.ID, Kind: publisher.KindClock})
	return game, nil
}

// Changed drops the game's cached views and announces the change
func (s *GameService) Changed(ctx context.Context, game *store.Game, n publisher.Notice) {
	invalidate(ctx, s.cache, append(seasonKeys(game.Season), cache.SummaryKey(game.ID))...)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, n); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("game_id", game.ID).Msg("publishing change failed")
	}
}

// CleanupStaleGames finalises in-progress games that started more than olderThan ago
func (s *GameService) CleanupStaleGames(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := s.gameRepo.CleanupStaleGames(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// LiveGames returns games in progress
func (s *GameService) LiveGames(ctx context.Context) ([]*GameView, error) {
	games, err := s.gameRepo.GetLiveGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching live games: %w", err)
	}

	teams, err := s.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	idx := scoring.IndexTeams(teams)

	views := make([]*GameView, 0, len(games))
	for i := range games {
		views = append(views, newGameView(&games[i], idx))
	}
	return views, nil
}

func newGameView(game *store.Game, teams map[string]store.Team) *GameView {
	v := &GameView{Game: game}
	if t, ok := teams[game.HomeTeamID]; ok {
		v.HomeTeam = &t
		v.HomeLabel = scoring.TeamLabel(t)
	}
	if t, ok := teams[game.AwayTeamID]; ok {
		v.AwayTeam = &t
		v.AwayLabel = scoring.TeamLabel(t)
	}
	return v
}
