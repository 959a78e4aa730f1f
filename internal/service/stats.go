package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/faceoff/internal/cache"
	"github.com/fortuna/faceoff/internal/league"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/internal/store/repository"
)

// Standings sources
const (
	StandingsFromView = "view"
	StandingsComputed = "computed"
)

// StatsService handles league-wide tables
type StatsService struct {
	gameRepo      *repository.GameRepository
	teamRepo      *repository.TeamRepository
	playerRepo    *repository.PlayerRepository
	eventRepo     *repository.EventRepository
	standingsRepo *repository.StandingsRepository
	cache         Cache
	ttl           time.Duration
}

// NewStatsService creates a new stats service. c may be nil.
func NewStatsService(db *store.Database, c Cache, ttl time.Duration) *StatsService {
	return &StatsService{
		gameRepo:      repository.NewGameRepository(db),
		teamRepo:      repository.NewTeamRepository(db),
		playerRepo:    repository.NewPlayerRepository(db),
		eventRepo:     repository.NewEventRepository(db),
		standingsRepo: repository.NewStandingsRepository(db),
		cache:         c,
		ttl:           ttl,
	}
}

// StandingsLine is a ranked standings row with its display fields
type StandingsLine struct {
	Rank int `json:"rank"`
	store.StandingsRow
	GoalDiff       int    `json:"goal_diff"`
	PointsPctLabel string `json:"points_pct_label"`
}

// Leaders returns the season's scoring leaders, at most limit rows when limit > 0
func (s *StatsService) Leaders(ctx context.Context, season string, limit int) ([]league.LeaderRow, error) {
	if limit < 0 {
		return nil, fmt.Errorf("limit %d: %w", limit, ErrInvalidEntry)
	}

	rows, err := readThrough(ctx, s.cache, cache.LeadersKey(season), s.ttl, func() ([]league.LeaderRow, error) {
		events, err := s.eventRepo.ListBySeason(ctx, season)
		if err != nil {
			return nil, fmt.Errorf("fetching season events: %w", err)
		}
		players, err := s.playerRepo.GetAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching players: %w", err)
		}
		return league.ScoringLeaders(events, players), nil
	})
	if err != nil {
		return nil, err
	}

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Standings returns ranked standings read from the database view or computed
// from the season's final games
func (s *StatsService) Standings(ctx context.Context, season, source string) ([]StandingsLine, error) {
	if source == "" {
		source = StandingsFromView
	}

	var load func() ([]store.StandingsRow, error)
	switch source {
	case StandingsFromView:
		load = func() ([]store.StandingsRow, error) {
			rows, err := s.standingsRepo.GetBySeason(ctx, season)
			if err != nil {
				return nil, fmt.Errorf("fetching standings: %w", err)
			}
			return league.RankStandings(rows), nil
		}
	case StandingsComputed:
		load = func() ([]store.StandingsRow, error) {
			return s.computeStandings(ctx, season)
		}
	default:
		return nil, fmt.Errorf("standings source %q: %w", source, ErrInvalidEntry)
	}

	rows, err := readThrough(ctx, s.cache, cache.StandingsKey(season, source), s.ttl, load)
	if err != nil {
		return nil, err
	}

	return standingsLines(rows), nil
}

func (s *StatsService) computeStandings(ctx context.Context, season string) ([]store.StandingsRow, error) {
	games, err := s.gameRepo.GetBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetching season games: %w", err)
	}
	// an unplayed season has no table, same as the view
	if len(games) == 0 {
		return []store.StandingsRow{}, nil
	}
	events, err := s.eventRepo.ListBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("fetching season events: %w", err)
	}
	teams, err := s.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}

	rows := league.BuildStandings(games, events, teams)
	for i := range rows {
		rows[i].Season = season
	}
	return rows, nil
}

// Refresh drops and recomputes every cached season table
func (s *StatsService) Refresh(ctx context.Context, season string) error {
	invalidate(ctx, s.cache, seasonKeys(season)...)

	if _, err := s.Leaders(ctx, season, 0); err != nil {
		return fmt.Errorf("refreshing leaders: %w", err)
	}
	for _, source := range []string{StandingsFromView, StandingsComputed} {
		if _, err := s.Standings(ctx, season, source); err != nil {
			return fmt.Errorf("refreshing %s standings: %w", source, err)
		}
	}
	return nil
}

// standingsLines numbers already-ranked rows and adds display fields
func standingsLines(rows []store.StandingsRow) []StandingsLine {
	lines := make([]StandingsLine, len(rows))
	for i, r := range rows {
		lines[i] = StandingsLine{
			Rank:           i + 1,
			StandingsRow:   r,
			GoalDiff:       r.GoalDiff(),
			PointsPctLabel: league.PointsPctLabel(r),
		}
	}
	return lines
}
