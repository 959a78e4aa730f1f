package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fortuna/faceoff/internal/clock"
	"github.com/fortuna/faceoff/internal/publisher"
	"github.com/fortuna/faceoff/internal/scoring"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/internal/store/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxAssistsPerGoal = 2

// GoalEntry is a goal recorded from the live scoring form
type GoalEntry struct {
	TeamID    string   `json:"team_id"`
	ScorerID  string   `json:"scorer_id,omitempty"`
	AssistIDs []string `json:"assist_ids,omitempty"`
	Period    int      `json:"period"`
	Time      string   `json:"time"`
}

// ShotEntry is a shot recorded from the live scoring form
type ShotEntry struct {
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id,omitempty"`
	Period   int    `json:"period"`
	Time     string `json:"time"`
}

// EntryResult is what a scoring write committed
type EntryResult struct {
	PlayID string        `json:"play_id"`
	Events []store.Event `json:"events"`
}

// ScoringService appends live scoring events
type ScoringService struct {
	db         *store.Database
	gameRepo   *repository.GameRepository
	playerRepo *repository.PlayerRepository
	eventRepo  *repository.EventRepository
	games      *GameService
	newPlayID  func() string
}

// NewScoringService creates a new scoring service. games receives change notifications.
func NewScoringService(db *store.Database, games *GameService) *ScoringService {
	return &ScoringService{
		db:         db,
		gameRepo:   repository.NewGameRepository(db),
		playerRepo: repository.NewPlayerRepository(db),
		eventRepo:  repository.NewEventRepository(db),
		games:      games,
		newPlayID:  func() string { return uuid.NewString() },
	}
}

// RecordGoal stores a goal and its assists under one new play identifier
func (s *ScoringService) RecordGoal(ctx context.Context, gameID string, entry GoalEntry) (*EntryResult, error) {
	game, roster, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}

	playID := s.newPlayID()
	events, err := goalEvents(game, roster, entry, playID)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, game, playID, store.EventGoal, events)
}

// RecordShot stores a single shot event
func (s *ScoringService) RecordShot(ctx context.Context, gameID string, entry ShotEntry) (*EntryResult, error) {
	game, roster, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}

	playID := s.newPlayID()
	events, err := shotEvents(game, roster, entry, playID)
	if err != nil {
		return nil, err
	}

	return s.commit(ctx, game, playID, store.EventShot, events)
}

func (s *ScoringService) load(ctx context.Context, gameID string) (*store.Game, map[string]store.Player, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching game: %w", err)
	}

	players, err := s.playerRepo.GetByTeams(ctx, game.HomeTeamID, game.AwayTeamID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching rosters: %w", err)
	}

	return game, scoring.IndexPlayers(players), nil
}

func (s *ScoringService) commit(ctx context.Context, game *store.Game, playID string, kind store.EventKind, events []store.Event) (*EntryResult, error) {
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return s.eventRepo.InsertTx(ctx, tx, events)
	})
	if err != nil {
		return nil, fmt.Errorf("recording %s: %w", kind, err)
	}

	log.Ctx(ctx).Info().
		Str("game_id", game.ID).
		Str("play_id", playID).
		Str("kind", string(kind)).
		Int("events", len(events)).
		Msg("scoring entry recorded")

	if s.games != nil {
		s.games.Changed(ctx, game, publisher.Notice{GameID: game.ID, Kind: string(kind), PlayID: playID})
	}

	return &EntryResult{PlayID: playID, Events: events}, nil
}

// goalEvents validates a goal entry and expands it into one goal row plus one
// row per assister, all sharing playID
func goalEvents(game *store.Game, roster map[string]store.Player, entry GoalEntry, playID string) ([]store.Event, error) {
	if err := checkMoment(game, entry.TeamID, entry.Period, entry.Time); err != nil {
		return nil, err
	}
	if len(entry.AssistIDs) > maxAssistsPerGoal {
		return nil, fmt.Errorf("%d assists, at most %d allowed: %w", len(entry.AssistIDs), maxAssistsPerGoal, ErrInvalidEntry)
	}

	scorer := strings.TrimSpace(entry.ScorerID)
	if scorer != "" {
		if err := checkPlayer(roster, scorer, entry.TeamID); err != nil {
			return nil, err
		}
	}

	seen := map[string]bool{}
	for _, id := range entry.AssistIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			return nil, fmt.Errorf("blank assister: %w", ErrInvalidEntry)
		}
		if id == scorer || seen[id] {
			return nil, fmt.Errorf("player %s credited twice on one goal: %w", id, ErrInvalidEntry)
		}
		seen[id] = true
		if err := checkPlayer(roster, id, entry.TeamID); err != nil {
			return nil, err
		}
	}

	base := store.Event{
		GameID: game.ID,
		TeamID: entry.TeamID,
		Period: entry.Period,
		Time:   entry.Time,
		PlayID: sql.NullString{String: playID, Valid: true},
	}

	goal := base
	goal.Kind = store.EventGoal
	if scorer != "" {
		goal.PlayerID = sql.NullString{String: scorer, Valid: true}
	}
	events := []store.Event{goal}

	for _, id := range entry.AssistIDs {
		assist := base
		assist.Kind = store.EventAssist
		assist.PlayerID = sql.NullString{String: strings.TrimSpace(id), Valid: true}
		events = append(events, assist)
	}

	return events, nil
}

// shotEvents validates a shot entry
func shotEvents(game *store.Game, roster map[string]store.Player, entry ShotEntry, playID string) ([]store.Event, error) {
	if err := checkMoment(game, entry.TeamID, entry.Period, entry.Time); err != nil {
		return nil, err
	}

	shot := store.Event{
		GameID: game.ID,
		TeamID: entry.TeamID,
		Period: entry.Period,
		Time:   entry.Time,
		Kind:   store.EventShot,
		PlayID: sql.NullString{String: playID, Valid: true},
	}

	if id := strings.TrimSpace(entry.PlayerID); id != "" {
		if err := checkPlayer(roster, id, entry.TeamID); err != nil {
			return nil, err
		}
		shot.PlayerID = sql.NullString{String: id, Valid: true}
	}

	return []store.Event{shot}, nil
}

func checkMoment(game *store.Game, teamID string, period int, timeText string) error {
	if teamID != game.HomeTeamID && teamID != game.AwayTeamID {
		return fmt.Errorf("team %q is not playing in game %s: %w", teamID, game.ID, ErrInvalidEntry)
	}
	if period < 1 {
		return fmt.Errorf("period %d: %w", period, ErrInvalidEntry)
	}
	if !clock.Valid(timeText) {
		return fmt.Errorf("time %q is not MM:SS: %w", timeText, ErrInvalidEntry)
	}
	return nil
}

func checkPlayer(roster map[string]store.Player, playerID, teamID string) error {
	p, ok := roster[playerID]
	if !ok {
		return fmt.Errorf("player %s is not on either roster: %w", playerID, ErrInvalidEntry)
	}
	if p.TeamID != teamID {
		return fmt.Errorf("player %s does not play for %s: %w", playerID, teamID, ErrInvalidEntry)
	}
	return nil
}
