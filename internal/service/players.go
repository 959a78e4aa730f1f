package service

import (
	"context"
	"fmt"

	"github.com/fortuna/faceoff/internal/scoring"
	"github.com/fortuna/faceoff/internal/store"
	"github.com/fortuna/faceoff/internal/store/repository"
)

// PlayerService handles teams and rosters
type PlayerService struct {
	playerRepo *repository.PlayerRepository
	teamRepo   *repository.TeamRepository
}

// NewPlayerService creates a new player service
func NewPlayerService(db *store.Database) *PlayerService {
	return &PlayerService{
		playerRepo: repository.NewPlayerRepository(db),
		teamRepo:   repository.NewTeamRepository(db),
	}
}

// TeamView is a team with its display label
type TeamView struct {
	store.Team
	Label string `json:"label"`
}

// Roster is a team's full roster in jersey order plus its starting goaltender
type Roster struct {
	Team       TeamView       `json:"team"`
	Players    []store.Player `json:"players"`
	Goaltender *store.Player  `json:"goaltender,omitempty"`
}

// ListTeams returns every team with its label
func (s *PlayerService) ListTeams(ctx context.Context) ([]TeamView, error) {
	teams, err := s.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}

	views := make([]TeamView, len(teams))
	for i, t := range teams {
		views[i] = TeamView{Team: t, Label: scoring.TeamLabel(t)}
	}
	return views, nil
}

// GetTeamRoster retrieves all players on a team
func (s *PlayerService) GetTeamRoster(ctx context.Context, teamID string) (*Roster, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("fetching team: %w", err)
	}

	players, err := s.playerRepo.GetByTeams(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("fetching team roster: %w", err)
	}

	roster := scoring.TeamRoster(players, teamID)
	return &Roster{
		Team:       TeamView{Team: *team, Label: scoring.TeamLabel(*team)},
		Players:    roster,
		Goaltender: scoring.SelectGoaltender(roster),
	}, nil
}
