package repository

import (
	"context"
	"fmt"

	"github.com/fortuna/faceoff/internal/store"
)

// StandingsRepository reads the precomputed standings view
type StandingsRepository struct {
	db *store.Database
}

// NewStandingsRepository creates a new standings repository
func NewStandingsRepository(db *store.Database) *StandingsRepository {
	return &StandingsRepository{db: db}
}

// GetBySeason returns the view's rows for a season, unranked
func (r *StandingsRepository) GetBySeason(ctx context.Context, season string) ([]store.StandingsRow, error) {
	query := `
		SELECT team_id, team_name, season, games_played, wins, losses, overtime_losses,
			goals_for, goals_against, points, points_pct
		FROM standings
		WHERE season = $1
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying standings: %w", err)
	}
	defer rows.Close()

	result := []store.StandingsRow{}
	for rows.Next() {
		var s store.StandingsRow
		err := rows.Scan(
			&s.TeamID, &s.TeamName, &s.Season, &s.GamesPlayed, &s.Wins, &s.Losses, &s.OvertimeLosses,
			&s.GoalsFor, &s.GoalsAgainst, &s.Points, &s.PointsPct,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning standings row: %w", err)
		}
		result = append(result, s)
	}

	return result, rows.Err()
}
