package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fortuna/faceoff/internal/store"
)

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetAll returns every team ordered by name
func (r *TeamRepository) GetAll(ctx context.Context) ([]store.Team, error) {
	query := `
		SELECT team_id, name, short_name, created_at
		FROM teams
		ORDER BY name
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	teams := []store.Team{}
	for rows.Next() {
		var team store.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.ShortName, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// GetByID finds a team by ID
func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (*store.Team, error) {
	query := `
		SELECT team_id, name, short_name, created_at
		FROM teams
		WHERE team_id = $1
	`

	team := &store.Team{}
	err := r.db.DB().QueryRowContext(ctx, query, teamID).Scan(
		&team.ID, &team.Name, &team.ShortName, &team.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %s: %w", teamID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return team, nil
}

// Upsert inserts or renames a team
func (r *TeamRepository) Upsert(ctx context.Context, team *store.Team) error {
	query := `
		INSERT INTO teams (team_id, name, short_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (team_id) DO UPDATE SET
			name = EXCLUDED.name,
			short_name = EXCLUDED.short_name
	`

	if _, err := r.db.DB().ExecContext(ctx, query, team.ID, team.Name, team.ShortName); err != nil {
		return fmt.Errorf("upserting team: %w", err)
	}
	return nil
}
