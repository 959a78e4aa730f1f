package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/faceoff/internal/store"
	"github.com/lib/pq"
)

// PlayerRepository handles player data access
type PlayerRepository struct {
	db *store.Database
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *store.Database) *PlayerRepository {
	return &PlayerRepository{db: db}
}

const playerColumns = `player_id, name, number, team_id, position, created_at`

// GetAll returns every player in the league
func (r *PlayerRepository) GetAll(ctx context.Context) ([]store.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY name`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying players: %w", err)
	}
	defer rows.Close()

	return r.scanPlayers(rows)
}

// GetByTeams returns the rosters of the given teams
func (r *PlayerRepository) GetByTeams(ctx context.Context, teamIDs ...string) ([]store.Player, error) {
	query := `
		SELECT ` + playerColumns + `
		FROM players
		WHERE team_id = ANY($1)
		ORDER BY team_id, number NULLS LAST, name
	`

	rows, err := r.db.DB().QueryContext(ctx, query, pq.Array(teamIDs))
	if err != nil {
		return nil, fmt.Errorf("querying team players: %w", err)
	}
	defer rows.Close()

	return r.scanPlayers(rows)
}

// Upsert inserts or updates a player
func (r *PlayerRepository) Upsert(ctx context.Context, p *store.Player) error {
	query := `
		INSERT INTO players (player_id, name, number, team_id, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (player_id) DO UPDATE SET
			name = EXCLUDED.name,
			number = EXCLUDED.number,
			team_id = EXCLUDED.team_id,
			position = EXCLUDED.position
	`

	_, err := r.db.DB().ExecContext(ctx, query, p.ID, p.Name, p.Number, p.TeamID, p.Position)
	if err != nil {
		return fmt.Errorf("upserting player: %w", err)
	}
	return nil
}

func (r *PlayerRepository) scanPlayers(rows *sql.Rows) ([]store.Player, error) {
	players := []store.Player{}
	for rows.Next() {
		var p store.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Number, &p.TeamID, &p.Position, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}

	return players, rows.Err()
}
