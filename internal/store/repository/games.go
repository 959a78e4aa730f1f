package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/faceoff/internal/store"
)

// GameRepository handles game data access
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

const gameColumns = `
	game_id, slug, season, starts_at, status, home_team_id, away_team_id,
	home_score, away_score, period, clock, venue, created_at, updated_at`

// GetByID finds a game by ID or, failing that, by slug
func (r *GameRepository) GetByID(ctx context.Context, gameID string) (*store.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE game_id = $1 OR slug = $1 LIMIT 1`

	game := &store.Game{}
	err := r.db.DB().QueryRowContext(ctx, query, gameID).Scan(
		&game.ID, &game.Slug, &game.Season, &game.StartsAt, &game.Status,
		&game.HomeTeamID, &game.AwayTeamID, &game.HomeScore, &game.AwayScore,
		&game.Period, &game.Clock, &game.Venue, &game.CreatedAt, &game.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying game: %w", err)
	}

	return game, nil
}

// GetBySeason returns a season's games in schedule order
func (r *GameRepository) GetBySeason(ctx context.Context, season string) ([]store.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE season = $1 ORDER BY starts_at, game_id`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying season games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// GetLiveGames returns games currently in progress
func (r *GameRepository) GetLiveGames(ctx context.Context) ([]store.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE status = $1 ORDER BY starts_at`

	rows, err := r.db.DB().QueryContext(ctx, query, store.GameStatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("querying live games: %w", err)
	}
	defer rows.Close()

	return r.scanGames(rows)
}

// Upsert inserts or updates a game
func (r *GameRepository) Upsert(ctx context.Context, game *store.Game) error {
	query := `
		INSERT INTO games (game_id, slug, season, starts_at, status, home_team_id, away_team_id,
			home_score, away_score, period, clock, venue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (game_id) DO UPDATE SET
			slug = EXCLUDED.slug,
			season = EXCLUDED.season,
			starts_at = EXCLUDED.starts_at,
			status = EXCLUDED.status,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			period = EXCLUDED.period,
			clock = EXCLUDED.clock,
			venue = EXCLUDED.venue,
			updated_at = NOW()
		RETURNING updated_at
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		game.ID, game.Slug, game.Season, game.StartsAt, game.Status, game.HomeTeamID, game.AwayTeamID,
		game.HomeScore, game.AwayScore, game.Period, game.Clock, game.Venue,
	).Scan(&game.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting game: %w", err)
	}

	return nil
}

// UpdateClock stores the running period and clock and marks the game in progress
func (r *GameRepository) UpdateClock(ctx context.Context, gameID string, period int, clockText string) error {
	query := `
		UPDATE games
		SET period = $2, clock = $3, status = $4, updated_at = NOW()
		WHERE game_id = $1
	`

	res, err := r.db.DB().ExecContext(ctx, query, gameID, period, clockText, store.GameStatusInProgress)
	if err != nil {
		return fmt.Errorf("updating game clock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating game clock: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("game %s: %w", gameID, ErrNotFound)
	}

	return nil
}

// CleanupStaleGames marks in-progress games that started before now-olderThan
// as final and returns how many rows changed
func (r *GameRepository) CleanupStaleGames(ctx context.Context, olderThan time.Duration) (int64, error) {
	staleThreshold := time.Now().Add(-olderThan)

	query := `
		UPDATE games
		SET status = $1, updated_at = NOW()
		WHERE status = $2
			AND starts_at < $3
	`

	result, err := r.db.DB().ExecContext(ctx, query, store.GameStatusFinal, store.GameStatusInProgress, staleThreshold)
	if err != nil {
		return 0, fmt.Errorf("cleaning up stale games: %w", err)
	}

	return result.RowsAffected()
}

func (r *GameRepository) scanGames(rows *sql.Rows) ([]store.Game, error) {
	games := []store.Game{}
	for rows.Next() {
		var game store.Game
		err := rows.Scan(
			&game.ID, &game.Slug, &game.Season, &game.StartsAt, &game.Status,
			&game.HomeTeamID, &game.AwayTeamID, &game.HomeScore, &game.AwayScore,
			&game.Period, &game.Clock, &game.Venue, &game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}
