package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/faceoff/internal/store"
	"github.com/lib/pq"
)

// EventRepository handles scoring event rows. Rows are only ever appended.
type EventRepository struct {
	db *store.Database
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *store.Database) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `event_id, game_id, team_id, player_id, period, time_mmss, event, play_id, created_at`

// ListByGame returns a game's events in insertion order
func (r *EventRepository) ListByGame(ctx context.Context, gameID string) ([]store.Event, error) {
	return r.ListByGames(ctx, gameID)
}

// ListByGames returns the events of several games in insertion order
func (r *EventRepository) ListByGames(ctx context.Context, gameIDs ...string) ([]store.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE game_id = ANY($1) ORDER BY event_id`

	rows, err := r.db.DB().QueryContext(ctx, query, pq.Array(gameIDs))
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListBySeason returns every event of a season's games
func (r *EventRepository) ListBySeason(ctx context.Context, season string) ([]store.Event, error) {
	query := `
		SELECT e.event_id, e.game_id, e.team_id, e.player_id, e.period, e.time_mmss,
			e.event, e.play_id, e.created_at
		FROM events e
		JOIN games g ON g.game_id = e.game_id
		WHERE g.season = $1
		ORDER BY e.event_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("querying season events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// InsertTx appends events inside tx, filling in their IDs and timestamps
func (r *EventRepository) InsertTx(ctx context.Context, tx *sql.Tx, events []store.Event) error {
	query := `
		INSERT INTO events (game_id, team_id, player_id, period, time_mmss, event, play_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING event_id, created_at
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing event insert: %w", err)
	}
	defer stmt.Close()

	for i := range events {
		e := &events[i]
		err := stmt.QueryRowContext(ctx,
			e.GameID, e.TeamID, e.PlayerID, e.Period, e.Time, string(e.Kind), e.PlayID,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting %s event: %w", e.Kind, err)
		}
	}

	return nil
}

// Insert appends events in their own transaction
func (r *EventRepository) Insert(ctx context.Context, events []store.Event) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return r.InsertTx(ctx, tx, events)
	})
}

func scanEvents(rows *sql.Rows) ([]store.Event, error) {
	events := []store.Event{}
	for rows.Next() {
		var e store.Event
		var kind string
		err := rows.Scan(
			&e.ID, &e.GameID, &e.TeamID, &e.PlayerID, &e.Period, &e.Time,
			&kind, &e.PlayID, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.Kind = store.EventKind(kind)
		events = append(events, e)
	}

	return events, rows.Err()
}
