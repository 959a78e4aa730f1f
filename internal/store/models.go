package store

import (
	"database/sql"
	"strings"
	"time"
)

// EventKind is the type of a scoring event row.
type EventKind string

const (
	EventGoal   EventKind = "goal"
	EventAssist EventKind = "assist"
	EventShot   EventKind = "shot"
)

// Valid reports whether k is one of the known event kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventGoal, EventAssist, EventShot:
		return true
	}
	return false
}

// Game statuses
const (
	GameStatusScheduled  = "scheduled"
	GameStatusInProgress = "in_progress"
	GameStatusFinal      = "final"
	GameStatusPostponed  = "postponed"
)

// Team represents a league club
type Team struct {
	ID        string         `json:"id" db:"team_id"`
	Name      string         `json:"name" db:"name"`
	ShortName sql.NullString `json:"short_name,omitempty" db:"short_name"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// Player represents a rostered player
type Player struct {
	ID        string         `json:"id" db:"player_id"`
	Name      string         `json:"name" db:"name"`
	Number    sql.NullInt32  `json:"number,omitempty" db:"number"`
	TeamID    string         `json:"team_id" db:"team_id"`
	Position  sql.NullString `json:"position,omitempty" db:"position"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// IsGoaltender reports whether the player's position starts with "G" (any case).
func (p Player) IsGoaltender() bool {
	if !p.Position.Valid {
		return false
	}
	pos := strings.TrimSpace(p.Position.String)
	return pos != "" && strings.EqualFold(pos[:1], "g")
}

// Game represents a scheduled or played game.
// HomeScore/AwayScore are only populated on legacy rows; newer games derive the score from events.
type Game struct {
	ID         string         `json:"id" db:"game_id"`
	Slug       string         `json:"slug" db:"slug"`
	Season     string         `json:"season" db:"season"`
	StartsAt   time.Time      `json:"starts_at" db:"starts_at"`
	Status     string         `json:"status" db:"status"`
	HomeTeamID string         `json:"home_team_id" db:"home_team_id"`
	AwayTeamID string         `json:"away_team_id" db:"away_team_id"`
	HomeScore  sql.NullInt32  `json:"home_score,omitempty" db:"home_score"`
	AwayScore  sql.NullInt32  `json:"away_score,omitempty" db:"away_score"`
	Period     sql.NullInt32  `json:"period,omitempty" db:"period"`
	Clock      sql.NullString `json:"clock,omitempty" db:"clock"`
	Venue      sql.NullString `json:"venue,omitempty" db:"venue"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// Event is one atomic scoring occurrence. Rows are append-only.
type Event struct {
	ID        int64          `json:"id" db:"event_id"`
	GameID    string         `json:"game_id" db:"game_id"`
	TeamID    string         `json:"team_id" db:"team_id"`
	PlayerID  sql.NullString `json:"player_id,omitempty" db:"player_id"`
	Period    int            `json:"period" db:"period"`
	Time      string         `json:"time_mmss" db:"time_mmss"`
	Kind      EventKind      `json:"event" db:"event"`
	PlayID    sql.NullString `json:"play_id,omitempty" db:"play_id"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// StandingsRow is one team's season record
type StandingsRow struct {
	TeamID         string          `json:"team_id" db:"team_id"`
	TeamName       string          `json:"team_name" db:"team_name"`
	Season         string          `json:"season" db:"season"`
	GamesPlayed    int             `json:"games_played" db:"games_played"`
	Wins           int             `json:"wins" db:"wins"`
	Losses         int             `json:"losses" db:"losses"`
	OvertimeLosses int             `json:"overtime_losses" db:"overtime_losses"`
	GoalsFor       int             `json:"goals_for" db:"goals_for"`
	GoalsAgainst   int             `json:"goals_against" db:"goals_against"`
	Points         int             `json:"points" db:"points"`
	PointsPct      sql.NullFloat64 `json:"points_pct,omitempty" db:"points_pct"`
}

// GoalDiff returns goals for minus goals against
func (r StandingsRow) GoalDiff() int {
	return r.GoalsFor - r.GoalsAgainst
}
