// Package scoring reconstructs a single game's scoring plays from raw event rows
// and folds them into the views shown on a game summary page.
//
// Every function here is a pure fold over the snapshot it is given. Nothing is
// cached and nothing returns an error: unresolvable references degrade to absent
// values instead.
package scoring

import (
	"github.com/fortuna/faceoff/internal/store"
)

// unknownNumber sorts players without a jersey after everyone else
const unknownNumber = 9999

// maxAssists is the most assisters credited on a single goal
const maxAssists = 2

// PlayerRef is the compact player reference rendered on goal-lines
type PlayerRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number *int   `json:"number,omitempty"`
}

// GoalLine is one reconstructed scoring play: a goal plus its assisters
type GoalLine struct {
	Period    int         `json:"period"`
	Time      string      `json:"time_mmss"`
	TeamID    string      `json:"team_id"`
	TeamShort string      `json:"team_short"`
	PlayID    string      `json:"play_id,omitempty"`
	Scorer    *PlayerRef  `json:"scorer,omitempty"`
	Assists   []PlayerRef `json:"assists"`
}

// ScorerName returns the scorer's name, or "unknown" for unattributed goals
func (g GoalLine) ScorerName() string {
	if g.Scorer == nil {
		return "unknown"
	}
	return g.Scorer.Name
}

// PeriodCount holds home and away goals for one period (or the whole game)
type PeriodCount struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// PeriodRow is a PeriodCount labelled with its period number
type PeriodRow struct {
	Period int `json:"period"`
	PeriodCount
}

// Linescore is the per-period goal breakdown of a game.
// Total is nil when no goal could be attributed to either side.
type Linescore struct {
	Periods map[int]PeriodCount `json:"periods"`
	Total   *PeriodCount        `json:"total,omitempty"`
}

// PlayerLine is a player's box-score line for one game
type PlayerLine struct {
	Player  PlayerRef `json:"player"`
	Goals   int       `json:"goals"`
	Assists int       `json:"assists"`
	Points  int       `json:"points"`
	Shots   int       `json:"shots"`
}

// TeamSide groups everything shown for one team on a game summary
type TeamSide struct {
	TeamID     string       `json:"team_id"`
	Name       string       `json:"name"`
	Label      string       `json:"label"`
	Goals      int          `json:"goals"`
	Shots      int          `json:"shots"`
	Roster     []PlayerLine `json:"roster"`
	Goaltender *PlayerRef   `json:"goaltender,omitempty"`
}

// GameSummary is the full derived view of one game
type GameSummary struct {
	Game      *store.Game `json:"game"`
	Home      TeamSide    `json:"home"`
	Away      TeamSide    `json:"away"`
	Goals     []GoalLine  `json:"goals"`
	Linescore Linescore   `json:"linescore"`
}

// NewPlayerRef builds a PlayerRef from a stored player
func NewPlayerRef(p store.Player) PlayerRef {
	ref := PlayerRef{ID: p.ID, Name: p.Name}
	if p.Number.Valid {
		n := int(p.Number.Int32)
		ref.Number = &n
	}
	return ref
}

// IndexPlayers builds a lookup by player ID
func IndexPlayers(players []store.Player) map[string]store.Player {
	idx := make(map[string]store.Player, len(players))
	for _, p := range players {
		idx[p.ID] = p
	}
	return idx
}

// IndexTeams builds a lookup by team ID
func IndexTeams(teams []store.Team) map[string]store.Team {
	idx := make(map[string]store.Team, len(teams))
	for _, t := range teams {
		idx[t.ID] = t
	}
	return idx
}

func jersey(p store.Player) int {
	if p.Number.Valid {
		return int(p.Number.Int32)
	}
	return unknownNumber
}
