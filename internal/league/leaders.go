// Package league folds a season's full event and game history into
// league-wide tables: scoring leaders and standings.
package league

import (
	"sort"

	"github.com/fortuna/faceoff/internal/store"
)

// LeaderRow is one player's season scoring totals
type LeaderRow struct {
	PlayerID      string  `json:"player_id"`
	Name          string  `json:"name"`
	TeamID        string  `json:"team_id"`
	Number        *int    `json:"number,omitempty"`
	GamesPlayed   int     `json:"games_played"`
	Goals         int     `json:"goals"`
	Assists       int     `json:"assists"`
	Points        int     `json:"points"`
	Shots         int     `json:"shots"`
	PointsPerGame float64 `json:"points_per_game"`
}

// ScoringLeaders returns one row per supplied player with goals, assists and
// shots summed over all events. Games played counts the distinct games in
// which the player has any event. Events for unknown players are skipped.
func ScoringLeaders(events []store.Event, players []store.Player) []LeaderRow {
	rows := make([]LeaderRow, len(players))
	byID := make(map[string]*LeaderRow, len(players))
	games := make(map[string]map[string]struct{}, len(players))

	for i, p := range players {
		rows[i] = LeaderRow{PlayerID: p.ID, Name: p.Name, TeamID: p.TeamID}
		if p.Number.Valid {
			n := int(p.Number.Int32)
			rows[i].Number = &n
		}
		byID[p.ID] = &rows[i]
		games[p.ID] = make(map[string]struct{})
	}

	for _, e := range events {
		if !e.PlayerID.Valid {
			continue
		}
		row, ok := byID[e.PlayerID.String]
		if !ok {
			continue
		}

		switch e.Kind {
		case store.EventGoal:
			row.Goals++
		case store.EventAssist:
			row.Assists++
		case store.EventShot:
			row.Shots++
		default:
			continue
		}
		games[row.PlayerID][e.GameID] = struct{}{}
	}

	for i := range rows {
		r := &rows[i]
		r.GamesPlayed = len(games[r.PlayerID])
		r.Points = r.Goals + r.Assists
		r.PointsPerGame = perGame(r.Points, r.GamesPlayed)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Goals != b.Goals {
			return a.Goals > b.Goals
		}
		if a.PointsPerGame != b.PointsPerGame {
			return a.PointsPerGame > b.PointsPerGame
		}
		return a.Name < b.Name
	})

	return rows
}

// perGame divides with zero check
func perGame(total, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(total) / float64(games)
}
