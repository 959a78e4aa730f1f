package sheet

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/fortuna/faceoff/internal/scoring"
	"github.com/fortuna/faceoff/internal/store"
)

// Events turns a sheet into legacy event rows for game. Team cells match a
// team's ID, label or full name. Players match by jersey within the team, then
// by name. Unmatched scorers and shooters become unattributed rows; unmatched
// assisters are dropped. Every skipped reference is reported in warnings.
func (s *Sheet) Events(game *store.Game, teams []store.Team, players []store.Player) ([]store.Event, []string, error) {
	var warnings []string

	sides := make(map[string]string)
	for _, t := range teams {
		if t.ID != game.HomeTeamID && t.ID != game.AwayTeamID {
			continue
		}
		for _, alias := range []string{t.ID, scoring.TeamLabel(t), t.Name, t.ShortName.String} {
			if alias != "" {
				sides[strings.ToLower(alias)] = t.ID
			}
		}
	}

	teamOf := func(cell string) (string, error) {
		id, ok := sides[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			return "", fmt.Errorf("team %q is not playing in game %s", cell, game.ID)
		}
		return id, nil
	}

	playerOf := func(tok PlayerToken, teamID string) sql.NullString {
		if tok.Blank() {
			return sql.NullString{}
		}
		if id, ok := matchPlayer(tok, teamID, players); ok {
			return sql.NullString{String: id, Valid: true}
		}
		warnings = append(warnings, fmt.Sprintf("no player %s on team %s", tok, teamID))
		return sql.NullString{}
	}

	events := []store.Event{}
	for _, g := range s.Goals {
		teamID, err := teamOf(g.Team)
		if err != nil {
			return nil, warnings, err
		}
		base := store.Event{GameID: game.ID, TeamID: teamID, Period: g.Period, Time: g.Time}

		goal := base
		goal.Kind = store.EventGoal
		goal.PlayerID = playerOf(g.Scorer, teamID)
		events = append(events, goal)

		for _, a := range g.Assists {
			id := playerOf(a, teamID)
			if !id.Valid {
				continue
			}
			assist := base
			assist.Kind = store.EventAssist
			assist.PlayerID = id
			events = append(events, assist)
		}
	}

	for _, sh := range s.Shots {
		teamID, err := teamOf(sh.Team)
		if err != nil {
			return nil, warnings, err
		}
		events = append(events, store.Event{
			GameID:   game.ID,
			TeamID:   teamID,
			PlayerID: playerOf(sh.Shooter, teamID),
			Period:   sh.Period,
			Time:     sh.Time,
			Kind:     store.EventShot,
		})
	}

	return events, warnings, nil
}

func matchPlayer(tok PlayerToken, teamID string, players []store.Player) (string, bool) {
	if tok.Number != nil {
		for _, p := range players {
			if p.TeamID == teamID && p.Number.Valid && int(p.Number.Int32) == *tok.Number {
				return p.ID, true
			}
		}
	}
	if tok.Name != "" {
		for _, p := range players {
			if p.TeamID == teamID && strings.EqualFold(p.Name, tok.Name) {
				return p.ID, true
			}
		}
	}
	return "", false
}
