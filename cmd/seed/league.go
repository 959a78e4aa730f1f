package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fortuna/faceoff/internal/store"
)

// leagueFile is the JSON layout accepted by the seeder
type leagueFile struct {
	Season  string       `json:"season"`
	Teams   []teamJSON   `json:"teams"`
	Players []playerJSON `json:"players"`
	Games   []gameJSON   `json:"games"`
}

type teamJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type playerJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Number   *int32 `json:"number"`
	TeamID   string `json:"team_id"`
	Position string `json:"position"`
}

type gameJSON struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Season     string    `json:"season"`
	StartsAt   time.Time `json:"starts_at"`
	Status     string    `json:"status"`
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	HomeScore  *int32    `json:"home_score"`
	AwayScore  *int32    `json:"away_score"`
	Period     *int32    `json:"period"`
	Venue      string    `json:"venue"`
}

// league is a decoded and validated league file
type league struct {
	Teams   []store.Team
	Players []store.Player
	Games   []store.Game
}

var gameStatuses = map[string]bool{
	store.GameStatusScheduled:  true,
	store.GameStatusInProgress: true,
	store.GameStatusFinal:      true,
	store.GameStatusPostponed:  true,
}

func decodeLeague(r io.Reader) (*league, error) {
	var f leagueFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding league file: %w", err)
	}

	out := &league{}
	teams := make(map[string]bool, len(f.Teams))
	for _, t := range f.Teams {
		if t.ID == "" || strings.TrimSpace(t.Name) == "" {
			return nil, fmt.Errorf("team %q: id and name are required", t.ID)
		}
		if teams[t.ID] {
			return nil, fmt.Errorf("team %q listed twice", t.ID)
		}
		teams[t.ID] = true
		out.Teams = append(out.Teams, store.Team{
			ID:        t.ID,
			Name:      t.Name,
			ShortName: nullString(t.ShortName),
		})
	}

	players := make(map[string]bool, len(f.Players))
	for _, p := range f.Players {
		if p.ID == "" || strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("player %q: id and name are required", p.ID)
		}
		if players[p.ID] {
			return nil, fmt.Errorf("player %q listed twice", p.ID)
		}
		if !teams[p.TeamID] {
			return nil, fmt.Errorf("player %q: unknown team %q", p.ID, p.TeamID)
		}
		players[p.ID] = true
		out.Players = append(out.Players, store.Player{
			ID:       p.ID,
			Name:     p.Name,
			Number:   nullInt(p.Number),
			TeamID:   p.TeamID,
			Position: nullString(p.Position),
		})
	}

	games := make(map[string]bool, len(f.Games))
	for _, g := range f.Games {
		if g.ID == "" {
			return nil, fmt.Errorf("game without id")
		}
		if games[g.ID] {
			return nil, fmt.Errorf("game %q listed twice", g.ID)
		}
		if !teams[g.HomeTeamID] || !teams[g.AwayTeamID] || g.HomeTeamID == g.AwayTeamID {
			return nil, fmt.Errorf("game %q: needs two distinct known teams", g.ID)
		}
		status := g.Status
		if status == "" {
			status = store.GameStatusScheduled
		}
		if !gameStatuses[status] {
			return nil, fmt.Errorf("game %q: unknown status %q", g.ID, g.Status)
		}
		season := g.Season
		if season == "" {
			season = f.Season
		}
		if season == "" {
			return nil, fmt.Errorf("game %q: no season", g.ID)
		}
		slug := g.Slug
		if slug == "" {
			slug = g.ID
		}
		games[g.ID] = true
		out.Games = append(out.Games, store.Game{
			ID:         g.ID,
			Slug:       slug,
			Season:     season,
			StartsAt:   g.StartsAt,
			Status:     status,
			HomeTeamID: g.HomeTeamID,
			AwayTeamID: g.AwayTeamID,
			HomeScore:  nullInt(g.HomeScore),
			AwayScore:  nullInt(g.AwayScore),
			Period:     nullInt(g.Period),
			Venue:      nullString(g.Venue),
		})
	}

	return out, nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n *int32) sql.NullInt32 {
	if n == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: *n, Valid: true}
}
