package main

import (
	"strings"
	"testing"

	"github.com/fortuna/faceoff/internal/store"
)

const sampleLeague = `{
  "season": "2025-26",
  "teams": [
    {"id": "bears", "name": "Harbour Bears", "short_name": "HBR"},
    {"id": "owls", "name": "North Owls"}
  ],
  "players": [
    {"id": "p1", "name": "Ann Kane", "number": 9, "team_id": "bears", "position": "F"},
    {"id": "p2", "name": "Bo Lind", "team_id": "owls", "position": "G"}
  ],
  "games": [
    {"id": "g1", "starts_at": "2025-10-04T19:00:00Z", "home_team_id": "bears", "away_team_id": "owls"},
    {"id": "g2", "slug": "owls-bears", "season": "2024-25", "status": "final",
     "starts_at": "2025-03-01T19:00:00Z", "home_team_id": "owls", "away_team_id": "bears",
     "home_score": 2, "away_score": 3, "period": 4}
  ]
}`

func TestDecodeLeague(t *testing.T) {
	lg, err := decodeLeague(strings.NewReader(sampleLeague))
	if err != nil {
		t.Fatalf("decodeLeague: %v", err)
	}
	if len(lg.Teams) != 2 || len(lg.Players) != 2 || len(lg.Games) != 2 {
		t.Fatalf("got %d teams %d players %d games", len(lg.Teams), len(lg.Players), len(lg.Games))
	}

	if lg.Teams[1].ShortName.Valid {
		t.Errorf("owls short name should be absent")
	}
	if !lg.Players[0].Number.Valid || lg.Players[0].Number.Int32 != 9 {
		t.Errorf("p1 number = %+v", lg.Players[0].Number)
	}
	if lg.Players[1].Number.Valid {
		t.Errorf("p2 number should be absent")
	}
	if !lg.Players[1].IsGoaltender() {
		t.Errorf("p2 should be a goaltender")
	}

	g1 := lg.Games[0]
	if g1.Slug != "g1" || g1.Season != "2025-26" || g1.Status != store.GameStatusScheduled {
		t.Errorf("g1 defaults = slug %q season %q status %q", g1.Slug, g1.Season, g1.Status)
	}
	if g1.HomeScore.Valid || g1.Period.Valid {
		t.Errorf("g1 should have no score or period")
	}

	g2 := lg.Games[1]
	if g2.Season != "2024-25" || g2.Slug != "owls-bears" {
		t.Errorf("g2 = season %q slug %q", g2.Season, g2.Slug)
	}
	if g2.AwayScore.Int32 != 3 || g2.Period.Int32 != 4 {
		t.Errorf("g2 score/period = %+v %+v", g2.AwayScore, g2.Period)
	}
}

func TestDecodeLeagueErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"teams": [`},
		{"unknown field", `{"season": "s", "divisions": []}`},
		{"team without name", `{"teams": [{"id": "a"}]}`},
		{"duplicate team", `{"teams": [{"id": "a", "name": "A"}, {"id": "a", "name": "B"}]}`},
		{"player unknown team", `{"teams": [{"id": "a", "name": "A"}], "players": [{"id": "p", "name": "P", "team_id": "z"}]}`},
		{"duplicate player", `{"teams": [{"id": "a", "name": "A"}], "players": [{"id": "p", "name": "P", "team_id": "a"}, {"id": "p", "name": "Q", "team_id": "a"}]}`},
		{"same team twice", `{"season": "s", "teams": [{"id": "a", "name": "A"}], "games": [{"id": "g", "home_team_id": "a", "away_team_id": "a"}]}`},
		{"bad status", `{"season": "s", "teams": [{"id": "a", "name": "A"}, {"id": "b", "name": "B"}], "games": [{"id": "g", "status": "live", "home_team_id": "a", "away_team_id": "b"}]}`},
		{"no season", `{"teams": [{"id": "a", "name": "A"}, {"id": "b", "name": "B"}], "games": [{"id": "g", "home_team_id": "a", "away_team_id": "b"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeLeague(strings.NewReader(tt.in)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
