package scoring

import (
	"database/sql"

	"github.com/fortuna/faceoff/internal/store"
)

func ev(kind store.EventKind, team string, player string, period int, t string) store.Event {
	e := store.Event{GameID: "g1", TeamID: team, Period: period, Time: t, Kind: kind}
	if player != "" {
		e.PlayerID = sql.NullString{String: player, Valid: true}
	}
	return e
}

func withPlay(e store.Event, playID string) store.Event {
	e.PlayID = sql.NullString{String: playID, Valid: true}
	return e
}

func player(id, name string, number int, team, position string) store.Player {
	p := store.Player{ID: id, Name: name, TeamID: team}
	if number >= 0 {
		p.Number = sql.NullInt32{Int32: int32(number), Valid: true}
	}
	if position != "" {
		p.Position = sql.NullString{String: position, Valid: true}
	}
	return p
}

func testPlayers() map[string]store.Player {
	return IndexPlayers([]store.Player{
		player("p1", "Ada Lind", 9, "A", "C"),
		player("p2", "Bo Strand", 14, "A", "LW"),
		player("p3", "Cy Moe", 4, "A", "D"),
		player("p4", "Dag Ek", 22, "A", "RW"),
		player("p5", "Eli Berg", 30, "A", "G"),
		player("q1", "Finn Aho", 11, "B", "C"),
		player("q2", "Gus Ray", 7, "B", "D"),
		player("q3", "Hal Oja", 1, "B", "goalie"),
	})
}

func testTeams() map[string]store.Team {
	return IndexTeams([]store.Team{
		{ID: "A", Name: "Aurora Borealis", ShortName: sql.NullString{String: "AUR", Valid: true}},
		{ID: "B", Name: "Bay City Hawks"},
	})
}

func assistIDs(line GoalLine) []string {
	ids := make([]string, 0, len(line.Assists))
	for _, a := range line.Assists {
		ids = append(ids, a.ID)
	}
	return ids
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
