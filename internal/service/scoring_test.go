package service

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/fortuna/faceoff/internal/scoring"
	"github.com/fortuna/faceoff/internal/store"
)

func entryFixture() (*store.Game, map[string]store.Player) {
	game := &store.Game{ID: "g1", HomeTeamID: "A", AwayTeamID: "B"}
	roster := scoring.IndexPlayers([]store.Player{
		{ID: "a1", Name: "Ada", TeamID: "A"},
		{ID: "a2", Name: "Bo", TeamID: "A"},
		{ID: "a3", Name: "Cy", TeamID: "A"},
		{ID: "b1", Name: "Dag", TeamID: "B"},
	})
	return game, roster
}

func TestGoalEvents(t *testing.T) {
	game, roster := entryFixture()

	events, err := goalEvents(game, roster, GoalEntry{
		TeamID: "A", ScorerID: "a1", AssistIDs: []string{"a2", "a3"}, Period: 2, Time: "07:15",
	}, "play-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 3 {
		t.Fatalf("expected goal plus two assists, got %d", len(events))
	}
	wantKinds := []store.EventKind{store.EventGoal, store.EventAssist, store.EventAssist}
	wantPlayers := []string{"a1", "a2", "a3"}
	for i, e := range events {
		if e.Kind != wantKinds[i] || e.PlayerID.String != wantPlayers[i] {
			t.Errorf("event %d: got %s by %s", i, e.Kind, e.PlayerID.String)
		}
		if e.PlayID.String != "play-1" || !e.PlayID.Valid {
			t.Errorf("event %d: expected play id play-1, got %+v", i, e.PlayID)
		}
		if e.GameID != "g1" || e.TeamID != "A" || e.Period != 2 || e.Time != "07:15" {
			t.Errorf("event %d: wrong moment %+v", i, e)
		}
	}

	players := scoring.IndexPlayers([]store.Player{{ID: "a1", Name: "Ada"}, {ID: "a2", Name: "Bo"}, {ID: "a3", Name: "Cy"}})
	lines := scoring.GroupPlays(events, players, nil)
	if len(lines) != 1 || len(lines[0].Assists) != 2 {
		t.Errorf("recorded goal did not regroup into one play: %+v", lines)
	}
}

func TestGoalEventsUnassistedUnknownScorer(t *testing.T) {
	game, roster := entryFixture()

	events, err := goalEvents(game, roster, GoalEntry{TeamID: "B", Period: 1, Time: "00:30"}, "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 || events[0].PlayerID.Valid {
		t.Errorf("expected a single unattributed goal, got %+v", events)
	}
}

func TestGoalEventsInvalid(t *testing.T) {
	game, roster := entryFixture()

	tests := []struct {
		name  string
		entry GoalEntry
	}{
		{"team not in game", GoalEntry{TeamID: "C", Period: 1, Time: "01:00"}},
		{"period zero", GoalEntry{TeamID: "A", Period: 0, Time: "01:00"}},
		{"bad time", GoalEntry{TeamID: "A", Period: 1, Time: "1:5"}},
		{"seconds overflow", GoalEntry{TeamID: "A", Period: 1, Time: "01:75"}},
		{"three assists", GoalEntry{TeamID: "A", ScorerID: "a1", AssistIDs: []string{"a2", "a3", "a1"}, Period: 1, Time: "01:00"}},
		{"scorer assists self", GoalEntry{TeamID: "A", ScorerID: "a1", AssistIDs: []string{"a1"}, Period: 1, Time: "01:00"}},
		{"duplicate assister", GoalEntry{TeamID: "A", AssistIDs: []string{"a2", "a2"}, Period: 1, Time: "01:00"}},
		{"unknown scorer", GoalEntry{TeamID: "A", ScorerID: "zz", Period: 1, Time: "01:00"}},
		{"scorer on other team", GoalEntry{TeamID: "A", ScorerID: "b1", Period: 1, Time: "01:00"}},
		{"blank assister", GoalEntry{TeamID: "A", AssistIDs: []string{" "}, Period: 1, Time: "01:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := goalEvents(game, roster, tt.entry, "p")
			if !errors.Is(err, ErrInvalidEntry) {
				t.Fatalf("expected ErrInvalidEntry, got %v", err)
			}
		})
	}
}

func TestShotEvents(t *testing.T) {
	game, roster := entryFixture()

	events, err := shotEvents(game, roster, ShotEntry{TeamID: "B", PlayerID: "b1", Period: 3, Time: "19:59"}, "s-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := store.Event{
		GameID:   "g1",
		TeamID:   "B",
		PlayerID: sql.NullString{String: "b1", Valid: true},
		Period:   3,
		Time:     "19:59",
		Kind:     store.EventShot,
		PlayID:   sql.NullString{String: "s-1", Valid: true},
	}
	if len(events) != 1 || events[0] != want {
		t.Errorf("got %+v, want %+v", events, want)
	}

	if _, err := shotEvents(game, roster, ShotEntry{TeamID: "A", PlayerID: "b1", Period: 1, Time: "01:00"}, "s"); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry for shooter on other team, got %v", err)
	}
}
