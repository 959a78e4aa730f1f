package scoring

import (
	"sort"

	"github.com/fortuna/faceoff/internal/clock"
	"github.com/fortuna/faceoff/internal/store"
)

// playKey is the timestamp coincidence used to link legacy assists to goals
type playKey struct {
	gameID string
	period int
	time   string
	teamID string
}

func keyOf(e store.Event) playKey {
	return playKey{gameID: e.GameID, period: e.Period, time: e.Time, teamID: e.TeamID}
}

// assistMatches reports whether an assist belongs to a goal. When both carry a
// play ID they must agree. Otherwise the assist falls back to the (game,
// period, time, team) key, except that a tagged assist whose play ID belongs
// to some goal never attaches to an untagged one.
func assistMatches(goal, assist store.Event, goalPlays map[string]bool) bool {
	if assist.PlayID.Valid {
		if goal.PlayID.Valid {
			return goal.PlayID.String == assist.PlayID.String
		}
		if goalPlays[assist.PlayID.String] {
			return false
		}
	}
	return keyOf(goal) == keyOf(assist)
}

// GroupPlays reconstructs goal-lines from one game's events. Each goal keeps
// the first two matching assists in event order; extra assists and assists
// with no matching goal are dropped. Lines are ordered by period, then clock,
// with ties left in input order.
func GroupPlays(events []store.Event, players map[string]store.Player, teams map[string]store.Team) []GoalLine {
	var goals, assists []store.Event
	goalPlays := make(map[string]bool)
	for _, e := range events {
		switch e.Kind {
		case store.EventGoal:
			goals = append(goals, e)
			if e.PlayID.Valid {
				goalPlays[e.PlayID.String] = true
			}
		case store.EventAssist:
			assists = append(assists, e)
		}
	}

	lines := make([]GoalLine, 0, len(goals))
	for _, goal := range goals {
		line := GoalLine{
			Period:    goal.Period,
			Time:      goal.Time,
			TeamID:    goal.TeamID,
			TeamShort: teamShort(goal.TeamID, teams),
			Assists:   []PlayerRef{},
		}
		if goal.PlayID.Valid {
			line.PlayID = goal.PlayID.String
		}
		if p, ok := resolve(goal.PlayerID.String, goal.PlayerID.Valid, players); ok {
			ref := NewPlayerRef(p)
			line.Scorer = &ref
		}

		matched := 0
		for _, a := range assists {
			if matched == maxAssists {
				break
			}
			if !assistMatches(goal, a, goalPlays) {
				continue
			}
			matched++
			if p, ok := resolve(a.PlayerID.String, a.PlayerID.Valid, players); ok {
				line.Assists = append(line.Assists, NewPlayerRef(p))
			}
		}

		lines = append(lines, line)
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Period != lines[j].Period {
			return lines[i].Period < lines[j].Period
		}
		return clock.Parse(lines[i].Time) < clock.Parse(lines[j].Time)
	})

	return lines
}

func resolve(id string, valid bool, players map[string]store.Player) (store.Player, bool) {
	if !valid || id == "" {
		return store.Player{}, false
	}
	p, ok := players[id]
	return p, ok
}

func teamShort(teamID string, teams map[string]store.Team) string {
	if t, ok := teams[teamID]; ok {
		return TeamLabel(t)
	}
	return ""
}
