package scoring

import (
	"sort"
	"strings"
	"unicode"

	"github.com/fortuna/faceoff/internal/store"
)

// AppearedRoster returns the distinct players of teamID referenced by any event
// (goal, assist or shot), ordered by jersey number then name. Players without
// a jersey sort last; unknown player IDs are skipped.
func AppearedRoster(events []store.Event, players map[string]store.Player, teamID string) []store.Player {
	seen := make(map[string]bool)
	roster := []store.Player{}

	for _, e := range events {
		if e.TeamID != teamID || !e.PlayerID.Valid || seen[e.PlayerID.String] {
			continue
		}
		p, ok := players[e.PlayerID.String]
		if !ok {
			continue
		}
		seen[p.ID] = true
		roster = append(roster, p)
	}

	sortByJersey(roster)
	return roster
}

// SelectGoaltender picks the lowest-numbered goaltender from a team's full roster.
// It returns nil when nobody on the roster plays goal.
func SelectGoaltender(roster []store.Player) *store.Player {
	var goalies []store.Player
	for _, p := range roster {
		if p.IsGoaltender() {
			goalies = append(goalies, p)
		}
	}
	if len(goalies) == 0 {
		return nil
	}

	sortByJersey(goalies)
	g := goalies[0]
	return &g
}

// TeamRoster filters players down to one team, ordered by jersey then name
func TeamRoster(players []store.Player, teamID string) []store.Player {
	roster := []store.Player{}
	for _, p := range players {
		if p.TeamID == teamID {
			roster = append(roster, p)
		}
	}
	sortByJersey(roster)
	return roster
}

// TeamLabel returns the team's short name, or an abbreviation generated from
// its full name: initials of the first three words, or the first three letters
// of a single-word name.
func TeamLabel(t store.Team) string {
	if t.ShortName.Valid && strings.TrimSpace(t.ShortName.String) != "" {
		return strings.TrimSpace(t.ShortName.String)
	}
	return Abbreviate(t.Name)
}

// Abbreviate generates a compact upper-case label from a full team name
func Abbreviate(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	switch len(words) {
	case 0:
		return ""
	case 1:
		r := []rune(words[0])
		if len(r) > 3 {
			r = r[:3]
		}
		return strings.ToUpper(string(r))
	}

	var b strings.Builder
	for i, w := range words {
		if i == 3 {
			break
		}
		b.WriteRune([]rune(w)[0])
	}
	return strings.ToUpper(b.String())
}

func sortByJersey(players []store.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		ni, nj := jersey(players[i]), jersey(players[j])
		if ni != nj {
			return ni < nj
		}
		return players[i].Name < players[j].Name
	})
}
