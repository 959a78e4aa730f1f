package scoring

import (
	"github.com/fortuna/faceoff/internal/store"
)

// BoxScoreLines counts each rostered player's goals, assists and shots from the
// raw events of a game. The roster order is preserved.
func BoxScoreLines(events []store.Event, roster []store.Player) []PlayerLine {
	counts := make(map[string]*PlayerLine, len(roster))
	lines := make([]PlayerLine, len(roster))
	for i, p := range roster {
		lines[i] = PlayerLine{Player: NewPlayerRef(p)}
		counts[p.ID] = &lines[i]
	}

	for _, e := range events {
		if !e.PlayerID.Valid {
			continue
		}
		line, ok := counts[e.PlayerID.String]
		if !ok {
			continue
		}
		switch e.Kind {
		case store.EventGoal:
			line.Goals++
		case store.EventAssist:
			line.Assists++
		case store.EventShot:
			line.Shots++
		}
	}

	for i := range lines {
		lines[i].Points = lines[i].Goals + lines[i].Assists
	}
	return lines
}

// Summarize builds the complete summary of one game from a snapshot of its
// events, the league's players and teams. Events for other games are ignored.
func Summarize(game *store.Game, events []store.Event, players []store.Player, teams []store.Team) *GameSummary {
	gameEvents := make([]store.Event, 0, len(events))
	for _, e := range events {
		if e.GameID == game.ID {
			gameEvents = append(gameEvents, e)
		}
	}

	playerIdx := IndexPlayers(players)
	teamIdx := IndexTeams(teams)

	goals := GroupPlays(gameEvents, playerIdx, teamIdx)
	linescore := PeriodTotals(goals, game.HomeTeamID, game.AwayTeamID)

	summary := &GameSummary{
		Game:      game,
		Goals:     goals,
		Linescore: linescore,
		Home:      buildSide(game.HomeTeamID, gameEvents, players, playerIdx, teamIdx),
		Away:      buildSide(game.AwayTeamID, gameEvents, players, playerIdx, teamIdx),
	}
	if linescore.Total != nil {
		summary.Home.Goals = linescore.Total.Home
		summary.Away.Goals = linescore.Total.Away
	}

	return summary
}

func buildSide(teamID string, events []store.Event, players []store.Player, playerIdx map[string]store.Player, teamIdx map[string]store.Team) TeamSide {
	side := TeamSide{TeamID: teamID}
	if t, ok := teamIdx[teamID]; ok {
		side.Name = t.Name
		side.Label = TeamLabel(t)
	}

	for _, e := range events {
		if e.TeamID == teamID && e.Kind == store.EventShot {
			side.Shots++
		}
	}

	side.Roster = BoxScoreLines(events, AppearedRoster(events, playerIdx, teamID))

	if g := SelectGoaltender(TeamRoster(players, teamID)); g != nil {
		ref := NewPlayerRef(*g)
		side.Goaltender = &ref
	}

	return side
}
