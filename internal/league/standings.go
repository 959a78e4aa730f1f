package league

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/fortuna/faceoff/internal/store"
)

// regulationPeriods is the number of periods before overtime
const regulationPeriods = 3

// Points awarded per result
const (
	pointsWin          = 2
	pointsOvertimeLoss = 1
)

// RankStandings orders rows by points, then goal differential, keeping input
// order on ties. The input slice is not modified.
func RankStandings(rows []store.StandingsRow) []store.StandingsRow {
	ranked := make([]store.StandingsRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		return a.GoalDiff() > b.GoalDiff()
	})

	return ranked
}

// PointsPctLabel renders points percentage, or "-" when it was not provided
func PointsPctLabel(row store.StandingsRow) string {
	if !row.PointsPct.Valid {
		return "-"
	}
	return fmt.Sprintf("%.3f", row.PointsPct.Float64)
}

// gameResult is the decided outcome of one final game
type gameResult struct {
	homeGoals, awayGoals int
	overtime             bool
}

// BuildStandings folds final games into ranked standings rows. A game's score
// comes from its goal events when it has any, otherwise from the legacy score
// columns. A win is worth two points and an overtime loss one. Tied final
// games are not counted. Every supplied team gets a row.
func BuildStandings(games []store.Game, events []store.Event, teams []store.Team) []store.StandingsRow {
	byGame := make(map[string][]store.Event)
	for _, e := range events {
		if e.Kind == store.EventGoal {
			byGame[e.GameID] = append(byGame[e.GameID], e)
		}
	}

	rows := make([]store.StandingsRow, 0, len(teams))
	byTeam := make(map[string]*store.StandingsRow, len(teams))
	for _, t := range teams {
		rows = append(rows, store.StandingsRow{TeamID: t.ID, TeamName: t.Name})
	}
	for i := range rows {
		byTeam[rows[i].TeamID] = &rows[i]
	}

	for _, g := range games {
		if g.Status != store.GameStatusFinal {
			continue
		}
		res, ok := resultOf(g, byGame[g.ID])
		if !ok {
			continue
		}

		home, away := byTeam[g.HomeTeamID], byTeam[g.AwayTeamID]
		if home == nil || away == nil {
			continue
		}
		if home.Season == "" {
			home.Season = g.Season
		}
		if away.Season == "" {
			away.Season = g.Season
		}

		home.GamesPlayed++
		away.GamesPlayed++
		home.GoalsFor += res.homeGoals
		home.GoalsAgainst += res.awayGoals
		away.GoalsFor += res.awayGoals
		away.GoalsAgainst += res.homeGoals

		winner, loser := home, away
		if res.awayGoals > res.homeGoals {
			winner, loser = away, home
		}
		winner.Wins++
		winner.Points += pointsWin
		if res.overtime {
			loser.OvertimeLosses++
			loser.Points += pointsOvertimeLoss
		} else {
			loser.Losses++
		}
	}

	for i := range rows {
		r := &rows[i]
		if r.GamesPlayed > 0 {
			pct := float64(r.Points) / float64(pointsWin*r.GamesPlayed)
			r.PointsPct = sql.NullFloat64{Float64: pct, Valid: true}
		}
	}

	return RankStandings(rows)
}

func resultOf(g store.Game, goals []store.Event) (gameResult, bool) {
	var res gameResult
	lastPeriod := 0

	if len(goals) > 0 {
		for _, e := range goals {
			switch e.TeamID {
			case g.HomeTeamID:
				res.homeGoals++
			case g.AwayTeamID:
				res.awayGoals++
			default:
				continue
			}
			if e.Period > lastPeriod {
				lastPeriod = e.Period
			}
		}
	} else {
		if !g.HomeScore.Valid || !g.AwayScore.Valid {
			return res, false
		}
		res.homeGoals = int(g.HomeScore.Int32)
		res.awayGoals = int(g.AwayScore.Int32)
	}

	if g.Period.Valid && int(g.Period.Int32) > lastPeriod {
		lastPeriod = int(g.Period.Int32)
	}
	if res.homeGoals == res.awayGoals {
		return res, false
	}
	res.overtime = lastPeriod > regulationPeriods

	return res, true
}
