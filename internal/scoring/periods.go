package scoring

import "sort"

// PeriodTotals attributes each goal-line to the home or away side and counts
// goals per period. Lines for neither team are ignored, periods with no
// attributed goals are left out, and Total stays nil when no period exists.
func PeriodTotals(lines []GoalLine, homeTeamID, awayTeamID string) Linescore {
	ls := Linescore{Periods: make(map[int]PeriodCount)}

	for _, line := range lines {
		var home bool
		switch line.TeamID {
		case homeTeamID:
			home = true
		case awayTeamID:
			home = false
		default:
			continue
		}

		pc := ls.Periods[line.Period]
		if home {
			pc.Home++
		} else {
			pc.Away++
		}
		ls.Periods[line.Period] = pc
	}

	if len(ls.Periods) == 0 {
		return ls
	}

	total := PeriodCount{}
	for _, pc := range ls.Periods {
		total.Home += pc.Home
		total.Away += pc.Away
	}
	ls.Total = &total

	return ls
}

// Rows returns the periods in ascending order
func (ls Linescore) Rows() []PeriodRow {
	rows := make([]PeriodRow, 0, len(ls.Periods))
	for period, pc := range ls.Periods {
		rows = append(rows, PeriodRow{Period: period, PeriodCount: pc})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	return rows
}
