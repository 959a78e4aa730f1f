// Package sheet reads printed HTML game scoresheets into legacy event rows.
//
// A scoresheet carries a scoring table and an optional shots table:
//
//	<table class="scoring">
//	  <tr><th>Per</th><th>Time</th><th>Team</th><th>Goal</th><th>Assists</th></tr>
//	  <tr><td>1</td><td>4:12</td><td>AUR</td><td>#9 Ada Lind</td><td>#14 Bo Strand, #4 Cy Moe</td></tr>
//	</table>
//	<table class="shots">
//	  <tr><th>Per</th><th>Time</th><th>Team</th><th>Player</th></tr>
//	  <tr><td>1</td><td>3:50</td><td>AUR</td><td>#9</td></tr>
//	</table>
//
// Sheets predate play identifiers, so the rows produced here carry none and are
// grouped back into plays by their timestamp.
package sheet

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fortuna/faceoff/internal/clock"
)

// PlayerToken is a player as written on the sheet: a jersey, a name, or both
type PlayerToken struct {
	Number *int
	Name   string
}

// Blank reports whether the sheet left the player out
func (p PlayerToken) Blank() bool {
	return p.Number == nil && p.Name == ""
}

func (p PlayerToken) String() string {
	switch {
	case p.Number != nil && p.Name != "":
		return fmt.Sprintf("#%d %s", *p.Number, p.Name)
	case p.Number != nil:
		return fmt.Sprintf("#%d", *p.Number)
	}
	return p.Name
}

// Goal is one row of the scoring table
type Goal struct {
	Period  int
	Time    string
	Team    string
	Scorer  PlayerToken
	Assists []PlayerToken
}

// Shot is one row of the shots table
type Shot struct {
	Period  int
	Time    string
	Team    string
	Shooter PlayerToken
}

// Sheet is a parsed scoresheet
type Sheet struct {
	Goals []Goal
	Shots []Shot
}

var (
	playerPattern = regexp.MustCompile(`^#?\s*(\d+)\s*(.*)$`)
	periodNames   = map[string]int{
		"1st": 1, "first": 1,
		"2nd": 2, "second": 2,
		"3rd": 3, "third": 3,
		"ot": 4, "overtime": 4,
		"so": 5, "shootout": 5,
	}
)

// Parse reads a scoresheet document
func Parse(r io.Reader) (*Sheet, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing scoresheet html: %w", err)
	}

	sheet := &Sheet{}
	var rowErr error

	doc.Find("table.scoring tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := cellTexts(row)
		if len(cells) < 4 {
			return true
		}
		period, time, err := parseMoment(cells[0], cells[1])
		if err != nil {
			rowErr = fmt.Errorf("scoring row %d: %w", i, err)
			return false
		}

		g := Goal{Period: period, Time: time, Team: cells[2], Scorer: parsePlayer(cells[3]), Assists: []PlayerToken{}}
		if len(cells) > 4 {
			for _, a := range strings.Split(cells[4], ",") {
				if tok := parsePlayer(a); !tok.Blank() {
					g.Assists = append(g.Assists, tok)
				}
			}
		}
		sheet.Goals = append(sheet.Goals, g)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	doc.Find("table.shots tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		cells := cellTexts(row)
		if len(cells) < 3 {
			return true
		}
		period, time, err := parseMoment(cells[0], cells[1])
		if err != nil {
			rowErr = fmt.Errorf("shots row %d: %w", i, err)
			return false
		}

		s := Shot{Period: period, Time: time, Team: cells[2]}
		if len(cells) > 3 {
			s.Shooter = parsePlayer(cells[3])
		}
		sheet.Shots = append(sheet.Shots, s)
		return true
	})
	if rowErr != nil {
		return nil, rowErr
	}

	return sheet, nil
}

// cellTexts returns trimmed td texts; header rows have none
func cellTexts(row *goquery.Selection) []string {
	var cells []string
	row.Find("td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, strings.Join(strings.Fields(td.Text()), " "))
	})
	return cells
}

func parseMoment(periodText, timeText string) (int, string, error) {
	period, err := parsePeriod(periodText)
	if err != nil {
		return 0, "", err
	}

	t := strings.TrimSpace(timeText)
	if !strings.Contains(t, ":") {
		return 0, "", fmt.Errorf("time %q has no minutes", timeText)
	}
	return period, clock.Format(clock.Parse(t)), nil
}

func parsePeriod(text string) (int, error) {
	t := strings.ToLower(strings.TrimSpace(text))
	if n, ok := periodNames[t]; ok {
		return n, nil
	}
	n, err := strconv.Atoi(t)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("unrecognised period %q", text)
	}
	return n, nil
}

func parsePlayer(text string) PlayerToken {
	t := strings.TrimSpace(text)
	if t == "" || t == "-" || strings.EqualFold(t, "unassisted") {
		return PlayerToken{}
	}

	if m := playerPattern.FindStringSubmatch(t); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return PlayerToken{Number: &n, Name: strings.TrimSpace(m[2])}
		}
	}
	return PlayerToken{Name: t}
}
