// Package clock converts "MM:SS" game clock text to and from whole seconds.
package clock

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse returns the number of seconds represented by a "MM:SS" clock.
// Missing or non-numeric parts count as zero, so malformed input never fails.
func Parse(text string) int {
	parts := strings.Split(strings.TrimSpace(text), ":")

	minutes := parsePart(parts, 0)
	seconds := parsePart(parts, 1)

	return minutes*60 + seconds
}

func parsePart(parts []string, idx int) int {
	if idx >= len(parts) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[idx]))
	if err != nil {
		return 0
	}
	return n
}

// Format renders seconds as zero-padded "MM:SS". Minutes do not roll over into hours.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Increment advances a clock by one second. No upper bound is enforced; callers
// stop the clock at the end of a period.
func Increment(text string) string {
	return Format(Parse(text) + 1)
}

// Valid reports whether text is a well-formed "MM:SS" clock with seconds in 0..59.
func Valid(text string) bool {
	parts := strings.Split(text, ":")
	if len(parts) != 2 || parts[0] == "" || len(parts[1]) != 2 {
		return false
	}
	for _, p := range parts {
		for _, r := range p {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	sec, _ := strconv.Atoi(parts[1])
	return sec <= 59
}
