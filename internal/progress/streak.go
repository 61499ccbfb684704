package progress

import (
	"time"

	"github.com/abhisek/studyhall/internal/store"
)

// Streak returns the current streak length for the distinct record dates
// (newest first) as seen on today. The walk is anchored at today, or at
// yesterday when nothing has been recorded today yet; any older latest
// date means the streak is broken and the result is 0.
func Streak(dates []string, today string) int {
	if len(dates) == 0 {
		return 0
	}

	var anchor string
	switch dates[0] {
	case today:
		anchor = today
	case ShiftDay(today, -1):
		anchor = dates[0]
	default:
		return 0
	}

	streak := 1
	for i := 1; i < len(dates); i++ {
		if dates[i] != ShiftDay(anchor, -i) {
			break
		}
		streak++
	}
	return streak
}

// BestStreak returns the longest run of consecutive dates among the
// distinct record dates (newest first).
func BestStreak(dates []string) int {
	if len(dates) == 0 {
		return 0
	}
	best, run := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i] == ShiftDay(dates[i-1], -1) {
			run++
			if run > best {
				best = run
			}
			continue
		}
		run = 1
	}
	return best
}

// ShiftDay moves a DateLayout date by n calendar days. An unparsable
// date is returned unchanged.
func ShiftDay(day string, n int) string {
	t, err := time.Parse(store.DateLayout, day)
	if err != nil {
		return day
	}
	return t.AddDate(0, 0, n).Format(store.DateLayout)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b string) int {
	ta, err := time.Parse(store.DateLayout, a)
	if err != nil {
		return 0
	}
	tb, err := time.Parse(store.DateLayout, b)
	if err != nil {
		return 0
	}
	return int(tb.Sub(ta).Hours() / 24)
}
