// Package streak derives streak state from a habit's completion dates.
package streak

import (
	"sort"
	"time"
)

const day = 24 * time.Hour

// DateOf truncates t to a calendar date (UTC midnight).
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Calculate reports whether today appears in dates and the length of the
// consecutive-day run ending at today, or at yesterday when today is absent.
// Any missed day resets the streak to 0. The caller supplies today; this
// function never reads the clock.
func Calculate(dates []time.Time, today time.Time) (completedToday bool, current int) {
	today = DateOf(today)

	// A duplicate date must not double-count.
	seen := make(map[time.Time]struct{}, len(dates))
	unique := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		d = DateOf(d)
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}

	_, completedToday = seen[today]

	sort.Slice(unique, func(i, j int) bool { return unique[i].After(unique[j]) })

	cursor := today
	if !completedToday {
		cursor = today.AddDate(0, 0, -1)
	}

	for _, d := range unique {
		diff := int(cursor.Sub(d) / day)
		switch {
		case diff == 0:
			current++
			cursor = cursor.AddDate(0, 0, -1)
		case diff > 0:
			// Gap: the streak is broken.
			return completedToday, current
		default:
			// Future relative to the cursor; skip without contributing.
		}
	}
	return completedToday, current
}
