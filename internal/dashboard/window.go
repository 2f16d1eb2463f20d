package dashboard

import (
	"fmt"
	"strings"
	"time"
)

// Window selects the period the workload tiles cover.
type Window string

const (
	Daily  Window = "daily"
	Weekly Window = "weekly"
)

// weekdayMultiplier approximates a week as five working days regardless of
// how many weekdays fall inside the Sunday to Saturday range.
const weekdayMultiplier = 5

// ParseWindow resolves a query or flag value. Empty selects Weekly.
func ParseWindow(s string) (Window, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "weekly", "week":
		return Weekly, nil
	case "daily", "day", "today":
		return Daily, nil
	default:
		return "", fmt.Errorf("unknown window %q (want daily or weekly)", s)
	}
}

// Range is the inclusive period a window covers.
type Range struct {
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	CapacityMultiplier int       `json:"capacity_multiplier"`
}

// Contains reports whether t falls within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// WindowRange derives the range for w in now's zone. Weekly ranges run from
// the most recent Sunday through the following Saturday.
func WindowRange(w Window, now time.Time) Range {
	y, m, d := now.Date()
	loc := now.Location()

	if w == Daily {
		return Range{
			Start:              time.Date(y, m, d, 0, 0, 0, 0, loc),
			End:                endOfDay(y, m, d, loc),
			CapacityMultiplier: 1,
		}
	}

	offset := int(now.Weekday())
	return Range{
		Start:              time.Date(y, m, d-offset, 0, 0, 0, 0, loc),
		End:                endOfDay(y, m, d-offset+6, loc),
		CapacityMultiplier: weekdayMultiplier,
	}
}

func endOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
