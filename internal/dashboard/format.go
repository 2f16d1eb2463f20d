package dashboard

import (
	"fmt"
	"time"
)

// LoadLevel buckets a workload percentage for display.
type LoadLevel string

const (
	LoadNormal   LoadLevel = "normal"
	LoadElevated LoadLevel = "elevated"
	LoadHigh     LoadLevel = "high"
	LoadOver     LoadLevel = "over"
)

// LevelFor maps a percentage onto a LoadLevel.
func LevelFor(percentage int) LoadLevel {
	switch {
	case percentage >= 100:
		return LoadOver
	case percentage >= 80:
		return LoadHigh
	case percentage >= 60:
		return LoadElevated
	default:
		return LoadNormal
	}
}

// FormatMinutes renders minutes as "45m", "2h" or "2h 5m".
func FormatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// FormatWhen renders t relative to now: "Today 15:04", "Tomorrow 15:04",
// otherwise a short date like "Jan 2".
func FormatWhen(t, now time.Time) string {
	t = t.In(now.Location())
	switch {
	case sameDate(t, now):
		return "Today " + t.Format("15:04")
	case sameDate(t, now.AddDate(0, 0, 1)):
		return "Tomorrow " + t.Format("15:04")
	default:
		return t.Format("Jan 2")
	}
}
