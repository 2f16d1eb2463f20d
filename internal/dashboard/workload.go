package dashboard

import (
	"math"
	"time"

	"github.com/homeplanner/homeplanner/internal/model"
)

// WorkloadSummary is one roster member's completed minutes against capacity
// for the active window.
type WorkloadSummary struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Capacity   int    `json:"capacity"`
	Assigned   int    `json:"assigned"`
	Percentage int    `json:"percentage"`
}

// Workload sums completed-task minutes per roster member for window w.
// Only completed tasks with a completion time inside the window count. Tasks
// for assignees missing from the roster are dropped; the second return value
// is how many were.
func Workload(tasks []model.Task, team []model.TeamMember, w Window, now time.Time) ([]WorkloadSummary, int) {
	rng := WindowRange(w, now)
	loc := now.Location()

	summaries := make([]WorkloadSummary, 0, len(team))
	byName := make(map[string]int, len(team))
	for _, m := range team {
		s := WorkloadSummary{
			Name:     m.Name,
			Role:     m.Role,
			Capacity: m.DailyCapacityMinutes * rng.CapacityMultiplier,
		}
		// A repeated name replaces the earlier entry in place.
		if i, ok := byName[m.Name]; ok {
			summaries[i] = s
			continue
		}
		byName[m.Name] = len(summaries)
		summaries = append(summaries, s)
	}

	unmatched := 0
	for _, t := range tasks {
		if t.Assignee == "" || t.Status != model.StatusCompleted || !t.CompletedAt.Present() {
			continue
		}

		completed := t.CompletedAt.In(loc)
		switch w {
		case Daily:
			if !sameDate(completed, rng.Start) {
				continue
			}
		default:
			if !rng.Contains(completed) {
				continue
			}
		}

		i, ok := byName[t.Assignee]
		if !ok {
			unmatched++
			continue
		}
		if minutes := t.Minutes(); minutes > 0 {
			summaries[i].Assigned += minutes
		}
	}

	for i := range summaries {
		summaries[i].Percentage = Percentage(summaries[i].Assigned, summaries[i].Capacity)
	}
	return summaries, unmatched
}

// Percentage returns assigned as a whole percentage of capacity, rounding
// halves up. A non-positive capacity yields 0.
func Percentage(assigned, capacity int) int {
	if capacity <= 0 || assigned <= 0 {
		return 0
	}
	return int(math.Floor(float64(assigned)/float64(capacity)*100 + 0.5))
}
