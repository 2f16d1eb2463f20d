// Package dashboard reduces raw planner collections into the summaries shown
// on the household dashboard. Everything here is a pure function of its
// inputs; fetching lives in the aggregator package.
package dashboard

import (
	"sort"
	"time"

	"github.com/homeplanner/homeplanner/internal/model"
)

const (
	dueSoonHorizon = 7 * 24 * time.Hour
	dueSoonLimit   = 5
	reminderLimit  = 5
	knowledgeLimit = 3
)

// Source names one of the four collections a snapshot is built from.
type Source string

const (
	SourceTasks     Source = "tasks"
	SourceReminders Source = "reminders"
	SourceKnowledge Source = "knowledge"
	SourceTeam      Source = "team"
)

// Snapshot is an immutable copy of the collections for one pass.
type Snapshot struct {
	Tasks     []model.Task
	Reminders []model.Reminder
	Knowledge []model.KnowledgeEntry
	Team      []model.TeamMember

	// Failures records the sources that could not be fetched. Their
	// collections are empty.
	Failures map[Source]error
}

// View is the display-ready dashboard.
type View struct {
	Window          Window                 `json:"window"`
	GeneratedAt     time.Time              `json:"generated_at"`
	Range           Range                  `json:"range"`
	ByPriority      Histogram              `json:"by_priority"`
	ByStatus        Histogram              `json:"by_status"`
	DueSoon         []model.Task           `json:"due_soon"`
	Reminders       []model.Reminder       `json:"upcoming_reminders"`
	RecentKnowledge []model.KnowledgeEntry `json:"recent_knowledge"`
	Workload        []WorkloadSummary      `json:"workload"`

	// UnmatchedAssignees counts in-window completed tasks whose assignee is
	// not on the roster. They contribute to nobody's workload.
	UnmatchedAssignees int `json:"unmatched_assignee_tasks"`

	Failures map[Source]string `json:"failures,omitempty"`
}

// Compute builds the dashboard for window w as of now. Calendar dates are
// taken in now's location.
func Compute(snap Snapshot, w Window, now time.Time) View {
	loc := now.Location()
	workload, unmatched := Workload(snap.Tasks, snap.Team, w, now)

	v := View{
		Window:             w,
		GeneratedAt:        now,
		Range:              WindowRange(w, now),
		ByPriority:         PriorityHistogram(snap.Tasks),
		ByStatus:           StatusHistogram(snap.Tasks),
		DueSoon:            DueSoon(snap.Tasks, now),
		Reminders:          UpcomingReminders(snap.Reminders),
		RecentKnowledge:    RecentKnowledge(snap.Knowledge, loc),
		Workload:           workload,
		UnmatchedAssignees: unmatched,
	}

	if len(snap.Failures) > 0 {
		v.Failures = make(map[Source]string, len(snap.Failures))
		for src, err := range snap.Failures {
			v.Failures[src] = err.Error()
		}
	}
	return v
}

// DueSoon returns open tasks due within the next seven days, earliest first,
// capped at five.
func DueSoon(tasks []model.Task, now time.Time) []model.Task {
	horizon := now.Add(dueSoonHorizon)
	loc := now.Location()

	var due []model.Task
	for _, t := range tasks {
		if !t.DueDate.Present() || t.Status.Closed() {
			continue
		}
		at := t.DueDate.In(loc)
		if at.Before(now) || at.After(horizon) {
			continue
		}
		due = append(due, t)
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].DueDate.In(loc).Before(due[j].DueDate.In(loc))
	})
	return truncate(due, dueSoonLimit)
}

// UpcomingReminders keeps the first five reminders in the order the service
// returned them. The service has already filtered to upcoming ones.
func UpcomingReminders(reminders []model.Reminder) []model.Reminder {
	return truncate(append([]model.Reminder(nil), reminders...), reminderLimit)
}

// RecentKnowledge returns the three most recently updated entries. Entries
// without a timestamp sort last.
func RecentKnowledge(entries []model.KnowledgeEntry, loc *time.Location) []model.KnowledgeEntry {
	sorted := append([]model.KnowledgeEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].UpdatedAt, sorted[j].UpdatedAt
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.In(loc).After(b.In(loc))
	})
	return truncate(sorted, knowledgeLimit)
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
