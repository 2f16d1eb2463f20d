// Package model holds the read-only records pulled from the planner data API.
package model

// Priority is the urgency of a task.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists the known priorities in display order.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted, StatusCancelled}

// Closed reports whether the task no longer needs attention.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Task represents a household task.
type Task struct {
	ID                    int64      `json:"id"`
	Title                 string     `json:"title"`
	Priority              Priority   `json:"priority"`
	Status                Status     `json:"status"`
	DueDate               *Timestamp `json:"due_date,omitempty"`
	Assignee              string     `json:"assignee,omitempty"`
	TimeToCompleteMinutes *int       `json:"time_to_complete_minutes,omitempty"`
	CompletedAt           *Timestamp `json:"completed_at,omitempty"`
}

// Minutes returns the estimated duration, or 0 when unset.
func (t Task) Minutes() int {
	if t.TimeToCompleteMinutes == nil {
		return 0
	}
	return *t.TimeToCompleteMinutes
}

// Reminder represents a scheduled reminder.
type Reminder struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	RemindAt Timestamp `json:"remind_at"`
}

// KnowledgeEntry represents a knowledge-base note.
type KnowledgeEntry struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// TeamMember represents a person on the household roster.
type TeamMember struct {
	Name                 string `json:"name"`
	Role                 string `json:"role"`
	DailyCapacityMinutes int    `json:"daily_capacity_minutes"`
}
