package models

import "time"

// Recurrence defines how often a workflow spawns new assignment occurrences.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

// Task is a reusable unit of work referenced by workflow positions.
type Task struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PhotoRequired bool      `json:"photo_required"`
	NotesRequired bool      `json:"notes_required"`
	CreatedBy     int64     `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Workflow is a named, ordered collection of tasks authored by a manager.
type Workflow struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Recurrence  Recurrence `json:"recurrence"`
	DueTime     string     `json:"due_time,omitempty"` // "HH:MM", local restaurant time
	CreatedBy   int64      `json:"created_by"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Tasks []WorkflowTask `json:"tasks,omitempty"`
}

// WorkflowTask is one position in a workflow: a task plus its ordering and
// whether it must be completed for the assignment to count as done.
type WorkflowTask struct {
	WorkflowID int64 `json:"workflow_id"`
	TaskID     int64 `json:"task_id"`
	Position   int   `json:"position"`
	Required   bool  `json:"required"`

	Task *Task `json:"task,omitempty"`
}
