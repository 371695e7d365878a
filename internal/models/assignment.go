package models

import "time"

// AssignmentStatus defines the possible statuses for a workflow assignment.
type AssignmentStatus string

const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentCompleted AssignmentStatus = "completed"
)

// WorkflowAssignment is one employee's instance of a workflow for one
// occurrence. Rows are kept forever as the audit record.
type WorkflowAssignment struct {
	ID             int64            `json:"id"`
	WorkflowID     int64            `json:"workflow_id"`
	AssignedTo     int64            `json:"assigned_to"`
	OccurrenceDate string           `json:"occurrence_date"` // "2006-01-02"
	Status         AssignmentStatus `json:"status"`
	AssignedAt     time.Time        `json:"assigned_at"`
	StartedAt      *time.Time       `json:"started_at,omitempty"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
}

// AssignmentFilter defines the available parameters for listing assignments.
type AssignmentFilter struct {
	AssignedTo     *int64
	WorkflowID     *int64
	Status         *AssignmentStatus
	OccurrenceDate *string
}

// TaskCompletion is the evidence that one task within one assignment was
// finished. Write-once per (assignment, task).
type TaskCompletion struct {
	ID           int64      `json:"id"`
	AssignmentID int64      `json:"assignment_id"`
	TaskID       int64      `json:"task_id"`
	CompletedBy  int64      `json:"completed_by"`
	Notes        string     `json:"notes,omitempty"`
	PhotoURL     string     `json:"photo_url,omitempty"`
	CompletedAt  time.Time  `json:"completed_at"`
	EditedBy     *int64     `json:"edited_by,omitempty"`
	EditedAt     *time.Time `json:"edited_at,omitempty"`
}

// CompletionEdit is one entry of a completion's manager-correction history.
type CompletionEdit struct {
	ID            int64     `json:"id"`
	CompletionID  int64     `json:"completion_id"`
	EditedBy      int64     `json:"edited_by"`
	PreviousNotes string    `json:"previous_notes"`
	NewNotes      string    `json:"new_notes"`
	EditedAt      time.Time `json:"edited_at"`
}
