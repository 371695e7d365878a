package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"shiftops/internal/models"
)

// ErrDuplicateCompletion surfaces the unique index on (assignment_id, task_id).
var ErrDuplicateCompletion = errors.New("completion already exists for task")

type CompletionRepository interface {
	// CreateAndRollup inserts the completion and, inside the same
	// transaction, recomputes the assignment's required-vs-completed sets and
	// marks the assignment completed when nothing required is missing. The
	// assignment row is locked for the duration, which serializes concurrent
	// completions of the same assignment.
	CreateAndRollup(ctx context.Context, c *models.TaskCompletion, requiredTaskIDs []int64) (workflowCompleted bool, err error)

	FindByID(ctx context.Context, id int64) (*models.TaskCompletion, error)
	FindByAssignment(ctx context.Context, assignmentID int64) ([]models.TaskCompletion, error)
	ExistsForTask(ctx context.Context, assignmentID, taskID int64) (bool, error)

	UpdateNotes(ctx context.Context, c *models.TaskCompletion, edit *models.CompletionEdit) error
	FindEdits(ctx context.Context, completionID int64) ([]models.CompletionEdit, error)
}

type completionRepository struct {
	db *sql.DB
}

func NewCompletionRepository(db *sql.DB) CompletionRepository {
	return &completionRepository{db: db}
}

const completionColumns = `id, assignment_id, task_id, completed_by, notes, photo_url, completed_at, edited_by, edited_at`

func (r *completionRepository) CreateAndRollup(ctx context.Context, c *models.TaskCompletion, requiredTaskIDs []int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// Lock the assignment row; every completion of this assignment passes
	// through here one at a time.
	var status models.AssignmentStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM workflow_assignments WHERE id=$1 FOR UPDATE`, c.AssignmentID,
	).Scan(&status)
	if err != nil {
		return false, err
	}
	if status == models.AssignmentCompleted {
		return false, ErrDuplicateCompletion
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO task_completions (assignment_id, task_id, completed_by, notes, photo_url, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, completed_at`,
		c.AssignmentID, c.TaskID, c.CompletedBy, c.Notes, c.PhotoURL, c.CompletedAt,
	).Scan(&c.ID, &c.CompletedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return false, ErrDuplicateCompletion
		}
		return false, err
	}

	// Re-derive completion from persisted state: which required tasks still
	// have no completion row?
	done := map[int64]bool{}
	rows, err := tx.QueryContext(ctx,
		`SELECT task_id FROM task_completions WHERE assignment_id=$1`, c.AssignmentID)
	if err != nil {
		return false, err
	}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return false, err
		}
		done[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}

	completed := true
	for _, id := range requiredTaskIDs {
		if !done[id] {
			completed = false
			break
		}
	}

	if completed {
		if _, err := tx.ExecContext(ctx,
			`UPDATE workflow_assignments SET status='completed', completed_at=NOW() WHERE id=$1`,
			c.AssignmentID,
		); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return completed, nil
}

func (r *completionRepository) FindByID(ctx context.Context, id int64) (*models.TaskCompletion, error) {
	query := `SELECT ` + completionColumns + ` FROM task_completions WHERE id = $1`
	c := &models.TaskCompletion{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.AssignmentID, &c.TaskID, &c.CompletedBy, &c.Notes, &c.PhotoURL,
		&c.CompletedAt, &c.EditedBy, &c.EditedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *completionRepository) FindByAssignment(ctx context.Context, assignmentID int64) ([]models.TaskCompletion, error) {
	query := `SELECT ` + completionColumns + ` FROM task_completions WHERE assignment_id=$1 ORDER BY completed_at ASC`
	rows, err := r.db.QueryContext(ctx, query, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskCompletion
	for rows.Next() {
		var c models.TaskCompletion
		if err := rows.Scan(
			&c.ID, &c.AssignmentID, &c.TaskID, &c.CompletedBy, &c.Notes, &c.PhotoURL,
			&c.CompletedAt, &c.EditedBy, &c.EditedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *completionRepository) ExistsForTask(ctx context.Context, assignmentID, taskID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM task_completions WHERE assignment_id=$1 AND task_id=$2)`,
		assignmentID, taskID,
	).Scan(&exists)
	return exists, err
}

// UpdateNotes applies a manager correction and appends the audit entry in one
// transaction so the history can never silently diverge from the row.
func (r *completionRepository) UpdateNotes(ctx context.Context, c *models.TaskCompletion, edit *models.CompletionEdit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE task_completions SET notes=$1, edited_by=$2, edited_at=$3 WHERE id=$4`,
		c.Notes, c.EditedBy, c.EditedAt, c.ID,
	); err != nil {
		return err
	}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO completion_edits (completion_id, edited_by, previous_notes, new_notes, edited_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		edit.CompletionID, edit.EditedBy, edit.PreviousNotes, edit.NewNotes, edit.EditedAt,
	).Scan(&edit.ID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *completionRepository) FindEdits(ctx context.Context, completionID int64) ([]models.CompletionEdit, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, completion_id, edited_by, previous_notes, new_notes, edited_at
		FROM completion_edits WHERE completion_id=$1 ORDER BY edited_at ASC`, completionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CompletionEdit
	for rows.Next() {
		var e models.CompletionEdit
		if err := rows.Scan(&e.ID, &e.CompletionID, &e.EditedBy, &e.PreviousNotes, &e.NewNotes, &e.EditedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
