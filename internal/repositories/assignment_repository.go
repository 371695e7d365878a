package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"shiftops/internal/models"
)

type AssignmentRepository interface {
	StoreIfMissing(ctx context.Context, a *models.WorkflowAssignment) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.WorkflowAssignment, error)
	FindAll(ctx context.Context, filter models.AssignmentFilter) ([]models.WorkflowAssignment, error)
	MarkStarted(ctx context.Context, id int64) error
}

type assignmentRepository struct {
	db *sql.DB
}

func NewAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

const assignmentColumns = `id, workflow_id, assigned_to, to_char(occurrence_date, 'YYYY-MM-DD'), status, assigned_at, started_at, completed_at`

// StoreIfMissing inserts one occurrence row, relying on the unique index on
// (workflow_id, assigned_to, occurrence_date). Returns false when the row
// already existed.
func (r *assignmentRepository) StoreIfMissing(ctx context.Context, a *models.WorkflowAssignment) (bool, error) {
	query := `
		INSERT INTO workflow_assignments (workflow_id, assigned_to, occurrence_date, status, assigned_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (workflow_id, assigned_to, occurrence_date) DO NOTHING
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		a.WorkflowID, a.AssignedTo, a.OccurrenceDate, a.Status, a.AssignedAt,
	).Scan(&a.ID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *assignmentRepository) FindByID(ctx context.Context, id int64) (*models.WorkflowAssignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM workflow_assignments WHERE id = $1`
	a := &models.WorkflowAssignment{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.WorkflowID, &a.AssignedTo, &a.OccurrenceDate, &a.Status,
		&a.AssignedAt, &a.StartedAt, &a.CompletedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *assignmentRepository) FindAll(ctx context.Context, filter models.AssignmentFilter) ([]models.WorkflowAssignment, error) {
	baseQuery := `SELECT ` + assignmentColumns + ` FROM workflow_assignments`

	conditions := []string{}
	args := []interface{}{}
	argID := 1

	if filter.AssignedTo != nil {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argID))
		args = append(args, *filter.AssignedTo)
		argID++
	}
	if filter.WorkflowID != nil {
		conditions = append(conditions, fmt.Sprintf("workflow_id = $%d", argID))
		args = append(args, *filter.WorkflowID)
		argID++
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.OccurrenceDate != nil {
		conditions = append(conditions, fmt.Sprintf("occurrence_date = $%d", argID))
		args = append(args, *filter.OccurrenceDate)
		argID++
	}

	if len(conditions) > 0 {
		baseQuery += " WHERE " + strings.Join(conditions, " AND ")
	}
	baseQuery += " ORDER BY assigned_at DESC"

	rows, err := r.db.QueryContext(ctx, baseQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WorkflowAssignment
	for rows.Next() {
		var a models.WorkflowAssignment
		if err := rows.Scan(
			&a.ID, &a.WorkflowID, &a.AssignedTo, &a.OccurrenceDate, &a.Status,
			&a.AssignedAt, &a.StartedAt, &a.CompletedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *assignmentRepository) MarkStarted(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE workflow_assignments SET started_at = NOW() WHERE id=$1 AND started_at IS NULL`, id)
	return err
}
