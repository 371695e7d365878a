package repositories

import (
	"context"
	"database/sql"

	"shiftops/internal/models"
)

type WorkflowRepository interface {
	Store(ctx context.Context, w *models.Workflow) error
	FindByID(ctx context.Context, id int64) (*models.Workflow, error)
	FindAll(ctx context.Context, activeOnly bool) ([]models.Workflow, error)
	FindRecurring(ctx context.Context) ([]models.Workflow, error)
	Update(ctx context.Context, w *models.Workflow) error

	ReplaceTasks(ctx context.Context, workflowID int64, tasks []models.WorkflowTask) error
	FindTasks(ctx context.Context, workflowID int64) ([]models.WorkflowTask, error)
	RequiredTaskIDs(ctx context.Context, workflowID int64) ([]int64, error)

	AddAssignee(ctx context.Context, workflowID, profileID int64) error
	RemoveAssignee(ctx context.Context, workflowID, profileID int64) error
	FindAssigneeIDs(ctx context.Context, workflowID int64) ([]int64, error)
}

type workflowRepository struct {
	db *sql.DB
}

func NewWorkflowRepository(db *sql.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

func (r *workflowRepository) Store(ctx context.Context, w *models.Workflow) error {
	query := `
		INSERT INTO workflows (name, description, recurrence, due_time, created_by, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		w.Name, w.Description, w.Recurrence, w.DueTime, w.CreatedBy, w.Active,
		w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
}

func (r *workflowRepository) FindByID(ctx context.Context, id int64) (*models.Workflow, error) {
	query := `SELECT id, name, description, recurrence, due_time, created_by, active, created_at, updated_at
		FROM workflows WHERE id = $1`
	w := &models.Workflow{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&w.ID, &w.Name, &w.Description, &w.Recurrence, &w.DueTime,
		&w.CreatedBy, &w.Active, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return w, nil
}

func (r *workflowRepository) FindAll(ctx context.Context, activeOnly bool) ([]models.Workflow, error) {
	query := `SELECT id, name, description, recurrence, due_time, created_by, active, created_at, updated_at
		FROM workflows`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkflows(rows)
}

func (r *workflowRepository) FindRecurring(ctx context.Context) ([]models.Workflow, error) {
	query := `SELECT id, name, description, recurrence, due_time, created_by, active, created_at, updated_at
		FROM workflows WHERE active AND recurrence <> 'none'`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanWorkflows(rows)
}

func scanWorkflows(rows *sql.Rows) ([]models.Workflow, error) {
	var out []models.Workflow
	for rows.Next() {
		var w models.Workflow
		if err := rows.Scan(
			&w.ID, &w.Name, &w.Description, &w.Recurrence, &w.DueTime,
			&w.CreatedBy, &w.Active, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *workflowRepository) Update(ctx context.Context, w *models.Workflow) error {
	query := `
		UPDATE workflows SET name=$1, description=$2, recurrence=$3, due_time=$4, active=$5, updated_at=$6
		WHERE id=$7`
	_, err := r.db.ExecContext(ctx, query,
		w.Name, w.Description, w.Recurrence, w.DueTime, w.Active, w.UpdatedAt, w.ID,
	)
	return err
}

// ReplaceTasks swaps the workflow's task list atomically.
func (r *workflowRepository) ReplaceTasks(ctx context.Context, workflowID int64, tasks []models.WorkflowTask) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM workflow_tasks WHERE workflow_id=$1`, workflowID); err != nil {
		return err
	}
	for _, wt := range tasks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO workflow_tasks (workflow_id, task_id, position, required) VALUES ($1,$2,$3,$4)`,
			workflowID, wt.TaskID, wt.Position, wt.Required,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *workflowRepository) FindTasks(ctx context.Context, workflowID int64) ([]models.WorkflowTask, error) {
	query := `
		SELECT wt.workflow_id, wt.task_id, wt.position, wt.required,
		       t.id, t.title, t.description, t.photo_required, t.notes_required, t.created_by, t.created_at, t.updated_at
		FROM workflow_tasks wt
		JOIN tasks t ON t.id = wt.task_id
		WHERE wt.workflow_id = $1
		ORDER BY wt.position ASC`
	rows, err := r.db.QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WorkflowTask
	for rows.Next() {
		var wt models.WorkflowTask
		var t models.Task
		if err := rows.Scan(
			&wt.WorkflowID, &wt.TaskID, &wt.Position, &wt.Required,
			&t.ID, &t.Title, &t.Description, &t.PhotoRequired, &t.NotesRequired,
			&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		wt.Task = &t
		out = append(out, wt)
	}
	return out, rows.Err()
}

func (r *workflowRepository) RequiredTaskIDs(ctx context.Context, workflowID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT task_id FROM workflow_tasks WHERE workflow_id=$1 AND required`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *workflowRepository) AddAssignee(ctx context.Context, workflowID, profileID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workflow_assignees (workflow_id, profile_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
		workflowID, profileID)
	return err
}

func (r *workflowRepository) RemoveAssignee(ctx context.Context, workflowID, profileID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM workflow_assignees WHERE workflow_id=$1 AND profile_id=$2`, workflowID, profileID)
	return err
}

func (r *workflowRepository) FindAssigneeIDs(ctx context.Context, workflowID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT profile_id FROM workflow_assignees WHERE workflow_id=$1 ORDER BY profile_id`, workflowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
