package repositories

import (
	"context"
	"database/sql"

	"shiftops/internal/models"
)

type TaskRepository interface {
	Store(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id int64) (*models.Task, error)
	FindAll(ctx context.Context) ([]models.Task, error)
	Update(ctx context.Context, task *models.Task) error
}

type taskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	query := `
		INSERT INTO tasks (title, description, photo_required, notes_required, created_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.PhotoRequired, task.NotesRequired,
		task.CreatedBy, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	query := `SELECT id, title, description, photo_required, notes_required, created_by, created_at, updated_at
		FROM tasks WHERE id = $1`
	task := &models.Task{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID, &task.Title, &task.Description, &task.PhotoRequired, &task.NotesRequired,
		&task.CreatedBy, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) FindAll(ctx context.Context) ([]models.Task, error) {
	query := `SELECT id, title, description, photo_required, notes_required, created_by, created_at, updated_at
		FROM tasks ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.PhotoRequired, &t.NotesRequired,
			&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	query := `
		UPDATE tasks SET title=$1, description=$2, photo_required=$3, notes_required=$4, updated_at=$5
		WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.PhotoRequired, task.NotesRequired, task.UpdatedAt, task.ID,
	)
	return err
}
