package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"shiftops/internal/models"
)

// ErrActiveTransfer surfaces the partial unique index that allows only one
// non-terminal transfer per assignment.
var ErrActiveTransfer = errors.New("active transfer already exists for assignment")

type TransferRepository interface {
	Store(ctx context.Context, t *models.TaskTransfer) error
	FindByID(ctx context.Context, id int64) (*models.TaskTransfer, error)
	FindActiveByAssignment(ctx context.Context, assignmentID int64) (*models.TaskTransfer, error)

	// ListForParticipant returns transfers where the profile is sender or
	// recipient.
	ListForParticipant(ctx context.Context, profileID int64) ([]models.TaskTransfer, error)
	// ListForManager returns the approval queue (every pending_manager
	// transfer, plus pending-transferee ones addressed to the manager
	// personally) merged with the manager's own participant view: a manager
	// who sends or receives a transfer sees it here through its whole life,
	// terminal states included.
	ListForManager(ctx context.Context, managerID int64) ([]models.TaskTransfer, error)

	// UpdateStage advances the transfer out of fromStatus; the WHERE clause on
	// the current status makes the transition a compare-and-swap, so a lost
	// race reports false instead of overwriting a newer state.
	UpdateStage(ctx context.Context, t *models.TaskTransfer, fromStatus models.TransferStatus) (bool, error)

	// ApproveAndReassign commits the manager approval and the assignment
	// hand-over in one transaction: either both apply or neither does.
	ApproveAndReassign(ctx context.Context, t *models.TaskTransfer) (bool, error)
}

type transferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) TransferRepository {
	return &transferRepository{db: db}
}

const transferColumns = `id, assignment_id, from_user_id, to_user_id, requested_by, status, reason,
       transferee_response, transferee_responded_at, manager_id, manager_response, manager_responded_at,
       created_at, updated_at`

func scanTransfer(row interface{ Scan(...any) error }) (*models.TaskTransfer, error) {
	t := &models.TaskTransfer{}
	err := row.Scan(
		&t.ID, &t.AssignmentID, &t.FromUserID, &t.ToUserID, &t.RequestedBy, &t.Status, &t.Reason,
		&t.TransfereeResponse, &t.TransfereeRespondedAt, &t.ManagerID, &t.ManagerResponse, &t.ManagerRespondedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *transferRepository) Store(ctx context.Context, t *models.TaskTransfer) error {
	query := `
		INSERT INTO task_transfers (assignment_id, from_user_id, to_user_id, requested_by, status, reason, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		t.AssignmentID, t.FromUserID, t.ToUserID, t.RequestedBy, t.Status, t.Reason,
		t.CreatedAt, t.UpdatedAt,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return ErrActiveTransfer
		}
		return err
	}
	return nil
}

func (r *transferRepository) FindByID(ctx context.Context, id int64) (*models.TaskTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM task_transfers WHERE id = $1`
	t, err := scanTransfer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *transferRepository) FindActiveByAssignment(ctx context.Context, assignmentID int64) (*models.TaskTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM task_transfers
		WHERE assignment_id = $1 AND status IN ('pending_transferee','pending_manager')`
	t, err := scanTransfer(r.db.QueryRowContext(ctx, query, assignmentID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *transferRepository) ListForParticipant(ctx context.Context, profileID int64) ([]models.TaskTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM task_transfers
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, query, profileID)
}

func (r *transferRepository) ListForManager(ctx context.Context, managerID int64) ([]models.TaskTransfer, error) {
	// The last two arms are the participant view from ListForParticipant;
	// managers get both lists in one query.
	query := `SELECT ` + transferColumns + ` FROM task_transfers
		WHERE status = 'pending_manager'
		   OR (status = 'pending_transferee' AND to_user_id = $1)
		   OR from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC`
	return r.list(ctx, query, managerID)
}

func (r *transferRepository) list(ctx context.Context, query string, args ...any) ([]models.TaskTransfer, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *transferRepository) UpdateStage(ctx context.Context, t *models.TaskTransfer, fromStatus models.TransferStatus) (bool, error) {
	t.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE task_transfers SET
			status=$1,
			transferee_response=$2, transferee_responded_at=$3,
			manager_id=$4, manager_response=$5, manager_responded_at=$6,
			updated_at=$7
		WHERE id=$8 AND status=$9`,
		t.Status,
		t.TransfereeResponse, t.TransfereeRespondedAt,
		t.ManagerID, t.ManagerResponse, t.ManagerRespondedAt,
		t.UpdatedAt, t.ID, fromStatus,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *transferRepository) ApproveAndReassign(ctx context.Context, t *models.TaskTransfer) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	t.UpdatedAt = time.Now()
	res, err := tx.ExecContext(ctx, `
		UPDATE task_transfers SET
			status='approved', manager_id=$1, manager_response=$2, manager_responded_at=$3, updated_at=$4
		WHERE id=$5 AND status='pending_manager'`,
		t.ManagerID, t.ManagerResponse, t.ManagerRespondedAt, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return false, err
	}

	// The new owner must still complete the remaining tasks. The status guard
	// keeps an assignment the current owner finished in the meantime final:
	// with every required completion already written, nothing could ever
	// bring a reset assignment back to completed.
	res, err = tx.ExecContext(ctx, `
		UPDATE workflow_assignments
		SET assigned_to=$1, status='pending', completed_at=NULL
		WHERE id=$2 AND assigned_to=$3 AND status <> 'completed'`,
		t.ToUserID, t.AssignmentID, t.FromUserID,
	)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
