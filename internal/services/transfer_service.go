package services

import (
	"context"
	"errors"
	"time"

	"shiftops/internal/apperrors"
	"shiftops/internal/authz"
	"shiftops/internal/models"
	"shiftops/internal/repositories"
)

type TransferService interface {
	Request(ctx context.Context, assignmentID int64, actor *models.Profile, toUserID int64, reason string) (*models.TaskTransfer, error)
	RespondAsTransferee(ctx context.Context, transferID int64, actor *models.Profile, approve bool, responseText string) (*models.TaskTransfer, error)
	RespondAsManager(ctx context.Context, transferID int64, actor *models.Profile, approve bool, responseText string) (*models.TaskTransfer, error)
	ListFor(ctx context.Context, actor *models.Profile) ([]models.TaskTransfer, error)
	GetByID(ctx context.Context, id int64) (*models.TaskTransfer, error)
}

type transferService struct {
	transfers   repositories.TransferRepository
	assignments repositories.AssignmentRepository
	profiles    repositories.ProfileRepository
}

func NewTransferService(
	transfers repositories.TransferRepository,
	assignments repositories.AssignmentRepository,
	profiles repositories.ProfileRepository,
) TransferService {
	return &transferService{
		transfers:   transfers,
		assignments: assignments,
		profiles:    profiles,
	}
}

func (s *transferService) Request(ctx context.Context, assignmentID int64, actor *models.Profile, toUserID int64, reason string) (*models.TaskTransfer, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, apperrors.NotFoundf("assignment_not_found", "assignment %d not found", assignmentID)
	}
	if assignment.AssignedTo != actor.ID {
		return nil, apperrors.Forbiddenf("only the current assignee can request a transfer")
	}
	if assignment.Status == models.AssignmentCompleted {
		return nil, apperrors.InvalidStatef("assignment_completed", "completed assignments cannot be transferred")
	}
	if toUserID == actor.ID {
		return nil, apperrors.New(apperrors.InvalidRequest, "same_user", "cannot transfer an assignment to yourself")
	}

	recipient, err := s.profiles.FindByID(ctx, toUserID)
	if err != nil {
		return nil, err
	}
	if recipient == nil || recipient.ArchivedAt != nil {
		return nil, apperrors.NotFoundf("profile_not_found", "profile %d not found", toUserID)
	}

	// The partial unique index is the authoritative guard; this read keeps
	// the common case off the constraint error path.
	active, err := s.transfers.FindActiveByAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperrors.ActiveTransferExists()
	}

	now := time.Now()
	transfer := &models.TaskTransfer{
		AssignmentID: assignmentID,
		FromUserID:   actor.ID,
		ToUserID:     toUserID,
		RequestedBy:  actor.ID,
		Status:       models.TransferPendingTransferee,
		Reason:       reason,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.transfers.Store(ctx, transfer); err != nil {
		if errors.Is(err, repositories.ErrActiveTransfer) {
			return nil, apperrors.ActiveTransferExists()
		}
		return nil, err
	}
	return transfer, nil
}

func (s *transferService) RespondAsTransferee(ctx context.Context, transferID int64, actor *models.Profile, approve bool, responseText string) (*models.TaskTransfer, error) {
	transfer, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, apperrors.NotFoundf("transfer_not_found", "transfer %d not found", transferID)
	}
	if transfer.Status != models.TransferPendingTransferee {
		return nil, apperrors.InvalidStatef("wrong_stage", "transfer is not awaiting the transferee")
	}
	if transfer.ToUserID != actor.ID {
		return nil, apperrors.Forbiddenf("only the requested recipient can respond")
	}

	next := models.TransferPendingManager
	if !approve {
		next = models.TransferRejected
	}
	if !canTransition(transfer.Status, next) {
		return nil, apperrors.InvalidStatef("illegal_transition", "cannot move transfer from %s to %s", transfer.Status, next)
	}

	now := time.Now()
	transfer.Status = next
	transfer.TransfereeResponse = responseText
	transfer.TransfereeRespondedAt = &now

	ok, err := s.transfers.UpdateStage(ctx, transfer, models.TransferPendingTransferee)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Someone else moved the transfer first.
		return nil, apperrors.InvalidStatef("wrong_stage", "transfer is not awaiting the transferee")
	}
	return transfer, nil
}

func (s *transferService) RespondAsManager(ctx context.Context, transferID int64, actor *models.Profile, approve bool, responseText string) (*models.TaskTransfer, error) {
	if !authz.Has(actor.Role, authz.CapApproveTransfers) {
		return nil, apperrors.Forbiddenf("approving transfers requires a manager role")
	}
	transfer, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer == nil {
		return nil, apperrors.NotFoundf("transfer_not_found", "transfer %d not found", transferID)
	}
	if transfer.Status != models.TransferPendingManager {
		return nil, apperrors.InvalidStatef("wrong_stage", "transfer is not awaiting a manager")
	}

	now := time.Now()
	transfer.ManagerID = &actor.ID
	transfer.ManagerResponse = responseText
	transfer.ManagerRespondedAt = &now

	if approve {
		transfer.Status = models.TransferApproved
		ok, err := s.transfers.ApproveAndReassign(ctx, transfer)
		if err != nil {
			return nil, err
		}
		if !ok {
			// The swap lost. Tell the completion race apart from a concurrent
			// manager response so the caller knows there is nothing left to
			// hand over.
			assignment, findErr := s.assignments.FindByID(ctx, transfer.AssignmentID)
			if findErr == nil && assignment != nil && assignment.Status == models.AssignmentCompleted {
				return nil, apperrors.InvalidStatef("assignment_completed", "assignment was completed before the approval landed")
			}
			return nil, apperrors.InvalidStatef("wrong_stage", "transfer or assignment changed underneath the approval")
		}
		return transfer, nil
	}

	transfer.Status = models.TransferRejected
	ok, err := s.transfers.UpdateStage(ctx, transfer, models.TransferPendingManager)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.InvalidStatef("wrong_stage", "transfer is not awaiting a manager")
	}
	return transfer, nil
}

// ListFor projects transfers by viewer: managers see the approval queue plus
// their own, everyone else only what they sent or received.
func (s *transferService) ListFor(ctx context.Context, actor *models.Profile) ([]models.TaskTransfer, error) {
	if authz.Has(actor.Role, authz.CapApproveTransfers) {
		return s.transfers.ListForManager(ctx, actor.ID)
	}
	return s.transfers.ListForParticipant(ctx, actor.ID)
}

func (s *transferService) GetByID(ctx context.Context, id int64) (*models.TaskTransfer, error) {
	return s.transfers.FindByID(ctx, id)
}
