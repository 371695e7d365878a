package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"shiftops/internal/apperrors"
	"shiftops/internal/authz"
	"shiftops/internal/models"
	"shiftops/internal/repositories"
)

// CompletionResult is what a successful completeTask returns: the stored
// evidence plus whether it finished the whole assignment.
type CompletionResult struct {
	Completion        *models.TaskCompletion `json:"completion"`
	WorkflowCompleted bool                   `json:"workflow_completed"`
}

type CompletionService interface {
	CompleteTask(ctx context.Context, assignmentID, taskID int64, actor *models.Profile, notes, photoURL string) (*CompletionResult, error)
	EditCompletion(ctx context.Context, completionID int64, actor *models.Profile, newNotes string) (*models.TaskCompletion, *models.CompletionEdit, error)
	ListForAssignment(ctx context.Context, assignmentID int64) ([]models.TaskCompletion, error)
	ListEdits(ctx context.Context, completionID int64) ([]models.CompletionEdit, error)
}

type completionService struct {
	completions repositories.CompletionRepository
	assignments repositories.AssignmentRepository
	workflows   repositories.WorkflowRepository
}

func NewCompletionService(
	completions repositories.CompletionRepository,
	assignments repositories.AssignmentRepository,
	workflows repositories.WorkflowRepository,
) CompletionService {
	return &completionService{
		completions: completions,
		assignments: assignments,
		workflows:   workflows,
	}
}

func (s *completionService) CompleteTask(ctx context.Context, assignmentID, taskID int64, actor *models.Profile, notes, photoURL string) (*CompletionResult, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment == nil {
		return nil, apperrors.NotFoundf("assignment_not_found", "assignment %d not found", assignmentID)
	}
	if assignment.AssignedTo != actor.ID {
		return nil, apperrors.Forbiddenf("assignment belongs to another employee")
	}
	if assignment.Status == models.AssignmentCompleted {
		return nil, apperrors.InvalidStatef("assignment_completed", "assignment %d is already completed", assignmentID)
	}

	workflowTasks, err := s.workflows.FindTasks(ctx, assignment.WorkflowID)
	if err != nil {
		return nil, err
	}
	var target *models.WorkflowTask
	for i := range workflowTasks {
		if workflowTasks[i].TaskID == taskID {
			target = &workflowTasks[i]
			break
		}
	}
	if target == nil {
		return nil, apperrors.InvalidStatef("task_not_in_workflow", "task %d is not part of this workflow", taskID)
	}

	// Evidence requirements come from the task template, checked at
	// submission time only.
	if target.Task.PhotoRequired && strings.TrimSpace(photoURL) == "" {
		return nil, apperrors.MissingPhoto()
	}
	if target.Task.NotesRequired && strings.TrimSpace(notes) == "" {
		return nil, apperrors.MissingNotes()
	}

	// Completion is write-once per (assignment, task). The unique index
	// inside CreateAndRollup is authoritative; this pre-check just gives the
	// common case a clean answer without burning the transaction.
	exists, err := s.completions.ExistsForTask(ctx, assignmentID, taskID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.AlreadyCompleted()
	}

	requiredIDs, err := s.workflows.RequiredTaskIDs(ctx, assignment.WorkflowID)
	if err != nil {
		return nil, err
	}

	completion := &models.TaskCompletion{
		AssignmentID: assignmentID,
		TaskID:       taskID,
		CompletedBy:  actor.ID,
		Notes:        notes,
		PhotoURL:     photoURL,
		CompletedAt:  time.Now(),
	}
	workflowCompleted, err := s.completions.CreateAndRollup(ctx, completion, requiredIDs)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateCompletion) {
			return nil, apperrors.AlreadyCompleted()
		}
		return nil, err
	}

	if err := s.assignments.MarkStarted(ctx, assignmentID); err != nil {
		return nil, err
	}

	return &CompletionResult{Completion: completion, WorkflowCompleted: workflowCompleted}, nil
}

func (s *completionService) EditCompletion(ctx context.Context, completionID int64, actor *models.Profile, newNotes string) (*models.TaskCompletion, *models.CompletionEdit, error) {
	if !authz.Has(actor.Role, authz.CapEditCompletions) {
		return nil, nil, apperrors.Forbiddenf("editing completions requires a manager role")
	}
	completion, err := s.completions.FindByID(ctx, completionID)
	if err != nil {
		return nil, nil, err
	}
	if completion == nil {
		return nil, nil, apperrors.NotFoundf("completion_not_found", "completion %d not found", completionID)
	}

	now := time.Now()
	edit := &models.CompletionEdit{
		CompletionID:  completionID,
		EditedBy:      actor.ID,
		PreviousNotes: completion.Notes,
		NewNotes:      newNotes,
		EditedAt:      now,
	}
	completion.Notes = newNotes
	completion.EditedBy = &actor.ID
	completion.EditedAt = &now

	if err := s.completions.UpdateNotes(ctx, completion, edit); err != nil {
		return nil, nil, err
	}
	return completion, edit, nil
}

func (s *completionService) ListForAssignment(ctx context.Context, assignmentID int64) ([]models.TaskCompletion, error) {
	return s.completions.FindByAssignment(ctx, assignmentID)
}

func (s *completionService) ListEdits(ctx context.Context, completionID int64) ([]models.CompletionEdit, error) {
	return s.completions.FindEdits(ctx, completionID)
}
