package services

import (
	"context"
	"log"
	"strings"
	"time"

	"shiftops/internal/apperrors"
	"shiftops/internal/models"
	"shiftops/internal/repositories"
)

type WorkflowService interface {
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, update *models.Task) (*models.Task, error)
	ListTasks(ctx context.Context) ([]models.Task, error)

	Create(ctx context.Context, w *models.Workflow, tasks []models.WorkflowTask) (*models.Workflow, error)
	GetByID(ctx context.Context, id int64) (*models.Workflow, error)
	List(ctx context.Context, activeOnly bool) ([]models.Workflow, error)
	Update(ctx context.Context, id int64, update *models.Workflow, tasks []models.WorkflowTask) (*models.Workflow, error)

	AddAssignee(ctx context.Context, workflowID, profileID int64) error
	RemoveAssignee(ctx context.Context, workflowID, profileID int64) error

	// SpawnOccurrences creates today's pending assignment for every assignee
	// of the workflow; already existing occurrence rows are left alone.
	SpawnOccurrences(ctx context.Context, workflowID int64, occurrenceDate string) ([]models.WorkflowAssignment, error)
	// SpawnDueAssignments walks every recurring workflow and spawns the given
	// date's occurrences for those due on that date.
	SpawnDueAssignments(ctx context.Context, day time.Time) (int, error)
}

type workflowService struct {
	workflows   repositories.WorkflowRepository
	tasks       repositories.TaskRepository
	assignments repositories.AssignmentRepository
	profiles    repositories.ProfileRepository
}

func NewWorkflowService(
	workflows repositories.WorkflowRepository,
	tasks repositories.TaskRepository,
	assignments repositories.AssignmentRepository,
	profiles repositories.ProfileRepository,
) WorkflowService {
	return &workflowService{
		workflows:   workflows,
		tasks:       tasks,
		assignments: assignments,
		profiles:    profiles,
	}
}

func (s *workflowService) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	if strings.TrimSpace(task.Title) == "" {
		return nil, apperrors.New(apperrors.InvalidRequest, "missing_title", "task title is required")
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if err := s.tasks.Store(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *workflowService) UpdateTask(ctx context.Context, id int64, update *models.Task) (*models.Task, error) {
	current, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NotFoundf("task_not_found", "task %d not found", id)
	}
	current.Title = update.Title
	current.Description = update.Description
	current.PhotoRequired = update.PhotoRequired
	current.NotesRequired = update.NotesRequired
	current.UpdatedAt = time.Now()
	if err := s.tasks.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *workflowService) ListTasks(ctx context.Context) ([]models.Task, error) {
	return s.tasks.FindAll(ctx)
}

func (s *workflowService) Create(ctx context.Context, w *models.Workflow, tasks []models.WorkflowTask) (*models.Workflow, error) {
	if strings.TrimSpace(w.Name) == "" {
		return nil, apperrors.New(apperrors.InvalidRequest, "missing_name", "workflow name is required")
	}
	if w.Recurrence == "" {
		w.Recurrence = models.RecurrenceNone
	}
	switch w.Recurrence {
	case models.RecurrenceNone, models.RecurrenceDaily, models.RecurrenceWeekly, models.RecurrenceMonthly:
	default:
		return nil, apperrors.New(apperrors.InvalidRequest, "invalid_recurrence", "invalid recurrence "+string(w.Recurrence))
	}
	if err := s.validateTaskRefs(ctx, tasks); err != nil {
		return nil, err
	}

	w.Active = true
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now
	if err := s.workflows.Store(ctx, w); err != nil {
		return nil, err
	}
	if err := s.workflows.ReplaceTasks(ctx, w.ID, tasks); err != nil {
		return nil, err
	}
	w.Tasks, _ = s.workflows.FindTasks(ctx, w.ID)
	return w, nil
}

func (s *workflowService) validateTaskRefs(ctx context.Context, tasks []models.WorkflowTask) error {
	seen := map[int64]bool{}
	for _, wt := range tasks {
		if seen[wt.TaskID] {
			return apperrors.New(apperrors.InvalidRequest, "duplicate_task", "task listed twice in workflow")
		}
		seen[wt.TaskID] = true
		t, err := s.tasks.FindByID(ctx, wt.TaskID)
		if err != nil {
			return err
		}
		if t == nil {
			return apperrors.NotFoundf("task_not_found", "task %d not found", wt.TaskID)
		}
	}
	return nil
}

func (s *workflowService) GetByID(ctx context.Context, id int64) (*models.Workflow, error) {
	w, err := s.workflows.FindByID(ctx, id)
	if err != nil || w == nil {
		return w, err
	}
	w.Tasks, err = s.workflows.FindTasks(ctx, id)
	return w, err
}

func (s *workflowService) List(ctx context.Context, activeOnly bool) ([]models.Workflow, error) {
	return s.workflows.FindAll(ctx, activeOnly)
}

func (s *workflowService) Update(ctx context.Context, id int64, update *models.Workflow, tasks []models.WorkflowTask) (*models.Workflow, error) {
	current, err := s.workflows.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, apperrors.NotFoundf("workflow_not_found", "workflow %d not found", id)
	}
	if update.Name != "" {
		current.Name = update.Name
	}
	current.Description = update.Description
	if update.Recurrence != "" {
		current.Recurrence = update.Recurrence
	}
	current.DueTime = update.DueTime
	current.Active = update.Active
	current.UpdatedAt = time.Now()

	if err := s.workflows.Update(ctx, current); err != nil {
		return nil, err
	}
	if tasks != nil {
		if err := s.validateTaskRefs(ctx, tasks); err != nil {
			return nil, err
		}
		if err := s.workflows.ReplaceTasks(ctx, id, tasks); err != nil {
			return nil, err
		}
	}
	current.Tasks, _ = s.workflows.FindTasks(ctx, id)
	return current, nil
}

func (s *workflowService) AddAssignee(ctx context.Context, workflowID, profileID int64) error {
	w, err := s.workflows.FindByID(ctx, workflowID)
	if err != nil {
		return err
	}
	if w == nil {
		return apperrors.NotFoundf("workflow_not_found", "workflow %d not found", workflowID)
	}
	p, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return err
	}
	if p == nil || p.ArchivedAt != nil {
		return apperrors.NotFoundf("profile_not_found", "profile %d not found", profileID)
	}
	return s.workflows.AddAssignee(ctx, workflowID, profileID)
}

func (s *workflowService) RemoveAssignee(ctx context.Context, workflowID, profileID int64) error {
	return s.workflows.RemoveAssignee(ctx, workflowID, profileID)
}

func (s *workflowService) SpawnOccurrences(ctx context.Context, workflowID int64, occurrenceDate string) ([]models.WorkflowAssignment, error) {
	w, err := s.workflows.FindByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, apperrors.NotFoundf("workflow_not_found", "workflow %d not found", workflowID)
	}
	if !w.Active {
		return nil, apperrors.InvalidStatef("workflow_inactive", "workflow %d is inactive", workflowID)
	}
	if occurrenceDate == "" {
		occurrenceDate = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", occurrenceDate); err != nil {
		return nil, apperrors.New(apperrors.InvalidRequest, "invalid_date", "occurrence_date must be YYYY-MM-DD")
	}

	assigneeIDs, err := s.workflows.FindAssigneeIDs(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	var created []models.WorkflowAssignment
	for _, pid := range assigneeIDs {
		a := models.WorkflowAssignment{
			WorkflowID:     workflowID,
			AssignedTo:     pid,
			OccurrenceDate: occurrenceDate,
			Status:         models.AssignmentPending,
			AssignedAt:     time.Now(),
		}
		inserted, err := s.assignments.StoreIfMissing(ctx, &a)
		if err != nil {
			return nil, err
		}
		if inserted {
			created = append(created, a)
		}
	}
	return created, nil
}

// dueOn decides whether a recurring workflow spawns on the given calendar
// day: daily always, weekly on Mondays, monthly on the 1st.
func dueOn(rec models.Recurrence, day time.Time) bool {
	switch rec {
	case models.RecurrenceDaily:
		return true
	case models.RecurrenceWeekly:
		return day.Weekday() == time.Monday
	case models.RecurrenceMonthly:
		return day.Day() == 1
	}
	return false
}

func (s *workflowService) SpawnDueAssignments(ctx context.Context, day time.Time) (int, error) {
	workflows, err := s.workflows.FindRecurring(ctx)
	if err != nil {
		return 0, err
	}
	date := day.Format("2006-01-02")
	total := 0
	for _, w := range workflows {
		if !dueOn(w.Recurrence, day) {
			continue
		}
		created, err := s.SpawnOccurrences(ctx, w.ID, date)
		if err != nil {
			log.Printf("[workflow][spawn][err] workflow=%d date=%s: %v", w.ID, date, err)
			continue
		}
		total += len(created)
	}
	return total, nil
}
