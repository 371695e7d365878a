package services

import (
	"context"
	"sync"
	"time"

	"shiftops/internal/models"
	"shiftops/internal/repositories"
)

// In-memory repository fakes. They reproduce the guarantees the SQL layer
// gives the services: write-once completions, compare-and-swap stage moves,
// one active transfer per assignment.

type fakeProfileRepo struct {
	mu       sync.Mutex
	nextID   int64
	profiles map[int64]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{nextID: 1, profiles: map[int64]*models.Profile{}}
}

func (r *fakeProfileRepo) add(p *models.Profile) *models.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.nextID
		r.nextID++
	} else if p.ID >= r.nextID {
		r.nextID = p.ID + 1
	}
	r.profiles[p.ID] = p
	return p
}

func (r *fakeProfileRepo) Store(ctx context.Context, p *models.Profile) error {
	r.add(p)
	return nil
}

func (r *fakeProfileRepo) FindByID(ctx context.Context, id int64) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profiles[id], nil
}

func (r *fakeProfileRepo) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProfileRepo) FindAll(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Profile
	for _, p := range r.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProfileRepo) Update(ctx context.Context, p *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
	return nil
}

func (r *fakeProfileRepo) Archive(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.profiles[id]; ok {
		now := time.Now()
		p.ArchivedAt = &now
	}
	return nil
}

func (r *fakeProfileRepo) UpdateRefreshToken(ctx context.Context, id int64, token *string, expiresAt *time.Time, revoked bool) error {
	return nil
}

func (r *fakeProfileRepo) FindByRefreshToken(ctx context.Context, token string) (*models.Profile, error) {
	return nil, nil
}

type fakeTaskRepo struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*models.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{nextID: 1, tasks: map[int64]*models.Task{}}
}

func (r *fakeTaskRepo) add(task *models.Task) *models.Task {
	r.mu.Lock()
	defer r.mu.Unlock()
	if task.ID == 0 {
		task.ID = r.nextID
		r.nextID++
	} else if task.ID >= r.nextID {
		r.nextID = task.ID + 1
	}
	r.tasks[task.ID] = task
	return task
}

func (r *fakeTaskRepo) Store(ctx context.Context, task *models.Task) error {
	r.add(task)
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id int64) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[id], nil
}

func (r *fakeTaskRepo) FindAll(ctx context.Context) ([]models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Task
	for _, task := range r.tasks {
		out = append(out, *task)
	}
	return out, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.ID] = task
	return nil
}

type fakeAssignmentRepo struct {
	mu          sync.Mutex
	nextID      int64
	assignments map[int64]*models.WorkflowAssignment
}

func newFakeAssignmentRepo() *fakeAssignmentRepo {
	return &fakeAssignmentRepo{nextID: 1, assignments: map[int64]*models.WorkflowAssignment{}}
}

func (r *fakeAssignmentRepo) add(a *models.WorkflowAssignment) *models.WorkflowAssignment {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == 0 {
		a.ID = r.nextID
		r.nextID++
	} else if a.ID >= r.nextID {
		r.nextID = a.ID + 1
	}
	r.assignments[a.ID] = a
	return a
}

func (r *fakeAssignmentRepo) StoreIfMissing(ctx context.Context, a *models.WorkflowAssignment) (bool, error) {
	r.mu.Lock()
	for _, existing := range r.assignments {
		if existing.WorkflowID == a.WorkflowID &&
			existing.AssignedTo == a.AssignedTo &&
			existing.OccurrenceDate == a.OccurrenceDate {
			r.mu.Unlock()
			return false, nil
		}
	}
	r.mu.Unlock()
	r.add(a)
	return true, nil
}

func (r *fakeAssignmentRepo) FindByID(ctx context.Context, id int64) (*models.WorkflowAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.assignments[id], nil
}

func (r *fakeAssignmentRepo) FindAll(ctx context.Context, filter models.AssignmentFilter) ([]models.WorkflowAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WorkflowAssignment
	for _, a := range r.assignments {
		if filter.AssignedTo != nil && a.AssignedTo != *filter.AssignedTo {
			continue
		}
		if filter.WorkflowID != nil && a.WorkflowID != *filter.WorkflowID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.OccurrenceDate != nil && a.OccurrenceDate != *filter.OccurrenceDate {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (r *fakeAssignmentRepo) MarkStarted(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.assignments[id]; ok && a.StartedAt == nil {
		now := time.Now()
		a.StartedAt = &now
	}
	return nil
}

type fakeWorkflowRepo struct {
	mu        sync.Mutex
	nextID    int64
	workflows map[int64]*models.Workflow
	tasks     map[int64][]models.WorkflowTask
	assignees map[int64][]int64
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{
		nextID:    1,
		workflows: map[int64]*models.Workflow{},
		tasks:     map[int64][]models.WorkflowTask{},
		assignees: map[int64][]int64{},
	}
}

func (r *fakeWorkflowRepo) add(w *models.Workflow, tasks []models.WorkflowTask) *models.Workflow {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w.ID == 0 {
		w.ID = r.nextID
		r.nextID++
	} else if w.ID >= r.nextID {
		r.nextID = w.ID + 1
	}
	r.workflows[w.ID] = w
	r.tasks[w.ID] = tasks
	return w
}

func (r *fakeWorkflowRepo) Store(ctx context.Context, w *models.Workflow) error {
	r.add(w, nil)
	return nil
}

func (r *fakeWorkflowRepo) FindByID(ctx context.Context, id int64) (*models.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workflows[id], nil
}

func (r *fakeWorkflowRepo) FindAll(ctx context.Context, activeOnly bool) ([]models.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Workflow
	for _, w := range r.workflows {
		if activeOnly && !w.Active {
			continue
		}
		out = append(out, *w)
	}
	return out, nil
}

func (r *fakeWorkflowRepo) FindRecurring(ctx context.Context) ([]models.Workflow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Workflow
	for _, w := range r.workflows {
		if w.Active && w.Recurrence != models.RecurrenceNone {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeWorkflowRepo) Update(ctx context.Context, w *models.Workflow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workflows[w.ID] = w
	return nil
}

func (r *fakeWorkflowRepo) ReplaceTasks(ctx context.Context, workflowID int64, tasks []models.WorkflowTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[workflowID] = tasks
	return nil
}

func (r *fakeWorkflowRepo) FindTasks(ctx context.Context, workflowID int64) ([]models.WorkflowTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tasks[workflowID], nil
}

func (r *fakeWorkflowRepo) RequiredTaskIDs(ctx context.Context, workflowID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []int64
	for _, wt := range r.tasks[workflowID] {
		if wt.Required {
			out = append(out, wt.TaskID)
		}
	}
	return out, nil
}

func (r *fakeWorkflowRepo) AddAssignee(ctx context.Context, workflowID, profileID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.assignees[workflowID] {
		if id == profileID {
			return nil
		}
	}
	r.assignees[workflowID] = append(r.assignees[workflowID], profileID)
	return nil
}

func (r *fakeWorkflowRepo) RemoveAssignee(ctx context.Context, workflowID, profileID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.assignees[workflowID]
	for i, id := range ids {
		if id == profileID {
			r.assignees[workflowID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeWorkflowRepo) FindAssigneeIDs(ctx context.Context, workflowID int64) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.assignees[workflowID]...), nil
}

type fakeCompletionRepo struct {
	mu          sync.Mutex
	nextID      int64
	completions map[int64]*models.TaskCompletion
	edits       []models.CompletionEdit
	assignments *fakeAssignmentRepo
}

func newFakeCompletionRepo(assignments *fakeAssignmentRepo) *fakeCompletionRepo {
	return &fakeCompletionRepo{
		nextID:      1,
		completions: map[int64]*models.TaskCompletion{},
		assignments: assignments,
	}
}

func (r *fakeCompletionRepo) CreateAndRollup(ctx context.Context, c *models.TaskCompletion, requiredTaskIDs []int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignment := r.assignments.assignments[c.AssignmentID]
	if assignment != nil && assignment.Status == models.AssignmentCompleted {
		return false, repositories.ErrDuplicateCompletion
	}
	for _, existing := range r.completions {
		if existing.AssignmentID == c.AssignmentID && existing.TaskID == c.TaskID {
			return false, repositories.ErrDuplicateCompletion
		}
	}
	c.ID = r.nextID
	r.nextID++
	r.completions[c.ID] = c

	done := map[int64]bool{}
	for _, existing := range r.completions {
		if existing.AssignmentID == c.AssignmentID {
			done[existing.TaskID] = true
		}
	}
	for _, id := range requiredTaskIDs {
		if !done[id] {
			return false, nil
		}
	}
	if assignment != nil {
		now := time.Now()
		assignment.Status = models.AssignmentCompleted
		assignment.CompletedAt = &now
	}
	return true, nil
}

func (r *fakeCompletionRepo) FindByID(ctx context.Context, id int64) (*models.TaskCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completions[id], nil
}

func (r *fakeCompletionRepo) FindByAssignment(ctx context.Context, assignmentID int64) ([]models.TaskCompletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TaskCompletion
	for _, c := range r.completions {
		if c.AssignmentID == assignmentID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCompletionRepo) ExistsForTask(ctx context.Context, assignmentID, taskID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.completions {
		if c.AssignmentID == assignmentID && c.TaskID == taskID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCompletionRepo) UpdateNotes(ctx context.Context, c *models.TaskCompletion, edit *models.CompletionEdit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions[c.ID] = c
	edit.ID = int64(len(r.edits) + 1)
	r.edits = append(r.edits, *edit)
	return nil
}

func (r *fakeCompletionRepo) FindEdits(ctx context.Context, completionID int64) ([]models.CompletionEdit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.CompletionEdit
	for _, e := range r.edits {
		if e.CompletionID == completionID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeTransferRepo struct {
	mu          sync.Mutex
	nextID      int64
	transfers   map[int64]*models.TaskTransfer
	assignments *fakeAssignmentRepo
}

func newFakeTransferRepo(assignments *fakeAssignmentRepo) *fakeTransferRepo {
	return &fakeTransferRepo{nextID: 1, transfers: map[int64]*models.TaskTransfer{}, assignments: assignments}
}

func (r *fakeTransferRepo) Store(ctx context.Context, t *models.TaskTransfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.transfers {
		if existing.AssignmentID == t.AssignmentID && !existing.Status.Terminal() {
			return repositories.ErrActiveTransfer
		}
	}
	t.ID = r.nextID
	r.nextID++
	r.transfers[t.ID] = t
	return nil
}

func (r *fakeTransferRepo) FindByID(ctx context.Context, id int64) (*models.TaskTransfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transfers[id]; ok {
		copied := *t
		return &copied, nil
	}
	return nil, nil
}

func (r *fakeTransferRepo) FindActiveByAssignment(ctx context.Context, assignmentID int64) (*models.TaskTransfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transfers {
		if t.AssignmentID == assignmentID && !t.Status.Terminal() {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeTransferRepo) ListForParticipant(ctx context.Context, profileID int64) ([]models.TaskTransfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TaskTransfer
	for _, t := range r.transfers {
		if t.FromUserID == profileID || t.ToUserID == profileID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTransferRepo) ListForManager(ctx context.Context, managerID int64) ([]models.TaskTransfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.TaskTransfer
	for _, t := range r.transfers {
		if t.Status == models.TransferPendingManager || t.FromUserID == managerID || t.ToUserID == managerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTransferRepo) UpdateStage(ctx context.Context, t *models.TaskTransfer, fromStatus models.TransferStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transfers[t.ID]
	if !ok || stored.Status != fromStatus {
		return false, nil
	}
	copied := *t
	r.transfers[t.ID] = &copied
	return true, nil
}

func (r *fakeTransferRepo) ApproveAndReassign(ctx context.Context, t *models.TaskTransfer) (bool, error) {
	r.mu.Lock()
	stored, ok := r.transfers[t.ID]
	if !ok || stored.Status != models.TransferPendingManager {
		r.mu.Unlock()
		return false, nil
	}
	r.mu.Unlock()

	// Mirrors the SQL hand-over: the swap lands only while the current owner
	// matches and the assignment has not been completed in the meantime.
	r.assignments.mu.Lock()
	a, found := r.assignments.assignments[t.AssignmentID]
	if !found || a.AssignedTo != t.FromUserID || a.Status == models.AssignmentCompleted {
		r.assignments.mu.Unlock()
		return false, nil
	}
	a.AssignedTo = t.ToUserID
	a.Status = models.AssignmentPending
	a.CompletedAt = nil
	r.assignments.mu.Unlock()

	r.mu.Lock()
	copied := *t
	copied.Status = models.TransferApproved
	r.transfers[t.ID] = &copied
	r.mu.Unlock()
	return true, nil
}
