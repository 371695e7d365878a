package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftops/internal/apperrors"
	"shiftops/internal/models"
)

type workflowFixture struct {
	svc         WorkflowService
	workflows   *fakeWorkflowRepo
	tasks       *fakeTaskRepo
	assignments *fakeAssignmentRepo
	profiles    *fakeProfileRepo
}

func newWorkflowFixture(t *testing.T) *workflowFixture {
	t.Helper()
	workflows := newFakeWorkflowRepo()
	tasks := newFakeTaskRepo()
	assignments := newFakeAssignmentRepo()
	profiles := newFakeProfileRepo()
	return &workflowFixture{
		svc:         NewWorkflowService(workflows, tasks, assignments, profiles),
		workflows:   workflows,
		tasks:       tasks,
		assignments: assignments,
		profiles:    profiles,
	}
}

func TestWorkflowCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid workflow with ordered tasks", func(t *testing.T) {
		f := newWorkflowFixture(t)
		f.tasks.add(&models.Task{Title: "Mop floors"})
		f.tasks.add(&models.Task{Title: "Lock doors"})

		created, err := f.svc.Create(ctx, &models.Workflow{
			Name:       "Closing",
			Recurrence: models.RecurrenceDaily,
		}, []models.WorkflowTask{
			{TaskID: 1, Position: 1, Required: true},
			{TaskID: 2, Position: 2, Required: false},
		})
		require.NoError(t, err)
		assert.True(t, created.Active)
		assert.Len(t, created.Tasks, 2)
	})

	t.Run("missing name", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.svc.Create(ctx, &models.Workflow{Name: "  "}, nil)
		assert.Equal(t, "missing_name", apperrors.From(err).Code)
	})

	t.Run("invalid recurrence", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.svc.Create(ctx, &models.Workflow{Name: "X", Recurrence: "hourly"}, nil)
		assert.Equal(t, "invalid_recurrence", apperrors.From(err).Code)
	})

	t.Run("unknown task reference", func(t *testing.T) {
		f := newWorkflowFixture(t)
		_, err := f.svc.Create(ctx, &models.Workflow{Name: "X"}, []models.WorkflowTask{
			{TaskID: 42, Position: 1, Required: true},
		})
		assert.Equal(t, apperrors.NotFound, apperrors.From(err).Kind)
	})
}

func TestSpawnOccurrences(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*workflowFixture, *models.Workflow) {
		f := newWorkflowFixture(t)
		f.profiles.add(&models.Profile{ID: 10, Role: models.RoleEmployee})
		f.profiles.add(&models.Profile{ID: 11, Role: models.RoleEmployee})

		w := f.workflows.add(&models.Workflow{
			Name:       "Opening",
			Recurrence: models.RecurrenceDaily,
			Active:     true,
		}, nil)
		require.NoError(t, f.workflows.AddAssignee(ctx, w.ID, 10))
		require.NoError(t, f.workflows.AddAssignee(ctx, w.ID, 11))
		return f, w
	}

	t.Run("one assignment per assignee", func(t *testing.T) {
		f, w := setup(t)
		created, err := f.svc.SpawnOccurrences(ctx, w.ID, "2026-08-30")
		require.NoError(t, err)
		assert.Len(t, created, 2)
	})

	t.Run("spawning twice is idempotent", func(t *testing.T) {
		f, w := setup(t)
		first, err := f.svc.SpawnOccurrences(ctx, w.ID, "2026-08-30")
		require.NoError(t, err)
		require.Len(t, first, 2)

		second, err := f.svc.SpawnOccurrences(ctx, w.ID, "2026-08-30")
		require.NoError(t, err)
		assert.Empty(t, second)

		all, err := f.assignments.FindAll(ctx, models.AssignmentFilter{WorkflowID: &w.ID})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("different day spawns again", func(t *testing.T) {
		f, w := setup(t)
		_, err := f.svc.SpawnOccurrences(ctx, w.ID, "2026-08-30")
		require.NoError(t, err)

		next, err := f.svc.SpawnOccurrences(ctx, w.ID, "2026-08-31")
		require.NoError(t, err)
		assert.Len(t, next, 2)
	})

	t.Run("inactive workflow refuses", func(t *testing.T) {
		f, w := setup(t)
		w.Active = false
		_, err := f.svc.SpawnOccurrences(ctx, w.ID, "2026-08-30")
		assert.Equal(t, "workflow_inactive", apperrors.From(err).Code)
	})

	t.Run("malformed date", func(t *testing.T) {
		f, w := setup(t)
		_, err := f.svc.SpawnOccurrences(ctx, w.ID, "30/08/2026")
		assert.Equal(t, "invalid_date", apperrors.From(err).Code)
	})
}

func TestDueOn(t *testing.T) {
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	firstOfMonth := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		rec  models.Recurrence
		day  time.Time
		want bool
	}{
		{"daily any day", models.RecurrenceDaily, tuesday, true},
		{"weekly on monday", models.RecurrenceWeekly, monday, true},
		{"weekly off monday", models.RecurrenceWeekly, tuesday, false},
		{"monthly on the 1st", models.RecurrenceMonthly, firstOfMonth, true},
		{"monthly mid-month", models.RecurrenceMonthly, monday, false},
		{"none never", models.RecurrenceNone, monday, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dueOn(tt.rec, tt.day))
		})
	}
}

func TestSpawnDueAssignments(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	f.profiles.add(&models.Profile{ID: 10, Role: models.RoleEmployee})

	daily := f.workflows.add(&models.Workflow{Name: "Daily", Recurrence: models.RecurrenceDaily, Active: true}, nil)
	weekly := f.workflows.add(&models.Workflow{Name: "Weekly", Recurrence: models.RecurrenceWeekly, Active: true}, nil)
	oneOff := f.workflows.add(&models.Workflow{Name: "One-off", Recurrence: models.RecurrenceNone, Active: true}, nil)

	for _, w := range []*models.Workflow{daily, weekly, oneOff} {
		require.NoError(t, f.workflows.AddAssignee(ctx, w.ID, 10))
	}

	// A Tuesday: only the daily workflow is due.
	tuesday := time.Date(2026, 9, 1, 4, 5, 0, 0, time.UTC)
	total, err := f.svc.SpawnDueAssignments(ctx, tuesday)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// A Monday: daily and weekly both spawn.
	monday := time.Date(2026, 9, 7, 4, 5, 0, 0, time.UTC)
	total, err = f.svc.SpawnDueAssignments(ctx, monday)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
