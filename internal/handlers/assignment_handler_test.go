package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftops/internal/models"
	"shiftops/internal/pdf"
	"shiftops/internal/repositories"
	"shiftops/internal/services"
)

type stubAssignments struct {
	repositories.AssignmentRepository
	assignment *models.WorkflowAssignment
}

func (s stubAssignments) FindByID(ctx context.Context, id int64) (*models.WorkflowAssignment, error) {
	if s.assignment != nil && s.assignment.ID == id {
		return s.assignment, nil
	}
	return nil, nil
}

type stubCompletions struct {
	services.CompletionService
	completions []models.TaskCompletion
}

func (s stubCompletions) ListForAssignment(ctx context.Context, assignmentID int64) ([]models.TaskCompletion, error) {
	return s.completions, nil
}

type stubWorkflows struct {
	services.WorkflowService
	workflow *models.Workflow
}

func (s stubWorkflows) GetByID(ctx context.Context, id int64) (*models.Workflow, error) {
	return s.workflow, nil
}

type stubProfiles struct {
	services.ProfileService
	profiles map[int64]*models.Profile
}

func (s stubProfiles) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	return s.profiles[id], nil
}

// captureGenerator records what the handler asked it to render.
type captureGenerator struct {
	data    pdf.AssignmentReportData
	relPath string
}

func (g *captureGenerator) GenerateAssignmentReport(data pdf.AssignmentReportData) (string, error) {
	g.data = data
	return g.relPath, nil
}

// A completion written before an approved transfer belongs to the previous
// owner, so the report must name whoever actually did each task.
func TestReportAttributesCompletionsToActualCompleter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "reports"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "reports", "shift-report.pdf"), []byte("%PDF-1.4"), 0o644))

	completedAt := time.Now()
	assignment := &models.WorkflowAssignment{
		ID:             5,
		WorkflowID:     1,
		AssignedTo:     11,
		OccurrenceDate: "2026-08-30",
		Status:         models.AssignmentCompleted,
		CompletedAt:    &completedAt,
	}
	workflow := &models.Workflow{
		ID:   1,
		Name: "Closing checklist",
		Tasks: []models.WorkflowTask{
			{WorkflowID: 1, TaskID: 1, Position: 1, Required: true,
				Task: &models.Task{ID: 1, Title: "Wipe down grill"}},
			{WorkflowID: 1, TaskID: 2, Position: 2, Required: true,
				Task: &models.Task{ID: 2, Title: "Count register"}},
		},
	}
	completions := []models.TaskCompletion{
		{AssignmentID: 5, TaskID: 1, CompletedBy: 30, Notes: "before the handover", CompletedAt: completedAt},
		{AssignmentID: 5, TaskID: 2, CompletedBy: 11, Notes: "after the handover", CompletedAt: completedAt},
	}
	profiles := map[int64]*models.Profile{
		11: {ID: 11, DisplayName: "Sam", Role: models.RoleEmployee},
		30: {ID: 30, DisplayName: "Riley", Role: models.RoleEmployee},
	}

	gen := &captureGenerator{relPath: "reports/shift-report.pdf"}
	h := NewAssignmentHandler(
		stubAssignments{assignment: assignment},
		stubCompletions{completions: completions},
		stubWorkflows{workflow: workflow},
		stubProfiles{profiles: profiles},
		gen,
		root,
	)

	router := gin.New()
	router.GET("/assignments/:id/report", h.Report)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/assignments/5/report", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, gen.data.Tasks, 2)
	assert.Equal(t, "Riley", gen.data.Tasks[0].CompletedBy)
	assert.Equal(t, "Sam", gen.data.Tasks[1].CompletedBy)
	assert.Equal(t, "Sam", gen.data.EmployeeName)
}
