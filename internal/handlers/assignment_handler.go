package handlers

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"shiftops/internal/authz"
	"shiftops/internal/models"
	"shiftops/internal/pdf"
	"shiftops/internal/repositories"
	"shiftops/internal/services"
)

type AssignmentHandler struct {
	assignments repositories.AssignmentRepository
	completions services.CompletionService
	workflows   services.WorkflowService
	profiles    services.ProfileService

	reportGen pdf.Generator
	filesRoot string
}

func NewAssignmentHandler(
	assignments repositories.AssignmentRepository,
	completions services.CompletionService,
	workflows services.WorkflowService,
	profiles services.ProfileService,
	reportGen pdf.Generator,
	filesRoot string,
) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		completions: completions,
		workflows:   workflows,
		profiles:    profiles,
		reportGen:   reportGen,
		filesRoot:   filesRoot,
	}
}

// GET /assignments defaults to the caller's own; mine=false lists everyone's.
func (h *AssignmentHandler) List(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	var filter models.AssignmentFilter
	switch {
	// Only managers may look beyond their own assignments.
	case !authz.Has(actor.Role, authz.CapViewReports):
		filter.AssignedTo = &actor.ID
	case c.DefaultQuery("mine", "true") == "true":
		filter.AssignedTo = &actor.ID
	default:
		if v, ok := c.GetQuery("assigned_to"); ok {
			if id, ok2 := parseID(v); ok2 {
				filter.AssignedTo = &id
			}
		}
	}
	if v, ok := c.GetQuery("workflow_id"); ok {
		if id, ok2 := parseID(v); ok2 {
			filter.WorkflowID = &id
		}
	}
	if v, ok := c.GetQuery("status"); ok {
		st := models.AssignmentStatus(v)
		filter.Status = &st
	}
	if v, ok := c.GetQuery("date"); ok {
		filter.OccurrenceDate = &v
	}

	assignments, err := h.assignments.FindAll(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "assignment", "list", err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// GET /assignments/:id returns the assignment plus its completions so far.
func (h *AssignmentHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignment, err := h.assignments.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, "assignment", "get", err)
		return
	}
	if assignment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found", "code": "assignment_not_found"})
		return
	}
	completions, err := h.completions.ListForAssignment(c.Request.Context(), id)
	if err != nil {
		writeError(c, "assignment", "get", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment, "completions": completions})
}

// POST /assignments/:id/tasks/:task_id/complete
func (h *AssignmentHandler) CompleteTask(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	assignmentID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "task_id")
	if !ok {
		return
	}

	var req struct {
		Notes    string `json:"notes"`
		PhotoURL string `json:"photo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.completions.CompleteTask(c.Request.Context(), assignmentID, taskID, actor, req.Notes, req.PhotoURL)
	if err != nil {
		writeError(c, "assignment", "complete-task", err)
		return
	}
	log.Printf("[assignment][complete-task][ok] assignment=%d task=%d by=%d workflow_completed=%v",
		assignmentID, taskID, actor.ID, result.WorkflowCompleted)
	c.JSON(http.StatusCreated, result)
}

// GET /assignments/:id/report renders the PDF summary for managers.
func (h *AssignmentHandler) Report(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	assignment, err := h.assignments.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, "assignment", "report", err)
		return
	}
	if assignment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "assignment not found", "code": "assignment_not_found"})
		return
	}

	workflow, err := h.workflows.GetByID(c.Request.Context(), assignment.WorkflowID)
	if err != nil {
		writeError(c, "assignment", "report", err)
		return
	}
	if workflow == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow not found", "code": "workflow_not_found"})
		return
	}
	employee, err := h.profiles.GetByID(c.Request.Context(), assignment.AssignedTo)
	if err != nil {
		writeError(c, "assignment", "report", err)
		return
	}
	if employee == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found", "code": "profile_not_found"})
		return
	}
	completions, err := h.completions.ListForAssignment(c.Request.Context(), id)
	if err != nil {
		writeError(c, "assignment", "report", err)
		return
	}

	byTask := map[int64]*models.TaskCompletion{}
	for i := range completions {
		byTask[completions[i].TaskID] = &completions[i]
	}

	// Completions can predate an approved transfer, so the completer is not
	// always the current assignee.
	completerNames := map[int64]string{employee.ID: employee.DisplayName}
	for i := range completions {
		completerID := completions[i].CompletedBy
		if _, known := completerNames[completerID]; known {
			continue
		}
		completer, err := h.profiles.GetByID(c.Request.Context(), completerID)
		if err != nil {
			writeError(c, "assignment", "report", err)
			return
		}
		if completer != nil {
			completerNames[completerID] = completer.DisplayName
		}
	}

	data := pdf.AssignmentReportData{
		WorkflowName:   workflow.Name,
		EmployeeName:   employee.DisplayName,
		OccurrenceDate: assignment.OccurrenceDate,
		Status:         string(assignment.Status),
		CompletedAt:    assignment.CompletedAt,
	}
	for _, wt := range workflow.Tasks {
		line := pdf.ReportTaskLine{Title: wt.Task.Title, Required: wt.Required}
		if comp, done := byTask[wt.TaskID]; done {
			line.CompletedAt = &comp.CompletedAt
			line.CompletedBy = completerNames[comp.CompletedBy]
			line.Notes = comp.Notes
			line.PhotoURL = comp.PhotoURL
		}
		data.Tasks = append(data.Tasks, line)
	}

	relPath, err := h.reportGen.GenerateAssignmentReport(data)
	if err != nil {
		writeError(c, "assignment", "report", err)
		return
	}
	log.Printf("[assignment][report][ok] assignment=%d file=%s", id, relPath)
	c.FileAttachment(filepath.Join(h.filesRoot, filepath.FromSlash(relPath)), filepath.Base(relPath))
}
