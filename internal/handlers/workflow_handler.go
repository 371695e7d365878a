package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftops/internal/models"
	"shiftops/internal/services"
)

type WorkflowHandler struct {
	service services.WorkflowService
}

func NewWorkflowHandler(service services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

type workflowTaskRef struct {
	TaskID   int64 `json:"task_id" binding:"required"`
	Position int   `json:"position"`
	Required bool  `json:"required"`
}

func toWorkflowTasks(refs []workflowTaskRef) []models.WorkflowTask {
	out := make([]models.WorkflowTask, 0, len(refs))
	for i, ref := range refs {
		pos := ref.Position
		if pos == 0 {
			pos = i + 1
		}
		out = append(out, models.WorkflowTask{TaskID: ref.TaskID, Position: pos, Required: ref.Required})
	}
	return out
}

// POST /tasks
func (h *WorkflowHandler) CreateTask(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	var req struct {
		Title         string `json:"title" binding:"required"`
		Description   string `json:"description"`
		PhotoRequired bool   `json:"photo_required"`
		NotesRequired bool   `json:"notes_required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.service.CreateTask(c.Request.Context(), &models.Task{
		Title:         req.Title,
		Description:   req.Description,
		PhotoRequired: req.PhotoRequired,
		NotesRequired: req.NotesRequired,
		CreatedBy:     actor.ID,
	})
	if err != nil {
		writeError(c, "task", "create", err)
		return
	}
	log.Printf("[task][create][ok] id=%d title=%q by=%d", task.ID, task.Title, actor.ID)
	c.JSON(http.StatusCreated, task)
}

// PUT /tasks/:id
func (h *WorkflowHandler) UpdateTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Title         string `json:"title" binding:"required"`
		Description   string `json:"description"`
		PhotoRequired bool   `json:"photo_required"`
		NotesRequired bool   `json:"notes_required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := h.service.UpdateTask(c.Request.Context(), id, &models.Task{
		Title:         req.Title,
		Description:   req.Description,
		PhotoRequired: req.PhotoRequired,
		NotesRequired: req.NotesRequired,
	})
	if err != nil {
		writeError(c, "task", "update", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GET /tasks
func (h *WorkflowHandler) ListTasks(c *gin.Context) {
	tasks, err := h.service.ListTasks(c.Request.Context())
	if err != nil {
		writeError(c, "task", "list", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// POST /workflows
func (h *WorkflowHandler) Create(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	var req struct {
		Name        string            `json:"name" binding:"required"`
		Description string            `json:"description"`
		Recurrence  models.Recurrence `json:"recurrence"`
		DueTime     string            `json:"due_time"`
		Tasks       []workflowTaskRef `json:"tasks" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	workflow, err := h.service.Create(c.Request.Context(), &models.Workflow{
		Name:        req.Name,
		Description: req.Description,
		Recurrence:  req.Recurrence,
		DueTime:     req.DueTime,
		CreatedBy:   actor.ID,
	}, toWorkflowTasks(req.Tasks))
	if err != nil {
		writeError(c, "workflow", "create", err)
		return
	}
	log.Printf("[workflow][create][ok] id=%d name=%q by=%d", workflow.ID, workflow.Name, actor.ID)
	c.JSON(http.StatusCreated, workflow)
}

// GET /workflows
func (h *WorkflowHandler) List(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	workflows, err := h.service.List(c.Request.Context(), activeOnly)
	if err != nil {
		writeError(c, "workflow", "list", err)
		return
	}
	c.JSON(http.StatusOK, workflows)
}

// GET /workflows/:id
func (h *WorkflowHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	workflow, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, "workflow", "get", err)
		return
	}
	if workflow == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "workflow not found", "code": "workflow_not_found"})
		return
	}
	c.JSON(http.StatusOK, workflow)
}

// PUT /workflows/:id
func (h *WorkflowHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Name        string            `json:"name"`
		Description string            `json:"description"`
		Recurrence  models.Recurrence `json:"recurrence"`
		DueTime     string            `json:"due_time"`
		Active      bool              `json:"active"`
		Tasks       []workflowTaskRef `json:"tasks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tasks []models.WorkflowTask
	if req.Tasks != nil {
		tasks = toWorkflowTasks(req.Tasks)
	}
	workflow, err := h.service.Update(c.Request.Context(), id, &models.Workflow{
		Name:        req.Name,
		Description: req.Description,
		Recurrence:  req.Recurrence,
		DueTime:     req.DueTime,
		Active:      req.Active,
	}, tasks)
	if err != nil {
		writeError(c, "workflow", "update", err)
		return
	}
	c.JSON(http.StatusOK, workflow)
}

// POST /workflows/:id/assignees
func (h *WorkflowHandler) AddAssignee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		ProfileID int64 `json:"profile_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.AddAssignee(c.Request.Context(), id, req.ProfileID); err != nil {
		writeError(c, "workflow", "add-assignee", err)
		return
	}
	log.Printf("[workflow][add-assignee][ok] workflow=%d profile=%d", id, req.ProfileID)
	c.Status(http.StatusNoContent)
}

// DELETE /workflows/:id/assignees/:profile_id
func (h *WorkflowHandler) RemoveAssignee(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	profileID, ok := pathID(c, "profile_id")
	if !ok {
		return
	}
	if err := h.service.RemoveAssignee(c.Request.Context(), id, profileID); err != nil {
		writeError(c, "workflow", "remove-assignee", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /workflows/:id/spawn
func (h *WorkflowHandler) Spawn(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req struct {
		OccurrenceDate string `json:"occurrence_date"` // YYYY-MM-DD, default today
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created, err := h.service.SpawnOccurrences(c.Request.Context(), id, req.OccurrenceDate)
	if err != nil {
		writeError(c, "workflow", "spawn", err)
		return
	}
	log.Printf("[workflow][spawn][ok] workflow=%d created=%d", id, len(created))
	c.JSON(http.StatusCreated, gin.H{"created": created})
}
