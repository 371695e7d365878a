package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftops/internal/models"
	"shiftops/internal/repositories"
	"shiftops/internal/services"
)

type TransferHandler struct {
	transfers   services.TransferService
	profiles    services.ProfileService
	workflows   services.WorkflowService
	assignments repositories.AssignmentRepository
	email       services.EmailService
	telegram    *services.TelegramService
}

func NewTransferHandler(
	transfers services.TransferService,
	profiles services.ProfileService,
	workflows services.WorkflowService,
	assignments repositories.AssignmentRepository,
	email services.EmailService,
	telegram *services.TelegramService,
) *TransferHandler {
	return &TransferHandler{
		transfers:   transfers,
		profiles:    profiles,
		workflows:   workflows,
		assignments: assignments,
		email:       email,
		telegram:    telegram,
	}
}

// POST /assignments/:id/transfer
func (h *TransferHandler) Request(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	assignmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ToUserID int64  `json:"to_user_id" binding:"required"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transfer, err := h.transfers.Request(c.Request.Context(), assignmentID, actor, req.ToUserID, req.Reason)
	if err != nil {
		writeError(c, "transfer", "request", err)
		return
	}
	log.Printf("[transfer][request][ok] transfer=%d assignment=%d from=%d to=%d",
		transfer.ID, assignmentID, actor.ID, req.ToUserID)

	go h.notifyRequested(transfer)

	c.JSON(http.StatusCreated, transfer)
}

// GET /transfers returns the caller's view: own requests, plus the pending
// manager queue when the caller can approve.
func (h *TransferHandler) List(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	transfers, err := h.transfers.ListFor(c.Request.Context(), actor)
	if err != nil {
		writeError(c, "transfer", "list", err)
		return
	}
	c.JSON(http.StatusOK, transfers)
}

// GET /transfers/:id
func (h *TransferHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	transfer, err := h.transfers.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, "transfer", "get", err)
		return
	}
	if transfer == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transfer not found", "code": "transfer_not_found"})
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// POST /transfers/:id/transferee-response
func (h *TransferHandler) TransfereeResponse(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Approve  *bool  `json:"approve" binding:"required"`
		Response string `json:"response"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transfer, err := h.transfers.RespondAsTransferee(c.Request.Context(), id, actor, *req.Approve, req.Response)
	if err != nil {
		writeError(c, "transfer", "transferee-response", err)
		return
	}
	log.Printf("[transfer][transferee-response][ok] transfer=%d by=%d status=%s", id, actor.ID, transfer.Status)

	if transfer.Status == models.TransferRejected {
		go h.notifyResolved(transfer, "declined by the transferee")
	}
	c.JSON(http.StatusOK, transfer)
}

// POST /transfers/:id/manager-response
func (h *TransferHandler) ManagerResponse(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Approve  *bool  `json:"approve" binding:"required"`
		Response string `json:"response"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transfer, err := h.transfers.RespondAsManager(c.Request.Context(), id, actor, *req.Approve, req.Response)
	if err != nil {
		writeError(c, "transfer", "manager-response", err)
		return
	}
	log.Printf("[transfer][manager-response][ok] transfer=%d by=%d status=%s", id, actor.ID, transfer.Status)

	outcome := "approved"
	if transfer.Status == models.TransferRejected {
		outcome = "rejected by a manager"
	}
	go h.notifyResolved(transfer, outcome)

	c.JSON(http.StatusOK, transfer)
}

// workflowNameFor resolves the workflow behind the transfer's assignment,
// for notification text only.
func (h *TransferHandler) workflowNameFor(ctx context.Context, transfer *models.TaskTransfer) string {
	assignment, err := h.assignments.FindByID(ctx, transfer.AssignmentID)
	if err != nil || assignment == nil {
		return "a workflow"
	}
	workflow, err := h.workflows.GetByID(ctx, assignment.WorkflowID)
	if err != nil || workflow == nil {
		return "a workflow"
	}
	return workflow.Name
}

// Notifications are best effort: a failed email or telegram send never
// affects the API response.
func (h *TransferHandler) notifyRequested(transfer *models.TaskTransfer) {
	ctx := context.Background()
	to, err := h.profiles.GetByID(ctx, transfer.ToUserID)
	if err != nil || to == nil {
		log.Printf("[transfer][notify][warn] transferee %d lookup failed: %v", transfer.ToUserID, err)
		return
	}
	from, err := h.profiles.GetByID(ctx, transfer.FromUserID)
	if err != nil || from == nil {
		log.Printf("[transfer][notify][warn] requester %d lookup failed: %v", transfer.FromUserID, err)
		return
	}
	workflowName := h.workflowNameFor(ctx, transfer)

	if err := h.email.SendTransferRequestedEmail(to.Email, from.DisplayName, workflowName); err != nil {
		log.Printf("[transfer][notify][warn] email to %s failed: %v", to.Email, err)
	}
	if h.telegram != nil && to.NotifyTelegram && to.TelegramChatID != 0 {
		text := fmt.Sprintf("<b>%s</b> asked you to take over <b>%s</b>.", from.DisplayName, workflowName)
		if err := h.telegram.SendMessage(to.TelegramChatID, text); err != nil {
			log.Printf("[transfer][notify][warn] telegram to chat %d failed: %v", to.TelegramChatID, err)
		}
	}
}

func (h *TransferHandler) notifyResolved(transfer *models.TaskTransfer, outcome string) {
	ctx := context.Background()
	workflowName := h.workflowNameFor(ctx, transfer)

	for _, userID := range []int64{transfer.FromUserID, transfer.ToUserID} {
		p, err := h.profiles.GetByID(ctx, userID)
		if err != nil || p == nil {
			log.Printf("[transfer][notify][warn] profile %d lookup failed: %v", userID, err)
			continue
		}
		if err := h.email.SendTransferResolvedEmail(p.Email, workflowName, outcome); err != nil {
			log.Printf("[transfer][notify][warn] email to %s failed: %v", p.Email, err)
		}
		if h.telegram != nil && p.NotifyTelegram && p.TelegramChatID != 0 {
			text := fmt.Sprintf("Transfer for <b>%s</b>: %s.", workflowName, outcome)
			if err := h.telegram.SendMessage(p.TelegramChatID, text); err != nil {
				log.Printf("[transfer][notify][warn] telegram to chat %d failed: %v", p.TelegramChatID, err)
			}
		}
	}
}
