package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftops/internal/services"
)

type CompletionHandler struct {
	completions services.CompletionService
}

func NewCompletionHandler(completions services.CompletionService) *CompletionHandler {
	return &CompletionHandler{completions: completions}
}

// PUT /completions/:id applies a manager correction of the notes, audited.
func (h *CompletionHandler) Edit(c *gin.Context) {
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
		Notes string `json:"notes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	completion, edit, err := h.completions.EditCompletion(c.Request.Context(), id, actor, req.Notes)
	if err != nil {
		writeError(c, "completion", "edit", err)
		return
	}
	log.Printf("[completion][edit][ok] completion=%d by=%d", id, actor.ID)
	c.JSON(http.StatusOK, gin.H{"completion": completion, "edit": edit})
}

// GET /completions/:id/history
func (h *CompletionHandler) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	edits, err := h.completions.ListEdits(c.Request.Context(), id)
	if err != nil {
		writeError(c, "completion", "history", err)
		return
	}
	c.JSON(http.StatusOK, edits)
}
