package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shiftops/internal/models"
	"shiftops/internal/services"
)

type AnnouncementHandler struct {
	announcements services.AnnouncementService
}

func NewAnnouncementHandler(announcements services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

// POST /announcements
func (h *AnnouncementHandler) Post(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}

	var req struct {
		Title     string     `json:"title" binding:"required"`
		Body      string     `json:"body"`
		Audience  string     `json:"audience"`
		ExpiresAt *time.Time `json:"expires_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	announcement := &models.Announcement{
		Title:     req.Title,
		Body:      req.Body,
		Audience:  models.Role(req.Audience),
		ExpiresAt: req.ExpiresAt,
	}
	created, err := h.announcements.Post(c.Request.Context(), actor, announcement)
	if err != nil {
		writeError(c, "announcement", "post", err)
		return
	}
	log.Printf("[announcement][post][ok] id=%d by=%d audience=%q", created.ID, actor.ID, created.Audience)
	c.JSON(http.StatusCreated, created)
}

// GET /announcements lists active ones addressed to the caller's role.
func (h *AnnouncementHandler) List(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	announcements, err := h.announcements.ListActiveFor(c.Request.Context(), actor)
	if err != nil {
		writeError(c, "announcement", "list", err)
		return
	}
	c.JSON(http.StatusOK, announcements)
}

// POST /announcements/:id/read
func (h *AnnouncementHandler) MarkRead(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.announcements.MarkRead(c.Request.Context(), actor, id); err != nil {
		writeError(c, "announcement", "mark-read", err)
		return
	}
	c.Status(http.StatusNoContent)
}
