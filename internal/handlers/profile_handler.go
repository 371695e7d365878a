package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftops/internal/models"
	"shiftops/internal/services"
)

type ProfileHandler struct {
	service services.ProfileService
}

func NewProfileHandler(service services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GET /profiles
func (h *ProfileHandler) List(c *gin.Context) {
	var filter models.ProfileFilter
	if v, ok := c.GetQuery("role"); ok {
		role := models.Role(v)
		filter.Role = &role
	}
	filter.IncludeArchived = c.Query("include_archived") == "true"

	profiles, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, "profile", "list", err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// GET /profiles/me
func (h *ProfileHandler) Me(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	profile, err := h.service.GetByID(c.Request.Context(), actor.ID)
	if err != nil {
		writeError(c, "profile", "me", err)
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found", "code": "profile_not_found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GET /profiles/:id
func (h *ProfileHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	profile, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, "profile", "get", err)
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found", "code": "profile_not_found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PUT /profiles/:id
func (h *ProfileHandler) Update(c *gin.Context) {
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
		DisplayName    string      `json:"display_name"`
		Email          string      `json:"email"`
		Role           models.Role `json:"role"`
		TelegramChatID int64       `json:"telegram_chat_id"`
		NotifyTelegram bool        `json:"notify_telegram"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), actor, id, &models.Profile{
		DisplayName:    req.DisplayName,
		Email:          req.Email,
		Role:           req.Role,
		TelegramChatID: req.TelegramChatID,
		NotifyTelegram: req.NotifyTelegram,
	})
	if err != nil {
		writeError(c, "profile", "update", err)
		return
	}
	log.Printf("[profile][update][ok] id=%d by=%d", id, actor.ID)
	c.JSON(http.StatusOK, updated)
}

// POST /profiles/:id/archive
func (h *ProfileHandler) Archive(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no session"})
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Archive(c.Request.Context(), actor, id); err != nil {
		writeError(c, "profile", "archive", err)
		return
	}
	log.Printf("[profile][archive][ok] id=%d by=%d", id, actor.ID)
	c.Status(http.StatusNoContent)
}
