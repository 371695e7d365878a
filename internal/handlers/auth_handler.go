package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"shiftops/internal/middleware"
	"shiftops/internal/models"
	"shiftops/internal/repositories"
	"shiftops/internal/services"
	"shiftops/internal/utils"
)

type AuthHandler struct {
	profiles    services.ProfileService
	authService services.AuthService
	profileRepo repositories.ProfileRepository

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthHandler(
	profiles services.ProfileService,
	authService services.AuthService,
	profileRepo repositories.ProfileRepository,
	accessTTL, refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		profiles:    profiles,
		authService: authService,
		profileRepo: profileRepo,
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
	}
}

func (h *AuthHandler) issueAccessToken(p *models.Profile) (string, error) {
	claims := &middleware.Claims{
		UserID: p.ID,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.accessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(middleware.JWTKey())
}

// @Summary      Sign in
// @Description  Authenticates a profile and returns access and refresh tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)
	log.Printf("[auth][login] attempt email=%q", email)

	profile, err := h.profiles.GetByEmail(c.Request.Context(), email)
	if err != nil || profile == nil {
		log.Printf("[auth][login] no profile for email=%q err=%v", email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if profile.ArchivedAt != nil {
		log.Printf("[auth][login][deny] archived profile id=%d", profile.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := h.authService.ComparePassword(profile.PasswordHash, strings.TrimSpace(req.Password)); err != nil {
		log.Printf("[auth][login] password mismatch for id=%d", profile.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	accessToken, err := h.issueAccessToken(profile)
	if err != nil {
		log.Printf("[auth][login][err] sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	refreshToken, err := utils.NewRefreshToken(0)
	if err != nil {
		log.Printf("[auth][login][err] refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	refreshExpiry := time.Now().Add(h.refreshTTL)
	if err := h.profileRepo.UpdateRefreshToken(c.Request.Context(), profile.ID, &refreshToken, &refreshExpiry, false); err != nil {
		log.Printf("[auth][login][err] store refresh token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	log.Printf("[auth][login][ok] id=%d role=%s", profile.ID, profile.Role)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"profile":       profile,
	})
}

// @Summary      Refresh tokens
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.profileRepo.FindByRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		log.Printf("[auth][refresh][err] lookup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if profile == nil || profile.RefreshExpiresAt == nil || profile.RefreshExpiresAt.Before(time.Now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired refresh token"})
		return
	}

	accessToken, err := h.issueAccessToken(profile)
	if err != nil {
		log.Printf("[auth][refresh][err] sign access token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	// rotate the refresh token on every use
	newRefresh, err := utils.NewRefreshToken(0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	refreshExpiry := time.Now().Add(h.refreshTTL)
	if err := h.profileRepo.UpdateRefreshToken(c.Request.Context(), profile.ID, &newRefresh, &refreshExpiry, false); err != nil {
		log.Printf("[auth][refresh][err] rotate: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": newRefresh,
	})
}

// @Summary      Register a profile
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Profile
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		DisplayName string      `json:"display_name" binding:"required"`
		Email       string      `json:"email" binding:"required,email"`
		Password    string      `json:"password" binding:"required"`
		Role        models.Role `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][register][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := &models.Profile{
		DisplayName: req.DisplayName,
		Email:       strings.TrimSpace(req.Email),
		Role:        req.Role,
	}
	if err := h.profiles.Register(c.Request.Context(), profile, req.Password); err != nil {
		writeError(c, "auth", "register", err)
		return
	}
	log.Printf("[auth][register][ok] id=%d email=%q", profile.ID, profile.Email)
	c.JSON(http.StatusCreated, profile)
}
