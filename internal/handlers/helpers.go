package handlers

import (
	"log"
	"strconv"

	"github.com/gin-gonic/gin"

	"shiftops/internal/apperrors"
	"shiftops/internal/models"
)

func getInt64FromCtx(c *gin.Context, key string) (int64, bool) {
	v, ok := c.Get(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// getActor rebuilds the acting profile from the JWT claims the auth
// middleware pushed into the context. Services only need ID and Role.
func getActor(c *gin.Context) (*models.Profile, bool) {
	id, ok := getInt64FromCtx(c, "user_id")
	if !ok {
		return nil, false
	}
	role, _ := c.Get("role")
	roleStr, _ := role.(string)
	return &models.Profile{ID: id, Role: models.Role(roleStr)}, true
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	return id, err == nil
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid " + name, "code": "invalid_id"})
		return 0, false
	}
	return id, true
}

// writeError maps the taxonomy onto HTTP and keeps the machine code in the
// body alongside the human message.
func writeError(c *gin.Context, area, op string, err error) {
	ae := apperrors.From(err)
	if ae.Kind == apperrors.Internal {
		log.Printf("[%s][%s][err] %v", area, op, err)
		c.JSON(ae.HTTPStatus(), gin.H{"error": "internal error", "code": ae.Code})
		return
	}
	log.Printf("[%s][%s][deny] code=%s: %s", area, op, ae.Code, ae.Message)
	c.JSON(ae.HTTPStatus(), gin.H{"error": ae.Message, "code": ae.Code})
}
