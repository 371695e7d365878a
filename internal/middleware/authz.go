package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shiftops/internal/authz"
	"shiftops/internal/models"
)

// RequireCapability rejects requests whose authenticated role does not grant
// the capability. Handlers behind it can assume the permission holds.
func RequireCapability(cap authz.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no role in context"})
			return
		}
		role, _ := v.(string)
		if !authz.Has(models.Role(role), cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "code": "forbidden"})
			return
		}
		c.Next()
	}
}
