package auth

import (
	"net/http"
	"strings"

	"driver-rewards/internal/logger"
	"driver-rewards/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CookieName is the name of the httpOnly cookie carrying the token
var CookieName = "gdip_token"

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// tokenFromRequest reads the auth cookie, falling back to a Bearer header
func tokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(CookieName); err == nil && token != "" {
		return token
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// RequireRole validates the token and rejects callers whose role claim differs from role
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		claims, err := ValidateToken(tokenString)
		if err != nil {
			logger.Log.Debug("Token validation failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Wrong role for this service"})
			return
		}

		userID, _ := claims.UserID()
		c.Set(ctxUserID, userID)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// RequireCapability rejects callers whose authenticated role is not granted capability.
// It runs after RequireRole.
func RequireCapability(capability Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetRole(c)
		if !ok || !Can(role, capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not allowed for this role"})
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(ctxUserID)
	if !exists {
		return 0, false
	}

	id, ok := userID.(uint)
	return id, ok
}

// GetRole retrieves the authenticated role from the context
func GetRole(c *gin.Context) (models.Role, bool) {
	role, exists := c.Get(ctxRole)
	if !exists {
		return "", false
	}

	r, ok := role.(models.Role)
	return r, ok
}
