package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"badgeforge-backend/pkg/jwt"
)

// Context keys set by AuthMiddleware and read by handlers.
const (
	CtxUserID        = "userID"
	CtxUserEmail     = "userEmail"
	CtxEmailVerified = "emailVerified"
)

// AuthMiddleware validates the bearer token and stores the caller
// identity in the request context.
func AuthMiddleware(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := manager.ValidateAccessToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user ID in token"})
			c.Abort()
			return
		}

		c.Set(CtxUserID, userID)
		c.Set(CtxUserEmail, claims.Email)
		c.Set(CtxEmailVerified, claims.EmailVerified)

		c.Next()
	}
}

// RequireVerifiedEmail rejects callers whose email is not verified.
// Every issuer-scoped endpoint sits behind this check.
func RequireVerifiedEmail() gin.HandlerFunc {
	return func(c *gin.Context) {
		verified, exists := c.Get(CtxEmailVerified)
		if !exists || verified != true {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "a verified email address is required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// UserIDFromContext returns the authenticated caller's ID.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(CtxUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
