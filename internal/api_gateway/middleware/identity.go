package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fundflow-lending-core/internal/domain/shared"
)

const (
	// UserIDHeader carries the caller's ID, set by the upstream gateway
	UserIDHeader = "X-User-ID"

	// UserRoleHeader carries the caller's role, set by the upstream gateway
	UserRoleHeader = "X-User-Role"

	// UserIDKey is the key used to store the caller ID in the context
	UserIDKey = "user_id"

	// UserRoleKey is the key used to store the caller role in the context
	UserRoleKey = "user_role"
)

// Identity middleware parses the caller identity headers forwarded by the
// upstream gateway. Requests without a valid UUID and known role are rejected;
// authentication itself happens upstream.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetHeader(UserIDHeader))
		if err != nil {
			abortUnauthorized(c, "Missing or invalid "+UserIDHeader+" header")
			return
		}

		role, err := shared.ParseRole(c.GetHeader(UserRoleHeader))
		if err != nil {
			abortUnauthorized(c, "Missing or invalid "+UserRoleHeader+" header")
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UserRoleKey, role)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
		"correlation_id": GetCorrelationID(c),
	})
}

// GetUserID retrieves the caller ID from the gin context if present
func GetUserID(c *gin.Context) uuid.UUID {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// GetUserRole retrieves the caller role from the gin context if present
func GetUserRole(c *gin.Context) shared.Role {
	if v, exists := c.Get(UserRoleKey); exists {
		if role, ok := v.(shared.Role); ok {
			return role
		}
	}
	return ""
}
