package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"thermotrack/internal/models"
	"thermotrack/internal/service"
	"thermotrack/pkg/utils"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID = "userID"
	ContextRole   = "role"
)

// AuthMiddleware validates JWT access token from Authorization header
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		// Check Bearer prefix
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>")
			c.Abort()
			return
		}

		claims, err := utils.ValidateAccessToken(parts[1])
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		// Inject claims into context
		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, models.Role(claims.Role))

		c.Next()
	}
}

// ActorFrom returns the authenticated caller stored by AuthMiddleware
func ActorFrom(c *gin.Context) (service.Actor, bool) {
	userID, ok := c.Get(ContextUserID)
	if !ok {
		return service.Actor{}, false
	}
	role, ok := c.Get(ContextRole)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID.(uint), Role: role.(models.Role)}, true
}

// RequireRole lets the request through only for one of roles
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient role for this operation")
		c.Abort()
	}
}

// RequireAdmin checks if the authenticated user has admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// RequireElevated admits the roles configured to see every room
func RequireElevated(access *service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		if !access.IsElevated(actor.Role) {
			utils.ErrorResponse(c, http.StatusForbidden, "Administrator or technician access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
