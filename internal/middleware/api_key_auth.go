package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"thermotrack/internal/service"
	"thermotrack/pkg/utils"
)

// ContextAPIKeyRoomID holds the room a validated API key belongs to
const ContextAPIKeyRoomID = "room_id"

// APIKeyAuthMiddleware validates sensor gateway API keys
func APIKeyAuthMiddleware(keys *service.DeviceAPIKeyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract API key from X-API-Key header
		apiKey := strings.TrimSpace(c.GetHeader("X-API-Key"))
		if apiKey == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "API key is required in X-API-Key header")
			c.Abort()
			return
		}

		roomID, err := strconv.ParseUint(c.Param("room_id"), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid room_id format")
			c.Abort()
			return
		}

		if err := keys.ValidateAPIKey(c.Request.Context(), apiKey, uint(roomID)); err != nil {
			utils.ErrorFromApp(c, err)
			c.Abort()
			return
		}

		// Set room_id in context for use by handlers
		c.Set(ContextAPIKeyRoomID, uint(roomID))

		c.Next()
	}
}
