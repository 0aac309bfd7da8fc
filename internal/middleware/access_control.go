package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"thermotrack/internal/models"
	"thermotrack/internal/service"
	"thermotrack/pkg/utils"
)

// ContextRoom holds the *models.Room loaded by CheckRoomAccess
const ContextRoom = "room"

// AccessControlMiddleware provides room access control
type AccessControlMiddleware struct {
	access *service.AccessService
}

// NewAccessControlMiddleware creates a new access control middleware
func NewAccessControlMiddleware(access *service.AccessService) *AccessControlMiddleware {
	return &AccessControlMiddleware{access: access}
}

// CheckRoomAccess verifies user has access to the room specified in the path
// Expected path parameter: :room_id
func (m *AccessControlMiddleware) CheckRoomAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
			c.Abort()
			return
		}

		roomID, err := strconv.ParseUint(c.Param("room_id"), 10, 32)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid room ID")
			c.Abort()
			return
		}

		room, err := m.access.AuthorizeRoom(c.Request.Context(), actor, uint(roomID))
		if err != nil {
			utils.ErrorFromApp(c, err)
			c.Abort()
			return
		}

		c.Set(ContextRoom, room)
		c.Next()
	}
}

// RoomFrom returns the room loaded by CheckRoomAccess
func RoomFrom(c *gin.Context) (*models.Room, bool) {
	v, ok := c.Get(ContextRoom)
	if !ok {
		return nil, false
	}
	room, ok := v.(*models.Room)
	return room, ok
}
