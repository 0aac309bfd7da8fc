package handler

import (
	"github.com/gin-gonic/gin"

	"thermotrack/internal/middleware"
	"thermotrack/internal/service"
	"thermotrack/pkg/utils"
)

type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{
		roomService: roomService,
	}
}

// GrantRequest names the user a room is shared with
type GrantRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// GetAllRooms retrieves all rooms accessible by the user
func (h *RoomHandler) GetAllRooms(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	rooms, err := h.roomService.ListRooms(c.Request.Context(), actor)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"rooms": rooms,
		"count": len(rooms),
	})
}

// GetRoom retrieves a specific room by ID
func (h *RoomHandler) GetRoom(c *gin.Context) {
	if room, ok := middleware.RoomFrom(c); ok {
		utils.SuccessResponse(c, room)
		return
	}

	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}

	room, err := h.roomService.GetRoom(c.Request.Context(), actor, roomID)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}
	utils.SuccessResponse(c, room)
}

// CreateRoom creates a room owned by the caller
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req service.RoomInput
	if !bindJSON(c, &req) {
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), actor, req)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Room created successfully",
		"room":    room,
	})
}

// UpdateRoom updates an existing room (owner or elevated)
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}

	var req service.RoomInput
	if !bindJSON(c, &req) {
		return
	}

	room, err := h.roomService.UpdateRoom(c.Request.Context(), actor, roomID, req)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": "Room updated successfully",
		"room":    room,
	})
}

// DeleteRoom hard deletes a room with its devices, readings and grants
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}

	if err := h.roomService.DeleteRoom(c.Request.Context(), actor, roomID); err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.MessageResponse(c, "Room deleted successfully")
}

// GrantAccess shares a room with another user
func (h *RoomHandler) GrantAccess(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}

	var req GrantRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.roomService.GrantAccess(c.Request.Context(), actor, roomID, req.UserID); err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"room_id": roomID,
		"user_id": req.UserID,
	})
}

// RevokeAccess removes a user's grant on a room
func (h *RoomHandler) RevokeAccess(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}
	userID, ok := parseID(c, "user_id", "user")
	if !ok {
		return
	}

	if err := h.roomService.RevokeAccess(c.Request.Context(), actor, roomID, userID); err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.MessageResponse(c, "Access revoked successfully")
}
