package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"thermotrack/internal/metrics"
	"thermotrack/internal/middleware"
	"thermotrack/internal/service"
	apperrors "thermotrack/pkg/errors"
	"thermotrack/pkg/utils"
)

type ReadingHandler struct {
	readingService *service.ReadingService
}

func NewReadingHandler(readingService *service.ReadingService) *ReadingHandler {
	return &ReadingHandler{
		readingService: readingService,
	}
}

// RoomLatest returns the newest reading of every device in a room that has reported
func (h *ReadingHandler) RoomLatest(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}

	latest, err := h.readingService.LatestReadingsForRoom(c.Request.Context(), actor, roomID)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"room_id":  roomID,
		"readings": latest,
	})
}

// RoomAlerts lists a room's alerts, newest first
func (h *ReadingHandler) RoomAlerts(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	alerts, err := h.readingService.ListAlerts(c.Request.Context(), actor, roomID, limit)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// Ingest stores a sensor event pushed by a room gateway
// POST /api/v1/ingest/rooms/:room_id/readings
func (h *ReadingHandler) Ingest(c *gin.Context) {
	// Get room_id from context (set by API key middleware)
	roomID, exists := c.Get(middleware.ContextAPIKeyRoomID)
	if !exists {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Room ID not found in context")
		return
	}

	var event service.SensorEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		metrics.ReadingsIngestedTotal.WithLabelValues("http", "rejected").Inc()
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.readingService.IngestForRoom(c.Request.Context(), roomID.(uint), event)
	if err != nil {
		outcome := "error"
		if apperrors.IsValidationError(err) || apperrors.IsNotFoundError(err) || apperrors.IsForbiddenError(err) {
			outcome = "rejected"
		}
		metrics.ReadingsIngestedTotal.WithLabelValues("http", outcome).Inc()
		utils.ErrorFromApp(c, err)
		return
	}

	metrics.ReadingsIngestedTotal.WithLabelValues("http", "ok").Inc()
	utils.CreatedResponse(c, result)
}
