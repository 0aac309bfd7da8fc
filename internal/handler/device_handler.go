package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"thermotrack/internal/models"
	"thermotrack/internal/service"
	"thermotrack/pkg/utils"
)

type DeviceHandler struct {
	deviceService  *service.DeviceService
	readingService *service.ReadingService
}

func NewDeviceHandler(deviceService *service.DeviceService, readingService *service.ReadingService) *DeviceHandler {
	return &DeviceHandler{
		deviceService:  deviceService,
		readingService: readingService,
	}
}

// StatusRequest switches a device between active and inactive
type StatusRequest struct {
	Status models.DeviceStatus `json:"status" binding:"required"`
}

// ListDevices lists the devices installed in a room
func (h *DeviceHandler) ListDevices(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}

	devices, err := h.deviceService.ListDevices(c.Request.Context(), actor, roomID)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"devices": devices,
		"count":   len(devices),
	})
}

// RegisterDevice adds a device to a room
func (h *DeviceHandler) RegisterDevice(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}

	var req service.DeviceInput
	if !bindJSON(c, &req) {
		return
	}

	device, err := h.deviceService.RegisterDevice(c.Request.Context(), actor, roomID, req)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}
	utils.CreatedResponse(c, device)
}

// UpdateStatus activates or deactivates a device
func (h *DeviceHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	deviceID, ok := parseID(c, "id", "device")
	if !ok {
		return
	}

	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	device, err := h.deviceService.UpdateStatus(c.Request.Context(), actor, deviceID, req.Status)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}
	utils.SuccessResponse(c, device)
}

// DeleteDevice removes a device with its readings and alerts
func (h *DeviceHandler) DeleteDevice(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	deviceID, ok := parseID(c, "id", "device")
	if !ok {
		return
	}

	if err := h.deviceService.DeleteDevice(c.Request.Context(), actor, deviceID); err != nil {
		utils.ErrorFromApp(c, err)
		return
	}
	utils.MessageResponse(c, "Device deleted successfully")
}

// LatestReading returns the newest reading of a device; data is null when it never reported
func (h *DeviceHandler) LatestReading(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	deviceID, ok := parseID(c, "id", "device")
	if !ok {
		return
	}

	reading, err := h.readingService.LatestReading(c.Request.Context(), actor, deviceID)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}
	utils.SuccessResponse(c, reading)
}

// ReadingHistory lists a device's readings since ?since= (RFC 3339, default 24h ago)
func (h *DeviceHandler) ReadingHistory(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	deviceID, ok := parseID(c, "id", "device")
	if !ok {
		return
	}

	since := time.Now().Add(-24 * time.Hour)
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			utils.ErrorResponse(c, http.StatusBadRequest, "Invalid since parameter, expected RFC 3339")
			return
		}
		since = parsed
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	readings, err := h.readingService.ReadingHistory(c.Request.Context(), actor, deviceID, since, limit)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"readings": readings,
		"count":    len(readings),
	})
}
