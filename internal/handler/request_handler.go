package handler

import (
	"github.com/gin-gonic/gin"

	"thermotrack/internal/models"
	"thermotrack/internal/service"
	"thermotrack/pkg/utils"
)

type RequestHandler struct {
	requestService      *service.RequestService
	notificationService *service.NotificationService
}

func NewRequestHandler(requestService *service.RequestService, notificationService *service.NotificationService) *RequestHandler {
	return &RequestHandler{
		requestService:      requestService,
		notificationService: notificationService,
	}
}

// CreateRequest files a room condition request
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req service.RequestInput
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.requestService.CreateRequest(c.Request.Context(), actor, req)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}
	utils.CreatedResponse(c, created)
}

// ListRequests lists the caller's requests, or every request for elevated roles.
// ?status= filters by status.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var status *models.RequestStatus
	if raw := c.Query("status"); raw != "" {
		s := models.RequestStatus(raw)
		status = &s
	}

	requests, err := h.requestService.ListRequests(c.Request.Context(), actor, status)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}

// UpdateStatus moves a request along the workflow (admin/technician)
func (h *RequestHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	requestID, ok := parseID(c, "id", "request")
	if !ok {
		return
	}

	var req service.StatusUpdate
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.requestService.UpdateRequestStatus(c.Request.Context(), actor, requestID, req)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}
	utils.SuccessResponse(c, updated)
}

// Pending is the admin/technician feed of requests awaiting attention
func (h *RequestHandler) Pending(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	requests, err := h.notificationService.PendingFeed(c.Request.Context(), actor)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"requests": requests,
		"count":    len(requests),
	})
}
