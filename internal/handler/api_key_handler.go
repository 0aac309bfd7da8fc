package handler

import (
	"github.com/gin-gonic/gin"

	"thermotrack/internal/service"
	"thermotrack/pkg/utils"
)

type APIKeyHandler struct {
	apiKeyService *service.DeviceAPIKeyService
}

func NewAPIKeyHandler(apiKeyService *service.DeviceAPIKeyService) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService: apiKeyService,
	}
}

// GenerateAPIKey creates a gateway key for a room. The plain key is only in this response.
func (h *APIKeyHandler) GenerateAPIKey(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}

	var req service.APIKeyInput
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	key, err := h.apiKeyService.GenerateAPIKey(c.Request.Context(), actor, roomID, req)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "API key generated successfully. Store it securely, it will not be shown again.",
		"api_key": key,
	})
}

// ListAPIKeys lists a room's keys without their secrets
func (h *APIKeyHandler) ListAPIKeys(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	roomID, ok := parseID(c, "room_id", "room")
	if !ok {
		return
	}

	keys, err := h.apiKeyService.ListAPIKeys(c.Request.Context(), actor, roomID)
	if err != nil {
		utils.ErrorFromApp(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"api_keys": keys,
		"count":    len(keys),
	})
}

// RevokeAPIKey deactivates a key
func (h *APIKeyHandler) RevokeAPIKey(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	keyID, ok := parseID(c, "id", "API key")
	if !ok {
		return
	}

	if err := h.apiKeyService.RevokeAPIKey(c.Request.Context(), actor, keyID); err != nil {
		utils.ErrorFromApp(c, err)
		return
	}
	utils.MessageResponse(c, "API key revoked successfully")
}
