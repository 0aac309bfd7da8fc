package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"thermotrack/internal/models"
	"thermotrack/internal/repository"
	apperrors "thermotrack/pkg/errors"
)

type DeviceAPIKeyService struct {
	repos  *repository.Repositories
	access *AccessService
	// cost is lowered in tests
	cost int
}

func NewDeviceAPIKeyService(repos *repository.Repositories, access *AccessService) *DeviceAPIKeyService {
	return &DeviceAPIKeyService{
		repos:  repos,
		access: access,
		cost:   bcrypt.DefaultCost,
	}
}

// APIKeyInput describes a key to generate
type APIKeyInput struct {
	Description string `json:"description" validate:"max=255"`
	// ExpiresInHours of zero means the key never expires
	ExpiresInHours int `json:"expires_in_hours" validate:"gte=0"`
}

// GenerateAPIKey creates a key for a room the actor manages.
// The plain-text key is only returned here; storage keeps a bcrypt hash.
func (s *DeviceAPIKeyService) GenerateAPIKey(ctx context.Context, actor Actor, roomID uint, in APIKeyInput) (*models.DeviceAPIKeyResponse, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.access.AuthorizeRoomManagement(ctx, actor, roomID); err != nil {
		return nil, err
	}

	// Generate a random 32-byte key
	keyBytes := make([]byte, 32)
	if _, err := rand.Read(keyBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}
	plainKey := base64.URLEncoding.EncodeToString(keyBytes)

	hashedKey, err := bcrypt.GenerateFromPassword([]byte(plainKey), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash API key: %w", err)
	}

	apiKey := &models.DeviceAPIKey{
		RoomID:      roomID,
		APIKeyHash:  string(hashedKey),
		IsActive:    true,
		Description: in.Description,
	}
	if in.ExpiresInHours > 0 {
		expiresAt := time.Now().UTC().Add(time.Duration(in.ExpiresInHours) * time.Hour)
		apiKey.ExpiresAt = &expiresAt
	}

	err = s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.APIKeys.CreateAPIKey(ctx, apiKey); err != nil {
			return err
		}
		details := fmt.Sprintf("Generated API key for room_id: %d, description: %s", roomID, in.Description)
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "api_key_generate", details)
	})
	if err != nil {
		return nil, err
	}

	resp := toAPIKeyResponse(apiKey)
	resp.APIKey = plainKey
	return &resp, nil
}

// ListAPIKeys lists a room's keys without their secrets
func (s *DeviceAPIKeyService) ListAPIKeys(ctx context.Context, actor Actor, roomID uint) ([]models.DeviceAPIKeyResponse, error) {
	if _, err := s.access.AuthorizeRoomManagement(ctx, actor, roomID); err != nil {
		return nil, err
	}

	keys, err := s.repos.APIKeys.GetAPIKeysByRoomID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.DeviceAPIKeyResponse, len(keys))
	for i := range keys {
		responses[i] = toAPIKeyResponse(&keys[i])
	}
	return responses, nil
}

// RevokeAPIKey deactivates a key of a room the actor manages
func (s *DeviceAPIKeyService) RevokeAPIKey(ctx context.Context, actor Actor, keyID uint) error {
	key, err := s.repos.APIKeys.GetAPIKeyByID(ctx, keyID)
	if err != nil {
		if apperrors.IsNotFoundError(err) && !s.access.IsElevated(actor.Role) {
			return apperrors.NewForbiddenError("you do not have access to this API key")
		}
		return err
	}
	if _, err := s.access.AuthorizeRoomManagement(ctx, actor, key.RoomID); err != nil {
		return err
	}

	return s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.APIKeys.RevokeAPIKey(ctx, keyID); err != nil {
			return err
		}
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "api_key_revoke", fmt.Sprintf("Revoked API key %d for room_id: %d", keyID, key.RoomID))
	})
}

// ValidateAPIKey reports whether plainKey is a usable key of the room
func (s *DeviceAPIKeyService) ValidateAPIKey(ctx context.Context, plainKey string, roomID uint) error {
	if plainKey == "" {
		return apperrors.NewUnauthorizedError("API key is required")
	}

	keys, err := s.repos.APIKeys.GetActiveAPIKeysByRoomID(ctx, roomID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for i := range keys {
		if !keys[i].Usable(now) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(keys[i].APIKeyHash), []byte(plainKey)) == nil {
			return nil
		}
	}
	return apperrors.NewUnauthorizedError("invalid or expired API key")
}

func toAPIKeyResponse(key *models.DeviceAPIKey) models.DeviceAPIKeyResponse {
	return models.DeviceAPIKeyResponse{
		ID:          key.ID,
		RoomID:      key.RoomID,
		CreatedAt:   key.CreatedAt,
		ExpiresAt:   key.ExpiresAt,
		IsActive:    key.IsActive,
		Description: key.Description,
	}
}
