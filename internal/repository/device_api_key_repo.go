package repository

import (
	"context"

	"gorm.io/gorm"

	"thermotrack/internal/models"
)

type DeviceAPIKeyRepository struct {
	db *gorm.DB
}

func NewDeviceAPIKeyRepo(db *gorm.DB) *DeviceAPIKeyRepository {
	return &DeviceAPIKeyRepository{db: db}
}

// CreateAPIKey creates a new API key for a room
func (r *DeviceAPIKeyRepository) CreateAPIKey(ctx context.Context, key *models.DeviceAPIKey) error {
	return translate(r.db.WithContext(ctx).Create(key).Error, "API key")
}

// GetAPIKeysByRoomID retrieves all API keys for a specific room, newest first
func (r *DeviceAPIKeyRepository) GetAPIKeysByRoomID(ctx context.Context, roomID uint) ([]models.DeviceAPIKey, error) {
	var keys []models.DeviceAPIKey
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Find(&keys).Error
	return keys, translate(err, "API key")
}

// GetActiveAPIKeysByRoomID retrieves the keys still flagged active for a room
func (r *DeviceAPIKeyRepository) GetActiveAPIKeysByRoomID(ctx context.Context, roomID uint) ([]models.DeviceAPIKey, error) {
	var keys []models.DeviceAPIKey
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Find(&keys).Error
	return keys, translate(err, "API key")
}

// GetAPIKeyByID retrieves an API key by its ID
func (r *DeviceAPIKeyRepository) GetAPIKeyByID(ctx context.Context, keyID uint) (*models.DeviceAPIKey, error) {
	var key models.DeviceAPIKey
	if err := r.db.WithContext(ctx).First(&key, keyID).Error; err != nil {
		return nil, translate(err, "API key")
	}
	return &key, nil
}

// RevokeAPIKey deactivates an API key; revoking twice is harmless
func (r *DeviceAPIKeyRepository) RevokeAPIKey(ctx context.Context, keyID uint) error {
	return translate(r.db.WithContext(ctx).Model(&models.DeviceAPIKey{}).
		Where("id = ?", keyID).
		Update("is_active", false).Error, "API key")
}
