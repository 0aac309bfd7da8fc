package repository

import (
	"context"

	"gorm.io/gorm"

	"thermotrack/internal/models"
)

type AlertRepository struct {
	db *gorm.DB
}

func NewAlertRepo(db *gorm.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// CreateAlert stores an alert
func (r *AlertRepository) CreateAlert(ctx context.Context, alert *models.Alert) error {
	return translate(r.db.WithContext(ctx).Create(alert).Error, "alert")
}

// GetAlertsByRoomID lists a room's alerts, newest first
func (r *AlertRepository) GetAlertsByRoomID(ctx context.Context, roomID uint, limit int) ([]models.Alert, error) {
	var alerts []models.Alert
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&alerts).Error
	return alerts, translate(err, "alert")
}
