package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"thermotrack/internal/models"
	apperrors "thermotrack/pkg/errors"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepo(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// CreateRequest stores a new room condition request
func (r *RequestRepository) CreateRequest(ctx context.Context, req *models.RoomConditionRequest) error {
	return translate(r.db.WithContext(ctx).Create(req).Error, "request")
}

// GetRequestByID retrieves a request by ID
func (r *RequestRepository) GetRequestByID(ctx context.Context, id uint) (*models.RoomConditionRequest, error) {
	var req models.RoomConditionRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, translate(err, "request")
	}
	return &req, nil
}

// UpdateStatus moves a request from status from to status to, replacing the
// estimated completion when given. The write only applies while the row
// still holds from; a concurrent change makes it a conflict.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id uint, from, to models.RequestStatus, eta *time.Time) error {
	updates := map[string]interface{}{"status": to}
	if eta != nil {
		updates["estimated_completion"] = eta.UTC()
	}
	result := r.db.WithContext(ctx).Model(&models.RoomConditionRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return translate(result.Error, "request")
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("request %d is no longer %s", id, from))
	}
	return nil
}

// SetEstimatedCompletion replaces the estimated completion of a request
// that is still in status
func (r *RequestRepository) SetEstimatedCompletion(ctx context.Context, id uint, status models.RequestStatus, eta time.Time) error {
	var count int64
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.RoomConditionRequest{}).
		Where("id = ? AND status = ?", id, status).
		Count(&count).Error; err != nil {
		return translate(err, "request")
	}
	if count == 0 {
		return apperrors.NewConflictError(fmt.Sprintf("request %d is no longer %s", id, status))
	}
	return translate(db.Model(&models.RoomConditionRequest{}).
		Where("id = ? AND status = ?", id, status).
		Update("estimated_completion", eta.UTC()).Error, "request")
}

// GetRequestsByUserID lists a user's own requests, newest first
func (r *RequestRepository) GetRequestsByUserID(ctx context.Context, userID uint) ([]models.RoomConditionRequest, error) {
	var reqs []models.RoomConditionRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	return reqs, translate(err, "request")
}

// GetRequests lists every request, optionally filtered by status, newest first
func (r *RequestRepository) GetRequests(ctx context.Context, status *models.RequestStatus) ([]models.RoomConditionRequest, error) {
	var reqs []models.RoomConditionRequest
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Find(&reqs).Error
	return reqs, translate(err, "request")
}

// GetPendingRequests lists pending requests oldest first with room and requester loaded
func (r *RequestRepository) GetPendingRequests(ctx context.Context) ([]models.RoomConditionRequest, error) {
	var reqs []models.RoomConditionRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Preload("Room").
		Preload("User").
		Order("created_at ASC, id ASC").
		Find(&reqs).Error
	return reqs, translate(err, "request")
}
