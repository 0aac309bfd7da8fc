package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"thermotrack/internal/models"
)

// NotificationRepository never sees soft-deleted rows; gorm filters them
// through the DeletedAt column.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotifications stores a batch of notifications
func (r *NotificationRepository) CreateNotifications(ctx context.Context, notifications []models.UserNotification) error {
	if len(notifications) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&notifications).Error, "notification")
}

// GetNotificationsByUserID lists a user's notifications, newest first
func (r *NotificationRepository) GetNotificationsByUserID(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.UserNotification, error) {
	var notifications []models.UserNotification
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&notifications).Error
	return notifications, translate(err, "notification")
}

// UnreadCount counts unread, undeleted notifications of a user
func (r *NotificationRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, translate(err, "notification")
}

// MarkRead marks one of the user's notifications read. Marking it again is a no-op;
// a notification owned by someone else is not found.
func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID uint) error {
	var notification models.UserNotification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Take(&notification).Error
	if err != nil {
		return translate(err, "notification")
	}
	if notification.IsRead {
		return nil
	}

	return translate(r.db.WithContext(ctx).Model(&notification).Updates(map[string]interface{}{
		"is_read": true,
		"read_at": time.Now().UTC(),
	}).Error, "notification")
}

// MarkAllRead marks every unread notification of the user read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.UserNotification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now().UTC(),
		})
	return result.RowsAffected, translate(result.Error, "notification")
}

// SoftDelete hides one of the user's notifications from listings and counts
func (r *NotificationRepository) SoftDelete(ctx context.Context, userID, notificationID uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.UserNotification{})
	return affected(result, "notification")
}
