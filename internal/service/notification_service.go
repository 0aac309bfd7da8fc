package service

import (
	"context"
	"fmt"

	"thermotrack/internal/metrics"
	"thermotrack/internal/models"
	"thermotrack/internal/repository"
	apperrors "thermotrack/pkg/errors"
)

const defaultNotificationLimit = 50

type NotificationService struct {
	repos  *repository.Repositories
	access *AccessService
}

func NewNotificationService(repos *repository.Repositories, access *AccessService) *NotificationService {
	return &NotificationService{
		repos:  repos,
		access: access,
	}
}

// NotifyOnRequestChange addresses one notification to the requester for the
// request's current status. tx is the transaction that changed the status.
func NotifyOnRequestChange(ctx context.Context, tx *repository.Repositories, req *models.RoomConditionRequest) error {
	verb := string(req.Status)
	if req.Status == models.StatusPending {
		verb = "submitted"
	}

	requestID := req.ID
	notification := models.UserNotification{
		UserID:    req.UserID,
		RequestID: &requestID,
		Title:     fmt.Sprintf("%s request %s", req.RequestType.Label(), verb),
		Message:   fmt.Sprintf("Your %s request #%d for room %d is now %s.", req.RequestType.Label(), req.ID, req.RoomID, req.Status),
		Type:      req.Status.NotificationType(),
	}

	if err := tx.Notifications.CreateNotifications(ctx, []models.UserNotification{notification}); err != nil {
		return err
	}
	metrics.NotificationsCreatedTotal.WithLabelValues("request").Inc()
	return nil
}

// NotifyOnAlert addresses one notification per user who can access the alert's room
func NotifyOnAlert(ctx context.Context, tx *repository.Repositories, alert *models.Alert) error {
	if alert.RoomID == nil {
		return nil
	}

	audience, err := tx.UserRooms.ListRoomAudience(ctx, *alert.RoomID)
	if err != nil {
		return err
	}

	notifications := make([]models.UserNotification, 0, len(audience))
	for _, userID := range audience {
		notifications = append(notifications, models.UserNotification{
			UserID:  userID,
			Title:   fmt.Sprintf("%s alert in room %d", alert.Severity, *alert.RoomID),
			Message: alert.Message,
			Type:    alert.Severity.NotificationType(),
		})
	}

	if err := tx.Notifications.CreateNotifications(ctx, notifications); err != nil {
		return err
	}
	metrics.NotificationsCreatedTotal.WithLabelValues("alert").Add(float64(len(notifications)))
	return nil
}

// ListNotifications returns the actor's notifications, newest first
func (s *NotificationService) ListNotifications(ctx context.Context, actor Actor, unreadOnly bool, limit int) ([]models.UserNotification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultNotificationLimit
	}
	return s.repos.Notifications.GetNotificationsByUserID(ctx, actor.UserID, unreadOnly, limit)
}

// UnreadCount counts the actor's unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context, actor Actor) (int64, error) {
	return s.repos.Notifications.UnreadCount(ctx, actor.UserID)
}

// MarkRead marks one notification read; repeating it is a no-op
func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, notificationID uint) error {
	return s.repos.Notifications.MarkRead(ctx, actor.UserID, notificationID)
}

// MarkAllRead marks every notification of the actor read
func (s *NotificationService) MarkAllRead(ctx context.Context, actor Actor) (int64, error) {
	return s.repos.Notifications.MarkAllRead(ctx, actor.UserID)
}

// DeleteNotification soft deletes one of the actor's notifications
func (s *NotificationService) DeleteNotification(ctx context.Context, actor Actor, notificationID uint) error {
	return s.repos.Notifications.SoftDelete(ctx, actor.UserID, notificationID)
}

// PendingFeed is the elevated actors' feed: every pending request, oldest first.
// It is computed on read and never stored.
func (s *NotificationService) PendingFeed(ctx context.Context, actor Actor) ([]models.RoomConditionRequest, error) {
	if !s.access.IsElevated(actor.Role) {
		return nil, apperrors.NewForbiddenError("only administrators and technicians have a request feed")
	}
	return s.repos.Requests.GetPendingRequests(ctx)
}
