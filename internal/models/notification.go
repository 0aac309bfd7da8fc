package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType is the visual category of a notification
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Valid reports whether t is a known notification type
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

// UserNotification is addressed to one user.
// DeletedAt makes GORM exclude soft-deleted rows from every query.
type UserNotification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index:idx_notifications_user_read,priority:1" json:"user_id"`
	RequestID *uint            `gorm:"index" json:"request_id"`
	Title     string           `gorm:"size:255;not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Type      NotificationType `gorm:"size:20;not null;default:info" json:"type"`
	IsRead    bool             `gorm:"default:false;index:idx_notifications_user_read,priority:2" json:"is_read"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `json:"created_at"`
	DeletedAt gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	User    *User                 `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Request *RoomConditionRequest `gorm:"foreignKey:RequestID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for UserNotification model
func (UserNotification) TableName() string {
	return "user_notifications"
}
