package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository over one connection or transaction
type Repositories struct {
	db *gorm.DB

	Users         *UserRepository
	Rooms         *RoomRepository
	UserRooms     *UserRoomRepository
	Devices       *DeviceRepository
	APIKeys       *DeviceAPIKeyRepository
	Readings      *ReadingRepository
	Alerts        *AlertRepository
	Requests      *RequestRepository
	Notifications *NotificationRepository
	Audit         *AuditRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewUserRepo(db),
		Rooms:         NewRoomRepo(db),
		UserRooms:     NewUserRoomRepo(db),
		Devices:       NewDeviceRepo(db),
		APIKeys:       NewDeviceAPIKeyRepo(db),
		Readings:      NewReadingRepo(db),
		Alerts:        NewAlertRepo(db),
		Requests:      NewRequestRepo(db),
		Notifications: NewNotificationRepo(db),
		Audit:         NewAuditRepo(db),
	}
}

// WithTx runs fn against repositories bound to a single transaction.
// Returning an error from fn rolls every write back.
func (r *Repositories) WithTx(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
