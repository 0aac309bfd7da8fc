package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"thermotrack/internal/models"
)

type DeviceRepository struct {
	db *gorm.DB
}

func NewDeviceRepo(db *gorm.DB) *DeviceRepository {
	return &DeviceRepository{db: db}
}

// CreateDevice registers a device; a reused device_uid is a conflict
func (r *DeviceRepository) CreateDevice(ctx context.Context, device *models.Device) error {
	return translate(r.db.WithContext(ctx).Create(device).Error, "device")
}

// GetDeviceByID retrieves a device by ID
func (r *DeviceRepository) GetDeviceByID(ctx context.Context, id uint) (*models.Device, error) {
	var device models.Device
	if err := r.db.WithContext(ctx).First(&device, id).Error; err != nil {
		return nil, translate(err, "device")
	}
	return &device, nil
}

// GetDeviceByUID retrieves a device by its external identifier
func (r *DeviceRepository) GetDeviceByUID(ctx context.Context, uid string) (*models.Device, error) {
	var device models.Device
	if err := r.db.WithContext(ctx).Where("device_uid = ?", uid).Take(&device).Error; err != nil {
		return nil, translate(err, "device")
	}
	return &device, nil
}

// GetDevicesByRoomID lists the devices installed in a room
func (r *DeviceRepository) GetDevicesByRoomID(ctx context.Context, roomID uint) ([]models.Device, error) {
	var devices []models.Device
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("id ASC").
		Find(&devices).Error
	return devices, translate(err, "device")
}

// UpdateStatus sets the status of a device
func (r *DeviceRepository) UpdateStatus(ctx context.Context, id uint, status models.DeviceStatus) error {
	return translate(r.db.WithContext(ctx).Model(&models.Device{}).
		Where("id = ?", id).
		Update("status", status).Error, "device")
}

// Touch records that the device reported at the given instant and marks it active
func (r *DeviceRepository) Touch(ctx context.Context, id uint, seenAt time.Time) error {
	return translate(r.db.WithContext(ctx).Model(&models.Device{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_seen_at": seenAt,
			"status":       models.DeviceActive,
		}).Error, "device")
}

// MarkStaleInactive flips active devices that have not reported since cutoff.
// Devices that never reported are judged by their install time.
func (r *DeviceRepository) MarkStaleInactive(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Device{}).
		Where("status = ?", models.DeviceActive).
		Where("(last_seen_at IS NOT NULL AND last_seen_at < ?) OR (last_seen_at IS NULL AND installed_at < ?)", cutoff, cutoff).
		Update("status", models.DeviceInactive)
	return result.RowsAffected, translate(result.Error, "device")
}

// DeleteDevice removes a device together with its readings and alerts
func (r *DeviceRepository) DeleteDevice(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&models.Device{}, id), "device")
}
