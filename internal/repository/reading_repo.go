package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"thermotrack/internal/models"
)

// latestPerDeviceSQL picks, for every device of a room, the row with the
// greatest recorded_at, breaking ties on the highest id. The correlated
// subquery walks idx_readings_device_recorded instead of scanning readings.
const latestPerDeviceSQL = `
SELECT r.* FROM readings r
JOIN devices d ON d.id = r.device_id
WHERE d.room_id = ? AND r.id = (
	SELECT r2.id FROM readings r2
	WHERE r2.device_id = r.device_id
	ORDER BY r2.recorded_at DESC, r2.id DESC
	LIMIT 1
)`

type ReadingRepository struct {
	db *gorm.DB
}

func NewReadingRepo(db *gorm.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// InsertReading appends a reading; an unknown device is reported as not found
func (r *ReadingRepository) InsertReading(ctx context.Context, reading *models.Reading) error {
	return translate(r.db.WithContext(ctx).Create(reading).Error, "reading")
}

// LatestReading returns the newest reading of a device, or nil when it never reported
func (r *ReadingRepository) LatestReading(ctx context.Context, deviceID uint) (*models.Reading, error) {
	var readings []models.Reading
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("recorded_at DESC, id DESC").
		Limit(1).
		Find(&readings).Error
	if err != nil {
		return nil, translate(err, "reading")
	}
	if len(readings) == 0 {
		return nil, nil
	}
	return &readings[0], nil
}

// LatestReadingsForRoom returns one latest reading per device of the room.
// Devices that never reported are absent from the map.
func (r *ReadingRepository) LatestReadingsForRoom(ctx context.Context, roomID uint) (map[uint]models.Reading, error) {
	var readings []models.Reading
	if err := r.db.WithContext(ctx).Raw(latestPerDeviceSQL, roomID).Scan(&readings).Error; err != nil {
		return nil, translate(err, "reading")
	}

	latest := make(map[uint]models.Reading, len(readings))
	for _, reading := range readings {
		latest[reading.DeviceID] = reading
	}
	return latest, nil
}

// GetReadingHistory returns readings of a device recorded at or after since, oldest first
func (r *ReadingRepository) GetReadingHistory(ctx context.Context, deviceID uint, since time.Time, limit int) ([]models.Reading, error) {
	var readings []models.Reading
	err := r.db.WithContext(ctx).
		Where("device_id = ? AND recorded_at >= ?", deviceID, since).
		Order("recorded_at ASC, id ASC").
		Limit(limit).
		Find(&readings).Error
	return readings, translate(err, "reading")
}
