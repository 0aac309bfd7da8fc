package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"thermotrack/internal/cache"
	"thermotrack/internal/metrics"
	"thermotrack/internal/models"
	"thermotrack/internal/repository"
	apperrors "thermotrack/pkg/errors"
)

// Sensor event names published by the room gateways
const (
	EventDHT22  = "dht22_reading"
	EventMotion = "motion"
)

// Gateways that omit device_uid report for these default sensors
const (
	defaultDHT22UID  = "dht22_sensor_01"
	defaultMotionUID = "pir_sensor_01"
)

const defaultAlertLimit = 100

// SensorEvent is the message a gateway publishes for one sample
type SensorEvent struct {
	Event        string   `json:"event"`
	DeviceUID    string   `json:"device_uid,omitempty"`
	TemperatureC *float64 `json:"temperature_c,omitempty"`
	Humidity     *float64 `json:"humidity,omitempty"`
	Occupied     *int     `json:"occupied,omitempty"`
	// At is unix seconds; zero means now
	At int64 `json:"at,omitempty"`
}

// ReadingInput carries the measured fields of one reading
type ReadingInput struct {
	Temperature    *float64   `json:"temperature" validate:"omitempty,gte=-100,lte=200"`
	Humidity       *float64   `json:"humidity" validate:"omitempty,gte=0,lte=100"`
	Pressure       *float64   `json:"pressure" validate:"omitempty,gte=0"`
	LightLevel     *float64   `json:"light_level" validate:"omitempty,gte=0"`
	MotionDetected bool       `json:"motion_detected"`
	RecordedAt     *time.Time `json:"recorded_at"`
}

// IngestResult is what one insert produced
type IngestResult struct {
	Reading models.Reading `json:"reading"`
	Alerts  []models.Alert `json:"alerts"`
}

type ReadingService struct {
	repos  *repository.Repositories
	access *AccessService
	policy ThresholdPolicy
	latest cache.LatestReadings
	log    *slog.Logger
}

func NewReadingService(
	repos *repository.Repositories,
	access *AccessService,
	policy ThresholdPolicy,
	latest cache.LatestReadings,
	log *slog.Logger,
) *ReadingService {
	return &ReadingService{
		repos:  repos,
		access: access,
		policy: policy,
		latest: latest,
		log:    log,
	}
}

// InsertReading appends a reading for a device, records that the device was
// seen, and raises alerts with their notifications, all in one transaction
func (s *ReadingService) InsertReading(ctx context.Context, deviceID uint, in ReadingInput) (*IngestResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reading := models.Reading{
		DeviceID:       deviceID,
		Temperature:    in.Temperature,
		Humidity:       in.Humidity,
		Pressure:       in.Pressure,
		LightLevel:     in.LightLevel,
		MotionDetected: in.MotionDetected,
		RecordedAt:     now,
	}
	if in.RecordedAt != nil {
		reading.RecordedAt = in.RecordedAt.UTC()
	}

	result := &IngestResult{Alerts: []models.Alert{}}
	var roomID uint
	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		device, err := tx.Devices.GetDeviceByID(ctx, deviceID)
		if err != nil {
			return err
		}
		roomID = device.RoomID

		if err := tx.Readings.InsertReading(ctx, &reading); err != nil {
			return err
		}
		if err := tx.Devices.Touch(ctx, device.ID, now); err != nil {
			return err
		}

		for _, breach := range s.policy.Evaluate(device, &reading) {
			alertRoomID, readingID := device.RoomID, reading.ID
			alert := models.Alert{
				DeviceID:  device.ID,
				RoomID:    &alertRoomID,
				ReadingID: &readingID,
				Message:   breach.Message,
				Severity:  breach.Severity,
			}
			if err := tx.Alerts.CreateAlert(ctx, &alert); err != nil {
				return err
			}
			if err := NotifyOnAlert(ctx, tx, &alert); err != nil {
				return err
			}
			result.Alerts = append(result.Alerts, alert)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.latest.Invalidate(ctx, roomID)
	for _, alert := range result.Alerts {
		metrics.AlertsRaisedTotal.WithLabelValues(string(alert.Severity)).Inc()
		s.log.Warn("alert raised", "device_id", deviceID, "room_id", roomID, "severity", alert.Severity, "message", alert.Message)
	}

	result.Reading = reading
	return result, nil
}

// IngestEvent stores a gateway event for the device named by its UID
func (s *ReadingService) IngestEvent(ctx context.Context, event SensorEvent) (*IngestResult, error) {
	in, uid, err := event.toInput()
	if err != nil {
		return nil, err
	}

	device, err := s.repos.Devices.GetDeviceByUID(ctx, uid)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("device %q is not registered", uid))
		}
		return nil, err
	}
	return s.InsertReading(ctx, device.ID, in)
}

// IngestForRoom stores an event arriving through a room-scoped API key.
// The device must be installed in that room.
func (s *ReadingService) IngestForRoom(ctx context.Context, roomID uint, event SensorEvent) (*IngestResult, error) {
	in, uid, err := event.toInput()
	if err != nil {
		return nil, err
	}

	device, err := s.repos.Devices.GetDeviceByUID(ctx, uid)
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("device %q is not registered", uid))
		}
		return nil, err
	}
	if device.RoomID != roomID {
		return nil, apperrors.NewForbiddenError(fmt.Sprintf("device %q does not belong to room %d", uid, roomID))
	}
	return s.InsertReading(ctx, device.ID, in)
}

func (e SensorEvent) toInput() (ReadingInput, string, error) {
	var in ReadingInput
	uid := e.DeviceUID

	switch e.Event {
	case EventDHT22:
		if e.TemperatureC == nil && e.Humidity == nil {
			return in, "", apperrors.NewValidationError("dht22_reading events require temperature_c or humidity")
		}
		if uid == "" {
			uid = defaultDHT22UID
		}
		in.Temperature = e.TemperatureC
		in.Humidity = e.Humidity
	case EventMotion:
		if uid == "" {
			uid = defaultMotionUID
		}
		in.MotionDetected = e.Occupied != nil && *e.Occupied == 1
	default:
		return in, "", apperrors.NewValidationError(fmt.Sprintf("unknown sensor event %q", e.Event))
	}

	if e.At > 0 {
		at := time.Unix(e.At, 0).UTC()
		in.RecordedAt = &at
	}
	return in, uid, nil
}

// LatestReading returns a device's newest reading, or nil when it never reported
func (s *ReadingService) LatestReading(ctx context.Context, actor Actor, deviceID uint) (*models.Reading, error) {
	if _, err := s.access.AuthorizeDevice(ctx, actor, deviceID, false); err != nil {
		return nil, err
	}
	return s.repos.Readings.LatestReading(ctx, deviceID)
}

// LatestReadingsForRoom returns the newest reading of every device in the room
// that has reported, served from cache when fresh
func (s *ReadingService) LatestReadingsForRoom(ctx context.Context, actor Actor, roomID uint) (map[uint]models.Reading, error) {
	if _, err := s.access.AuthorizeRoom(ctx, actor, roomID); err != nil {
		return nil, err
	}

	if latest, ok := s.latest.Get(ctx, roomID); ok {
		return latest, nil
	}

	latest, err := s.repos.Readings.LatestReadingsForRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	s.latest.Set(ctx, roomID, latest)
	return latest, nil
}

// ReadingHistory returns a device's readings since the given instant, oldest first
func (s *ReadingService) ReadingHistory(ctx context.Context, actor Actor, deviceID uint, since time.Time, limit int) ([]models.Reading, error) {
	if _, err := s.access.AuthorizeDevice(ctx, actor, deviceID, false); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 1000 {
		limit = 500
	}
	return s.repos.Readings.GetReadingHistory(ctx, deviceID, since.UTC(), limit)
}

// ListAlerts returns a room's alerts, newest first
func (s *ReadingService) ListAlerts(ctx context.Context, actor Actor, roomID uint, limit int) ([]models.Alert, error) {
	if _, err := s.access.AuthorizeRoom(ctx, actor, roomID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = defaultAlertLimit
	}
	return s.repos.Alerts.GetAlertsByRoomID(ctx, roomID, limit)
}
