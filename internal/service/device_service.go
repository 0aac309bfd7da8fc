package service

import (
	"context"
	"fmt"
	"time"

	"thermotrack/internal/cache"
	"thermotrack/internal/models"
	"thermotrack/internal/repository"
	apperrors "thermotrack/pkg/errors"
)

type DeviceService struct {
	repos  *repository.Repositories
	access *AccessService
	latest cache.LatestReadings
}

func NewDeviceService(repos *repository.Repositories, access *AccessService, latest cache.LatestReadings) *DeviceService {
	return &DeviceService{
		repos:  repos,
		access: access,
		latest: latest,
	}
}

// DeviceInput registers a device in a room
type DeviceInput struct {
	Name      string `json:"name" validate:"max=100"`
	DeviceUID string `json:"device_uid" validate:"required,max=100"`
	Type      string `json:"type" validate:"max=50"`
}

// RegisterDevice adds a device to a room the actor manages
func (s *DeviceService) RegisterDevice(ctx context.Context, actor Actor, roomID uint, in DeviceInput) (*models.Device, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.access.AuthorizeRoomManagement(ctx, actor, roomID); err != nil {
		return nil, err
	}

	device := &models.Device{
		RoomID:      roomID,
		Name:        in.Name,
		DeviceUID:   in.DeviceUID,
		Type:        in.Type,
		Status:      models.DeviceActive,
		InstalledAt: time.Now().UTC(),
	}
	if device.Name == "" {
		device.Name = fmt.Sprintf("Sensor %s", in.DeviceUID)
	}

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Devices.CreateDevice(ctx, device); err != nil {
			if apperrors.IsConflictError(err) {
				return apperrors.NewConflictError(fmt.Sprintf("device %q is already registered", in.DeviceUID))
			}
			return err
		}
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "device_register", fmt.Sprintf("Registered device %s in room %d", device.DeviceUID, roomID))
	})
	if err != nil {
		return nil, err
	}
	return device, nil
}

// ListDevices lists the devices of a room the actor may read
func (s *DeviceService) ListDevices(ctx context.Context, actor Actor, roomID uint) ([]models.Device, error) {
	if _, err := s.access.AuthorizeRoom(ctx, actor, roomID); err != nil {
		return nil, err
	}
	return s.repos.Devices.GetDevicesByRoomID(ctx, roomID)
}

// UpdateStatus switches a device between active and inactive
func (s *DeviceService) UpdateStatus(ctx context.Context, actor Actor, deviceID uint, status models.DeviceStatus) (*models.Device, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid device status %q", status))
	}

	device, err := s.access.AuthorizeDevice(ctx, actor, deviceID, true)
	if err != nil {
		return nil, err
	}
	if device.Status == status {
		return device, nil
	}

	err = s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Devices.UpdateStatus(ctx, device.ID, status); err != nil {
			return err
		}
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "device_status", fmt.Sprintf("Device %s set to %s", device.DeviceUID, status))
	})
	if err != nil {
		return nil, err
	}

	device.Status = status
	return device, nil
}

// DeleteDevice removes a device with its readings and alerts. The room's
// cached latest readings are dropped once the delete commits.
func (s *DeviceService) DeleteDevice(ctx context.Context, actor Actor, deviceID uint) error {
	device, err := s.access.AuthorizeDevice(ctx, actor, deviceID, true)
	if err != nil {
		return err
	}

	err = s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Devices.DeleteDevice(ctx, device.ID); err != nil {
			return err
		}
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "device_delete", fmt.Sprintf("Deleted device %s from room %d", device.DeviceUID, device.RoomID))
	})
	if err != nil {
		return err
	}

	s.latest.Invalidate(ctx, device.RoomID)
	return nil
}
