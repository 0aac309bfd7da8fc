package service

import (
	"context"
	"fmt"
	"log/slog"

	"thermotrack/internal/models"
	"thermotrack/internal/repository"
	apperrors "thermotrack/pkg/errors"
)

type RoomService struct {
	repos  *repository.Repositories
	access *AccessService
	log    *slog.Logger
}

func NewRoomService(repos *repository.Repositories, access *AccessService, log *slog.Logger) *RoomService {
	return &RoomService{
		repos:  repos,
		access: access,
		log:    log,
	}
}

// RoomInput carries the editable fields of a room
type RoomInput struct {
	Name            string                 `json:"name" validate:"required,max=100"`
	Location        string                 `json:"location" validate:"max=255"`
	TemperatureUnit models.TemperatureUnit `json:"temperature_unit" validate:"enum"`
	BMSZoneID       string                 `json:"bms_zone_id" validate:"max=50"`
	DefaultSetpoint *float64               `json:"default_setpoint" validate:"omitempty,gte=15,lte=30"`
	// Unowned creates a room with no owner; elevated actors only
	Unowned bool `json:"unowned"`
}

func (in *RoomInput) normalize() {
	if in.TemperatureUnit == "" {
		in.TemperatureUnit = models.UnitCelsius
	}
}

// ListRooms returns the rooms visible to the actor
func (s *RoomService) ListRooms(ctx context.Context, actor Actor) ([]models.Room, error) {
	return s.access.VisibleRooms(ctx, actor)
}

// GetRoom returns a room the actor may read
func (s *RoomService) GetRoom(ctx context.Context, actor Actor, roomID uint) (*models.Room, error) {
	return s.access.AuthorizeRoom(ctx, actor, roomID)
}

// CreateRoom creates a room owned by the actor, or an unowned room for elevated actors
func (s *RoomService) CreateRoom(ctx context.Context, actor Actor, in RoomInput) (*models.Room, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Unowned && !s.access.IsElevated(actor.Role) {
		return nil, apperrors.NewForbiddenError("only administrators and technicians can create unowned rooms")
	}

	room := &models.Room{
		Name:            in.Name,
		Location:        in.Location,
		TemperatureUnit: in.TemperatureUnit,
		BMSZoneID:       in.BMSZoneID,
		DefaultSetpoint: in.DefaultSetpoint,
	}
	if !in.Unowned {
		ownerID := actor.UserID
		room.UserID = &ownerID
	}

	err := s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Rooms.CreateRoom(ctx, room); err != nil {
			if apperrors.IsConflictError(err) {
				return apperrors.NewConflictError(fmt.Sprintf("a room named %q already exists", in.Name))
			}
			return err
		}
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "room_create", fmt.Sprintf("Created room %d (%s)", room.ID, room.Name))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("room created", "room_id", room.ID, "user_id", actor.UserID)
	return room, nil
}

// UpdateRoom replaces the editable fields of a room the actor manages
func (s *RoomService) UpdateRoom(ctx context.Context, actor Actor, roomID uint, in RoomInput) (*models.Room, error) {
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	room, err := s.access.AuthorizeRoomManagement(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}

	room.Name = in.Name
	room.Location = in.Location
	room.TemperatureUnit = in.TemperatureUnit
	room.BMSZoneID = in.BMSZoneID
	room.DefaultSetpoint = in.DefaultSetpoint

	err = s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Rooms.UpdateRoom(ctx, room); err != nil {
			if apperrors.IsConflictError(err) {
				return apperrors.NewConflictError(fmt.Sprintf("a room named %q already exists", in.Name))
			}
			return err
		}
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "room_update", fmt.Sprintf("Updated room %d", room.ID))
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// DeleteRoom hard deletes a room the actor manages along with everything in it
func (s *RoomService) DeleteRoom(ctx context.Context, actor Actor, roomID uint) error {
	room, err := s.access.AuthorizeRoomManagement(ctx, actor, roomID)
	if err != nil {
		return err
	}

	err = s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.Rooms.DeleteRoom(ctx, room.ID); err != nil {
			return err
		}
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "room_delete", fmt.Sprintf("Deleted room %d (%s)", room.ID, room.Name))
	})
	if err != nil {
		return err
	}

	s.log.Info("room deleted", "room_id", room.ID, "user_id", actor.UserID)
	return nil
}

// GrantAccess shares a room with another user
func (s *RoomService) GrantAccess(ctx context.Context, actor Actor, roomID, userID uint) error {
	room, err := s.access.AuthorizeRoomManagement(ctx, actor, roomID)
	if err != nil {
		return err
	}
	if room.UserID != nil && *room.UserID == userID {
		return apperrors.NewConflictError("the owner already has access to this room")
	}
	if _, err := s.repos.Users.FindUserByID(ctx, userID); err != nil {
		return err
	}

	return s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.UserRooms.Grant(ctx, userID, room.ID); err != nil {
			return err
		}
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "room_grant", fmt.Sprintf("Granted user %d access to room %d", userID, room.ID))
	})
}

// RevokeAccess removes a user's grant on a room
func (s *RoomService) RevokeAccess(ctx context.Context, actor Actor, roomID, userID uint) error {
	room, err := s.access.AuthorizeRoomManagement(ctx, actor, roomID)
	if err != nil {
		return err
	}

	return s.repos.WithTx(ctx, func(tx *repository.Repositories) error {
		if err := tx.UserRooms.Revoke(ctx, userID, room.ID); err != nil {
			return err
		}
		return tx.Audit.CreateAuditLog(ctx, &actor.UserID, "room_revoke", fmt.Sprintf("Revoked user %d access to room %d", userID, room.ID))
	})
}
