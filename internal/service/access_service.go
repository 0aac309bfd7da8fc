package service

import (
	"context"

	"thermotrack/internal/models"
	"thermotrack/internal/repository"
	apperrors "thermotrack/pkg/errors"
)

// AccessService applies room scoping. Ownership and grants define the
// accessible set; elevated roles see every room on top of that.
type AccessService struct {
	repos    *repository.Repositories
	elevated map[models.Role]bool
}

func NewAccessService(repos *repository.Repositories, elevatedRoles []string) *AccessService {
	elevated := make(map[models.Role]bool, len(elevatedRoles))
	for _, role := range elevatedRoles {
		elevated[models.Role(role)] = true
	}
	return &AccessService{
		repos:    repos,
		elevated: elevated,
	}
}

// IsElevated reports whether role bypasses ownership scoping
func (s *AccessService) IsElevated(role models.Role) bool {
	return s.elevated[role]
}

// ListAccessibleRooms is the role-agnostic union of owned and granted rooms
func (s *AccessService) ListAccessibleRooms(ctx context.Context, userID uint) ([]uint, error) {
	return s.repos.UserRooms.ListAccessibleRooms(ctx, userID)
}

// CanAccessRoom is the role-agnostic membership test
func (s *AccessService) CanAccessRoom(ctx context.Context, userID, roomID uint) (bool, error) {
	return s.repos.UserRooms.CanAccessRoom(ctx, userID, roomID)
}

// VisibleRooms returns the rooms the actor may read
func (s *AccessService) VisibleRooms(ctx context.Context, actor Actor) ([]models.Room, error) {
	if s.IsElevated(actor.Role) {
		return s.repos.Rooms.GetAllRooms(ctx)
	}

	ids, err := s.ListAccessibleRooms(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.repos.Rooms.GetRoomsByIDs(ctx, ids)
}

// AuthorizeRoom loads a room the actor may read. Outside the actor's set
// the answer is forbidden whether or not the room exists.
func (s *AccessService) AuthorizeRoom(ctx context.Context, actor Actor, roomID uint) (*models.Room, error) {
	if !s.IsElevated(actor.Role) {
		ok, err := s.CanAccessRoom(ctx, actor.UserID, roomID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.NewForbiddenError("you do not have access to this room")
		}
	}
	return s.repos.Rooms.GetRoomByID(ctx, roomID)
}

// AuthorizeRoomManagement loads a room the actor may modify: its owner or an elevated actor
func (s *AccessService) AuthorizeRoomManagement(ctx context.Context, actor Actor, roomID uint) (*models.Room, error) {
	room, err := s.AuthorizeRoom(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}
	if s.IsElevated(actor.Role) {
		return room, nil
	}
	if room.UserID == nil || *room.UserID != actor.UserID {
		return nil, apperrors.NewForbiddenError("only the room owner can manage this room")
	}
	return room, nil
}

// AuthorizeDevice loads a device whose room the actor may read
func (s *AccessService) AuthorizeDevice(ctx context.Context, actor Actor, deviceID uint, manage bool) (*models.Device, error) {
	device, err := s.repos.Devices.GetDeviceByID(ctx, deviceID)
	if err != nil {
		if apperrors.IsNotFoundError(err) && !s.IsElevated(actor.Role) {
			return nil, apperrors.NewForbiddenError("you do not have access to this device")
		}
		return nil, err
	}

	authorize := s.AuthorizeRoom
	if manage {
		authorize = s.AuthorizeRoomManagement
	}
	if _, err := authorize(ctx, actor, device.RoomID); err != nil {
		return nil, err
	}
	return device, nil
}
