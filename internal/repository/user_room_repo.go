package repository

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"thermotrack/internal/models"
	apperrors "thermotrack/pkg/errors"
)

// UserRoomRepository is the set of room grants plus the ownership-based
// scoping queries built on top of it
type UserRoomRepository struct {
	db *gorm.DB
}

func NewUserRoomRepo(db *gorm.DB) *UserRoomRepository {
	return &UserRoomRepository{db: db}
}

// Grant adds (userID, roomID) to the set; an existing pair is a conflict
func (r *UserRoomRepository) Grant(ctx context.Context, userID, roomID uint) error {
	grant := &models.UserRoom{
		UserID: userID,
		RoomID: roomID,
	}
	if err := r.db.WithContext(ctx).Create(grant).Error; err != nil {
		err = translate(err, "room grant")
		if apperrors.IsConflictError(err) {
			return apperrors.NewConflictError("user already has access to this room")
		}
		return err
	}
	return nil
}

// Revoke removes (userID, roomID) from the set
func (r *UserRoomRepository) Revoke(ctx context.Context, userID, roomID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND room_id = ?", userID, roomID).
		Delete(&models.UserRoom{})
	return affected(result, "room grant")
}

// Contains reports whether an explicit grant exists for the pair
func (r *UserRoomRepository) Contains(ctx context.Context, userID, roomID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserRoom{}).
		Where("user_id = ? AND room_id = ?", userID, roomID).
		Count(&count).Error
	return count > 0, translate(err, "room grant")
}

// ListAccessibleRooms returns owned rooms and granted rooms, deduplicated and ascending
func (r *UserRoomRepository) ListAccessibleRooms(ctx context.Context, userID uint) ([]uint, error) {
	var owned, granted []uint

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Room{}).Where("user_id = ?", userID).Pluck("id", &owned).Error; err != nil {
		return nil, translate(err, "room")
	}
	if err := db.Model(&models.UserRoom{}).Where("user_id = ?", userID).Pluck("room_id", &granted).Error; err != nil {
		return nil, translate(err, "room grant")
	}

	return mergeIDs(owned, granted), nil
}

// CanAccessRoom reports whether userID owns roomID or holds a grant for it
func (r *UserRoomRepository) CanAccessRoom(ctx context.Context, userID, roomID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "room")
	}
	if count > 0 {
		return true, nil
	}
	return r.Contains(ctx, userID, roomID)
}

// ListRoomAudience returns the owner and every grantee of a room, ascending
func (r *UserRoomRepository) ListRoomAudience(ctx context.Context, roomID uint) ([]uint, error) {
	var owners, grantees []uint

	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Room{}).
		Where("id = ? AND user_id IS NOT NULL", roomID).
		Pluck("user_id", &owners).Error; err != nil {
		return nil, translate(err, "room")
	}
	if err := db.Model(&models.UserRoom{}).Where("room_id = ?", roomID).Pluck("user_id", &grantees).Error; err != nil {
		return nil, translate(err, "room grant")
	}

	return mergeIDs(owners, grantees), nil
}

func mergeIDs(sets ...[]uint) []uint {
	seen := make(map[uint]struct{})
	ids := []uint{}
	for _, set := range sets {
		for _, id := range set {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
