package repository

import (
	"context"

	"gorm.io/gorm"

	"thermotrack/internal/models"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepo(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// GetAllRooms retrieves every room ordered by id
func (r *RoomRepository) GetAllRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rooms).Error
	return rooms, translate(err, "room")
}

// GetRoomsByIDs retrieves the given rooms ordered by id
func (r *RoomRepository) GetRoomsByIDs(ctx context.Context, ids []uint) ([]models.Room, error) {
	rooms := []models.Room{}
	if len(ids) == 0 {
		return rooms, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&rooms).Error
	return rooms, translate(err, "room")
}

// GetRoomByID retrieves a room by ID
func (r *RoomRepository) GetRoomByID(ctx context.Context, id uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, translate(err, "room")
	}
	return &room, nil
}

// CreateRoom creates a new room; a name reused by the same owner is a conflict
func (r *RoomRepository) CreateRoom(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Create(room).Error, "room")
}

// UpdateRoom saves every column of an existing room
func (r *RoomRepository) UpdateRoom(ctx context.Context, room *models.Room) error {
	return translate(r.db.WithContext(ctx).Save(room).Error, "room")
}

// DeleteRoom hard deletes a room. Devices, their readings and alerts,
// grants and requests go with it through the foreign keys.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id uint) error {
	return affected(r.db.WithContext(ctx).Delete(&models.Room{}, id), "room")
}
