// Package testutil builds throwaway sqlite databases and fixtures for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"thermotrack/internal/database"
	"thermotrack/internal/models"
)

// NewDB opens a private in-memory database with foreign keys enforced and
// the full schema migrated. A single connection keeps every query on the
// same in-memory instance.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig("release")
	cfg.Logger = logger.Default.LogMode(logger.Silent)

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with the given role
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateRoom inserts a room; a nil owner makes an unowned room
func CreateRoom(t *testing.T, db *gorm.DB, ownerID *uint, name string) *models.Room {
	t.Helper()

	room := &models.Room{
		UserID:          ownerID,
		Name:            name,
		Location:        "Building A",
		TemperatureUnit: models.UnitCelsius,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

// CreateDevice inserts an active device in a room
func CreateDevice(t *testing.T, db *gorm.DB, roomID uint, uid string) *models.Device {
	t.Helper()

	device := &models.Device{
		RoomID:      roomID,
		Name:        uid,
		DeviceUID:   uid,
		Type:        "Temperature",
		Status:      models.DeviceActive,
		InstalledAt: time.Now().UTC(),
	}
	require.NoError(t, db.Create(device).Error)
	return device
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// Uint returns a pointer to v
func Uint(v uint) *uint {
	return &v
}
