package service

import (
	"testing"

	"gorm.io/gorm"

	"thermotrack/internal/cache"
	"thermotrack/internal/config"
	"thermotrack/internal/models"
	"thermotrack/internal/repository"
	"thermotrack/internal/testutil"
	"thermotrack/pkg/logger"
)

type testEnv struct {
	db            *gorm.DB
	repos         *repository.Repositories
	access        *AccessService
	rooms         *RoomService
	devices       *DeviceService
	requests      *RequestService
	readings      *ReadingService
	notifications *NotificationService
}

var testThresholds = config.ThresholdConfig{
	TemperatureWarning:  24,
	TemperatureCritical: 30,
	HumidityMax:         70,
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithCache(t, cache.Noop{})
}

func newTestEnvWithCache(t *testing.T, latest cache.LatestReadings) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	repos := repository.New(db)
	access := NewAccessService(repos, []string{"admin", "technician"})
	log := logger.Discard()

	return &testEnv{
		db:            db,
		repos:         repos,
		access:        access,
		rooms:         NewRoomService(repos, access, log),
		devices:       NewDeviceService(repos, access, latest),
		requests:      NewRequestService(repos, access, log),
		readings:      NewReadingService(repos, access, NewThresholdPolicy(testThresholds), latest, log),
		notifications: NewNotificationService(repos, access),
	}
}

func (e *testEnv) actor(t *testing.T, username string, role models.Role) Actor {
	t.Helper()
	user := testutil.CreateUser(t, e.db, username, role)
	return Actor{UserID: user.ID, Role: role}
}
