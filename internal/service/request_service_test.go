package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermotrack/internal/models"
	"thermotrack/internal/testutil"
	apperrors "thermotrack/pkg/errors"
)

func TestRequestService_CreateRequest_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.actor(t, "user", models.RoleUser)
	room := testutil.CreateRoom(t, env.db, &user.UserID, "R1")
	fan := models.FanLevel("hurricane")

	tests := map[string]RequestInput{
		"UnknownType":      {RoomID: room.ID, RequestType: "heating"},
		"MissingTarget":    {RoomID: room.ID, RequestType: models.RequestTemperatureChange, CurrentTemperature: testutil.Float(22)},
		"MissingFanLevel":  {RoomID: room.ID, RequestType: models.RequestFanAdjustment},
		"UnknownFanLevel":  {RoomID: room.ID, RequestType: models.RequestFanAdjustment, FanLevelRequest: &fan},
		"TargetOutOfRange": {RoomID: room.ID, RequestType: models.RequestTemperatureChange, CurrentTemperature: testutil.Float(22), TargetTemperature: testutil.Float(150)},
		"MissingRoom":      {RequestType: models.RequestAirQuality},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := env.requests.CreateRequest(ctx, user, in)
			assert.True(t, apperrors.IsValidationError(err), "got %v", err)
		})
	}
}

func TestRequestService_CreateRequest_RequiresRoomAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	owner := env.actor(t, "owner", models.RoleUser)
	stranger := env.actor(t, "stranger", models.RoleUser)
	room := testutil.CreateRoom(t, env.db, &owner.UserID, "R1")

	_, err := env.requests.CreateRequest(ctx, stranger, RequestInput{RoomID: room.ID, RequestType: models.RequestAirQuality})
	assert.True(t, apperrors.IsForbiddenError(err))
}

func TestRequestService_Workflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.actor(t, "user", models.RoleUser)
	tech := env.actor(t, "tech", models.RoleTechnician)
	room := testutil.CreateRoom(t, env.db, &user.UserID, "R1")

	req, err := env.requests.CreateRequest(ctx, user, RequestInput{
		RoomID:             room.ID,
		RequestType:        models.RequestTemperatureChange,
		CurrentTemperature: testutil.Float(26),
		TargetTemperature:  testutil.Float(22),
		Notes:              "too warm",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)

	eta := time.Now().Add(time.Hour)
	for _, status := range []models.RequestStatus{models.StatusViewed, models.StatusApproved, models.StatusCompleted} {
		update := StatusUpdate{Status: status}
		if status == models.StatusApproved {
			update.EstimatedCompletion = &eta
		}
		got, err := env.requests.UpdateRequestStatus(ctx, tech, req.ID, update)
		require.NoError(t, err, status)
		assert.Equal(t, status, got.Status)
	}

	stored, err := env.repos.Requests.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	require.NotNil(t, stored.EstimatedCompletion)

	notifications, err := env.notifications.ListNotifications(ctx, user, false, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 4)

	// Newest first
	types := []models.NotificationType{}
	for _, n := range notifications {
		types = append(types, n.Type)
		require.NotNil(t, n.RequestID)
		assert.Equal(t, req.ID, *n.RequestID)
	}
	assert.Equal(t, []models.NotificationType{
		models.NotificationSuccess,
		models.NotificationSuccess,
		models.NotificationInfo,
		models.NotificationInfo,
	}, types)
	assert.Contains(t, notifications[3].Title, "submitted")

	techNotifications, err := env.notifications.ListNotifications(ctx, tech, false, 0)
	require.NoError(t, err)
	assert.Empty(t, techNotifications)
}

func TestRequestService_UpdateRequestStatus_Guards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.actor(t, "user", models.RoleUser)
	admin := env.actor(t, "admin", models.RoleAdmin)
	room := testutil.CreateRoom(t, env.db, &user.UserID, "R1")

	req, err := env.requests.CreateRequest(ctx, user, RequestInput{RoomID: room.ID, RequestType: models.RequestAirQuality})
	require.NoError(t, err)

	t.Run("NonElevatedForbidden", func(t *testing.T) {
		_, err := env.requests.UpdateRequestStatus(ctx, user, req.ID, StatusUpdate{Status: models.StatusViewed})
		assert.True(t, apperrors.IsForbiddenError(err))
	})

	t.Run("UnknownStatus", func(t *testing.T) {
		_, err := env.requests.UpdateRequestStatus(ctx, admin, req.ID, StatusUpdate{Status: "archived"})
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("UnknownRequest", func(t *testing.T) {
		_, err := env.requests.UpdateRequestStatus(ctx, admin, 9999, StatusUpdate{Status: models.StatusViewed})
		assert.True(t, apperrors.IsNotFoundError(err))
	})

	t.Run("SameStatusIsNoop", func(t *testing.T) {
		got, err := env.requests.UpdateRequestStatus(ctx, admin, req.ID, StatusUpdate{Status: models.StatusPending})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status)

		count, err := env.notifications.UnreadCount(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("SameStatusRecordsEstimatedCompletion", func(t *testing.T) {
		eta := time.Date(2030, 1, 2, 15, 0, 0, 0, time.UTC)
		got, err := env.requests.UpdateRequestStatus(ctx, admin, req.ID, StatusUpdate{Status: models.StatusPending, EstimatedCompletion: &eta})
		require.NoError(t, err)
		require.NotNil(t, got.EstimatedCompletion)
		assert.True(t, eta.Equal(*got.EstimatedCompletion))

		stored, err := env.repos.Requests.GetRequestByID(ctx, req.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.EstimatedCompletion)
		assert.WithinDuration(t, eta, *stored.EstimatedCompletion, time.Second)
		assert.Equal(t, models.StatusPending, stored.Status)

		count, err := env.notifications.UnreadCount(ctx, user)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("DenyThenNoFurtherMoves", func(t *testing.T) {
		got, err := env.requests.UpdateRequestStatus(ctx, admin, req.ID, StatusUpdate{Status: models.StatusDenied})
		require.NoError(t, err)
		assert.Equal(t, models.StatusDenied, got.Status)

		_, err = env.requests.UpdateRequestStatus(ctx, admin, req.ID, StatusUpdate{Status: models.StatusCompleted})
		assert.True(t, apperrors.IsConflictError(err))

		_, err = env.requests.UpdateRequestStatus(ctx, admin, req.ID, StatusUpdate{Status: models.StatusApproved})
		assert.True(t, apperrors.IsConflictError(err))

		notifications, err := env.notifications.ListNotifications(ctx, user, true, 0)
		require.NoError(t, err)
		require.Len(t, notifications, 2)
		assert.Equal(t, models.NotificationError, notifications[0].Type)
	})
}

func TestRequestService_ListRequests(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.actor(t, "alice", models.RoleUser)
	bob := env.actor(t, "bob", models.RoleUser)
	admin := env.actor(t, "admin", models.RoleAdmin)
	roomA := testutil.CreateRoom(t, env.db, &alice.UserID, "A")
	roomB := testutil.CreateRoom(t, env.db, &bob.UserID, "B")

	first, err := env.requests.CreateRequest(ctx, alice, RequestInput{RoomID: roomA.ID, RequestType: models.RequestAirQuality})
	require.NoError(t, err)
	_, err = env.requests.CreateRequest(ctx, alice, RequestInput{RoomID: roomA.ID, RequestType: models.RequestAirQuality})
	require.NoError(t, err)
	_, err = env.requests.CreateRequest(ctx, bob, RequestInput{RoomID: roomB.ID, RequestType: models.RequestAirQuality})
	require.NoError(t, err)

	_, err = env.requests.UpdateRequestStatus(ctx, admin, first.ID, StatusUpdate{Status: models.StatusViewed})
	require.NoError(t, err)

	mine, err := env.requests.ListRequests(ctx, alice, nil)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending := models.StatusPending
	mine, err = env.requests.ListRequests(ctx, alice, &pending)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := env.requests.ListRequests(ctx, admin, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	all, err = env.requests.ListRequests(ctx, admin, &pending)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bogus := models.RequestStatus("archived")
	_, err = env.requests.ListRequests(ctx, admin, &bogus)
	assert.True(t, apperrors.IsValidationError(err))
}
