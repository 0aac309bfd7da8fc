package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermotrack/internal/models"
	"thermotrack/internal/testutil"
	apperrors "thermotrack/pkg/errors"
)

func TestNotificationService_ReadAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.actor(t, "user", models.RoleUser)
	other := env.actor(t, "other", models.RoleUser)
	room := testutil.CreateRoom(t, env.db, &user.UserID, "R1")

	for i := 0; i < 3; i++ {
		_, err := env.requests.CreateRequest(ctx, user, RequestInput{RoomID: room.ID, RequestType: models.RequestAirQuality})
		require.NoError(t, err)
	}

	notifications, err := env.notifications.ListNotifications(ctx, user, false, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 3)

	require.NoError(t, env.notifications.MarkRead(ctx, user, notifications[0].ID))
	require.NoError(t, env.notifications.MarkRead(ctx, user, notifications[0].ID))

	count, err := env.notifications.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	err = env.notifications.MarkRead(ctx, other, notifications[1].ID)
	assert.True(t, apperrors.IsNotFoundError(err))

	err = env.notifications.DeleteNotification(ctx, other, notifications[1].ID)
	assert.True(t, apperrors.IsNotFoundError(err))

	require.NoError(t, env.notifications.DeleteNotification(ctx, user, notifications[1].ID))

	marked, err := env.notifications.MarkAllRead(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	notifications, err = env.notifications.ListNotifications(ctx, user, false, 0)
	require.NoError(t, err)
	assert.Len(t, notifications, 2)

	unread, err := env.notifications.ListNotifications(ctx, user, true, 0)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestNotificationService_PendingFeed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.actor(t, "user", models.RoleUser)
	tech := env.actor(t, "tech", models.RoleTechnician)
	room := testutil.CreateRoom(t, env.db, &user.UserID, "R1")

	first, err := env.requests.CreateRequest(ctx, user, RequestInput{RoomID: room.ID, RequestType: models.RequestAirQuality})
	require.NoError(t, err)
	second, err := env.requests.CreateRequest(ctx, user, RequestInput{RoomID: room.ID, RequestType: models.RequestAirQuality})
	require.NoError(t, err)
	viewed, err := env.requests.CreateRequest(ctx, user, RequestInput{RoomID: room.ID, RequestType: models.RequestAirQuality})
	require.NoError(t, err)
	_, err = env.requests.UpdateRequestStatus(ctx, tech, viewed.ID, StatusUpdate{Status: models.StatusViewed})
	require.NoError(t, err)

	_, err = env.notifications.PendingFeed(ctx, user)
	assert.True(t, apperrors.IsForbiddenError(err))

	feed, err := env.notifications.PendingFeed(ctx, tech)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, first.ID, feed[0].ID)
	assert.Equal(t, second.ID, feed[1].ID)
	assert.Equal(t, room.Name, feed[0].Room.Name)
	assert.Equal(t, "user", feed[0].User.Username)
}
