package repository

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

func newViewedRequest(t *testing.T, repo *RequestRepository, userID, roomID uint) *models.RoomConditionRequest {
	t.Helper()

	req := &models.RoomConditionRequest{
		UserID:      userID,
		RoomID:      roomID,
		RequestType: models.RequestAirQuality,
		Status:      models.StatusViewed,
	}
	require.NoError(t, repo.CreateRequest(context.Background(), req))
	return req
}

func TestRequestRepository_UpdateStatus_RequiresExpectedStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepo(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "alice", models.RoleUser)
	room := testutil.CreateRoom(t, db, &user.ID, "Office")
	req := newViewedRequest(t, repo, user.ID, room.ID)

	// first technician approves the viewed request
	require.NoError(t, repo.UpdateStatus(ctx, req.ID, models.StatusViewed, models.StatusApproved, nil))

	// a second technician still holding the viewed copy tries to deny it
	err := repo.UpdateStatus(ctx, req.ID, models.StatusViewed, models.StatusDenied, nil)
	assert.True(t, apperrors.IsConflictError(err))

	stored, err := repo.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
}

func TestRequestRepository_UpdateStatus_UnknownRequest(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepo(db)

	err := repo.UpdateStatus(context.Background(), 404, models.StatusPending, models.StatusViewed, nil)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestRequestRepository_SetEstimatedCompletion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewRequestRepo(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "alice", models.RoleUser)
	room := testutil.CreateRoom(t, db, &user.ID, "Office")
	req := newViewedRequest(t, repo, user.ID, room.ID)
	eta := time.Date(2030, 6, 1, 9, 30, 0, 0, time.UTC)

	require.NoError(t, repo.SetEstimatedCompletion(ctx, req.ID, models.StatusViewed, eta))
	require.NoError(t, repo.SetEstimatedCompletion(ctx, req.ID, models.StatusViewed, eta))

	stored, err := repo.GetRequestByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.EstimatedCompletion)
	assert.WithinDuration(t, eta, *stored.EstimatedCompletion, time.Second)

	err = repo.SetEstimatedCompletion(ctx, req.ID, models.StatusPending, eta)
	assert.True(t, apperrors.IsConflictError(err))
}
