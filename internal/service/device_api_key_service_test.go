package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"thermotrack/internal/models"
	"thermotrack/internal/testutil"
	apperrors "thermotrack/pkg/errors"
)

func newTestAPIKeyService(env *testEnv) *DeviceAPIKeyService {
	s := NewDeviceAPIKeyService(env.repos, env.access)
	s.cost = bcrypt.MinCost
	return s
}

func TestDeviceAPIKeyService_GenerateValidateRevoke(t *testing.T) {
	env := newTestEnv(t)
	keys := newTestAPIKeyService(env)
	ctx := context.Background()

	owner := env.actor(t, "owner", models.RoleUser)
	room := testutil.CreateRoom(t, env.db, &owner.UserID, "R1")
	other := testutil.CreateRoom(t, env.db, &owner.UserID, "R2")

	created, err := keys.GenerateAPIKey(ctx, owner, room.ID, APIKeyInput{Description: "gateway", ExpiresInHours: 24})
	require.NoError(t, err)
	require.NotEmpty(t, created.APIKey)
	require.NotNil(t, created.ExpiresAt)
	assert.True(t, created.IsActive)

	require.NoError(t, keys.ValidateAPIKey(ctx, created.APIKey, room.ID))

	err = keys.ValidateAPIKey(ctx, created.APIKey, other.ID)
	assert.True(t, apperrors.IsUnauthorizedError(err))

	err = keys.ValidateAPIKey(ctx, "not-a-key", room.ID)
	assert.True(t, apperrors.IsUnauthorizedError(err))

	err = keys.ValidateAPIKey(ctx, "", room.ID)
	assert.True(t, apperrors.IsUnauthorizedError(err))

	listed, err := keys.ListAPIKeys(ctx, owner, room.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].APIKey)
	assert.Equal(t, "gateway", listed[0].Description)

	require.NoError(t, keys.RevokeAPIKey(ctx, owner, created.ID))
	err = keys.ValidateAPIKey(ctx, created.APIKey, room.ID)
	assert.True(t, apperrors.IsUnauthorizedError(err))
}

func TestDeviceAPIKeyService_ExpiredKey(t *testing.T) {
	env := newTestEnv(t)
	keys := newTestAPIKeyService(env)
	ctx := context.Background()

	owner := env.actor(t, "owner", models.RoleUser)
	room := testutil.CreateRoom(t, env.db, &owner.UserID, "R1")

	created, err := keys.GenerateAPIKey(ctx, owner, room.ID, APIKeyInput{ExpiresInHours: 1})
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, env.db.Model(&models.DeviceAPIKey{}).Where("id = ?", created.ID).Update("expires_at", past).Error)

	err = keys.ValidateAPIKey(ctx, created.APIKey, room.ID)
	assert.True(t, apperrors.IsUnauthorizedError(err))
}

func TestDeviceAPIKeyService_Authorization(t *testing.T) {
	env := newTestEnv(t)
	keys := newTestAPIKeyService(env)
	ctx := context.Background()

	owner := env.actor(t, "owner", models.RoleUser)
	guest := env.actor(t, "guest", models.RoleUser)
	admin := env.actor(t, "admin", models.RoleAdmin)
	room := testutil.CreateRoom(t, env.db, &owner.UserID, "R1")
	require.NoError(t, env.repos.UserRooms.Grant(ctx, guest.UserID, room.ID))

	_, err := keys.GenerateAPIKey(ctx, guest, room.ID, APIKeyInput{})
	assert.True(t, apperrors.IsForbiddenError(err))

	created, err := keys.GenerateAPIKey(ctx, admin, room.ID, APIKeyInput{})
	require.NoError(t, err)
	assert.Nil(t, created.ExpiresAt)

	err = keys.RevokeAPIKey(ctx, guest, created.ID)
	assert.True(t, apperrors.IsForbiddenError(err))

	err = keys.RevokeAPIKey(ctx, guest, 9999)
	assert.True(t, apperrors.IsForbiddenError(err))

	err = keys.RevokeAPIKey(ctx, admin, 9999)
	assert.True(t, apperrors.IsNotFoundError(err))
}
