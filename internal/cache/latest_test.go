package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermotrack/internal/config"
	"thermotrack/internal/models"
	"thermotrack/pkg/logger"
	apperrors "thermotrack/pkg/errors"
)

func newTestCache(t *testing.T) (*RedisLatestReadings, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLatestReadings(client, 5*time.Second, "test", logger.Discard()), mr
}

func TestRedisLatestReadings_RoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	temp := 22.5
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c.Set(ctx, 7, map[uint]models.Reading{
		3: {ID: 11, DeviceID: 3, Temperature: &temp, RecordedAt: at},
	})

	assert.True(t, mr.Exists("test:latest:room:7"))

	got, ok := c.Get(ctx, 7)
	require.True(t, ok)
	require.Contains(t, got, uint(3))
	assert.Equal(t, uint(11), got[3].ID)
	assert.Equal(t, 22.5, *got[3].Temperature)
	assert.True(t, got[3].RecordedAt.Equal(at))
}

func TestRedisLatestReadings_ExpiresAndInvalidates(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, 1, map[uint]models.Reading{})
	_, ok := c.Get(ctx, 1)
	assert.True(t, ok)

	mr.FastForward(6 * time.Second)
	_, ok = c.Get(ctx, 1)
	assert.False(t, ok)

	c.Set(ctx, 1, map[uint]models.Reading{})
	c.Invalidate(ctx, 1)
	_, ok = c.Get(ctx, 1)
	assert.False(t, ok)
}

func TestRedisLatestReadings_BackendDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, ok := c.Get(context.Background(), 1)
	assert.False(t, ok)
	c.Set(context.Background(), 1, map[uint]models.Reading{})
	c.Invalidate(context.Background(), 1)
}

func TestRedisLatestReadings_CorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("test:latest:room:2", "not-json"))

	_, ok := c.Get(context.Background(), 2)
	assert.False(t, ok)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := NewRedisClient(config.RedisConfig{Addr: addr})
	assert.Nil(t, client)
	assert.Equal(t, apperrors.ErrorTypeExternalService, apperrors.TypeOf(err))
}

func TestNoop(t *testing.T) {
	var c LatestReadings = Noop{}
	c.Set(context.Background(), 1, map[uint]models.Reading{})
	_, ok := c.Get(context.Background(), 1)
	assert.False(t, ok)
}

var _ LatestReadings = (*RedisLatestReadings)(nil)
