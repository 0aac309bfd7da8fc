package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thermotrack/internal/models"
	"thermotrack/internal/testutil"
	"thermotrack/pkg/logger"
)

func TestWorkerService_Sweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	room := testutil.CreateRoom(t, env.db, nil, "Plant room")
	silent := testutil.CreateDevice(t, env.db, room.ID, "dht-silent")
	chatty := testutil.CreateDevice(t, env.db, room.ID, "dht-chatty")

	now := time.Now().UTC().Add(30 * time.Minute)
	require.NoError(t, env.repos.Devices.Touch(ctx, chatty.ID, now.Add(-time.Minute)))

	worker := NewWorkerService(env.repos.Devices, time.Minute, 10*time.Minute, logger.Discard())
	worker.now = func() time.Time { return now }

	assert.Equal(t, int64(1), worker.Sweep(ctx))
	assert.Zero(t, worker.Sweep(ctx))

	got, err := env.repos.Devices.GetDeviceByID(ctx, silent.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceInactive, got.Status)

	got, err = env.repos.Devices.GetDeviceByID(ctx, chatty.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DeviceActive, got.Status)
}

func TestWorkerService_StartStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)

	worker := NewWorkerService(env.repos.Devices, 10*time.Millisecond, time.Hour, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
