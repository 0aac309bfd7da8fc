package service

import (
	"context"
	"log/slog"
	"time"

	"thermotrack/internal/metrics"
	"thermotrack/internal/repository"
)

// WorkerService flips devices to inactive once they stop reporting.
// Ingestion flips them back on the next reading.
type WorkerService struct {
	devices      *repository.DeviceRepository
	interval     time.Duration
	offlineAfter time.Duration
	log          *slog.Logger
	now          func() time.Time
}

func NewWorkerService(devices *repository.DeviceRepository, interval, offlineAfter time.Duration, log *slog.Logger) *WorkerService {
	return &WorkerService{
		devices:      devices,
		interval:     interval,
		offlineAfter: offlineAfter,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the liveness sweep every interval until ctx is cancelled
func (w *WorkerService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("liveness worker started", "interval", w.interval.String(), "offline_after", w.offlineAfter.String())

	for {
		select {
		case <-ctx.Done():
			w.log.Info("liveness worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep marks every device silent for longer than offlineAfter as inactive
func (w *WorkerService) Sweep(ctx context.Context) int64 {
	cutoff := w.now().Add(-w.offlineAfter)

	n, err := w.devices.MarkStaleInactive(ctx, cutoff)
	if err != nil {
		w.log.Error("liveness sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		metrics.DevicesMarkedInactiveTotal.Add(float64(n))
		w.log.Info("devices marked inactive", "count", n, "cutoff", cutoff)
	}
	return n
}
