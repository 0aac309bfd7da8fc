// Package cache keeps short-lived copies of the latest reading per device
// of a room so dashboards polling every few seconds skip the database.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"thermotrack/internal/config"
	"thermotrack/internal/metrics"
	"thermotrack/internal/models"
	apperrors "thermotrack/pkg/errors"
)

// LatestReadings caches LatestReadingsForRoom results per room.
// Implementations swallow backend failures: a broken cache is a miss.
type LatestReadings interface {
	Get(ctx context.Context, roomID uint) (map[uint]models.Reading, bool)
	Set(ctx context.Context, roomID uint, latest map[uint]models.Reading)
	Invalidate(ctx context.Context, roomID uint)
}

// NewRedisClient connects and pings Redis
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.NewExternalServiceError("failed to connect to Redis", err)
	}
	return client, nil
}

// RedisLatestReadings stores each room's map as one JSON value with a TTL
type RedisLatestReadings struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	log    *slog.Logger
}

func NewRedisLatestReadings(client *redis.Client, ttl time.Duration, prefix string, log *slog.Logger) *RedisLatestReadings {
	return &RedisLatestReadings{
		client: client,
		ttl:    ttl,
		prefix: prefix,
		log:    log,
	}
}

func (c *RedisLatestReadings) key(roomID uint) string {
	return fmt.Sprintf("%s:latest:room:%d", c.prefix, roomID)
}

func (c *RedisLatestReadings) Get(ctx context.Context, roomID uint) (map[uint]models.Reading, bool) {
	raw, err := c.client.Get(ctx, c.key(roomID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("latest cache get failed", "room_id", roomID, "error", err)
			metrics.LatestCacheTotal.WithLabelValues("error").Inc()
			return nil, false
		}
		metrics.LatestCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}

	var latest map[uint]models.Reading
	if err := json.Unmarshal(raw, &latest); err != nil {
		c.log.Warn("latest cache entry unreadable", "room_id", roomID, "error", err)
		metrics.LatestCacheTotal.WithLabelValues("error").Inc()
		return nil, false
	}

	metrics.LatestCacheTotal.WithLabelValues("hit").Inc()
	return latest, true
}

func (c *RedisLatestReadings) Set(ctx context.Context, roomID uint, latest map[uint]models.Reading) {
	raw, err := json.Marshal(latest)
	if err != nil {
		c.log.Warn("latest cache encode failed", "room_id", roomID, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.key(roomID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("latest cache set failed", "room_id", roomID, "error", err)
	}
}

func (c *RedisLatestReadings) Invalidate(ctx context.Context, roomID uint) {
	if err := c.client.Del(ctx, c.key(roomID)).Err(); err != nil {
		c.log.Warn("latest cache invalidate failed", "room_id", roomID, "error", err)
	}
}

// Noop is used when Redis is disabled or unreachable
type Noop struct{}

func (Noop) Get(context.Context, uint) (map[uint]models.Reading, bool) { return nil, false }
func (Noop) Set(context.Context, uint, map[uint]models.Reading)        {}
func (Noop) Invalidate(context.Context, uint)                          {}
