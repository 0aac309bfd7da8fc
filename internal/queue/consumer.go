// Package queue contains the background consumer that reads sensor events
// published by room gateways and stores them as readings.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"thermotrack/internal/config"
	"thermotrack/internal/metrics"
	"thermotrack/internal/service"
	apperrors "thermotrack/pkg/errors"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
	prefetchCount  = 50
	requeueDelay   = time.Second
)

// Ingester stores one sensor event
type Ingester interface {
	IngestEvent(ctx context.Context, event service.SensorEvent) (*service.IngestResult, error)
}

// Consumer reads SensorEvent JSON messages from a durable queue
type Consumer struct {
	url      string
	queue    string
	tag      string
	ingester Ingester
	log      *slog.Logger

	// retryDelay paces redelivery of events that failed on the store
	retryDelay time.Duration
}

func NewConsumer(cfg config.AMQPConfig, ingester Ingester, log *slog.Logger) *Consumer {
	return &Consumer{
		url:      cfg.URL,
		queue:    cfg.Queue,
		tag:      "thermotrack-" + uuid.NewString(),
		ingester: ingester,
		log:      log.With("component", "amqp-consumer", "queue", cfg.Queue),

		retryDelay: requeueDelay,
	}
}

// Run connects to the broker and consumes until ctx is cancelled,
// reconnecting with exponential backoff whenever the connection drops
func (c *Consumer) Run(ctx context.Context) {
	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("failed to dial broker", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = initialBackoff

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if err == nil {
			c.log.Info("consumer stopped")
			return
		}

		c.log.Warn("consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

// consumeLoop returns nil when ctx is cancelled and an error when the
// broker side goes away
func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		c.log.Warn("set QoS failed", "error", err)
	}

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info("consuming sensor events", "consumer_tag", c.tag)

	for {
		select {
		case <-ctx.Done():
			_ = ch.Cancel(c.tag, false)
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.process(ctx, d)
		}
	}
}

// process settles one delivery. Events that failed on the store are
// requeued after a short pause; anything else is rejected without requeue
// so a poison message cannot loop.
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	err := c.handleMessage(ctx, d.Body)
	if err == nil {
		_ = d.Ack(false)
		return
	}

	if transient(err) {
		c.log.Warn("sensor event not stored, requeueing", "error", err, "delivery_tag", d.DeliveryTag)
		sleep(ctx, c.retryDelay)
		_ = d.Nack(false, true)
		return
	}

	c.log.Warn("sensor event rejected", "error", err, "delivery_tag", d.DeliveryTag)
	_ = d.Nack(false, false)
}

// transient reports whether err may succeed on redelivery
func transient(err error) bool {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeDatabase, apperrors.ErrorTypeExternalService:
		return true
	}
	return false
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var event service.SensorEvent
	if err := json.Unmarshal(body, &event); err != nil {
		metrics.ReadingsIngestedTotal.WithLabelValues("amqp", "rejected").Inc()
		return fmt.Errorf("unmarshal: %w", err)
	}

	result, err := c.ingester.IngestEvent(ctx, event)
	if err != nil {
		outcome := "error"
		if apperrors.IsValidationError(err) || apperrors.IsNotFoundError(err) {
			outcome = "rejected"
		}
		metrics.ReadingsIngestedTotal.WithLabelValues("amqp", outcome).Inc()
		return err
	}

	metrics.ReadingsIngestedTotal.WithLabelValues("amqp", "ok").Inc()
	c.log.Debug("sensor event stored", "event", event.Event, "device_id", result.Reading.DeviceID, "alerts", len(result.Alerts))
	return nil
}

// sleep waits for d or until ctx is done; it reports whether to keep going
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
