package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// Consumer drains the event queue into an AttemptRecorder, so attempts
// published by many players end up in one history database
type Consumer struct {
	conn       *Connection
	recorder   AttemptRecorder
	workers    int
	prefetch   int
	logger     *slog.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Workers  int // Number of concurrent workers
	Prefetch int // Prefetch count per worker
	Logger   *slog.Logger
}

// DefaultConsumerConfig returns sensible defaults
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Workers:  2,
		Prefetch: 10,
	}
}

// NewConsumer creates a new event consumer
func NewConsumer(conn *Connection, recorder AttemptRecorder, cfg ConsumerConfig) *Consumer {
	def := DefaultConsumerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = def.Prefetch
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Consumer{
		conn:     conn,
		recorder: recorder,
		workers:  cfg.Workers,
		prefetch: cfg.Prefetch,
		logger:   cfg.Logger,
	}
}

// Start begins consuming messages
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancelFunc = context.WithCancel(ctx)

	ch := c.conn.Channel()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		QueueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack (manual ack for reliability)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("starting event consumer", "workers", c.workers, "prefetch", c.prefetch)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, msgs)
	}

	return nil
}

func (c *Consumer) worker(ctx context.Context, id int, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case msg, ok := <-msgs:
			if !ok {
				c.logger.Info("message channel closed", "worker_id", id)
				return
			}

			c.processMessage(ctx, id, msg)
		}
	}
}

// acknowledger is the part of amqp.Delivery the consumer settles with
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
	Reject(requeue bool) error
}

func (c *Consumer) processMessage(ctx context.Context, workerID int, msg amqp.Delivery) {
	c.handle(ctx, workerID, msg.Body, msg.Redelivered, msg)
}

// handle records one message body and settles it. Malformed messages are
// dropped; a failed write is requeued once, then dropped.
func (c *Consumer) handle(ctx context.Context, workerID int, body []byte, redelivered bool, ack acknowledger) {
	event, err := DecodeAttempt(body)
	if err != nil {
		c.logger.Error("failed to decode event", "worker_id", workerID, "error", err)
		_ = ack.Reject(false)
		return
	}
	if event == nil {
		_ = ack.Ack(false)
		return
	}

	if err := c.recorder.Record(ctx, *event); err != nil {
		c.logger.Error("failed to record attempt",
			"worker_id", workerID,
			"event_id", event.EventID(),
			"redelivered", redelivered,
			"error", err,
		)
		_ = ack.Nack(false, !redelivered)
		return
	}

	if err := ack.Ack(false); err != nil {
		c.logger.Error("failed to ack message",
			"worker_id", workerID,
			"event_id", event.EventID(),
			"error", err,
		)
	}
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
	c.logger.Info("event consumer stopped")
}

// DecodeAttempt parses an event message. It returns nil without error for
// well-formed events of other types.
func DecodeAttempt(body []byte) (*domain.AttemptRecordedEvent, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if head.Type == "" {
		return nil, fmt.Errorf("unmarshal event: missing type")
	}
	if head.Type != domain.EventAttemptRecorded {
		return nil, nil
	}

	var event domain.AttemptRecordedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return &event, nil
}
