// Package events delivers game events to RabbitMQ and to the local
// attempt history.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/felixgeelhaar/learnhub/internal/domain"
)

// Publisher delivers domain events somewhere outside the session
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Nop discards every event
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, domain.Event) error { return nil }

// AMQPPublisher publishes events to the RabbitMQ event queue
type AMQPPublisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewAMQPPublisher creates a publisher on conn
func NewAMQPPublisher(conn *Connection, logger *slog.Logger) *AMQPPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPPublisher{conn: conn, logger: logger}
}

// Publish implements Publisher
func (p *AMQPPublisher) Publish(ctx context.Context, event domain.Event) error {
	msg := amqp.Publishing{
		MessageId: event.EventID().String(),
		Type:      event.EventType(),
		Timestamp: event.OccurredAt(),
	}
	if err := p.conn.PublishJSON(ctx, QueueName, msg, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.EventType(), err)
	}

	p.logger.Debug("published event",
		"event_id", event.EventID(),
		"type", event.EventType(),
		"session_id", event.AggregateID(),
	)
	return nil
}

// AttemptRecorder persists attempt events, e.g. the SQLite attempt log
type AttemptRecorder interface {
	Record(ctx context.Context, event domain.AttemptRecordedEvent) error
}

// HistoryPublisher writes attempt events straight to a recorder and
// ignores every other event type
type HistoryPublisher struct {
	recorder AttemptRecorder
}

// NewHistoryPublisher creates a publisher feeding recorder
func NewHistoryPublisher(recorder AttemptRecorder) *HistoryPublisher {
	return &HistoryPublisher{recorder: recorder}
}

// Publish implements Publisher
func (h *HistoryPublisher) Publish(ctx context.Context, event domain.Event) error {
	switch e := event.(type) {
	case domain.AttemptRecordedEvent:
		return h.recorder.Record(ctx, e)
	case *domain.AttemptRecordedEvent:
		return h.recorder.Record(ctx, *e)
	}
	return nil
}

// Multi fans an event out to several publishers. Every publisher is tried;
// failures are joined.
type Multi []Publisher

// Publish implements Publisher
func (m Multi) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DispatcherPublisher forwards events to an in-process dispatcher
type DispatcherPublisher struct {
	Dispatcher *domain.EventDispatcher
}

// Publish implements Publisher
func (d DispatcherPublisher) Publish(_ context.Context, event domain.Event) error {
	d.Dispatcher.Publish(event)
	return nil
}
