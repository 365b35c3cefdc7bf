package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Event Interface and Base Event
// -----------------------------------------------------------------------------

// Event represents a domain event
type Event interface {
	// EventID returns the unique identifier for this event
	EventID() uuid.UUID
	// EventType returns the type name of this event
	EventType() string
	// OccurredAt returns when this event occurred
	OccurredAt() time.Time
	// AggregateID returns the ID of the session that produced this event
	AggregateID() uuid.UUID
}

// BaseEvent provides common event fields
type BaseEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateUUID uuid.UUID `json:"session_id"`
}

// NewBaseEvent creates a new BaseEvent
func NewBaseEvent(eventType string, sessionID SessionID, at time.Time) BaseEvent {
	return BaseEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     at,
		AggregateUUID: sessionID.UUID(),
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseEvent) EventType() string      { return e.Type }
func (e BaseEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e BaseEvent) AggregateID() uuid.UUID { return e.AggregateUUID }

// -----------------------------------------------------------------------------
// Event Handler and Dispatcher
// -----------------------------------------------------------------------------

// EventHandler processes domain events
type EventHandler func(event Event)

// EventDispatcher fans events out to in-process subscribers
type EventDispatcher struct {
	mu          sync.RWMutex
	handlers    map[string][]EventHandler
	allHandlers []EventHandler
}

// NewEventDispatcher creates a new event dispatcher
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[string][]EventHandler),
	}
}

// Subscribe registers a handler for a specific event type
func (d *EventDispatcher) Subscribe(eventType string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (d *EventDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.allHandlers = append(d.allHandlers, handler)
}

// Publish dispatches an event to all registered handlers
func (d *EventDispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, h := range d.handlers[event.EventType()] {
		h(event)
	}
	for _, h := range d.allHandlers {
		h(event)
	}
}

// -----------------------------------------------------------------------------
// Practice Events
// -----------------------------------------------------------------------------

const (
	EventAttemptRecorded    = "attempt.recorded"
	EventDifficultyAdvanced = "difficulty.advanced"
	EventStatsReset         = "stats.reset"
)

// AttemptRecordedEvent is published after every graded submission
type AttemptRecordedEvent struct {
	BaseEvent
	QuestionID   string        `json:"question_id"`
	Category     Category      `json:"category"`
	Difficulty   Difficulty    `json:"difficulty"`
	Correct      bool          `json:"correct"`
	Revealed     bool          `json:"revealed"`
	PointsEarned int           `json:"points_earned"`
	TimeSpentMs  int64         `json:"time_spent_ms"`
	Score        int           `json:"score"`
	Streak       int           `json:"streak"`
}

// NewAttemptRecordedEvent creates an attempt event from a question and its result
func NewAttemptRecordedEvent(sessionID SessionID, q *Question, res AttemptResult, score, streak int, at time.Time) AttemptRecordedEvent {
	return AttemptRecordedEvent{
		BaseEvent:    NewBaseEvent(EventAttemptRecorded, sessionID, at),
		QuestionID:   q.ID,
		Category:     q.Category,
		Difficulty:   q.Difficulty,
		Correct:      res.IsCorrect,
		Revealed:     res.Revealed,
		PointsEarned: res.PointsEarned,
		TimeSpentMs:  res.TimeSpent.Milliseconds(),
		Score:        score,
		Streak:       streak,
	}
}

// DifficultyAdvancedEvent is published when a learner moves up a tier
type DifficultyAdvancedEvent struct {
	BaseEvent
	Category Category   `json:"category"`
	From     Difficulty `json:"from"`
	To       Difficulty `json:"to"`
}

// NewDifficultyAdvancedEvent creates a tier advance event
func NewDifficultyAdvancedEvent(sessionID SessionID, category Category, from, to Difficulty, at time.Time) DifficultyAdvancedEvent {
	return DifficultyAdvancedEvent{
		BaseEvent: NewBaseEvent(EventDifficultyAdvanced, sessionID, at),
		Category:  category,
		From:      from,
		To:        to,
	}
}

// StatsResetEvent is published when a learner wipes their progress
type StatsResetEvent struct {
	BaseEvent
	PreviousScore int `json:"previous_score"`
}

// NewStatsResetEvent creates a reset event
func NewStatsResetEvent(sessionID SessionID, previousScore int, at time.Time) StatsResetEvent {
	return StatsResetEvent{
		BaseEvent:     NewBaseEvent(EventStatsReset, sessionID, at),
		PreviousScore: previousScore,
	}
}
