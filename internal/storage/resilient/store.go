package resilient

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"

	"github.com/felixgeelhaar/learnhub/internal/storage"
)

// Config holds the resilience settings for a remote store
type Config struct {
	// MaxAttempts per operation, including the first (default: 3)
	MaxAttempts int

	// InitialDelay before the first retry (default: 100ms)
	InitialDelay time.Duration

	// FailureThreshold is the consecutive failures that open the breaker (default: 5)
	FailureThreshold uint32

	// OpenTimeout is how long the breaker stays open (default: 30s)
	OpenTimeout time.Duration

	// MaxConcurrent limits in-flight calls (default: 16)
	MaxConcurrent int

	// Logger for resilience events
	Logger *slog.Logger
}

// DefaultConfig returns defaults suited to a nearby Redis or PostgreSQL
func DefaultConfig() Config {
	return Config{
		MaxAttempts:      3,
		InitialDelay:     100 * time.Millisecond,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		MaxConcurrent:    16,
	}
}

// Store wraps a storage.Store with retry, a circuit breaker and a bulkhead.
// A missing key is a normal answer and never counts as a failure.
type Store struct {
	inner          storage.Store
	name           string
	circuitBreaker circuitbreaker.CircuitBreaker[json.RawMessage]
	retrier        retry.Retry[json.RawMessage]
	bulkhead       bulkhead.Bulkhead[json.RawMessage]
	logger         *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// Wrap decorates inner. name identifies the backend in logs.
func Wrap(inner storage.Store, name string, cfg Config) *Store {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{inner: inner, name: name, logger: logger}

	s.circuitBreaker = circuitbreaker.New[json.RawMessage](circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(from, to circuitbreaker.State) {
			s.logger.Warn("storage circuit breaker state change",
				"backend", name,
				"from", from.String(),
				"to", to.String())
		},
	})

	s.retrier = retry.New[json.RawMessage](retry.Config{
		MaxAttempts:   cfg.MaxAttempts,
		InitialDelay:  cfg.InitialDelay,
		MaxDelay:      2 * time.Second,
		Multiplier:    2.0,
		BackoffPolicy: retry.BackoffExponential,
		Jitter:        true,
		IsRetryable:   isRetryable,
	})

	s.bulkhead = bulkhead.New[json.RawMessage](bulkhead.Config{
		MaxConcurrent: cfg.MaxConcurrent,
		MaxQueue:      cfg.MaxConcurrent * 4,
		QueueTimeout:  5 * time.Second,
	})

	return s
}

func isRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (s *Store) execute(ctx context.Context, op func(ctx context.Context) (json.RawMessage, error)) (json.RawMessage, error) {
	return s.circuitBreaker.Execute(ctx, func(ctx context.Context) (json.RawMessage, error) {
		return s.retrier.Do(ctx, func(ctx context.Context) (json.RawMessage, error) {
			return s.bulkhead.Execute(ctx, op)
		})
	})
}

// Get implements storage.Store
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	missing := false
	value, err := s.execute(ctx, func(ctx context.Context) (json.RawMessage, error) {
		v, err := s.inner.Get(ctx, key)
		if errors.Is(err, storage.ErrNotFound) {
			missing = true
			return nil, nil
		}
		return v, err
	})
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, storage.ErrNotFound
	}
	return value, nil
}

// Set implements storage.Store
func (s *Store) Set(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.execute(ctx, func(ctx context.Context) (json.RawMessage, error) {
		return nil, s.inner.Set(ctx, key, value)
	})
	return err
}

// Remove implements storage.Store
func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.execute(ctx, func(ctx context.Context) (json.RawMessage, error) {
		return nil, s.inner.Remove(ctx, key)
	})
	return err
}

// Close closes the wrapped store when it holds connections
func (s *Store) Close() error {
	if c, ok := s.inner.(storage.Closer); ok {
		return c.Close()
	}
	return nil
}
