// Package storage defines the key-value persistence adapter used by the
// game and leaderboard, plus JSON helpers shared by every backend.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNotFound is returned when a key has no stored value
var ErrNotFound = errors.New("not found")

// Well-known keys
const (
	KeyStats          = "learnhub-game-stats"
	KeyLeaderboard    = "learnhub-game-leaderboard"
	KeyPlayer         = "learnhub-game-user"
	KeyDailyChallenge = "daily-challenge"
	KeyDailyCompleted = "daily-completed"
)

// Store is a key-value persistence adapter. Values are JSON documents.
// Remove is idempotent. Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Remove(ctx context.Context, key string) error
}

// Closer is implemented by stores that hold connections
type Closer interface {
	Close() error
}

// LoadJSON decodes the value at key into a T. Missing keys and store errors
// yield fallback; corrupt values are logged and also yield fallback.
func LoadJSON[T any](ctx context.Context, s Store, key string, fallback T) T {
	v, err := TryLoadJSON(ctx, s, key, fallback)
	if err != nil && !errors.Is(err, ErrNotFound) {
		slog.Warn("falling back to default value", "key", key, "error", err)
	}
	return v
}

// TryLoadJSON is LoadJSON that also reports why the fallback was used
func TryLoadJSON[T any](ctx context.Context, s Store, key string, fallback T) (T, error) {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return fallback, err
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback, fmt.Errorf("decode %s: %w", key, err)
	}
	return v, nil
}

// SaveJSON encodes v and stores it at key
func SaveJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// PrefixSeparator joins a namespace and a key
const PrefixSeparator = "/"

// WithPrefix namespaces every key of s, so several learners can share one
// backend without clashing.
func WithPrefix(s Store, prefix string) Store {
	prefix = strings.Trim(prefix, PrefixSeparator)
	if prefix == "" {
		return s
	}
	return &prefixed{inner: s, prefix: prefix + PrefixSeparator}
}

type prefixed struct {
	inner  Store
	prefix string
}

func (p *prefixed) Get(ctx context.Context, key string) (json.RawMessage, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value json.RawMessage) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}
