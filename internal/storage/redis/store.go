package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/learnhub/internal/storage"
)

// DefaultKeyPrefix namespaces every key the store writes
const DefaultKeyPrefix = "learnhub:"

// Options configures the Redis store
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	// TTL expires entries; zero keeps them forever
	TTL time.Duration
}

// Store implements storage.Store on Redis string keys
type Store struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
}

var _ storage.Store = (*Store)(nil)

// Connect creates a client and pings the server
func Connect(ctx context.Context, opts Options) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewStore(client, opts.Prefix, opts.TTL), nil
}

// NewStore wraps an existing client. An empty prefix selects DefaultKeyPrefix.
func NewStore(client *goredis.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

// Get implements storage.Store
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(data), nil
}

// Set implements storage.Store
func (s *Store) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.client.Set(ctx, s.prefix+key, []byte(value), s.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove implements storage.Store
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Close closes the client
func (s *Store) Close() error {
	return s.client.Close()
}
