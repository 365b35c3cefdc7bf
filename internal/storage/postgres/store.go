package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/learnhub/internal/storage"
)

const connectTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS learnhub_kv (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store implements storage.Store on a PostgreSQL table
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

// Connect opens a pool for dsn, verifies it and ensures the schema exists
func Connect(ctx context.Context, dsn string) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := NewStore(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing pool
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the key-value table if missing
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create learnhub_kv: %w", err)
	}
	return nil
}

// Get implements storage.Store
func (s *Store) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, "SELECT value FROM learnhub_kv WHERE key = $1", key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(value), nil
}

// Set implements storage.Store
func (s *Store) Set(ctx context.Context, key string, value json.RawMessage) error {
	query := `
		INSERT INTO learnhub_kv (key, value, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	if _, err := s.pool.Exec(ctx, query, key, string(value)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove implements storage.Store
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM learnhub_kv WHERE key = $1", key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Close releases the pool
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
