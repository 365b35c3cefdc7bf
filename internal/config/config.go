// Package config loads the learner's settings from ~/.learnhub, .env files
// and LEARNHUB_* environment variables, in increasing precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/felixgeelhaar/learnhub/internal/domain"
	"github.com/felixgeelhaar/learnhub/internal/storage/backend"
	"github.com/felixgeelhaar/learnhub/internal/storage/redis"
	"github.com/felixgeelhaar/learnhub/internal/storage/resilient"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "LEARNHUB_"

// loadDotEnv reads .env from the working directory and from dir. Variables
// already set in the environment win.
func loadDotEnv(dir string) error {
	for _, path := range []string{".env", filepath.Join(dir, ".env")} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// applyEnv overrides cfg with LEARNHUB_* variables
func applyEnv(cfg *LocalConfig) {
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	cfg.Storage.Backend = getEnv("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Path = getEnv("STORAGE_PATH", cfg.Storage.Path)
	cfg.Storage.HistoryPath = getEnv("HISTORY_PATH", cfg.Storage.HistoryPath)
	cfg.Storage.Postgres.DSN = getEnv("POSTGRES_DSN", cfg.Storage.Postgres.DSN)
	cfg.Storage.Redis.Addr = getEnv("REDIS_ADDR", cfg.Storage.Redis.Addr)
	cfg.Storage.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Storage.Redis.Password)
	cfg.Storage.Redis.DB = getEnvInt("REDIS_DB", cfg.Storage.Redis.DB)

	cfg.Events.Enabled = getEnvBool("EVENTS_ENABLED", cfg.Events.Enabled)
	cfg.Events.URL = getEnv("RABBITMQ_URL", cfg.Events.URL)

	cfg.Game.MatchThreshold = getEnvFloat("MATCH_THRESHOLD", cfg.Game.MatchThreshold)
	cfg.Game.QuestionsPerTier = getEnvInt("QUESTIONS_PER_TIER", cfg.Game.QuestionsPerTier)
	cfg.Game.AvoidRepeats = getEnvBool("AVOID_REPEATS", cfg.Game.AvoidRepeats)
	cfg.Game.QuestionsDir = getEnv("QUESTIONS_DIR", cfg.Game.QuestionsDir)

	cfg.Player.Name = getEnv("PLAYER_NAME", cfg.Player.Name)
}

// Validate rejects settings the game cannot run with
func (c *LocalConfig) Validate() error {
	var problems []string

	if _, err := c.SlogLevel(); err != nil {
		problems = append(problems, err.Error())
	}
	if !slices.Contains(backend.Drivers(), strings.ToLower(c.Storage.Backend)) {
		problems = append(problems, fmt.Sprintf("storage.backend %q must be one of %s",
			c.Storage.Backend, strings.Join(backend.Drivers(), ", ")))
	}
	if strings.EqualFold(c.Storage.Backend, backend.DriverPostgres) && c.Storage.Postgres.DSN == "" {
		problems = append(problems, "postgres backend needs postgres_dsn in secrets.yaml or LEARNHUB_POSTGRES_DSN")
	}
	if c.Events.Enabled && c.Events.URL == "" {
		problems = append(problems, "events need rabbitmq_url in secrets.yaml or LEARNHUB_RABBITMQ_URL")
	}
	if c.Game.MatchThreshold <= 0 || c.Game.MatchThreshold > 1 {
		problems = append(problems, fmt.Sprintf("game.match_threshold %v must be in (0, 1]", c.Game.MatchThreshold))
	}
	if c.Game.QuestionsPerTier < 1 {
		problems = append(problems, fmt.Sprintf("game.questions_per_tier %d must be at least 1", c.Game.QuestionsPerTier))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

// SlogLevel parses LogLevel
func (c *LocalConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q must be debug, info, warn or error", c.LogLevel)
	}
	return level, nil
}

// BackendConfig converts the storage section for backend.Open
func (c *LocalConfig) BackendConfig(logger *slog.Logger) backend.Config {
	return backend.Config{
		Driver:      c.Storage.Backend,
		Path:        c.Storage.Path,
		DSN:         c.Storage.Postgres.DSN,
		HistoryPath: c.Storage.HistoryPath,
		Redis: redis.Options{
			Addr:     c.Storage.Redis.Addr,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
			Prefix:   c.Storage.Redis.Prefix,
			TTL:      time.Duration(c.Storage.Redis.TTLSeconds) * time.Second,
		},
		Resilience: resilient.Config{
			MaxAttempts:      c.Storage.RetryAttempts,
			FailureThreshold: uint32(max(c.Storage.FailureThreshold, 0)),
		},
		Logger: logger,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
