package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LocalConfig is the learner's ~/.learnhub/config.yaml
type LocalConfig struct {
	LogLevel string        `yaml:"log_level"`
	Storage  StorageConfig `yaml:"storage"`
	Events   EventsConfig  `yaml:"events"`
	Game     GameConfig    `yaml:"game"`
	Player   PlayerConfig  `yaml:"player"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	// Backend is one of memory, local, sqlite, postgres, redis
	Backend string `yaml:"backend"`

	// Path is the data directory (local) or database file (sqlite).
	// Relative paths resolve against ~/.learnhub.
	Path string `yaml:"path,omitempty"`

	// HistoryPath is the SQLite attempt history; empty disables it for
	// backends other than sqlite
	HistoryPath string `yaml:"history_path,omitempty"`

	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`

	// RetryAttempts and FailureThreshold tune the remote-backend wrapper
	RetryAttempts    int `yaml:"retry_attempts"`
	FailureThreshold int `yaml:"failure_threshold"`
}

// PostgresConfig holds PostgreSQL settings
type PostgresConfig struct {
	DSN string `yaml:"-"` // Loaded from secrets.yaml
}

// RedisConfig holds Redis settings
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	DB         int    `yaml:"db"`
	Prefix     string `yaml:"prefix"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Password   string `yaml:"-"` // Loaded from secrets.yaml
}

// EventsConfig enables publishing game events to RabbitMQ
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"-"` // Loaded from secrets.yaml
}

// GameConfig tunes grading and progression
type GameConfig struct {
	MatchThreshold   float64 `yaml:"match_threshold"`
	QuestionsPerTier int     `yaml:"questions_per_tier"`
	AvoidRepeats     bool    `yaml:"avoid_repeats"`

	// QuestionsDir holds extra YAML question packs
	QuestionsDir string `yaml:"questions_dir,omitempty"`
}

// PlayerConfig sets the leaderboard identity
type PlayerConfig struct {
	// Name replaces the generated AdjectiveNoun name for a new profile
	Name string `yaml:"name,omitempty"`
}

// SecretsConfig holds connection strings loaded from secrets.yaml
type SecretsConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
	RabbitMQURL   string `yaml:"rabbitmq_url,omitempty"`
}

// LearnhubDir returns the path to ~/.learnhub
func LearnhubDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".learnhub"), nil
}

// EnsureLearnhubDir creates ~/.learnhub and subdirectories if they don't exist
func EnsureLearnhubDir() (string, error) {
	dir, err := LearnhubDir()
	if err != nil {
		return "", err
	}

	subdirs := []string{
		"",
		"logs",
		"data",
		"packs",
	}

	for _, subdir := range subdirs {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns sensible defaults for local play
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		LogLevel: "info",
		Storage: StorageConfig{
			Backend:          "local",
			HistoryPath:      "history.db",
			RetryAttempts:    3,
			FailureThreshold: 5,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "learnhub:",
			},
		},
		Game: GameConfig{
			MatchThreshold:   0.8,
			QuestionsPerTier: 3,
		},
	}
}

// LoadLocalConfig loads ~/.learnhub/config.yaml, the optional .env files
// and LEARNHUB_* environment overrides
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := LearnhubDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(dir)
}

// LoadFrom is LoadLocalConfig rooted at dir
func LoadFrom(dir string) (*LocalConfig, error) {
	if err := loadDotEnv(dir); err != nil {
		return nil, err
	}

	cfg := DefaultLocalConfig()

	configPath := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// defaults
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	applyEnv(cfg)
	cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	cfg.resolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePaths fills backend defaults and anchors relative paths at dir
func (c *LocalConfig) resolvePaths(dir string) {
	if c.Storage.Path == "" {
		switch c.Storage.Backend {
		case "sqlite":
			c.Storage.Path = "learnhub.db"
		default:
			c.Storage.Path = "data"
		}
	}
	c.Storage.Path = anchor(dir, c.Storage.Path)
	if c.Storage.HistoryPath != "" {
		c.Storage.HistoryPath = anchor(dir, c.Storage.HistoryPath)
	}
	if c.Game.QuestionsDir != "" {
		c.Game.QuestionsDir = anchor(dir, c.Game.QuestionsDir)
	}
}

func anchor(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

// loadSecrets loads connection strings from secrets.yaml
func loadSecrets(dir string, cfg *LocalConfig) error {
	secretsPath := filepath.Join(dir, "secrets.yaml")

	data, err := os.ReadFile(secretsPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	cfg.Storage.Postgres.DSN = secrets.PostgresDSN
	cfg.Storage.Redis.Password = secrets.RedisPassword
	cfg.Events.URL = secrets.RabbitMQURL
	return nil
}

// SaveLocalConfig saves configuration to ~/.learnhub/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureLearnhubDir()
	if err != nil {
		return err
	}
	return SaveTo(dir, cfg)
}

// SaveTo writes cfg to dir/config.yaml
func SaveTo(dir string, cfg *LocalConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveSecrets writes connection strings to dir/secrets.yaml, readable by
// the owner only
func SaveSecrets(dir string, secrets SecretsConfig) error {
	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}
	return nil
}
