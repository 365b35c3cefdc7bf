package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/learnhub/internal/config"
	"github.com/felixgeelhaar/learnhub/internal/storage/backend"
)

// cmdConfig shows or initializes the configuration
func cmdConfig(args []string) error {
	subCmd := "show"
	if len(args) > 0 {
		subCmd = args[0]
	}

	switch subCmd {
	case "show":
		return cmdConfigShow()
	case "init":
		return cmdConfigInit()
	case "drivers":
		fmt.Println(strings.Join(backend.Drivers(), "\n"))
		return nil
	default:
		return fmt.Errorf("unknown config command: %s (valid: show, init, drivers)", subCmd)
	}
}

func cmdConfigInit() error {
	dir, err := config.EnsureLearnhubDir()
	if err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config already exists: %s\n", path)
		return nil
	}
	if err := config.SaveTo(dir, config.DefaultLocalConfig()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	fmt.Printf("Put connection strings in %s\n", filepath.Join(dir, "secrets.yaml"))
	return nil
}

func cmdConfigShow() error {
	cfg, err := config.LoadLocalConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	check := func(set bool) string {
		if set {
			return "✓"
		}
		return "✗"
	}

	fmt.Println("learnhub Configuration")
	fmt.Printf("  log_level: %s\n", cfg.LogLevel)

	fmt.Println("\nStorage:")
	fmt.Printf("  backend: %s\n", cfg.Storage.Backend)
	switch cfg.Storage.Backend {
	case backend.DriverLocal, backend.DriverSQLite:
		fmt.Printf("  path: %s\n", cfg.Storage.Path)
	case backend.DriverPostgres:
		fmt.Printf("  dsn: %s\n", check(cfg.Storage.Postgres.DSN != ""))
	case backend.DriverRedis:
		fmt.Printf("  addr: %s db=%d prefix=%s\n", cfg.Storage.Redis.Addr, cfg.Storage.Redis.DB, cfg.Storage.Redis.Prefix)
		fmt.Printf("  password: %s\n", check(cfg.Storage.Redis.Password != ""))
	}
	if cfg.Storage.HistoryPath != "" {
		fmt.Printf("  history: %s\n", cfg.Storage.HistoryPath)
	}
	fmt.Printf("  retries: %d breaker_threshold: %d\n", cfg.Storage.RetryAttempts, cfg.Storage.FailureThreshold)

	fmt.Println("\nEvents:")
	fmt.Printf("  enabled: %t url=%s\n", cfg.Events.Enabled, check(cfg.Events.URL != ""))

	fmt.Println("\nGame:")
	fmt.Printf("  match_threshold: %.2f\n", cfg.Game.MatchThreshold)
	fmt.Printf("  questions_per_tier: %d\n", cfg.Game.QuestionsPerTier)
	fmt.Printf("  avoid_repeats: %t\n", cfg.Game.AvoidRepeats)
	if cfg.Game.QuestionsDir != "" {
		fmt.Printf("  questions_dir: %s\n", cfg.Game.QuestionsDir)
	}

	dir, _ := config.LearnhubDir()
	fmt.Printf("\nConfig path: %s/config.yaml\n", dir)

	return nil
}
