package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lmittmann/tint"

	"github.com/felixgeelhaar/learnhub/internal/config"
	"github.com/felixgeelhaar/learnhub/internal/domain"
	"github.com/felixgeelhaar/learnhub/internal/events"
	"github.com/felixgeelhaar/learnhub/internal/game"
	"github.com/felixgeelhaar/learnhub/internal/leaderboard"
	"github.com/felixgeelhaar/learnhub/internal/questionbank"
	"github.com/felixgeelhaar/learnhub/internal/storage/backend"
	"github.com/felixgeelhaar/learnhub/internal/validator"
)

// app holds everything a command needs, built from ~/.learnhub
type app struct {
	dir       string
	cfg       *config.LocalConfig
	logger    *slog.Logger
	backend   *backend.Backend
	bank      *questionbank.Bank
	engine    *validator.Engine
	board     *leaderboard.Board
	players   *leaderboard.Players
	publisher events.Publisher
	conn      *events.Connection
	logFile   *os.File
}

// newApp loads the configuration and opens storage. Interactive commands
// pass quiet to keep informational logs off the terminal.
func newApp(ctx context.Context, quiet bool) (*app, error) {
	dir, err := config.EnsureLearnhubDir()
	if err != nil {
		return nil, fmt.Errorf("prepare learnhub dir: %w", err)
	}

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	consoleLevel := level
	if quiet && consoleLevel < slog.LevelWarn {
		consoleLevel = slog.LevelWarn
	}
	logFile, logger, err := setupLogging(dir, level, consoleLevel)
	if err != nil {
		return nil, err
	}

	a := &app{dir: dir, cfg: cfg, logger: logger, logFile: logFile}

	a.backend, err = backend.Open(ctx, cfg.BackendConfig(logger))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	a.bank, err = questionbank.NewBuiltin(cfg.Game.QuestionsDir)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.engine = validator.New(validator.Options{MatchThreshold: cfg.Game.MatchThreshold})

	a.board = leaderboard.NewBoard(a.backend.Store, logger)
	if _, err := a.board.Seed(ctx); err != nil {
		logger.Warn("failed to seed leaderboard", "error", err)
	}
	a.players = leaderboard.NewPlayers(a.backend.Store, a.board,
		leaderboard.WithDefaultName(cfg.Player.Name),
		leaderboard.WithLogger(logger),
	)

	a.publisher = a.openPublisher()

	return a, nil
}

// openPublisher routes game events to RabbitMQ when enabled, where the
// worker command records attempts. Otherwise attempts go straight into
// the local history.
func (a *app) openPublisher() events.Publisher {
	if a.cfg.Events.Enabled {
		conn, err := events.NewConnection(a.cfg.Events.URL, a.logger)
		if err == nil {
			a.conn = conn
			return events.NewAMQPPublisher(conn, a.logger)
		}
		a.logger.Warn("event publishing disabled", "error", err)
	}
	if a.backend.History != nil {
		return events.NewHistoryPublisher(a.backend.History)
	}
	return events.Nop{}
}

// newSession creates a game session whose stats feed the player profile
func (a *app) newSession(ctx context.Context) *game.Session {
	sess := game.NewSession(ctx, a.backend.Store, a.bank, a.engine, game.Config{
		QuestionsPerTier: a.cfg.Game.QuestionsPerTier,
		AvoidRepeats:     a.cfg.Game.AvoidRepeats,
		Logger:           a.logger,
	})
	sess.SetPublisher(a.publisher)
	sess.SetStatsHook(func(ctx context.Context, snap domain.StatsSnapshot) {
		if _, err := a.players.SyncStats(ctx, snap); err != nil {
			a.logger.Warn("failed to sync leaderboard", "error", err)
		}
	})
	return sess
}

// Close releases storage, the broker connection and the log file
func (a *app) Close() error {
	var errs []error
	if a.conn != nil {
		errs = append(errs, a.conn.Close())
	}
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// setupLogging writes JSON logs to ~/.learnhub/logs/learnhub.log and
// colored logs to stderr
func setupLogging(dir string, fileLevel, consoleLevel slog.Level) (*os.File, *slog.Logger, error) {
	logPath := filepath.Join(dir, "logs", "learnhub.log")

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(&multiHandler{
		handlers: []slog.Handler{
			slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: fileLevel}),
			tint.NewHandler(os.Stderr, &tint.Options{Level: consoleLevel}),
		},
	})
	slog.SetDefault(logger)

	return logFile, logger, nil
}

// multiHandler logs to multiple handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, handler := range h.handlers {
		if handler.Enabled(ctx, r.Level) {
			if err := handler.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(h.handlers))
	for i, handler := range h.handlers {
		handlers[i] = handler.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
