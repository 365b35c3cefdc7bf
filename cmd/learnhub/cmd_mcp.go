package main

import (
	"fmt"

	"github.com/felixgeelhaar/learnhub/internal/events"
	"github.com/felixgeelhaar/learnhub/internal/game"
	mcpserver "github.com/felixgeelhaar/learnhub/internal/mcp"
)

// cmdMCP starts the MCP server on stdio, or on HTTP with --http ADDR
func cmdMCP(args []string) error {
	addr := ""
	if len(args) > 0 {
		if args[0] != "--http" || len(args) < 2 {
			return fmt.Errorf("usage: learnhub mcp [--http ADDR]")
		}
		addr = args[1]
	}

	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, addr == "")
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpserver.NewServer(mcpserver.Config{
		Questions: a.bank,
		Validator: a.engine,
		Store:     a.backend.Store,
		Board:     a.board,
		Publisher: a.publisher,
		Game: game.Config{
			QuestionsPerTier: a.cfg.Game.QuestionsPerTier,
			AvoidRepeats:     a.cfg.Game.AvoidRepeats,
		},
		Version:          Version,
		SubmitsPerSecond: 5,
		Logger:           a.logger,
	})
	defer srv.Close()

	if addr != "" {
		a.logger.Info("mcp server listening", "addr", addr)
		return srv.ServeHTTP(ctx, addr)
	}
	return srv.ServeStdio(ctx)
}

// cmdWorker consumes game events from RabbitMQ into the attempt history
func cmdWorker() error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.backend.History == nil {
		return errNoHistory
	}
	if a.conn == nil {
		return fmt.Errorf("events are disabled (set events.enabled and rabbitmq_url in secrets.yaml)")
	}

	consumer := events.NewConsumer(a.conn, a.backend.History, events.ConsumerConfig{Logger: a.logger})
	if err := consumer.Start(ctx); err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	a.logger.Info("worker started", "queue", events.QueueName)

	<-ctx.Done()
	consumer.Stop()
	a.logger.Info("worker stopped")
	return nil
}
