// Package main implements the entry point of the cards API server, which
// stores users' vocabulary cards and schedules their reviews.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/BogdanBedrinec/cards/internal/config"
	"github.com/BogdanBedrinec/cards/internal/platform/database"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/platform/migrations"
	"github.com/BogdanBedrinec/cards/internal/redact"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server exited with error", slog.String("error", redact.Error(err)))
		os.Exit(1)
	}
}

// run loads configuration, prepares the database and serves HTTP until ctx
// is cancelled.
func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("timezone", cfg.Server.Timezone))

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", slog.String("error", redact.Error(err)))
		}
	}()

	runner, err := migrations.NewRunner(db, cfg.Database.Driver, log)
	if err != nil {
		return err
	}
	if err := runner.Up(ctx); err != nil {
		return err
	}

	app, err := newApplication(cfg, log, db)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cfg.Server.Port, err)
	}

	return app.serve(ctx, ln)
}
