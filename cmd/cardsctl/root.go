package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/BogdanBedrinec/cards/internal/config"
	"github.com/BogdanBedrinec/cards/internal/platform/database"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/platform/migrations"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cardsctl",
		Short: "Administer a cards database",
		Long: `cardsctl works directly against the configured card store.

Configuration is read the same way as by the server: a .env file, an
optional config.yaml and CARDS_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default ./config.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
		newSeedDemoCmd(opts),
		newTokenCmd(opts),
	)

	return cmd
}

// env is an opened database together with its configuration.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *sql.DB
	cards  store.CardStore
}

func (e *env) Close() error {
	return e.db.Close()
}

// loadConfig reads configuration and builds the stderr logger.
func (o *rootOptions) loadConfig(stderr io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadWithOptions(config.Options{
		ConfigFile: o.configFile,
		EnvFiles:   []string{o.envFile},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logger.New(stderr, o.logLevel), nil
}

// open connects to the configured database. With migrate set, pending
// migrations are applied first so that data commands work on a fresh file.
func (o *rootOptions) open(ctx context.Context, stderr io.Writer, migrate bool) (*env, error) {
	cfg, log, err := o.loadConfig(stderr)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	if migrate {
		runner, err := migrations.NewRunner(db, cfg.Database.Driver, log)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if err := runner.Up(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	cards, err := database.NewCardStore(cfg.Database.Driver, db, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &env{cfg: cfg, logger: log, db: db, cards: cards}, nil
}

// parseOwner reads the --owner flag value.
func parseOwner(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("--owner is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("--owner must be a non-nil UUID")
	}
	return id, nil
}
