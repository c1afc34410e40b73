package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/BogdanBedrinec/cards/internal/api"
	"github.com/BogdanBedrinec/cards/internal/config"
	"github.com/BogdanBedrinec/cards/internal/domain/srs"
	"github.com/BogdanBedrinec/cards/internal/platform/database"
	"github.com/BogdanBedrinec/cards/internal/service"
	"github.com/BogdanBedrinec/cards/internal/service/auth"
	"github.com/BogdanBedrinec/cards/internal/store"
)

// application holds the shared dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cardStore  store.CardStore
	jwtService auth.JWTService
	services   api.Services
}

// newApplication wires stores and services over an open, migrated database.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	app.cardStore, err = database.NewCardStore(cfg.Database.Driver, db, logger)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{service.WithLocation(cfg.Server.Location())}

	if app.services.Cards, err = service.NewCardService(app.cardStore, srs.NewDefaultService(), logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}
	if app.services.Queries, err = service.NewQueryService(app.cardStore, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create query service: %w", err)
	}
	if app.services.Decks, err = service.NewDeckService(app.cardStore, logger); err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}
	if app.services.Bulk, err = service.NewBulkService(app.cardStore, logger); err != nil {
		return nil, fmt.Errorf("failed to create bulk service: %w", err)
	}
	if app.services.Transfers, err = service.NewTransferService(app.cardStore, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create transfer service: %w", err)
	}
	if app.services.Stats, err = service.NewStatsService(app.cardStore, logger, opts...); err != nil {
		return nil, fmt.Errorf("failed to create stats service: %w", err)
	}

	return app, nil
}

// router builds the HTTP handler for the application.
func (app *application) router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Services:       app.services,
		JWTService:     app.jwtService,
		Logger:         app.logger,
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		MaxBodyBytes:   app.config.Import.MaxBodyBytes,
	})
}
