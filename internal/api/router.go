package api

import (
	"log/slog"
	"net/http"

	apiMiddleware "github.com/BogdanBedrinec/cards/internal/api/middleware"
	"github.com/BogdanBedrinec/cards/internal/service"
	"github.com/BogdanBedrinec/cards/internal/service/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Services bundles the operations exposed over HTTP.
type Services struct {
	Cards     service.CardService
	Queries   service.QueryService
	Decks     service.DeckService
	Bulk      service.BulkService
	Transfers service.TransferService
	Stats     service.StatsService
}

// RouterConfig holds everything NewRouter needs.
type RouterConfig struct {
	Services   Services
	JWTService auth.JWTService
	Logger     *slog.Logger
	// AllowedOrigins is the CORS allow-list. Empty disables CORS headers.
	AllowedOrigins []string
	// MaxBodyBytes caps request bodies. Zero means no limit.
	MaxBodyBytes int64
}

// NewRouter builds the HTTP handler serving the /api routes.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	cardHandler := NewCardHandler(cfg.Services.Cards, cfg.Services.Queries, log)
	deckHandler := NewDeckHandler(cfg.Services.Decks, log)
	bulkHandler := NewBulkHandler(cfg.Services.Bulk, log)
	transferHandler := NewTransferHandler(cfg.Services.Transfers, log)
	statsHandler := NewStatsHandler(cfg.Services.Stats, log)
	authMiddleware := apiMiddleware.NewAuthMiddleware(cfg.JWTService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(log))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Disposition"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(cfg.MaxBodyBytes))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Route("/cards", func(r chi.Router) {
				r.Get("/", cardHandler.ListCards)
				r.Post("/", cardHandler.CreateCard)
				r.Get("/due", cardHandler.ListDueCards)
				r.Get("/all", cardHandler.ListAllCards)

				r.Get("/decks", deckHandler.ListDecks)
				r.Put("/decks/rename", deckHandler.RenameDeck)
				r.Delete("/decks/{name}", deckHandler.RemoveDeck)

				r.Get("/stats", statsHandler.GetStats)
				r.Get("/export", transferHandler.ExportCards)
				r.Post("/import", transferHandler.ImportCards)

				r.Post("/bulk-delete", bulkHandler.BulkDelete)
				r.Post("/bulk-move", bulkHandler.BulkMove)

				r.Get("/{id}", cardHandler.GetCard)
				r.Put("/{id}", cardHandler.EditCard)
				r.Delete("/{id}", cardHandler.DeleteCard)
				r.Put("/{id}/review", cardHandler.ReviewCard)
				r.Post("/{id}/review", cardHandler.ReviewCard)
			})
		})
	})

	return r
}
