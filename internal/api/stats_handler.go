package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/BogdanBedrinec/cards/internal/api/shared"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/service"
)

// StatsHandler serves review statistics.
type StatsHandler struct {
	stats  service.StatsService
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats service.StatsService, logger *slog.Logger) *StatsHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StatsHandler")
	}

	return &StatsHandler{
		stats:  stats,
		logger: logger.With(slog.String("component", "stats_handler")),
	}
}

// GetStats handles GET /cards/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	stats, err := h.stats.Get(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute statistics")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, StatsResponse{
		TotalCards:       stats.TotalCards,
		DueNow:           stats.DueNow,
		ReviewedToday:    stats.ReviewedToday,
		TotalReviews:     stats.TotalReviews,
		TotalCorrect:     stats.TotalCorrect,
		Accuracy:         stats.Accuracy,
		Learned:          stats.Learned,
		Remaining:        stats.Remaining,
		LearnedThreshold: stats.LearnedThreshold,
	})
}

// Health handles GET /health. It does not touch the store.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{OK: true, Time: time.Now().UTC()})
}
