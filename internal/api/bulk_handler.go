package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/BogdanBedrinec/cards/internal/api/shared"
	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/service"
)

// BulkHandler handles mutations of many cards selected by id.
type BulkHandler struct {
	bulk   service.BulkService
	logger *slog.Logger
}

// NewBulkHandler creates a new BulkHandler.
func NewBulkHandler(bulk service.BulkService, logger *slog.Logger) *BulkHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for BulkHandler")
	}

	return &BulkHandler{
		bulk:   bulk,
		logger: logger.With(slog.String("component", "bulk_handler")),
	}
}

// BulkDelete handles POST /cards/bulk-delete
func (h *BulkHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req BulkDeleteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if len(req.IDs) > service.MaxBulkIDs {
		HandleAPIError(w, r, tooManyIDs(), "")
		return
	}

	ids := parseIDs(req.IDs)
	if len(ids) == 0 {
		shared.RespondWithJSON(w, r, http.StatusOK, BulkDeleteResponse{})
		return
	}

	deleted, err := h.bulk.Delete(r.Context(), ownerID, ids)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BulkDeleteResponse{Deleted: deleted})
}

// BulkMove handles POST /cards/bulk-move
func (h *BulkHandler) BulkMove(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req BulkMoveRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if len(req.IDs) > service.MaxBulkIDs {
		HandleAPIError(w, r, tooManyIDs(), "")
		return
	}

	ids := parseIDs(req.IDs)
	if len(ids) == 0 {
		shared.RespondWithJSON(w, r, http.StatusOK, BulkMoveResponse{Deck: domain.NormalizeDeck(req.Deck)})
		return
	}

	result, err := h.bulk.Move(r.Context(), ownerID, ids, req.Deck)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, BulkMoveResponse{
		Deck:      result.Deck,
		Matched:   result.Matched,
		Modified:  result.Modified,
		Conflicts: result.Conflicts,
	})
}

// tooManyIDs is checked before parsing so that malformed ids still count
// against the cap.
func tooManyIDs() error {
	return domain.NewValidationError("ids",
		fmt.Sprintf("must not contain more than %d ids", service.MaxBulkIDs), nil)
}
