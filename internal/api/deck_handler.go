package api

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/BogdanBedrinec/cards/internal/api/shared"
	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/service"
	"github.com/go-chi/chi/v5"
)

// DeckHandler handles deck listing, rename and removal.
type DeckHandler struct {
	decks  service.DeckService
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(decks service.DeckService, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}

	return &DeckHandler{
		decks:  decks,
		logger: logger.With(slog.String("component", "deck_handler")),
	}
}

// ListDecks handles GET /cards/decks
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	decks, err := h.decks.List(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list decks")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, decks)
}

// RenameDeck handles PUT /cards/decks/rename
func (h *DeckHandler) RenameDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req RenameDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.decks.Rename(r.Context(), ownerID, req.From, req.To)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rename deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeckMoveResponse{
		From:      result.From,
		To:        result.To,
		Matched:   result.Matched,
		Moved:     result.Moved,
		Conflicts: result.Conflicts,
	})
}

// RemoveDeck handles DELETE /cards/decks/{name}?mode=move|delete&to=
func (h *DeckHandler) RemoveDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	name, err := deckParam(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	mode, err := service.ParseRemoveMode(r.URL.Query().Get("mode"))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.decks.Remove(r.Context(), ownerID, name, mode, r.URL.Query().Get("to"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to remove deck")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeckRemoveResponse{
		Deck:      result.Name,
		Mode:      string(result.Mode),
		Deleted:   result.Deleted,
		To:        result.To,
		Matched:   result.Matched,
		Moved:     result.Moved,
		Conflicts: result.Conflicts,
	})
}

// deckParam reads the deck name path parameter. chi matches against the
// escaped path when the request carried escapes, so those are undone here.
func deckParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name, nil
	}
	unescaped, err := url.PathUnescape(name)
	if err != nil {
		return "", domain.NewValidationError("name", "has invalid format", domain.ErrInvalidFormat)
	}
	return unescaped, nil
}
