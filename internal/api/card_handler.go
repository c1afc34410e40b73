package api

import (
	"log/slog"
	"net/http"

	"github.com/BogdanBedrinec/cards/internal/api/shared"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/service"
)

// CardHandler handles single-card requests and card listings.
type CardHandler struct {
	cards   service.CardService
	queries service.QueryService
	logger  *slog.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cards service.CardService, queries service.QueryService, logger *slog.Logger) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cards:   cards,
		queries: queries,
		logger:  logger.With(slog.String("component", "card_handler")),
	}
}

// ListCards handles GET /cards?mode=&sort=&order=&deck=
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, service.ParseListQuery(q.Get("mode"), q.Get("sort"), q.Get("order"), q.Get("deck")))
}

// ListDueCards handles GET /cards/due, the review queue in schedule order.
func (h *CardHandler) ListDueCards(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, service.ParseListQuery(string(service.ModeDue), "", "", r.URL.Query().Get("deck")))
}

// ListAllCards handles GET /cards/all, the whole library in schedule order.
func (h *CardHandler) ListAllCards(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, service.ParseListQuery(string(service.ModeAll), "", "", r.URL.Query().Get("deck")))
}

func (h *CardHandler) list(w http.ResponseWriter, r *http.Request, query service.ListQuery) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	cards, err := h.queries.List(r.Context(), ownerID, query)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// CreateCard handles POST /cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.Create(r.Context(), ownerID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// GetCard handles GET /cards/{id}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, cardID, ok := handleOwnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	card, err := h.cards.Get(r.Context(), ownerID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// EditCard handles PUT /cards/{id}
func (h *CardHandler) EditCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, cardID, ok := handleOwnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req CardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.Edit(r.Context(), ownerID, cardID, req.input())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to edit card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardMessageResponse{
		Message: "card updated",
		Card:    cardToResponse(card),
	})
}

// DeleteCard handles DELETE /cards/{id}
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, cardID, ok := handleOwnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.cards.Delete(r.Context(), ownerID, cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "card deleted"})
}

// ReviewCard handles PUT and POST /cards/{id}/review
func (h *CardHandler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, cardID, ok := handleOwnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.cards.Review(r.Context(), ownerID, cardID, *req.Known)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to review card")
		return
	}

	log.Debug("card reviewed",
		slog.String("card_id", cardID.String()),
		slog.Bool("known", result.Known),
		slog.Time("next_review", result.Card.NextReview))

	shared.RespondWithJSON(w, r, http.StatusOK, ReviewResponse{
		Message: result.Message,
		Known:   result.Known,
		Card:    cardToResponse(result.Card),
	})
}
