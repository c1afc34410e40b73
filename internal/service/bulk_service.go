package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/redact"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
)

// MaxBulkIDs caps the number of ids accepted by one bulk call.
const MaxBulkIDs = 500

// BulkMoveResult reports a bulk move. Matched counts the caller's cards
// among the ids, Modified those whose deck changed and Conflicts those left
// in place because the target deck already holds the same card.
type BulkMoveResult struct {
	Deck      string
	Matched   int
	Modified  int
	Conflicts int
}

// BulkService mutates many cards selected by id.
type BulkService interface {
	// Delete removes the owner's cards among ids and returns how many were
	// removed. Ids of other owners and unknown ids are ignored.
	Delete(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error)

	// Move sets the deck of the owner's cards among ids, skipping conflicts.
	Move(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID, deck string) (*BulkMoveResult, error)
}

type bulkServiceImpl struct {
	cards  store.CardStore
	logger *slog.Logger
}

// NewBulkService creates a new BulkService.
func NewBulkService(cards store.CardStore, logger *slog.Logger) (BulkService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &bulkServiceImpl{
		cards:  cards,
		logger: logger.With(slog.String("component", "bulk_service")),
	}, nil
}

// UniqueIDs validates an id batch and drops repeated and nil ids.
func UniqueIDs(ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, domain.NewValidationError("ids", "must not be empty", nil)
	}
	if len(ids) > MaxBulkIDs {
		return nil, domain.NewValidationError("ids", fmt.Sprintf("must not contain more than %d ids", MaxBulkIDs), nil)
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique, nil
}

func (s *bulkServiceImpl) Delete(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if err := requireOwner(ownerID); err != nil {
		return 0, err
	}

	unique, err := UniqueIDs(ids)
	if err != nil {
		return 0, err
	}
	// an empty id set must not reach the store, where it means no filter
	if len(unique) == 0 {
		return 0, nil
	}

	deleted, err := s.cards.DeleteMany(ctx, ownerID, unique)
	if err != nil {
		return 0, wrap("bulk delete", "failed to delete cards", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("cards deleted in bulk",
		slog.Int("requested", len(ids)),
		slog.Int64("deleted", deleted))
	return deleted, nil
}

func (s *bulkServiceImpl) Move(
	ctx context.Context,
	ownerID uuid.UUID,
	ids []uuid.UUID,
	deck string,
) (*BulkMoveResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	unique, err := UniqueIDs(ids)
	if err != nil {
		return nil, err
	}
	deck = domain.NormalizeDeck(deck)
	// an empty id set must not reach the store, where it means no filter
	if len(unique) == 0 {
		return &BulkMoveResult{Deck: deck}, nil
	}

	cards, err := s.cards.List(ctx, ownerID, store.CardFilter{IDs: unique, Sort: store.SortByCreatedAt})
	if err != nil {
		return nil, wrap("bulk move", "failed to load cards", err)
	}

	outcome, err := moveCards(ctx, s.cards, ownerID, cards, deck)
	if err != nil {
		log.Error("bulk move stopped part way",
			slog.String("error", redact.Error(err)),
			slog.Int("modified", outcome.modified))
		return nil, wrap("bulk move", "failed to move cards", err)
	}

	result := &BulkMoveResult{
		Deck:      deck,
		Matched:   len(cards) - outcome.vanished,
		Modified:  outcome.modified,
		Conflicts: outcome.conflicts,
	}

	log.Info("cards moved in bulk",
		slog.String("deck", deck),
		slog.Int("matched", result.Matched),
		slog.Int("modified", result.Modified),
		slog.Int("conflicts", result.Conflicts))
	return result, nil
}
