package service

import (
	"context"
	"log/slog"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/domain/srs"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/redact"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
)

// Review outcome messages.
const (
	ReviewMessageKnown   = "remembered"
	ReviewMessageUnknown = "will repeat soon"
)

// CardInput carries the content fields of a card. Example and Deck are optional.
type CardInput struct {
	Word        string
	Translation string
	Example     string
	Deck        string
}

// ReviewResult is the card after a review together with the outcome.
type ReviewResult struct {
	Card    *domain.Card
	Known   bool
	Message string
}

// CardService provides single-card operations.
type CardService interface {
	// Create adds a card that is due immediately.
	// Returns store.ErrCardExists when the owner already has the same
	// word, translation and deck.
	Create(ctx context.Context, ownerID uuid.UUID, input CardInput) (*domain.Card, error)

	// Get returns one card or store.ErrCardNotFound.
	Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error)

	// Edit replaces the content fields of a card. Scheduling fields are kept.
	Edit(ctx context.Context, ownerID, id uuid.UUID, input CardInput) (*domain.Card, error)

	// Delete removes a card permanently.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// Review records one answer and reschedules the card.
	Review(ctx context.Context, ownerID, id uuid.UUID, known bool) (*ReviewResult, error)
}

type cardServiceImpl struct {
	cards     store.CardStore
	scheduler srs.Service
	opts      options
	logger    *slog.Logger
}

// NewCardService creates a new CardService.
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	cards store.CardStore,
	scheduler srs.Service,
	logger *slog.Logger,
	opts ...Option,
) (CardService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if scheduler == nil {
		return nil, domain.NewValidationError("scheduler", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		cards:     cards,
		scheduler: scheduler,
		opts:      newOptions(opts),
		logger:    logger.With(slog.String("component", "card_service")),
	}, nil
}

func (s *cardServiceImpl) Create(ctx context.Context, ownerID uuid.UUID, input CardInput) (*domain.Card, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := domain.NewCard(ownerID, input.Word, input.Translation, input.Example, input.Deck, s.opts.now())
	if err != nil {
		return nil, err
	}

	if err := s.cards.Create(ctx, card); err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("card already exists",
				slog.String("deck", card.Deck))
		}
		return nil, wrap("create card", "failed to save card", err)
	}

	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck", card.Deck))
	return card, nil
}

func (s *cardServiceImpl) Get(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	card, err := s.cards.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, wrap("get card", "failed to retrieve card", err)
	}
	return card, nil
}

func (s *cardServiceImpl) Edit(
	ctx context.Context,
	ownerID, id uuid.UUID,
	input CardInput,
) (*domain.Card, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cards.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, wrap("edit card", "failed to retrieve card", err)
	}

	if err := card.UpdateContent(input.Word, input.Translation, input.Example, input.Deck); err != nil {
		return nil, err
	}

	if err := s.cards.UpdateContent(ctx, card); err != nil {
		return nil, wrap("edit card", "failed to save card", err)
	}

	log.Info("card edited",
		slog.String("card_id", card.ID.String()),
		slog.String("deck", card.Deck))
	return card, nil
}

func (s *cardServiceImpl) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := requireOwner(ownerID); err != nil {
		return err
	}

	if err := s.cards.Delete(ctx, ownerID, id); err != nil {
		return wrap("delete card", "failed to delete card", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card deleted",
		slog.String("card_id", id.String()))
	return nil
}

func (s *cardServiceImpl) Review(
	ctx context.Context,
	ownerID, id uuid.UUID,
	known bool,
) (*ReviewResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cards.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, wrap("review card", "failed to retrieve card", err)
	}

	reviewed, err := s.scheduler.ApplyReview(card, known, s.opts.now())
	if err != nil {
		log.Error("failed to schedule review",
			slog.String("error", redact.Error(err)),
			slog.String("card_id", id.String()))
		return nil, NewServiceError("review card", "failed to schedule review", err)
	}

	if err := s.cards.UpdateReview(ctx, reviewed); err != nil {
		return nil, wrap("review card", "failed to save review", err)
	}

	message := ReviewMessageUnknown
	if known {
		message = ReviewMessageKnown
	}

	log.Debug("card reviewed",
		slog.String("card_id", id.String()),
		slog.Bool("known", known),
		slog.Int("correct_count", reviewed.CorrectCount),
		slog.Time("next_review", reviewed.NextReview))

	return &ReviewResult{Card: reviewed, Known: known, Message: message}, nil
}
