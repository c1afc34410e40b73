package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/redact"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
)

// RemoveMode decides what happens to the cards of a removed deck.
type RemoveMode string

// Remove modes.
const (
	RemoveModeMove   RemoveMode = "move"
	RemoveModeDelete RemoveMode = "delete"
)

// ParseRemoveMode reads a remove mode case-insensitively. Empty means move.
func ParseRemoveMode(mode string) (RemoveMode, error) {
	switch RemoveMode(strings.ToLower(strings.TrimSpace(mode))) {
	case "", RemoveModeMove:
		return RemoveModeMove, nil
	case RemoveModeDelete:
		return RemoveModeDelete, nil
	default:
		return "", domain.NewValidationError("mode", "must be move or delete", domain.ErrInvalidFormat)
	}
}

// DeckMoveResult reports a per-card move of a deck's cards. Matched cards
// are either moved or counted as conflicts when the target deck already
// holds the same word and translation.
type DeckMoveResult struct {
	From      string
	To        string
	Matched   int
	Moved     int
	Conflicts int
}

// DeckRemoveResult reports a deck removal. Deleted is set in delete mode,
// the move counters in move mode.
type DeckRemoveResult struct {
	Name    string
	Mode    RemoveMode
	Deleted int64
	DeckMoveResult
}

// DeckService manages deck labels. Decks are not stored; they are the
// distinct deck values of the owner's cards plus domain.DefaultDeck.
type DeckService interface {
	// List returns the owner's decks, the default deck first and the rest
	// in ascending order.
	List(ctx context.Context, ownerID uuid.UUID) ([]string, error)

	// Rename moves every card of deck from into deck to. Cards that would
	// collide with an existing card stay where they are and are counted as
	// conflicts. Renaming the default deck or onto itself is rejected.
	Rename(ctx context.Context, ownerID uuid.UUID, from, to string) (*DeckMoveResult, error)

	// Remove deletes deck name, either deleting its cards or moving them
	// into to (the default deck when empty). The default deck cannot be removed.
	Remove(ctx context.Context, ownerID uuid.UUID, name string, mode RemoveMode, to string) (*DeckRemoveResult, error)
}

type deckServiceImpl struct {
	cards  store.CardStore
	logger *slog.Logger
}

// NewDeckService creates a new DeckService.
func NewDeckService(cards store.CardStore, logger *slog.Logger) (DeckService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deckServiceImpl{
		cards:  cards,
		logger: logger.With(slog.String("component", "deck_service")),
	}, nil
}

func (s *deckServiceImpl) List(ctx context.Context, ownerID uuid.UUID) ([]string, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	decks, err := s.cards.DistinctDecks(ctx, ownerID)
	if err != nil {
		return nil, wrap("list decks", "failed to list decks", err)
	}

	return OrderDecks(decks), nil
}

// OrderDecks deduplicates decks, adds the default deck and puts it first.
func OrderDecks(decks []string) []string {
	seen := make(map[string]bool, len(decks))
	rest := make([]string, 0, len(decks))
	for _, d := range decks {
		if d == "" || domain.IsDefaultDeck(d) || seen[d] {
			continue
		}
		seen[d] = true
		rest = append(rest, d)
	}
	sort.Strings(rest)

	return append([]string{domain.DefaultDeck}, rest...)
}

func (s *deckServiceImpl) Rename(
	ctx context.Context,
	ownerID uuid.UUID,
	from, to string,
) (*DeckMoveResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	from, to = strings.TrimSpace(from), strings.TrimSpace(to)
	if from == "" {
		return nil, domain.NewValidationError("from", "is required", nil)
	}
	if to == "" {
		return nil, domain.NewValidationError("to", "is required", nil)
	}
	if domain.IsDefaultDeck(from) {
		return nil, domain.NewRejectedError("the default deck cannot be renamed")
	}
	if from == to {
		return nil, domain.NewRejectedError("the new deck name equals the old one")
	}

	return s.moveDeck(ctx, ownerID, "rename deck", from, to)
}

func (s *deckServiceImpl) Remove(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
	mode RemoveMode,
	to string,
) (*DeckRemoveResult, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required", nil)
	}
	if domain.IsDefaultDeck(name) {
		return nil, domain.NewRejectedError("the default deck cannot be removed")
	}

	switch mode {
	case RemoveModeDelete:
		deleted, err := s.cards.DeleteByDeck(ctx, ownerID, name)
		if err != nil {
			return nil, wrap("remove deck", "failed to delete cards", err)
		}
		log.Info("deck removed",
			slog.String("deck", name),
			slog.String("mode", string(mode)),
			slog.Int64("deleted", deleted))
		return &DeckRemoveResult{Name: name, Mode: mode, Deleted: deleted}, nil

	case RemoveModeMove, "":
		to = domain.NormalizeDeck(to)
		if to == name {
			return nil, domain.NewRejectedError("cannot move cards into the deck being removed")
		}
		moved, err := s.moveDeck(ctx, ownerID, "remove deck", name, to)
		if err != nil {
			return nil, err
		}
		return &DeckRemoveResult{Name: name, Mode: RemoveModeMove, DeckMoveResult: *moved}, nil

	default:
		return nil, domain.NewValidationError("mode", "must be move or delete", domain.ErrInvalidFormat)
	}
}

// moveDeck moves the cards of from into to one at a time.
func (s *deckServiceImpl) moveDeck(
	ctx context.Context,
	ownerID uuid.UUID,
	operation, from, to string,
) (*DeckMoveResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards, err := s.cards.List(ctx, ownerID, store.CardFilter{Deck: from, Sort: store.SortByCreatedAt})
	if err != nil {
		return nil, wrap(operation, "failed to list deck cards", err)
	}

	outcome, err := moveCards(ctx, s.cards, ownerID, cards, to)
	if err != nil {
		log.Error("deck move stopped part way",
			slog.String("error", redact.Error(err)),
			slog.String("from", from),
			slog.Int("moved", outcome.modified))
		return nil, wrap(operation, "failed to move cards", err)
	}

	result := &DeckMoveResult{
		From:      from,
		To:        to,
		Matched:   len(cards) - outcome.vanished,
		Moved:     outcome.modified,
		Conflicts: outcome.conflicts,
	}

	log.Info("deck cards moved",
		slog.String("from", from),
		slog.String("to", to),
		slog.Int("matched", result.Matched),
		slog.Int("moved", result.Moved),
		slog.Int("conflicts", result.Conflicts))
	return result, nil
}

type moveOutcome struct {
	modified  int
	conflicts int
	vanished  int
}

// moveCards sets the deck of each card to deck. A uniqueness conflict skips
// that card and a card deleted meanwhile is ignored; any other error stops
// the loop. Cards already in deck are left alone.
func moveCards(
	ctx context.Context,
	cards store.CardStore,
	ownerID uuid.UUID,
	targets []*domain.Card,
	deck string,
) (moveOutcome, error) {
	var out moveOutcome
	for _, card := range targets {
		if card.Deck == deck {
			continue
		}
		if err := ctx.Err(); err != nil {
			return out, err
		}

		err := cards.UpdateDeck(ctx, ownerID, card.ID, deck)
		switch {
		case err == nil:
			out.modified++
		case store.IsDuplicateError(err):
			out.conflicts++
		case store.IsNotFoundError(err):
			out.vanished++
		default:
			return out, err
		}
	}
	return out, nil
}
