package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
)

// ListMode selects between the review queue and the whole library.
type ListMode string

// List modes.
const (
	ModeDue ListMode = "due"
	ModeAll ListMode = "all"
)

// SortKey is a card listing order as named by clients.
type SortKey string

// Sort keys. SortAccuracy is derived and sorted in memory.
const (
	SortNextReview  SortKey = "nextReview"
	SortCreatedAt   SortKey = "createdAt"
	SortWord        SortKey = "word"
	SortTranslation SortKey = "translation"
	SortAccuracy    SortKey = "accuracy"
)

// AllDecks is the deck filter value meaning "every deck".
const AllDecks = "ALL"

var storeSortFields = map[SortKey]store.SortField{
	SortNextReview:  store.SortByNextReview,
	SortCreatedAt:   store.SortByCreatedAt,
	SortWord:        store.SortByWord,
	SortTranslation: store.SortByTranslation,
}

// ListQuery describes a card listing. An empty Deck lists every deck.
type ListQuery struct {
	Mode  ListMode
	Sort  SortKey
	Order store.SortOrder
	Deck  string
}

// ParseListQuery builds a ListQuery from raw client values. Names are
// matched case-insensitively and unknown values fall back to the defaults:
// due mode, nextReview order, ascending.
func ParseListQuery(mode, sortKey, order, deck string) ListQuery {
	q := ListQuery{Mode: ModeDue, Sort: SortNextReview, Order: store.OrderAsc}

	if strings.EqualFold(strings.TrimSpace(mode), string(ModeAll)) {
		q.Mode = ModeAll
	}

	sortKey = strings.TrimSpace(sortKey)
	for _, key := range []SortKey{SortNextReview, SortCreatedAt, SortWord, SortTranslation, SortAccuracy} {
		if strings.EqualFold(sortKey, string(key)) {
			q.Sort = key
			break
		}
	}

	if strings.EqualFold(strings.TrimSpace(order), string(store.OrderDesc)) {
		q.Order = store.OrderDesc
	}

	deck = strings.TrimSpace(deck)
	if deck != AllDecks {
		q.Deck = deck
	}

	return q
}

// QueryService lists cards for the review queue and the library.
type QueryService interface {
	// List returns the owner's cards matching q in q's order.
	// In due mode only cards with nextReview at or before now are returned.
	List(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]*domain.Card, error)
}

type queryServiceImpl struct {
	cards  store.CardStore
	opts   options
	logger *slog.Logger
}

// NewQueryService creates a new QueryService.
func NewQueryService(cards store.CardStore, logger *slog.Logger, opts ...Option) (QueryService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &queryServiceImpl{
		cards:  cards,
		opts:   newOptions(opts),
		logger: logger.With(slog.String("component", "query_service")),
	}, nil
}

func (s *queryServiceImpl) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]*domain.Card, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter := store.CardFilter{
		Order: q.Order,
	}
	if q.Deck != AllDecks {
		filter.Deck = q.Deck
	}
	if q.Mode != ModeAll {
		now := s.opts.now()
		filter.DueAt = &now
	}

	field, stored := storeSortFields[q.Sort]
	if stored {
		filter.Sort = field
	} else if q.Sort == SortAccuracy {
		filter.Sort = store.SortByCreatedAt
		filter.Order = store.OrderAsc
	}

	cards, err := s.cards.List(ctx, ownerID, filter)
	if err != nil {
		return nil, wrap("list cards", "failed to list cards", err)
	}

	if q.Sort == SortAccuracy {
		SortByAccuracy(cards, q.Order)
	}

	log.Debug("listed cards",
		slog.String("mode", string(q.Mode)),
		slog.String("sort", string(q.Sort)),
		slog.Int("count", len(cards)))
	return cards, nil
}

// SortByAccuracy orders cards by accuracy in the given direction. Cards of
// equal accuracy are always ordered by createdAt then id, ascending, so the
// result is stable across calls.
func SortByAccuracy(cards []*domain.Card, order store.SortOrder) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if accA, accB := a.Accuracy(), b.Accuracy(); accA != accB {
			if order == store.OrderDesc {
				return accA > accB
			}
			return accA < accB
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
