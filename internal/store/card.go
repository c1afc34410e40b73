package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/google/uuid"
)

// SortField names a column a card listing can be ordered by.
type SortField string

// Sort fields understood by CardStore.List.
const (
	SortByNextReview  SortField = "next_review"
	SortByCreatedAt   SortField = "created_at"
	SortByWord        SortField = "word"
	SortByTranslation SortField = "translation"
)

// SortOrder is the direction of a listing.
type SortOrder string

// Sort orders understood by CardStore.List.
const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Valid reports whether f is a known sort field.
func (f SortField) Valid() bool {
	switch f {
	case SortByNextReview, SortByCreatedAt, SortByWord, SortByTranslation:
		return true
	}
	return false
}

// CardFilter narrows and orders a card listing.
// Zero values mean "no restriction"; an empty Sort means SortByNextReview
// and an empty Order means OrderAsc. Ties are always broken on id ascending.
type CardFilter struct {
	// Deck restricts the listing to one deck when non-empty.
	Deck string
	// DueAt restricts the listing to cards whose next review is at or before it.
	DueAt *time.Time
	// IDs restricts the listing to the given ids when non-empty.
	IDs   []uuid.UUID
	Sort  SortField
	Order SortOrder
}

// Normalized returns a copy of f with defaults applied.
func (f CardFilter) Normalized() CardFilter {
	if !f.Sort.Valid() {
		f.Sort = SortByNextReview
	}
	if f.Order != OrderDesc {
		f.Order = OrderAsc
	}
	return f
}

// CardStore defines the interface for card data persistence.
// Every method is scoped to ownerID: a card owned by someone else behaves
// exactly like a card that does not exist.
type CardStore interface {
	// Create saves a new card.
	// Returns ErrCardExists if the owner already has a card with the same
	// word, translation and deck, or domain validation errors if the card is invalid.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by id.
	// Returns ErrCardNotFound if the card does not exist for the owner.
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error)

	// FindByKey retrieves the card with the given uniqueness key.
	// Returns ErrCardNotFound when there is none.
	FindByKey(ctx context.Context, ownerID uuid.UUID, key domain.CardKey) (*domain.Card, error)

	// List returns the owner's cards matching filter, in filter order.
	List(ctx context.Context, ownerID uuid.UUID, filter CardFilter) ([]*domain.Card, error)

	// ListKeys returns the uniqueness keys of all the owner's cards.
	ListKeys(ctx context.Context, ownerID uuid.UUID) ([]domain.CardKey, error)

	// UpdateContent writes word, translation, example and deck of card.
	// Returns ErrCardNotFound or ErrCardExists.
	UpdateContent(ctx context.Context, card *domain.Card) error

	// UpdateReview writes the scheduling fields of card.
	// Returns ErrCardNotFound if the card does not exist for the owner.
	UpdateReview(ctx context.Context, card *domain.Card) error

	// UpdateDeck moves one card to deck.
	// Returns ErrCardNotFound or ErrCardExists.
	UpdateDeck(ctx context.Context, ownerID, id uuid.UUID, deck string) error

	// Delete removes one card.
	// Returns ErrCardNotFound if the card does not exist for the owner.
	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	// DeleteMany removes the owner's cards among ids and reports how many went.
	DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int64, error)

	// DeleteByDeck removes every card of the owner's deck.
	DeleteByDeck(ctx context.Context, ownerID uuid.UUID, deck string) (int64, error)

	// DeleteAll removes every card of the owner.
	DeleteAll(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// DistinctDecks returns the distinct deck values in use by the owner, unordered.
	DistinctDecks(ctx context.Context, ownerID uuid.UUID) ([]string, error)

	// WithTx returns a CardStore that runs its statements inside tx.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       txStore := cardStore.WithTx(tx)
	//       if _, err := txStore.DeleteAll(ctx, ownerID); err != nil {
	//           return err
	//       }
	//       return txStore.Create(ctx, card)
	//   })
	WithTx(tx *sql.Tx) CardStore
}
