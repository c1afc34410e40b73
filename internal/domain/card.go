package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDeck is the permanent deck used when a card is created without one.
// It always appears in the deck list and can be neither renamed nor removed.
const DefaultDeck = "__DEFAULT__"

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardOwnerIDEmpty is returned when a card's owner ID is empty or nil.
	ErrCardOwnerIDEmpty = errors.New("card owner ID cannot be empty")

	// ErrCardWordEmpty is returned when the word is blank after trimming.
	ErrCardWordEmpty = errors.New("card word cannot be empty")

	// ErrCardTranslationEmpty is returned when the translation is blank after trimming.
	ErrCardTranslationEmpty = errors.New("card translation cannot be empty")

	// ErrCardNegativeCount is returned when a review counter is below zero.
	ErrCardNegativeCount = errors.New("card review counters cannot be negative")
)

// Card is one vocabulary entry owned by a single user.
type Card struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	Word         string
	Translation  string
	Example      string
	Deck         string
	ReviewCount  int
	CorrectCount int
	LastReviewed *time.Time
	NextReview   time.Time
	CreatedAt    time.Time
}

// CardKey is the composite uniqueness key of a card within one owner.
// Matching is exact-case.
type CardKey struct {
	Word        string
	Translation string
	Deck        string
}

// NewCard creates a card for ownerID that is due immediately.
// Word, translation and example are trimmed and an empty deck becomes DefaultDeck.
func NewCard(ownerID uuid.UUID, word, translation, example, deck string, now time.Time) (*Card, error) {
	now = now.UTC()
	card := &Card{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Word:        strings.TrimSpace(word),
		Translation: strings.TrimSpace(translation),
		Example:     strings.TrimSpace(example),
		Deck:        NormalizeDeck(deck),
		NextReview:  now,
		CreatedAt:   now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// NormalizeDeck trims deck and maps an empty label to DefaultDeck.
func NormalizeDeck(deck string) string {
	deck = strings.TrimSpace(deck)
	if deck == "" {
		return DefaultDeck
	}
	return deck
}

// IsDefaultDeck reports whether deck names the permanent default deck.
func IsDefaultDeck(deck string) bool {
	return deck == DefaultDeck
}

// Validate checks if the Card has valid data.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrCardIDEmpty)
	}

	if c.OwnerID == uuid.Nil {
		return NewValidationError("ownerId", "cannot be empty", ErrCardOwnerIDEmpty)
	}

	if strings.TrimSpace(c.Word) == "" {
		return NewValidationError("word", "is required", ErrCardWordEmpty)
	}

	if strings.TrimSpace(c.Translation) == "" {
		return NewValidationError("translation", "is required", ErrCardTranslationEmpty)
	}

	if c.ReviewCount < 0 || c.CorrectCount < 0 {
		return NewValidationError("reviewCount", "cannot be negative", ErrCardNegativeCount)
	}

	return nil
}

// Key returns the composite uniqueness key of the card.
func (c *Card) Key() CardKey {
	return CardKey{Word: c.Word, Translation: c.Translation, Deck: c.Deck}
}

// UpdateContent replaces the content fields of the card.
// The card is left unchanged if the new content is invalid.
func (c *Card) UpdateContent(word, translation, example, deck string) error {
	updated := *c
	updated.Word = strings.TrimSpace(word)
	updated.Translation = strings.TrimSpace(translation)
	updated.Example = strings.TrimSpace(example)
	updated.Deck = NormalizeDeck(deck)

	if err := updated.Validate(); err != nil {
		return err
	}

	*c = updated
	return nil
}

// Accuracy is the share of correct answers, or 0 for a card never reviewed.
func (c *Card) Accuracy() float64 {
	if c.ReviewCount == 0 {
		return 0
	}
	return float64(c.CorrectCount) / float64(c.ReviewCount)
}

// IsDue reports whether the card should be shown for review at now.
// A zero NextReview counts as due.
func (c *Card) IsDue(now time.Time) bool {
	return c.NextReview.IsZero() || !c.NextReview.After(now)
}
