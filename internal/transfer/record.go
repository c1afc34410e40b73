// Package transfer converts cards to and from the portable import/export
// formats. JSON and CSV share one field schema so that an export can be
// imported back unchanged.
package transfer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/google/uuid"
)

// Format is an import/export encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// EnvelopeVersion is written into every JSON export.
const EnvelopeVersion = 1

// Columns is the CSV header and the field order of a Record.
var Columns = []string{
	"word",
	"translation",
	"example",
	"deck",
	"reviewCount",
	"correctCount",
	"lastReviewed",
	"nextReview",
	"createdAt",
}

// ErrUnknownFormat is returned by ParseFormat for anything but json or csv.
var ErrUnknownFormat = errors.New("unknown transfer format")

// ParseFormat reads a format name case-insensitively. An empty name means JSON.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", domain.NewValidationError("format", "must be json or csv",
			fmt.Errorf("%w: %q", ErrUnknownFormat, name))
	}
}

// ContentType is the HTTP media type of an export in format f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// Filename names an export file produced at t.
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("cards-%d.%s", t.UnixMilli(), f)
}

// Record is one card in portable form. Missing timestamps are nil.
type Record struct {
	Word         string     `json:"word"`
	Translation  string     `json:"translation"`
	Example      string     `json:"example"`
	Deck         string     `json:"deck"`
	ReviewCount  int        `json:"reviewCount"`
	CorrectCount int        `json:"correctCount"`
	LastReviewed *time.Time `json:"lastReviewed"`
	NextReview   *time.Time `json:"nextReview"`
	CreatedAt    *time.Time `json:"createdAt"`
}

// Normalize trims the text fields, clamps negative counters to zero and
// converts timestamps to UTC.
func (r Record) Normalize() Record {
	r.Word = strings.TrimSpace(r.Word)
	r.Translation = strings.TrimSpace(r.Translation)
	r.Example = strings.TrimSpace(r.Example)
	r.Deck = domain.NormalizeDeck(r.Deck)
	r.ReviewCount = max(r.ReviewCount, 0)
	r.CorrectCount = max(r.CorrectCount, 0)
	r.LastReviewed = utcPtr(r.LastReviewed)
	r.NextReview = utcPtr(r.NextReview)
	r.CreatedAt = utcPtr(r.CreatedAt)
	return r
}

// Complete reports whether the record carries both a word and a translation.
func (r Record) Complete() bool {
	return strings.TrimSpace(r.Word) != "" && strings.TrimSpace(r.Translation) != ""
}

// Key is the uniqueness key the record would have as a card.
func (r Record) Key() domain.CardKey {
	return domain.CardKey{Word: r.Word, Translation: r.Translation, Deck: r.Deck}
}

// ToCard builds a card for ownerID. Absent nextReview and createdAt become now.
func (r Record) ToCard(ownerID uuid.UUID, now time.Time) (*domain.Card, error) {
	card, err := domain.NewCard(ownerID, r.Word, r.Translation, r.Example, r.Deck, now)
	if err != nil {
		return nil, err
	}
	card.ReviewCount = max(r.ReviewCount, 0)
	card.CorrectCount = max(r.CorrectCount, 0)
	card.LastReviewed = utcPtr(r.LastReviewed)
	if r.NextReview != nil {
		card.NextReview = r.NextReview.UTC()
	}
	if r.CreatedAt != nil {
		card.CreatedAt = r.CreatedAt.UTC()
	}
	return card, nil
}

// FromCard converts a stored card to its portable form.
func FromCard(card *domain.Card) Record {
	next := card.NextReview.UTC()
	created := card.CreatedAt.UTC()
	return Record{
		Word:         card.Word,
		Translation:  card.Translation,
		Example:      card.Example,
		Deck:         card.Deck,
		ReviewCount:  card.ReviewCount,
		CorrectCount: card.CorrectCount,
		LastReviewed: utcPtr(card.LastReviewed),
		NextReview:   &next,
		CreatedAt:    &created,
	}
}

// FromCards converts a listing for export.
func FromCards(cards []*domain.Card) []Record {
	records := make([]Record, 0, len(cards))
	for _, c := range cards {
		records = append(records, FromCard(c))
	}
	return records
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
