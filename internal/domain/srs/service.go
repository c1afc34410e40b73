package srs

import (
	"errors"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
)

// ErrNilCard is returned when a nil card is passed to the scheduler.
var ErrNilCard = errors.New("card cannot be nil")

// Service defines the interface for scheduling operations.
type Service interface {
	// Schedule computes the next scheduling state from the current one.
	Schedule(state State, known bool, now time.Time) State

	// ApplyReview returns a copy of card with the review applied.
	// The content fields of the card are never changed.
	ApplyReview(card *domain.Card, known bool, now time.Time) (*domain.Card, error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with the default ladder.
func NewDefaultService() Service {
	return &defaultService{params: NewDefaultParams()}
}

// NewServiceWithParams creates a new scheduling service with custom parameters.
func NewServiceWithParams(params *Params) (Service, error) {
	if params == nil {
		return nil, ErrEmptyLadder
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultService{params: params}, nil
}

// Schedule implements Service.
func (s *defaultService) Schedule(state State, known bool, now time.Time) State {
	return nextState(state, known, now, s.params)
}

// ApplyReview implements Service.
func (s *defaultService) ApplyReview(card *domain.Card, known bool, now time.Time) (*domain.Card, error) {
	if card == nil {
		return nil, ErrNilCard
	}

	next := nextState(StateOf(card), known, now.UTC(), s.params)

	updated := *card
	updated.ReviewCount = next.ReviewCount
	updated.CorrectCount = next.CorrectCount
	updated.LastReviewed = next.LastReviewed
	updated.NextReview = next.NextReview
	return &updated, nil
}

// StateOf extracts the scheduling state of card.
func StateOf(card *domain.Card) State {
	return State{
		ReviewCount:  card.ReviewCount,
		CorrectCount: card.CorrectCount,
		LastReviewed: card.LastReviewed,
		NextReview:   card.NextReview,
	}
}
