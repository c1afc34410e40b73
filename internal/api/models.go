package api

import (
	"encoding/json"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/service"
)

// CardRequest is the payload of card creation and edit. Edit replaces all
// content fields, so omitted example or deck are cleared.
type CardRequest struct {
	Word        string `json:"word"        validate:"required"`
	Translation string `json:"translation" validate:"required"`
	Example     string `json:"example"`
	Deck        string `json:"deck"`
}

func (r CardRequest) input() service.CardInput {
	return service.CardInput{
		Word:        r.Word,
		Translation: r.Translation,
		Example:     r.Example,
		Deck:        r.Deck,
	}
}

// CardResponse is the wire form of a card.
type CardResponse struct {
	ID           string     `json:"id"`
	Word         string     `json:"word"`
	Translation  string     `json:"translation"`
	Example      string     `json:"example"`
	Deck         string     `json:"deck"`
	ReviewCount  int        `json:"reviewCount"`
	CorrectCount int        `json:"correctCount"`
	LastReviewed *time.Time `json:"lastReviewed"`
	NextReview   time.Time  `json:"nextReview"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:           card.ID.String(),
		Word:         card.Word,
		Translation:  card.Translation,
		Example:      card.Example,
		Deck:         card.Deck,
		ReviewCount:  card.ReviewCount,
		CorrectCount: card.CorrectCount,
		LastReviewed: card.LastReviewed,
		NextReview:   card.NextReview,
		CreatedAt:    card.CreatedAt,
	}
}

func cardsToResponse(cards []*domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	return out
}

// CardMessageResponse pairs a card with an outcome message.
type CardMessageResponse struct {
	Message string       `json:"message"`
	Card    CardResponse `json:"card"`
}

// MessageResponse carries a single human readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ReviewRequest is the payload of a review. Known must be present.
type ReviewRequest struct {
	Known *bool `json:"known" validate:"required"`
}

// ReviewResponse reports the rescheduled card.
type ReviewResponse struct {
	Message string       `json:"message"`
	Known   bool         `json:"known"`
	Card    CardResponse `json:"card"`
}

// RenameDeckRequest is the payload of a deck rename.
type RenameDeckRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to"   validate:"required"`
}

// DeckMoveResponse reports a rename or a move-mode removal.
type DeckMoveResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Matched   int    `json:"matched"`
	Moved     int    `json:"moved"`
	Conflicts int    `json:"conflicts"`
}

// DeckRemoveResponse reports a deck removal.
type DeckRemoveResponse struct {
	Deck      string `json:"deck"`
	Mode      string `json:"mode"`
	Deleted   int64  `json:"deleted"`
	To        string `json:"to,omitempty"`
	Matched   int    `json:"matched"`
	Moved     int    `json:"moved"`
	Conflicts int    `json:"conflicts"`
}

// BulkDeleteRequest selects cards by id.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// BulkDeleteResponse reports a bulk delete.
type BulkDeleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// BulkMoveRequest moves cards into deck. An empty deck means the default deck.
type BulkMoveRequest struct {
	IDs  []string `json:"ids"  validate:"required,min=1"`
	Deck string   `json:"deck"`
}

// BulkMoveResponse reports a bulk move.
type BulkMoveResponse struct {
	Deck      string `json:"deck"`
	Matched   int    `json:"matched"`
	Modified  int    `json:"modified"`
	Conflicts int    `json:"conflicts"`
}

// ImportRequest carries an import payload. For csv, Data is a JSON string
// holding the file; for json it is the array, the export object, or either
// encoded as a string.
type ImportRequest struct {
	Format string          `json:"format"`
	Data   json.RawMessage `json:"data"`
}

// ImportResponse reports an import.
type ImportResponse struct {
	Message             string `json:"message"`
	Received            int    `json:"received"`
	UniqueInFile        int    `json:"uniqueInFile"`
	Inserted            int    `json:"inserted"`
	SkippedAsDuplicates int    `json:"skippedAsDuplicates"`
}

// StatsResponse is the wire form of service.Stats.
type StatsResponse struct {
	TotalCards       int `json:"totalCards"`
	DueNow           int `json:"dueNow"`
	ReviewedToday    int `json:"reviewedToday"`
	TotalReviews     int `json:"totalReviews"`
	TotalCorrect     int `json:"totalCorrect"`
	Accuracy         int `json:"accuracy"`
	Learned          int `json:"learned"`
	Remaining        int `json:"remaining"`
	LearnedThreshold int `json:"learnedThreshold"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	OK   bool      `json:"ok"`
	Time time.Time `json:"time"`
}
