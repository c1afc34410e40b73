// Package fixtures loads the demo account's starter cards.
package fixtures

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
)

// Demo account constants.
const (
	DemoEmail = "demo@demo.com"
	DemoDeck  = "Demo"
)

// DemoOwnerID is the stable owner id of the demo account, derived from DemoEmail.
func DemoOwnerID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(DemoEmail))
}

type demoCard struct {
	word, translation, example string
}

var demoCards = []demoCard{
	{"hello", "hallo", "Hello! Nice to meet you."},
	{"good morning", "guten Morgen", "Good morning, how are you?"},
	{"thank you", "danke", "Thank you for your help."},
	{"please", "bitte", "Please, take a seat."},
	{"where is…?", "wo ist…?", "Where is the station?"},
	{"how much?", "wie viel?", "How much is this?"},
	{"I would like…", "ich möchte…", "I would like a coffee."},
	{"help", "Hilfe", "Help! I’m lost."},
	{"today", "heute", "Today I have a lot to do."},
	{"tomorrow", "morgen", "Tomorrow we’ll study German."},
	{"sorry", "entschuldigung", "Sorry, I’m late."},
}

// DemoCardCount is the number of cards ReseedDemo inserts.
var DemoCardCount = len(demoCards)

// Seeder resets fixture data.
type Seeder struct {
	db     *sql.DB
	cards  store.CardStore
	logger *slog.Logger
}

// NewSeeder creates a Seeder writing through cards inside transactions on db.
func NewSeeder(db *sql.DB, cards store.CardStore, logger *slog.Logger) *Seeder {
	if db == nil {
		panic("db cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		db:     db,
		cards:  cards,
		logger: logger.With(slog.String("component", "fixtures")),
	}
}

// ReseedDemo replaces the Demo deck of ownerID with a fresh set of cards,
// all unreviewed and due at now. Cards in other decks are left alone.
// It returns the number of cards inserted.
func (s *Seeder) ReseedDemo(ctx context.Context, ownerID uuid.UUID, now time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	inserted := 0
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := s.cards.WithTx(tx)

		removed, err := txCards.DeleteByDeck(ctx, ownerID, DemoDeck)
		if err != nil {
			return fmt.Errorf("failed to clear demo deck: %w", err)
		}
		log.Debug("cleared demo deck", slog.Int64("removed", removed))

		for _, c := range demoCards {
			card, err := domain.NewCard(ownerID, c.word, c.translation, c.example, DemoDeck, now)
			if err != nil {
				return fmt.Errorf("invalid demo card %q: %w", c.word, err)
			}
			if err := txCards.Create(ctx, card); err != nil {
				return fmt.Errorf("failed to insert demo card %q: %w", c.word, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info("demo cards reseeded",
		slog.String("owner_id", ownerID.String()),
		slog.Int("inserted", inserted))
	return inserted, nil
}
