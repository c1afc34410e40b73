package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/domain/srs"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/platform/sqlite"
	"github.com/BogdanBedrinec/cards/internal/service"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/BogdanBedrinec/cards/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: baseTime}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// env wires every service to one fresh SQLite database.
type env struct {
	store    store.CardStore
	clock    *fakeClock
	cards    service.CardService
	query    service.QueryService
	decks    service.DeckService
	bulk     service.BulkService
	transfer service.TransferService
	stats    service.StatsService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	_, log := logger.NewTestLogger(t)
	cardStore := sqlite.NewCardStore(testdb.NewSQLite(t), log)
	clock := newFakeClock()
	opts := []service.Option{service.WithClock(clock.Now), service.WithLocation(time.UTC)}

	e := &env{store: cardStore, clock: clock}
	var err error

	e.cards, err = service.NewCardService(cardStore, srs.NewDefaultService(), log, opts...)
	require.NoError(t, err)
	e.query, err = service.NewQueryService(cardStore, log, opts...)
	require.NoError(t, err)
	e.decks, err = service.NewDeckService(cardStore, log)
	require.NoError(t, err)
	e.bulk, err = service.NewBulkService(cardStore, log)
	require.NoError(t, err)
	e.transfer, err = service.NewTransferService(cardStore, log, opts...)
	require.NoError(t, err)
	e.stats, err = service.NewStatsService(cardStore, log, opts...)
	require.NoError(t, err)

	return e
}

// add creates a card and advances the clock by a second so creation
// times are distinct.
func (e *env) add(t *testing.T, owner uuid.UUID, word, translation, deck string) *domain.Card {
	t.Helper()
	card, err := e.cards.Create(context.Background(), owner, service.CardInput{
		Word:        word,
		Translation: translation,
		Deck:        deck,
	})
	require.NoError(t, err)
	e.clock.Advance(time.Second)
	return card
}

func (e *env) all(t *testing.T, owner uuid.UUID) []*domain.Card {
	t.Helper()
	cards, err := e.query.List(context.Background(), owner, service.ListQuery{
		Mode: service.ModeAll,
		Sort: service.SortCreatedAt,
	})
	require.NoError(t, err)
	return cards
}

func (e *env) decksOf(t *testing.T, owner uuid.UUID) []string {
	t.Helper()
	decks, err := e.decks.List(context.Background(), owner)
	require.NoError(t, err)
	return decks
}

func words(cards []*domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Word
	}
	return out
}

func deckOf(t *testing.T, e *env, owner, id uuid.UUID) string {
	t.Helper()
	card, err := e.cards.Get(context.Background(), owner, id)
	require.NoError(t, err)
	return card.Deck
}
