package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/platform/sqlite"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/BogdanBedrinec/cards/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoOwnerIDIsStable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DemoOwnerID(), DemoOwnerID())
	assert.Equal(t, uuid.Version(5), DemoOwnerID().Version())
}

func TestReseedDemo(t *testing.T) {
	t.Parallel()

	_, log := logger.NewTestLogger(t)
	db := testdb.NewSQLite(t)
	cards := sqlite.NewCardStore(db, log)
	seeder := NewSeeder(db, cards, log)
	ctx := context.Background()
	owner := DemoOwnerID()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	own, err := domain.NewCard(owner, "Hund", "dog", "", "Animals", now)
	require.NoError(t, err)
	require.NoError(t, cards.Create(ctx, own))

	n, err := seeder.ReseedDemo(ctx, owner, now)
	require.NoError(t, err)
	assert.Equal(t, DemoCardCount, n)

	// progress made on a demo card is wiped by the next reseed
	demo, err := cards.List(ctx, owner, store.CardFilter{Deck: DemoDeck})
	require.NoError(t, err)
	require.Len(t, demo, DemoCardCount)
	demo[0].ReviewCount, demo[0].CorrectCount = 2, 2
	require.NoError(t, cards.UpdateReview(ctx, demo[0]))

	later := now.Add(time.Hour)
	n, err = seeder.ReseedDemo(ctx, owner, later)
	require.NoError(t, err)
	assert.Equal(t, DemoCardCount, n)

	demo, err = cards.List(ctx, owner, store.CardFilter{Deck: DemoDeck})
	require.NoError(t, err)
	require.Len(t, demo, DemoCardCount)
	for _, c := range demo {
		assert.Zero(t, c.ReviewCount)
		assert.Zero(t, c.CorrectCount)
		assert.True(t, later.Equal(c.NextReview))
	}

	_, err = cards.GetByID(ctx, owner, own.ID)
	assert.NoError(t, err, "cards outside the demo deck survive")
}

func TestNewSeederPanicsOnNilDB(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewSeeder(nil, nil, nil) })
}
