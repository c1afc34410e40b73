// Package storetest holds a behavioural test suite that every
// store.CardStore implementation must pass.
package storetest

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a CardStore and the database behind it.
// Owners are random per subtest, so factories may share one database.
type Factory func(t *testing.T) (store.CardStore, *sql.DB)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newCard(t *testing.T, owner uuid.UUID, word, translation, deck string, offset time.Duration) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(owner, word, translation, "", deck, baseTime.Add(offset))
	require.NoError(t, err)
	return card
}

func mustCreate(t *testing.T, s store.CardStore, cards ...*domain.Card) {
	t.Helper()
	for _, c := range cards {
		require.NoError(t, s.Create(context.Background(), c))
	}
}

func words(cards []*domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Word
	}
	return out
}

// RunCardStoreTests runs the CardStore contract against newStore.
func RunCardStoreTests(t *testing.T, newStore Factory) {
	t.Run("create and get round trip", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		ctx := context.Background()
		owner := uuid.New()

		card := newCard(t, owner, "Haus", "house", "", 0)
		card.Example = "Das Haus ist alt."
		mustCreate(t, s, card)

		got, err := s.GetByID(ctx, owner, card.ID)
		require.NoError(t, err)
		assert.Equal(t, card.ID, got.ID)
		assert.Equal(t, owner, got.OwnerID)
		assert.Equal(t, "Haus", got.Word)
		assert.Equal(t, "house", got.Translation)
		assert.Equal(t, "Das Haus ist alt.", got.Example)
		assert.Equal(t, domain.DefaultDeck, got.Deck)
		assert.Zero(t, got.ReviewCount)
		assert.Nil(t, got.LastReviewed)
		assert.True(t, baseTime.Equal(got.NextReview))
		assert.True(t, baseTime.Equal(got.CreatedAt))
	})

	t.Run("create rejects duplicate key", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		owner := uuid.New()

		mustCreate(t, s, newCard(t, owner, "Hund", "dog", "Animals", 0))

		err := s.Create(context.Background(), newCard(t, owner, "Hund", "dog", "Animals", time.Second))
		assert.ErrorIs(t, err, store.ErrCardExists)
		assert.ErrorIs(t, err, store.ErrDuplicate)

		// same pair in another deck, with other case, or for another owner is fine
		mustCreate(t, s,
			newCard(t, owner, "Hund", "dog", "Pets", 0),
			newCard(t, owner, "hund", "dog", "Animals", 0),
			newCard(t, uuid.New(), "Hund", "dog", "Animals", 0),
		)
	})

	t.Run("create validates card", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)

		card := newCard(t, uuid.New(), "Baum", "tree", "", 0)
		card.Word = ""
		err := s.Create(context.Background(), card)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("cards are scoped to their owner", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		ctx := context.Background()
		owner, other := uuid.New(), uuid.New()

		card := newCard(t, owner, "Katze", "cat", "", 0)
		mustCreate(t, s, card)

		_, err := s.GetByID(ctx, other, card.ID)
		assert.ErrorIs(t, err, store.ErrCardNotFound)

		assert.ErrorIs(t, s.Delete(ctx, other, card.ID), store.ErrCardNotFound)
		assert.ErrorIs(t, s.UpdateDeck(ctx, other, card.ID, "X"), store.ErrCardNotFound)

		n, err := s.DeleteMany(ctx, other, []uuid.UUID{card.ID})
		require.NoError(t, err)
		assert.Zero(t, n)

		list, err := s.List(ctx, other, store.CardFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)

		_, err = s.GetByID(ctx, owner, card.ID)
		assert.NoError(t, err)
	})

	t.Run("find by key is exact", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		ctx := context.Background()
		owner := uuid.New()

		card := newCard(t, owner, "Apfel", "apple", "Food", 0)
		mustCreate(t, s, card)

		got, err := s.FindByKey(ctx, owner, domain.CardKey{Word: "Apfel", Translation: "apple", Deck: "Food"})
		require.NoError(t, err)
		assert.Equal(t, card.ID, got.ID)

		_, err = s.FindByKey(ctx, owner, domain.CardKey{Word: "apfel", Translation: "apple", Deck: "Food"})
		assert.ErrorIs(t, err, store.ErrCardNotFound)
	})

	t.Run("list filters and sorts", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		ctx := context.Background()
		owner := uuid.New()

		a := newCard(t, owner, "b-word", "zeta", "One", 0)
		b := newCard(t, owner, "a-word", "eta", "Two", time.Minute)
		c := newCard(t, owner, "c-word", "alpha", "One", 2*time.Minute)
		c.NextReview = baseTime.Add(48 * time.Hour)
		mustCreate(t, s, a, b, c)

		all, err := s.List(ctx, owner, store.CardFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"b-word", "a-word", "c-word"}, words(all), "default is next review ascending")

		byWord, err := s.List(ctx, owner, store.CardFilter{Sort: store.SortByWord})
		require.NoError(t, err)
		assert.Equal(t, []string{"a-word", "b-word", "c-word"}, words(byWord))

		byTranslationDesc, err := s.List(ctx, owner, store.CardFilter{Sort: store.SortByTranslation, Order: store.OrderDesc})
		require.NoError(t, err)
		assert.Equal(t, []string{"b-word", "a-word", "c-word"}, words(byTranslationDesc))

		byCreatedDesc, err := s.List(ctx, owner, store.CardFilter{Sort: store.SortByCreatedAt, Order: store.OrderDesc})
		require.NoError(t, err)
		assert.Equal(t, []string{"c-word", "a-word", "b-word"}, words(byCreatedDesc))

		deckOne, err := s.List(ctx, owner, store.CardFilter{Deck: "One"})
		require.NoError(t, err)
		assert.Equal(t, []string{"b-word", "c-word"}, words(deckOne))

		now := baseTime.Add(time.Hour)
		due, err := s.List(ctx, owner, store.CardFilter{DueAt: &now})
		require.NoError(t, err)
		assert.Equal(t, []string{"b-word", "a-word"}, words(due))

		exactlyDue := baseTime
		boundary, err := s.List(ctx, owner, store.CardFilter{DueAt: &exactlyDue})
		require.NoError(t, err)
		assert.Equal(t, []string{"b-word"}, words(boundary), "next review equal to now is due")

		byIDs, err := s.List(ctx, owner, store.CardFilter{IDs: []uuid.UUID{c.ID, a.ID, uuid.New()}})
		require.NoError(t, err)
		assert.Equal(t, []string{"b-word", "c-word"}, words(byIDs))
	})

	t.Run("list breaks ties on id", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		ctx := context.Background()
		owner := uuid.New()

		first := newCard(t, owner, "x", "1", "", 0)
		second := newCard(t, owner, "x", "2", "", 0)
		mustCreate(t, s, first, second)

		list, err := s.List(ctx, owner, store.CardFilter{Sort: store.SortByWord, Order: store.OrderDesc})
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.True(t, list[0].ID.String() < list[1].ID.String())
	})

	t.Run("list keys and distinct decks", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		ctx := context.Background()
		owner := uuid.New()

		mustCreate(t, s,
			newCard(t, owner, "eins", "one", "Numbers", 0),
			newCard(t, owner, "zwei", "two", "Numbers", 0),
			newCard(t, owner, "rot", "red", "", 0),
		)

		keys, err := s.ListKeys(ctx, owner)
		require.NoError(t, err)
		assert.ElementsMatch(t, []domain.CardKey{
			{Word: "eins", Translation: "one", Deck: "Numbers"},
			{Word: "zwei", Translation: "two", Deck: "Numbers"},
			{Word: "rot", Translation: "red", Deck: domain.DefaultDeck},
		}, keys)

		decks, err := s.DistinctDecks(ctx, owner)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Numbers", domain.DefaultDeck}, decks)

		empty, err := s.DistinctDecks(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("update content", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		ctx := context.Background()
		owner := uuid.New()

		card := newCard(t, owner, "gehen", "go", "", 0)
		other := newCard(t, owner, "laufen", "run", "", 0)
		mustCreate(t, s, card, other)

		require.NoError(t, card.UpdateContent("gehen", "to go", "Wir gehen.", "Verbs"))
		require.NoError(t, s.UpdateContent(ctx, card))

		got, err := s.GetByID(ctx, owner, card.ID)
		require.NoError(t, err)
		assert.Equal(t, "to go", got.Translation)
		assert.Equal(t, "Wir gehen.", got.Example)
		assert.Equal(t, "Verbs", got.Deck)

		require.NoError(t, other.UpdateContent("gehen", "to go", "", "Verbs"))
		assert.ErrorIs(t, s.UpdateContent(ctx, other), store.ErrCardExists)

		missing := newCard(t, owner, "fehlt", "missing", "", 0)
		assert.ErrorIs(t, s.UpdateContent(ctx, missing), store.ErrCardNotFound)
	})

	t.Run("update review", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		ctx := context.Background()
		owner := uuid.New()

		card := newCard(t, owner, "lesen", "read", "", 0)
		mustCreate(t, s, card)

		reviewed := baseTime.Add(time.Hour)
		card.ReviewCount = 3
		card.CorrectCount = 2
		card.LastReviewed = &reviewed
		card.NextReview = reviewed.Add(30 * time.Minute)
		require.NoError(t, s.UpdateReview(ctx, card))

		got, err := s.GetByID(ctx, owner, card.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.ReviewCount)
		assert.Equal(t, 2, got.CorrectCount)
		require.NotNil(t, got.LastReviewed)
		assert.True(t, reviewed.Equal(*got.LastReviewed))
		assert.True(t, reviewed.Add(30*time.Minute).Equal(got.NextReview))
		assert.Equal(t, "lesen", got.Word)
	})

	t.Run("update deck", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		ctx := context.Background()
		owner := uuid.New()

		card := newCard(t, owner, "Tisch", "table", "A", 0)
		twin := newCard(t, owner, "Tisch", "table", "B", 0)
		mustCreate(t, s, card, twin)

		assert.ErrorIs(t, s.UpdateDeck(ctx, owner, card.ID, "B"), store.ErrCardExists)
		require.NoError(t, s.UpdateDeck(ctx, owner, card.ID, "C"))

		got, err := s.GetByID(ctx, owner, card.ID)
		require.NoError(t, err)
		assert.Equal(t, "C", got.Deck)
	})

	t.Run("deletes", func(t *testing.T) {
		t.Parallel()
		s, _ := newStore(t)
		ctx := context.Background()
		owner := uuid.New()

		a := newCard(t, owner, "a", "1", "X", 0)
		b := newCard(t, owner, "b", "2", "X", 0)
		c := newCard(t, owner, "c", "3", "Y", 0)
		d := newCard(t, owner, "d", "4", "Y", 0)
		e := newCard(t, owner, "e", "5", "Z", 0)
		mustCreate(t, s, a, b, c, d, e)

		require.NoError(t, s.Delete(ctx, owner, a.ID))
		assert.ErrorIs(t, s.Delete(ctx, owner, a.ID), store.ErrCardNotFound)

		n, err := s.DeleteMany(ctx, owner, []uuid.UUID{a.ID, b.ID, uuid.New()})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = s.DeleteMany(ctx, owner, nil)
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = s.DeleteByDeck(ctx, owner, "Y")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		n, err = s.DeleteAll(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		list, err := s.List(ctx, owner, store.CardFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("with tx rolls back", func(t *testing.T) {
		t.Parallel()
		s, db := newStore(t)
		ctx := context.Background()
		owner := uuid.New()

		err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			txStore := s.WithTx(tx)
			if err := txStore.Create(ctx, newCard(t, owner, "weg", "gone", "", 0)); err != nil {
				return err
			}
			return txStore.Create(ctx, newCard(t, owner, "weg", "gone", "", 0))
		})
		assert.ErrorIs(t, err, store.ErrCardExists)

		list, err := s.List(ctx, owner, store.CardFilter{})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
