package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/domain/srs"
	"github.com/BogdanBedrinec/cards/internal/service"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardService_NilDependencies(t *testing.T) {
	t.Parallel()

	_, err := service.NewCardService(nil, srs.NewDefaultService(), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)

	e := newEnv(t)
	_, err = service.NewCardService(e.store, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCardService_Create(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	t.Run("new card is due immediately", func(t *testing.T) {
		card := e.add(t, owner, "Hund", "dog", "Animals")

		cards := e.all(t, owner)
		require.Len(t, cards, 1)
		assert.Equal(t, card.ID, cards[0].ID)
		assert.Equal(t, "Animals", cards[0].Deck)
		assert.False(t, cards[0].NextReview.After(e.clock.Now()))
		assert.Zero(t, cards[0].ReviewCount)
		assert.Nil(t, cards[0].LastReviewed)
	})

	t.Run("fields are trimmed and deck defaults", func(t *testing.T) {
		card, err := e.cards.Create(ctx, owner, service.CardInput{Word: "  Haus ", Translation: " house "})
		require.NoError(t, err)
		assert.Equal(t, "Haus", card.Word)
		assert.Equal(t, "house", card.Translation)
		assert.Equal(t, "", card.Example)
		assert.Equal(t, domain.DefaultDeck, card.Deck)
	})

	t.Run("same key is a duplicate", func(t *testing.T) {
		_, err := e.cards.Create(ctx, owner, service.CardInput{Word: "Hund", Translation: "dog", Deck: "Animals"})
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("same word in another deck or case is allowed", func(t *testing.T) {
		_, err := e.cards.Create(ctx, owner, service.CardInput{Word: "Hund", Translation: "dog", Deck: "Pets"})
		require.NoError(t, err)
		_, err = e.cards.Create(ctx, owner, service.CardInput{Word: "hund", Translation: "dog", Deck: "Animals"})
		require.NoError(t, err)
	})

	t.Run("missing word or translation is invalid", func(t *testing.T) {
		_, err := e.cards.Create(ctx, owner, service.CardInput{Word: " ", Translation: "dog"})
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = e.cards.Create(ctx, owner, service.CardInput{Word: "Hund"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("owner is required", func(t *testing.T) {
		_, err := e.cards.Create(ctx, uuid.Nil, service.CardInput{Word: "Hund", Translation: "dog"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestCardService_GetIsOwnerScoped(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	owner, stranger := uuid.New(), uuid.New()

	card := e.add(t, owner, "Hund", "dog", "")

	_, err := e.cards.Get(context.Background(), stranger, card.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = e.cards.Get(context.Background(), owner, uuid.New())
	assert.ErrorIs(t, err, store.ErrCardNotFound)
}

func TestCardService_Edit(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	card := e.add(t, owner, "Hund", "dog", "Animals")
	e.add(t, owner, "Katze", "cat", "Animals")

	_, err := e.cards.Review(ctx, owner, card.ID, true)
	require.NoError(t, err)

	t.Run("replaces content and keeps scheduling", func(t *testing.T) {
		edited, err := e.cards.Edit(ctx, owner, card.ID, service.CardInput{
			Word:        "der Hund",
			Translation: "the dog",
			Example:     "Der Hund schläft.",
		})
		require.NoError(t, err)
		assert.Equal(t, "der Hund", edited.Word)
		assert.Equal(t, domain.DefaultDeck, edited.Deck, "an omitted deck resets to the default deck")

		stored, err := e.cards.Get(ctx, owner, card.ID)
		require.NoError(t, err)
		assert.Equal(t, "the dog", stored.Translation)
		assert.Equal(t, "Der Hund schläft.", stored.Example)
		assert.Equal(t, 1, stored.CorrectCount)
		assert.True(t, card.CreatedAt.Equal(stored.CreatedAt))
	})

	t.Run("colliding edit is a duplicate", func(t *testing.T) {
		_, err := e.cards.Edit(ctx, owner, card.ID, service.CardInput{Word: "Katze", Translation: "cat", Deck: "Animals"})
		assert.ErrorIs(t, err, store.ErrDuplicate)

		stored, err := e.cards.Get(ctx, owner, card.ID)
		require.NoError(t, err)
		assert.Equal(t, "der Hund", stored.Word)
	})

	t.Run("invalid edit leaves card alone", func(t *testing.T) {
		_, err := e.cards.Edit(ctx, owner, card.ID, service.CardInput{Word: "", Translation: "dog"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown or foreign card is not found", func(t *testing.T) {
		_, err := e.cards.Edit(ctx, uuid.New(), card.ID, service.CardInput{Word: "x", Translation: "y"})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestCardService_Delete(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	owner, stranger := uuid.New(), uuid.New()

	card := e.add(t, owner, "Hund", "dog", "")

	assert.ErrorIs(t, e.cards.Delete(ctx, stranger, card.ID), store.ErrNotFound)
	require.NoError(t, e.cards.Delete(ctx, owner, card.ID))
	assert.ErrorIs(t, e.cards.Delete(ctx, owner, card.ID), store.ErrNotFound)

	_, err := e.cards.Get(ctx, owner, card.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCardService_Review(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("known answer on a fresh card", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		owner := uuid.New()
		card := e.add(t, owner, "Hund", "dog", "Animals")
		now := e.clock.Now()

		result, err := e.cards.Review(ctx, owner, card.ID, true)
		require.NoError(t, err)
		assert.True(t, result.Known)
		assert.Equal(t, service.ReviewMessageKnown, result.Message)
		assert.Equal(t, 1, result.Card.ReviewCount)
		assert.Equal(t, 1, result.Card.CorrectCount)
		require.NotNil(t, result.Card.LastReviewed)
		assert.True(t, now.Equal(*result.Card.LastReviewed))
		assert.Equal(t, 5*time.Minute, result.Card.NextReview.Sub(now))

		stored, err := e.cards.Get(ctx, owner, card.ID)
		require.NoError(t, err)
		assert.True(t, result.Card.NextReview.Equal(stored.NextReview))
		assert.Equal(t, "Hund", stored.Word)
	})

	t.Run("unknown answer on a fresh card", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		owner := uuid.New()
		card := e.add(t, owner, "Hund", "dog", "Animals")
		now := e.clock.Now()

		result, err := e.cards.Review(ctx, owner, card.ID, false)
		require.NoError(t, err)
		assert.Equal(t, service.ReviewMessageUnknown, result.Message)
		assert.Equal(t, 1, result.Card.ReviewCount)
		assert.Equal(t, 0, result.Card.CorrectCount)
		assert.Equal(t, time.Minute, result.Card.NextReview.Sub(now))
	})

	t.Run("known answers climb the ladder", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		owner := uuid.New()
		card := e.add(t, owner, "Hund", "dog", "")
		ladder := srs.NewDefaultParams()

		for i := 1; i <= 10; i++ {
			result, err := e.cards.Review(ctx, owner, card.ID, true)
			require.NoError(t, err)
			assert.Equal(t, i, result.Card.CorrectCount)
			assert.Equal(t, ladder.Interval(min(i, 7)), result.Card.NextReview.Sub(*result.Card.LastReviewed))
			e.clock.Advance(time.Hour)
		}
	})

	t.Run("foreign card is not found", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		card := e.add(t, uuid.New(), "Hund", "dog", "")

		_, err := e.cards.Review(ctx, uuid.New(), card.ID, true)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
