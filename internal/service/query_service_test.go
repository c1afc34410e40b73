package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/service"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                    string
		mode, sort, order, deck string
		want                    service.ListQuery
	}{
		{
			name: "defaults",
			want: service.ListQuery{Mode: service.ModeDue, Sort: service.SortNextReview, Order: store.OrderAsc},
		},
		{
			name: "explicit values",
			mode: "all", sort: "word", order: "desc", deck: "Animals",
			want: service.ListQuery{Mode: service.ModeAll, Sort: service.SortWord, Order: store.OrderDesc, Deck: "Animals"},
		},
		{
			name: "case insensitive names",
			mode: "ALL", sort: "CreatedAt", order: "DESC",
			want: service.ListQuery{Mode: service.ModeAll, Sort: service.SortCreatedAt, Order: store.OrderDesc},
		},
		{
			name: "unknown values fall back",
			mode: "later", sort: "color", order: "sideways",
			want: service.ListQuery{Mode: service.ModeDue, Sort: service.SortNextReview, Order: store.OrderAsc},
		},
		{
			name: "ALL deck means no filter",
			sort: "accuracy", deck: "ALL",
			want: service.ListQuery{Mode: service.ModeDue, Sort: service.SortAccuracy, Order: store.OrderAsc},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, service.ParseListQuery(tc.mode, tc.sort, tc.order, tc.deck))
		})
	}
}

func TestQueryService_DueMode(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	hund := e.add(t, owner, "Hund", "dog", "")
	katze := e.add(t, owner, "Katze", "cat", "")
	e.add(t, uuid.New(), "Maus", "mouse", "")

	// pushes Hund five minutes out
	_, err := e.cards.Review(ctx, owner, hund.ID, true)
	require.NoError(t, err)

	due := service.ListQuery{Mode: service.ModeDue, Sort: service.SortNextReview}

	cards, err := e.query.List(ctx, owner, due)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{katze.ID}, idsOf(cards))
	for _, c := range cards {
		assert.False(t, c.NextReview.After(e.clock.Now()))
	}

	e.clock.Advance(5 * time.Minute)
	cards, err = e.query.List(ctx, owner, due)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{hund.ID, katze.ID}, idsOf(cards), "a card due exactly now is included")

	all, err := e.query.List(ctx, owner, service.ListQuery{Mode: service.ModeAll})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestQueryService_DeckFilterAndSort(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	e.add(t, owner, "Katze", "cat", "Animals")
	e.add(t, owner, "Apfel", "apple", "Food")
	e.add(t, owner, "Hund", "dog", "Animals")

	cards, err := e.query.List(ctx, owner, service.ParseListQuery("all", "word", "asc", "Animals"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hund", "Katze"}, words(cards))

	cards, err = e.query.List(ctx, owner, service.ParseListQuery("all", "word", "desc", "ALL"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Katze", "Hund", "Apfel"}, words(cards))

	cards, err = e.query.List(ctx, owner, service.ParseListQuery("all", "createdAt", "desc", ""))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hund", "Apfel", "Katze"}, words(cards))

	cards, err = e.query.List(ctx, owner, service.ParseListQuery("all", "translation", "asc", "Nope"))
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestQueryService_AccuracySort(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	ctx := context.Background()
	owner := uuid.New()

	never := e.add(t, owner, "Null", "zero", "")
	perfect := e.add(t, owner, "Eins", "one", "")
	half := e.add(t, owner, "Zwei", "two", "")
	alsoNever := e.add(t, owner, "Drei", "three", "")

	review := func(id uuid.UUID, known bool) {
		_, err := e.cards.Review(ctx, owner, id, known)
		require.NoError(t, err)
	}
	review(perfect.ID, true)
	review(half.ID, true)
	review(half.ID, false)

	asc, err := e.query.List(ctx, owner, service.ParseListQuery("all", "accuracy", "asc", ""))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{never.ID, alsoNever.ID, half.ID, perfect.ID}, idsOf(asc))

	desc, err := e.query.List(ctx, owner, service.ParseListQuery("all", "accuracy", "desc", ""))
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{perfect.ID, half.ID, never.ID, alsoNever.ID}, idsOf(desc),
		"ties stay in creation order when descending")

	again, err := e.query.List(ctx, owner, service.ParseListQuery("all", "accuracy", "desc", ""))
	require.NoError(t, err)
	assert.Equal(t, idsOf(desc), idsOf(again))
}

func TestSortByAccuracy_TieBreakOnID(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &domain.Card{ID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), CreatedAt: created}
	b := &domain.Card{ID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), CreatedAt: created}

	cards := []*domain.Card{a, b}
	service.SortByAccuracy(cards, store.OrderDesc)
	assert.Equal(t, []*domain.Card{b, a}, cards)
}

func idsOf(cards []*domain.Card) []uuid.UUID {
	out := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}
