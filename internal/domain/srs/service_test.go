package srs_test

import (
	"testing"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/domain/srs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyReview_FreshCardKnown(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	card, err := domain.NewCard(uuid.New(), "Hund", "dog", "", "Animals", now)
	require.NoError(t, err)

	svc := srs.NewDefaultService()
	reviewedAt := now.Add(10 * time.Second)
	updated, err := svc.ApplyReview(card, true, reviewedAt)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.ReviewCount)
	assert.Equal(t, 1, updated.CorrectCount)
	require.NotNil(t, updated.LastReviewed)
	assert.Equal(t, reviewedAt, *updated.LastReviewed)
	assert.Equal(t, reviewedAt.Add(5*time.Minute), updated.NextReview)

	// content and identity are carried over, original untouched
	assert.Equal(t, card.ID, updated.ID)
	assert.Equal(t, "Hund", updated.Word)
	assert.Equal(t, "Animals", updated.Deck)
	assert.Zero(t, card.ReviewCount)
	assert.Nil(t, card.LastReviewed)
}

func TestApplyReview_FreshCardUnknown(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	card, err := domain.NewCard(uuid.New(), "Katze", "cat", "", "", now)
	require.NoError(t, err)

	updated, err := srs.NewDefaultService().ApplyReview(card, false, now)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.ReviewCount)
	assert.Equal(t, 0, updated.CorrectCount)
	assert.Equal(t, now.Add(time.Minute), updated.NextReview)
}

func TestApplyReview_NilCard(t *testing.T) {
	t.Parallel()

	_, err := srs.NewDefaultService().ApplyReview(nil, true, time.Now())
	assert.ErrorIs(t, err, srs.ErrNilCard)
}

func TestNewServiceWithParams(t *testing.T) {
	t.Parallel()

	_, err := srs.NewServiceWithParams(&srs.Params{})
	assert.ErrorIs(t, err, srs.ErrEmptyLadder)

	svc, err := srs.NewServiceWithParams(&srs.Params{
		Ladder:     []time.Duration{time.Hour},
		RetryDelay: 2 * time.Minute,
	})
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, now.Add(time.Hour), svc.Schedule(srs.State{CorrectCount: 5}, true, now).NextReview)
	assert.Equal(t, now.Add(2*time.Minute), svc.Schedule(srs.State{}, false, now).NextReview)
}
