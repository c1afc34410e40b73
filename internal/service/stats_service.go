package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/BogdanBedrinec/cards/internal/domain"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/store"
	"github.com/google/uuid"
)

// LearnedThreshold is the number of correct answers after which a card
// counts as learned.
const LearnedThreshold = 3

// Stats aggregates an owner's cards.
type Stats struct {
	TotalCards       int
	DueNow           int
	ReviewedToday    int
	TotalReviews     int
	TotalCorrect     int
	Accuracy         int
	Learned          int
	Remaining        int
	LearnedThreshold int
}

// StatsService computes review statistics.
type StatsService interface {
	// Get aggregates all of the owner's cards at the current time.
	Get(ctx context.Context, ownerID uuid.UUID) (*Stats, error)
}

type statsServiceImpl struct {
	cards  store.CardStore
	opts   options
	logger *slog.Logger
}

// NewStatsService creates a new StatsService. Use WithLocation to choose
// the time zone whose midnight starts the "reviewed today" window.
func NewStatsService(cards store.CardStore, logger *slog.Logger, opts ...Option) (StatsService, error) {
	if cards == nil {
		return nil, domain.NewValidationError("cards", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &statsServiceImpl{
		cards:  cards,
		opts:   newOptions(opts),
		logger: logger.With(slog.String("component", "stats_service")),
	}, nil
}

func (s *statsServiceImpl) Get(ctx context.Context, ownerID uuid.UUID) (*Stats, error) {
	if err := requireOwner(ownerID); err != nil {
		return nil, err
	}

	cards, err := s.cards.List(ctx, ownerID, store.CardFilter{})
	if err != nil {
		return nil, wrap("get stats", "failed to list cards", err)
	}

	stats := Aggregate(cards, s.opts.now(), s.opts.location)
	logger.FromContextOrDefault(ctx, s.logger).Debug("stats aggregated",
		slog.Int("total_cards", stats.TotalCards),
		slog.Int("due_now", stats.DueNow))
	return &stats, nil
}

// Aggregate computes Stats over cards at now. "Today" starts at midnight
// of now in loc.
func Aggregate(cards []*domain.Card, now time.Time, loc *time.Location) Stats {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	startOfToday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	stats := Stats{
		TotalCards:       len(cards),
		LearnedThreshold: LearnedThreshold,
	}
	for _, c := range cards {
		if c.IsDue(now) {
			stats.DueNow++
		}
		if c.LastReviewed != nil && !c.LastReviewed.Before(startOfToday) {
			stats.ReviewedToday++
		}
		stats.TotalReviews += c.ReviewCount
		stats.TotalCorrect += c.CorrectCount
		if c.CorrectCount >= LearnedThreshold {
			stats.Learned++
		}
	}

	if stats.TotalReviews > 0 {
		stats.Accuracy = int(math.Round(100 * float64(stats.TotalCorrect) / float64(stats.TotalReviews)))
	}
	stats.Remaining = max(0, stats.TotalCards-stats.Learned)

	return stats
}
