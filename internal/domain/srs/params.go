// Package srs implements the review scheduling rule that decides when a card
// becomes due again.
package srs

import (
	"errors"
	"time"
)

// ErrEmptyLadder is returned when Params carry no intervals.
var ErrEmptyLadder = errors.New("srs ladder must contain at least one interval")

// Params defines the interval ladder and the retry delay used by the scheduler.
type Params struct {
	// Ladder is indexed by the number of correct answers, capped at its last entry.
	Ladder []time.Duration

	// RetryDelay is applied after an unknown answer.
	RetryDelay time.Duration
}

// defaultLadderMinutes are 1m, 5m, 30m, 3h, 1d, 3d, 7d and 30d.
var defaultLadderMinutes = [...]int{1, 5, 30, 180, 1440, 4320, 10080, 43200}

// NewDefaultParams creates a new Params instance with the fixed default ladder.
func NewDefaultParams() *Params {
	ladder := make([]time.Duration, len(defaultLadderMinutes))
	for i, m := range defaultLadderMinutes {
		ladder[i] = time.Duration(m) * time.Minute
	}

	return &Params{
		Ladder:     ladder,
		RetryDelay: time.Minute,
	}
}

// Validate checks that the parameters can schedule a review.
func (p *Params) Validate() error {
	if len(p.Ladder) == 0 {
		return ErrEmptyLadder
	}
	return nil
}

// MaxLevel is the highest ladder index.
func (p *Params) MaxLevel() int {
	return len(p.Ladder) - 1
}

// Interval returns the ladder interval for level, clamped to the ladder bounds.
func (p *Params) Interval(level int) time.Duration {
	if level < 0 {
		level = 0
	}
	if level > p.MaxLevel() {
		level = p.MaxLevel()
	}
	return p.Ladder[level]
}
