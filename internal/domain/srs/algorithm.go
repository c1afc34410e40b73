package srs

import (
	"time"
)

// State is the scheduling part of a card.
type State struct {
	ReviewCount  int
	CorrectCount int
	LastReviewed *time.Time
	NextReview   time.Time
}

// nextState computes the scheduling state after a single review.
//
// The rule is a fixed ladder rather than an adaptive algorithm. A known answer
// moves the card one rung up the ladder, an unknown answer keeps the rung and
// brings the card back after the retry delay.
//
// Parameters:
//   - state: The current scheduling state of the card
//   - known: Whether the user remembered the card
//   - now: The review time, used for both LastReviewed and the next due time
//   - params: The ladder and retry delay
//
// Returns:
//   - The new state. The input state is not modified.
//
// Algorithm behavior:
//   - ReviewCount always grows by one and LastReviewed becomes now
//   - known: CorrectCount grows by one and NextReview is now plus
//     Ladder[min(CorrectCount, MaxLevel)]
//   - unknown: CorrectCount is unchanged and NextReview is now plus RetryDelay
func nextState(state State, known bool, now time.Time, params *Params) State {
	reviewedAt := now
	next := State{
		ReviewCount:  state.ReviewCount + 1,
		CorrectCount: state.CorrectCount,
		LastReviewed: &reviewedAt,
	}

	if known {
		next.CorrectCount++
		next.NextReview = now.Add(params.Interval(next.CorrectCount))
		return next
	}

	next.NextReview = now.Add(params.RetryDelay)
	return next
}
