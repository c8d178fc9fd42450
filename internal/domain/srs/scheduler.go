// Package srs implements the spaced-repetition scheduling rules used to decide
// when a card is next shown and how its mastery evolves.
package srs

import (
	"fmt"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// Scheduler defines the scheduling operations applied to a card after a review.
// Implementations must be pure: the same inputs always give the same outputs,
// and only NextReviewDate looks at the supplied time.
type Scheduler interface {
	// NextReview returns the interval in days and the ease after a review.
	// Out-of-range inputs are clamped rather than rejected.
	NextReview(currentInterval int, currentEase float64, rating domain.ReviewRating) (int, float64)

	// NextMasteryLevel returns the mastery level after a review.
	NextMasteryLevel(current domain.MasteryLevel, rating domain.ReviewRating) domain.MasteryLevel

	// NextReviewDate returns when the card should next be shown.
	NextReviewDate(interval int, rating domain.ReviewRating, now time.Time) time.Time
}

// Ensure the scheduler satisfies the interface the domain depends on.
var (
	_ Scheduler              = (*defaultScheduler)(nil)
	_ domain.ReviewScheduler = (*defaultScheduler)(nil)
)

// defaultScheduler is the standard SM-2 style implementation of Scheduler
type defaultScheduler struct {
	params *Params
}

// NewDefaultScheduler creates a scheduler with default parameters
func NewDefaultScheduler() Scheduler {
	return &defaultScheduler{params: NewDefaultParams()}
}

// NewScheduler creates a scheduler with custom parameters.
// Returns ErrInvalidParams if the parameters are inconsistent.
func NewScheduler(params *Params) (Scheduler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultScheduler{params: params}, nil
}

// MustNewScheduler is like NewScheduler but panics on invalid parameters.
// Intended for package-level defaults and tests.
func MustNewScheduler(params *Params) Scheduler {
	s, err := NewScheduler(params)
	if err != nil {
		// ALLOW-PANIC: constructor helper for static parameters
		panic(fmt.Sprintf("srs: %v", err))
	}
	return s
}

// NextReview implements Scheduler.
func (s *defaultScheduler) NextReview(
	currentInterval int,
	currentEase float64,
	rating domain.ReviewRating,
) (int, float64) {
	interval := clampInterval(currentInterval, s.params)
	ease := clampEase(currentEase, s.params)
	if !rating.IsValid() {
		return interval, ease
	}

	newEase := calculateNewEase(ease, rating, s.params)
	return calculateNewInterval(interval, newEase, rating, s.params), newEase
}

// NextMasteryLevel implements Scheduler.
func (s *defaultScheduler) NextMasteryLevel(
	current domain.MasteryLevel,
	rating domain.ReviewRating,
) domain.MasteryLevel {
	if !rating.IsValid() {
		return current
	}
	return calculateNextMasteryLevel(current, rating)
}

// NextReviewDate implements Scheduler.
func (s *defaultScheduler) NextReviewDate(
	interval int,
	rating domain.ReviewRating,
	now time.Time,
) time.Time {
	return calculateNextReviewDate(interval, rating, now, s.params)
}
