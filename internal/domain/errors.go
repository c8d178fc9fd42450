// Package domain defines the core study entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is usually wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or missing.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidReviewRating is returned when a review rating is not one of
	// again, hard, good or easy.
	ErrInvalidReviewRating = errors.New("invalid review rating")

	// ErrInvalidMasteryLevel is returned when a mastery level is outside the
	// novice..expert range.
	ErrInvalidMasteryLevel = errors.New("invalid mastery level")

	// ErrInvalidPostponeDays is returned when a card is postponed by less than a day.
	ErrInvalidPostponeDays = errors.New("postpone days must be at least 1")
)

// Study session errors.
var (
	// ErrSessionEnded is returned when a transition is attempted on a session
	// that already has an end time.
	ErrSessionEnded = errors.New("study session has ended")

	// ErrCardNotScheduled is returned when a card is reviewed or skipped that
	// was not part of the session's scheduled snapshot.
	ErrCardNotScheduled = errors.New("card is not scheduled in this session")

	// ErrCardAlreadyReviewed is returned when a card appears a second time in
	// a session's reviewed list.
	ErrCardAlreadyReviewed = errors.New("card already reviewed in this session")

	// ErrReviewLimitReached is returned when the session has reviewed as many
	// cards as its review limit allows.
	ErrReviewLimitReached = errors.New("session review limit reached")

	// ErrInvalidReviewLimit is returned when a session is created with a
	// review limit that is not positive.
	ErrInvalidReviewLimit = errors.New("review limit must be positive")

	// ErrInvalidSessionData is returned when a session reconstructed from
	// storage breaks one of its structural invariants.
	ErrInvalidSessionData = errors.New("invalid study session data")
)
