package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrReviewCardIDEmpty is returned when a review does not reference a card.
var ErrReviewCardIDEmpty = errors.New("review card ID cannot be empty")

// CardReview is the immutable audit record of one grading event.
// SessionID is nil for reviews made outside a tracked session.
type CardReview struct {
	ID              uuid.UUID     `json:"id"`
	CardID          uuid.UUID     `json:"card_id"`
	SessionID       *uuid.UUID    `json:"session_id,omitempty"`
	Timestamp       time.Time     `json:"timestamp"`
	Rating          ReviewRating  `json:"rating"`
	ResponseTime    time.Duration `json:"response_time"`
	NewInterval     int           `json:"new_interval"`
	NewEase         float64       `json:"new_ease"`
	NewMasteryLevel MasteryLevel  `json:"new_mastery_level"`
}

// NewCardReview records the review that produced reviewed.
// The resulting interval, ease and mastery are copied from the reviewed card.
func NewCardReview(
	reviewed Card,
	sessionID *uuid.UUID,
	rating ReviewRating,
	responseTime time.Duration,
	now time.Time,
) (*CardReview, error) {
	review := &CardReview{
		ID:              uuid.New(),
		CardID:          reviewed.ID,
		Timestamp:       now.UTC(),
		Rating:          rating,
		ResponseTime:    responseTime,
		NewInterval:     reviewed.IntervalDays,
		NewEase:         reviewed.Ease,
		NewMasteryLevel: reviewed.MasteryLevel,
	}
	if sessionID != nil {
		id := *sessionID
		review.SessionID = &id
	}
	if review.ResponseTime < 0 {
		review.ResponseTime = 0
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}
	return review, nil
}

// Validate checks if the CardReview has valid data.
func (r *CardReview) Validate() error {
	if r.ID == uuid.Nil {
		return ErrInvalidID
	}
	if r.CardID == uuid.Nil {
		return ErrReviewCardIDEmpty
	}
	if !r.Rating.IsValid() {
		return ErrInvalidReviewRating
	}
	if !r.NewMasteryLevel.IsValid() {
		return ErrInvalidMasteryLevel
	}
	if r.NewInterval < 0 {
		return ErrInvalidInterval
	}
	return nil
}

// IsCorrect reports whether the review counted as a successful recall.
func (r CardReview) IsCorrect() bool {
	return r.Rating.IsCorrect()
}
