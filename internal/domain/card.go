package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultEase is the ease a card starts with and returns to on reset.
const DefaultEase = 2.5

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardQuestionEmpty is returned when a card has no question text.
	ErrCardQuestionEmpty = errors.New("card question cannot be empty")

	// ErrCardAnswerEmpty is returned when a card has no answer text.
	ErrCardAnswerEmpty = errors.New("card answer cannot be empty")

	// ErrInvalidInterval is returned when a card carries a negative interval.
	ErrInvalidInterval = errors.New("interval must be greater than or equal to 0")

	// ErrInvalidEase is returned when a card's ease is not positive.
	ErrInvalidEase = errors.New("ease must be greater than 0")

	// ErrInvalidReviewCounters is returned when the review counters disagree
	// with each other or are negative.
	ErrInvalidReviewCounters = errors.New("review count must equal correct plus incorrect count")
)

// ReviewScheduler computes the spaced-repetition outcome of a single review.
// It is satisfied by the schedulers in the srs package.
type ReviewScheduler interface {
	NextReview(currentInterval int, currentEase float64, rating ReviewRating) (int, float64)
	NextMasteryLevel(current MasteryLevel, rating ReviewRating) MasteryLevel
	NextReviewDate(interval int, rating ReviewRating, now time.Time) time.Time
}

// Card is a flashcard with its content and spaced-repetition state.
// A card with no reviews, or with no next review date, is always due.
type Card struct {
	ID             uuid.UUID    `json:"id"`
	DeckID         uuid.UUID    `json:"deck_id"`
	Question       string       `json:"question"`
	Answer         string       `json:"answer"`
	AdditionalInfo string       `json:"additional_info,omitempty"`
	Tags           []string     `json:"tags,omitempty"`
	MasteryLevel   MasteryLevel `json:"mastery_level"`
	IntervalDays   int          `json:"interval_days"`
	Ease           float64      `json:"ease"`
	ReviewCount    int          `json:"review_count"`
	CorrectCount   int          `json:"correct_count"`
	IncorrectCount int          `json:"incorrect_count"`
	LastReviewedAt *time.Time   `json:"last_reviewed_at,omitempty"`
	NextReviewDate *time.Time   `json:"next_review_date,omitempty"`
	IsFlagged      bool         `json:"is_flagged"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewCard creates a new unreviewed Card in the given deck.
// Returns an error if validation fails.
func NewCard(deckID uuid.UUID, question, answer string, now time.Time) (*Card, error) {
	card := &Card{
		ID:           uuid.New(),
		DeckID:       deckID,
		Question:     strings.TrimSpace(question),
		Answer:       strings.TrimSpace(answer),
		MasteryLevel: MasteryNovice,
		Ease:         DefaultEase,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}
	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}
	if strings.TrimSpace(c.Question) == "" {
		return ErrCardQuestionEmpty
	}
	if strings.TrimSpace(c.Answer) == "" {
		return ErrCardAnswerEmpty
	}
	if !c.MasteryLevel.IsValid() {
		return fmt.Errorf("%w: %d", ErrInvalidMasteryLevel, int(c.MasteryLevel))
	}
	if c.IntervalDays < 0 {
		return ErrInvalidInterval
	}
	if c.Ease <= 0 {
		return ErrInvalidEase
	}
	if c.CorrectCount < 0 || c.IncorrectCount < 0 ||
		c.ReviewCount != c.CorrectCount+c.IncorrectCount {
		return ErrInvalidReviewCounters
	}
	return nil
}

// IsNew reports whether the card has never been reviewed.
func (c Card) IsNew() bool {
	return c.ReviewCount == 0
}

// IsDue reports whether the card should be shown at now.
func (c Card) IsDue(now time.Time) bool {
	if c.ReviewCount == 0 || c.NextReviewDate == nil {
		return true
	}
	return !c.NextReviewDate.After(now)
}

// IsOverdue reports whether the card was already due before cutoff,
// typically the start of the current day.
func (c Card) IsOverdue(cutoff time.Time) bool {
	if c.ReviewCount == 0 || c.NextReviewDate == nil {
		return false
	}
	return c.NextReviewDate.Before(cutoff)
}

// SuccessRate returns correct reviews over total reviews, or 0 for a new card.
func (c Card) SuccessRate() float64 {
	if c.ReviewCount == 0 {
		return 0
	}
	return float64(c.CorrectCount) / float64(c.ReviewCount)
}

// RecordReview applies a graded review and returns the updated card.
// The receiver is not modified.
func (c Card) RecordReview(rating ReviewRating, scheduler ReviewScheduler, now time.Time) (Card, error) {
	if !rating.IsValid() {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidReviewRating, rating)
	}
	if scheduler == nil {
		return Card{}, errors.New("scheduler cannot be nil")
	}

	next := c.clone()
	next.IntervalDays, next.Ease = scheduler.NextReview(c.IntervalDays, c.Ease, rating)
	next.MasteryLevel = scheduler.NextMasteryLevel(c.MasteryLevel, rating)

	next.ReviewCount++
	if rating.IsCorrect() {
		next.CorrectCount++
	} else {
		next.IncorrectCount++
	}

	reviewedAt := now.UTC()
	nextDate := scheduler.NextReviewDate(next.IntervalDays, rating, reviewedAt).UTC()
	next.LastReviewedAt = &reviewedAt
	next.NextReviewDate = &nextDate
	next.UpdatedAt = reviewedAt

	return next, nil
}

// Reset returns a copy of the card with all study progress cleared.
func (c Card) Reset(now time.Time) Card {
	next := c.clone()
	next.MasteryLevel = MasteryNovice
	next.IntervalDays = 0
	next.Ease = DefaultEase
	next.ReviewCount = 0
	next.CorrectCount = 0
	next.IncorrectCount = 0
	next.LastReviewedAt = nil
	next.NextReviewDate = nil
	next.UpdatedAt = now.UTC()
	return next
}

// Postpone returns a copy of the card with its next review pushed back by days.
// The shift is applied to whichever is later, now or the current due date.
func (c Card) Postpone(days int, now time.Time) (Card, error) {
	if days < 1 {
		return Card{}, ErrInvalidPostponeDays
	}

	base := now.UTC()
	if c.NextReviewDate != nil && c.NextReviewDate.After(base) {
		base = c.NextReviewDate.UTC()
	}
	due := base.AddDate(0, 0, days)

	next := c.clone()
	next.NextReviewDate = &due
	next.UpdatedAt = now.UTC()
	return next, nil
}

// clone returns a copy that shares no pointers or slices with c.
func (c Card) clone() Card {
	out := c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.LastReviewedAt != nil {
		t := *c.LastReviewedAt
		out.LastReviewedAt = &t
	}
	if c.NextReviewDate != nil {
		t := *c.NextReviewDate
		out.NextReviewDate = &t
	}
	return out
}

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	return c.clone()
}
