package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStatus is the lifecycle state of a StudySession.
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

// StudySession is one study run over a deck.
//
// The scheduled card list is captured when the session is created and never
// changes afterwards. Reviewed cards are appended in review order, each at most
// once, and always come from the scheduled list. Skipped cards are also in the
// reviewed list; SkippedCards only records which of them were skipped.
type StudySession struct {
	ID              uuid.UUID     `json:"id"`
	DeckID          uuid.UUID     `json:"deck_id"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         *time.Time    `json:"end_time,omitempty"`
	IncludeSubdecks bool          `json:"include_subdecks"`
	ReviewLimit     *int          `json:"review_limit,omitempty"`
	ScheduledCards  []uuid.UUID   `json:"scheduled_cards"`
	ReviewedCards   []uuid.UUID   `json:"reviewed_cards"`
	SkippedCards    []uuid.UUID   `json:"skipped_cards"`
	CorrectCount    int           `json:"correct_count"`
	IncorrectCount  int           `json:"incorrect_count"`
	TotalStudyTime  time.Duration `json:"total_study_time"`
}

// NewStudySession starts a session over the given scheduled cards.
// reviewLimit may be nil for an unbounded session; otherwise it must be positive.
func NewStudySession(
	deckID uuid.UUID,
	includeSubdecks bool,
	reviewLimit *int,
	scheduled []uuid.UUID,
	now time.Time,
) (StudySession, error) {
	if deckID == uuid.Nil {
		return StudySession{}, ErrDeckIDEmpty
	}
	if reviewLimit != nil && *reviewLimit <= 0 {
		return StudySession{}, fmt.Errorf("%w: %d", ErrInvalidReviewLimit, *reviewLimit)
	}

	session := StudySession{
		ID:              uuid.New(),
		DeckID:          deckID,
		StartTime:       now.UTC(),
		IncludeSubdecks: includeSubdecks,
		ScheduledCards:  dedupe(scheduled),
		ReviewedCards:   []uuid.UUID{},
		SkippedCards:    []uuid.UUID{},
	}
	if reviewLimit != nil {
		limit := *reviewLimit
		session.ReviewLimit = &limit
	}
	return session, nil
}

// Status returns the lifecycle state of the session.
func (s StudySession) Status() SessionStatus {
	if s.EndTime != nil {
		return SessionStatusEnded
	}
	return SessionStatusActive
}

// IsActive reports whether the session can still accept reviews.
func (s StudySession) IsActive() bool { return s.EndTime == nil }

// IsEnded reports whether the session has been ended.
func (s StudySession) IsEnded() bool { return s.EndTime != nil }

// LimitReached reports whether the review limit, if any, has been used up.
func (s StudySession) LimitReached() bool {
	return s.ReviewLimit != nil && len(s.ReviewedCards) >= *s.ReviewLimit
}

// IsScheduled reports whether cardID is in the session snapshot.
func (s StudySession) IsScheduled(cardID uuid.UUID) bool {
	return contains(s.ScheduledCards, cardID)
}

// IsReviewed reports whether cardID was already reviewed or skipped.
func (s StudySession) IsReviewed(cardID uuid.UUID) bool {
	return contains(s.ReviewedCards, cardID)
}

// Remaining returns the scheduled cards not yet reviewed, in schedule order.
func (s StudySession) Remaining() []uuid.UUID {
	reviewed := make(map[uuid.UUID]struct{}, len(s.ReviewedCards))
	for _, id := range s.ReviewedCards {
		reviewed[id] = struct{}{}
	}
	out := make([]uuid.UUID, 0, len(s.ScheduledCards))
	for _, id := range s.ScheduledCards {
		if _, ok := reviewed[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// ReviewsLeft returns how many more cards may be reviewed in this session,
// bounded by both the remaining cards and the review limit.
func (s StudySession) ReviewsLeft() int {
	left := len(s.ScheduledCards) - len(s.ReviewedCards)
	if s.ReviewLimit != nil {
		if byLimit := *s.ReviewLimit - len(s.ReviewedCards); byLimit < left {
			left = byLimit
		}
	}
	if left < 0 {
		return 0
	}
	return left
}

// IsComplete reports whether the session has nothing left to review.
func (s StudySession) IsComplete() bool {
	return s.ReviewsLeft() == 0
}

// SuccessRate returns correct reviews over graded reviews. Skips are not graded.
func (s StudySession) SuccessRate() float64 {
	graded := s.CorrectCount + s.IncorrectCount
	if graded == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(graded)
}

// Duration returns the wall-clock length of the session. For an active
// session it is measured up to now.
func (s StudySession) Duration(now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	if end.Before(s.StartTime) {
		return 0
	}
	return end.Sub(s.StartTime)
}

// CanReview returns nil if cardID may be reviewed or skipped next.
func (s StudySession) CanReview(cardID uuid.UUID) error {
	if s.IsEnded() {
		return ErrSessionEnded
	}
	if !s.IsScheduled(cardID) {
		return fmt.Errorf("%w: %s", ErrCardNotScheduled, cardID)
	}
	if s.IsReviewed(cardID) {
		return fmt.Errorf("%w: %s", ErrCardAlreadyReviewed, cardID)
	}
	if s.LimitReached() {
		return ErrReviewLimitReached
	}
	return nil
}

// RecordReview returns the session with cardID graded.
func (s StudySession) RecordReview(cardID uuid.UUID, correct bool, responseTime time.Duration) (StudySession, error) {
	if err := s.CanReview(cardID); err != nil {
		return StudySession{}, err
	}

	next := s.Clone()
	next.ReviewedCards = append(next.ReviewedCards, cardID)
	if correct {
		next.CorrectCount++
	} else {
		next.IncorrectCount++
	}
	if responseTime > 0 {
		next.TotalStudyTime += responseTime
	}
	return next, nil
}

// Skip returns the session with cardID marked as handled without a grade.
func (s StudySession) Skip(cardID uuid.UUID) (StudySession, error) {
	if err := s.CanReview(cardID); err != nil {
		return StudySession{}, err
	}

	next := s.Clone()
	next.ReviewedCards = append(next.ReviewedCards, cardID)
	next.SkippedCards = append(next.SkippedCards, cardID)
	return next, nil
}

// End returns the session stamped with an end time. Ending is terminal.
func (s StudySession) End(now time.Time) (StudySession, error) {
	if s.IsEnded() {
		return StudySession{}, ErrSessionEnded
	}
	next := s.Clone()
	end := now.UTC()
	if end.Before(next.StartTime) {
		end = next.StartTime
	}
	next.EndTime = &end
	return next, nil
}

// Validate checks the structural invariants of a session, typically after it
// has been loaded from storage.
func (s StudySession) Validate() error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidSessionData)
	}
	if s.DeckID == uuid.Nil {
		return fmt.Errorf("%w: missing deck id", ErrInvalidSessionData)
	}
	if s.StartTime.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidSessionData)
	}
	if s.EndTime != nil && s.EndTime.Before(s.StartTime) {
		return fmt.Errorf("%w: end time before start time", ErrInvalidSessionData)
	}
	if s.ReviewLimit != nil && *s.ReviewLimit <= 0 {
		return fmt.Errorf("%w: non-positive review limit", ErrInvalidSessionData)
	}
	if len(dedupe(s.ScheduledCards)) != len(s.ScheduledCards) {
		return fmt.Errorf("%w: duplicate scheduled card", ErrInvalidSessionData)
	}

	seen := make(map[uuid.UUID]struct{}, len(s.ReviewedCards))
	for _, id := range s.ReviewedCards {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: card %s reviewed twice", ErrInvalidSessionData, id)
		}
		if !s.IsScheduled(id) {
			return fmt.Errorf("%w: reviewed card %s not scheduled", ErrInvalidSessionData, id)
		}
		seen[id] = struct{}{}
	}
	for _, id := range s.SkippedCards {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("%w: skipped card %s not reviewed", ErrInvalidSessionData, id)
		}
	}

	if s.ReviewLimit != nil && len(s.ReviewedCards) > *s.ReviewLimit {
		return fmt.Errorf("%w: reviewed cards exceed review limit", ErrInvalidSessionData)
	}
	if s.CorrectCount < 0 || s.IncorrectCount < 0 ||
		s.CorrectCount+s.IncorrectCount+len(s.SkippedCards) != len(s.ReviewedCards) {
		return fmt.Errorf("%w: counters do not match reviewed cards", ErrInvalidSessionData)
	}
	if s.TotalStudyTime < 0 {
		return fmt.Errorf("%w: negative study time", ErrInvalidSessionData)
	}
	return nil
}

// Clone returns a deep copy of the session.
func (s StudySession) Clone() StudySession {
	out := s
	out.ScheduledCards = append([]uuid.UUID{}, s.ScheduledCards...)
	out.ReviewedCards = append([]uuid.UUID{}, s.ReviewedCards...)
	out.SkippedCards = append([]uuid.UUID{}, s.SkippedCards...)
	if s.EndTime != nil {
		t := *s.EndTime
		out.EndTime = &t
	}
	if s.ReviewLimit != nil {
		l := *s.ReviewLimit
		out.ReviewLimit = &l
	}
	return out
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
