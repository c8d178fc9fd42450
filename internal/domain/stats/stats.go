// Package stats derives read-only study statistics from snapshots of cards,
// reviews and sessions. Nothing here mutates its inputs or performs I/O.
package stats

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// MasteryDistribution counts cards per mastery level.
type MasteryDistribution struct {
	Novice       int `json:"novice"`
	Beginner     int `json:"beginner"`
	Intermediate int `json:"intermediate"`
	Advanced     int `json:"advanced"`
	Expert       int `json:"expert"`
}

// Total returns the number of cards counted.
func (d MasteryDistribution) Total() int {
	return d.Novice + d.Beginner + d.Intermediate + d.Advanced + d.Expert
}

// New returns the cards in the "new" bucket.
func (d MasteryDistribution) New() int { return d.Novice }

// Learning returns the cards in the "learning" bucket.
func (d MasteryDistribution) Learning() int { return d.Beginner + d.Intermediate }

// Reviewing returns the cards in the "reviewing" bucket.
func (d MasteryDistribution) Reviewing() int { return d.Advanced }

// Mastered returns the cards in the "mastered" bucket.
func (d MasteryDistribution) Mastered() int { return d.Expert }

// Distribution counts cards per mastery level. Cards with an out-of-range
// level are counted as novice.
func Distribution(cards []domain.Card) MasteryDistribution {
	var d MasteryDistribution
	for _, c := range cards {
		switch c.MasteryLevel {
		case domain.MasteryBeginner:
			d.Beginner++
		case domain.MasteryIntermediate:
			d.Intermediate++
		case domain.MasteryAdvanced:
			d.Advanced++
		case domain.MasteryExpert:
			d.Expert++
		default:
			d.Novice++
		}
	}
	return d
}

// DueCount returns how many cards are due at now.
func DueCount(cards []domain.Card, now time.Time) int {
	n := 0
	for _, c := range cards {
		if c.IsDue(now) {
			n++
		}
	}
	return n
}

// OverdueCount returns how many reviewed cards were due before cutoff.
func OverdueCount(cards []domain.Card, cutoff time.Time) int {
	n := 0
	for _, c := range cards {
		if c.IsOverdue(cutoff) {
			n++
		}
	}
	return n
}

// SuccessRate aggregates correct reviews over all reviews across cards,
// i.e. sum(correct) / max(1, sum(reviews)).
func SuccessRate(cards []domain.Card) float64 {
	var correct, total int
	for _, c := range cards {
		correct += c.CorrectCount
		total += c.ReviewCount
	}
	return float64(correct) / float64(max(1, total))
}

// DeckStats summarises the cards of a deck (and its subdecks, if the caller
// included them).
type DeckStats struct {
	DeckID         uuid.UUID           `json:"deck_id"`
	TotalCards     int                 `json:"total_cards"`
	NewCards       int                 `json:"new_cards"`
	LearningCards  int                 `json:"learning_cards"`
	ReviewingCards int                 `json:"reviewing_cards"`
	MasteredCards  int                 `json:"mastered_cards"`
	DueCards       int                 `json:"due_cards"`
	OverdueCards   int                 `json:"overdue_cards"`
	StudiedToday   int                 `json:"studied_today"`
	TotalReviews   int                 `json:"total_reviews"`
	SuccessRate    float64             `json:"success_rate"`
	CompletionRate float64             `json:"completion_rate"`
	Streak         int                 `json:"streak"`
	Distribution   MasteryDistribution `json:"distribution"`
}

// CardStats summarises one card's study history.
type CardStats struct {
	CardID              uuid.UUID           `json:"card_id"`
	MasteryLevel        domain.MasteryLevel `json:"mastery_level"`
	IntervalDays        int                 `json:"interval_days"`
	Ease                float64             `json:"ease"`
	ReviewCount         int                 `json:"review_count"`
	CorrectCount        int                 `json:"correct_count"`
	IncorrectCount      int                 `json:"incorrect_count"`
	SuccessRate         float64             `json:"success_rate"`
	AverageResponseTime time.Duration       `json:"average_response_time"`
	LastReviewedAt      *time.Time          `json:"last_reviewed_at,omitempty"`
	NextReviewDate      *time.Time          `json:"next_review_date,omitempty"`
	IsDue               bool                `json:"is_due"`
}

// SessionStats summarises a study session.
type SessionStats struct {
	SessionID           uuid.UUID     `json:"session_id"`
	DeckID              uuid.UUID     `json:"deck_id"`
	IsActive            bool          `json:"is_active"`
	ScheduledCount      int           `json:"scheduled_count"`
	ReviewedCount       int           `json:"reviewed_count"`
	SkippedCount        int           `json:"skipped_count"`
	RemainingCount      int           `json:"remaining_count"`
	CorrectCount        int           `json:"correct_count"`
	IncorrectCount      int           `json:"incorrect_count"`
	SuccessRate         float64       `json:"success_rate"`
	Duration            time.Duration `json:"duration"`
	TotalStudyTime      time.Duration `json:"total_study_time"`
	AverageResponseTime time.Duration `json:"average_response_time"`
}
