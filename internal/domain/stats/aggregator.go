package stats

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// Aggregator computes statistics relative to a timezone, which decides where
// "today" starts for due, overdue and streak calculations.
type Aggregator struct {
	tz *time.Location
}

// NewAggregator creates an Aggregator for tz. A nil tz means UTC.
func NewAggregator(tz *time.Location) *Aggregator {
	if tz == nil {
		tz = time.UTC
	}
	return &Aggregator{tz: tz}
}

// Location returns the aggregator's timezone.
func (a *Aggregator) Location() *time.Location { return a.tz }

// Deck summarises cards and their review history at now.
func (a *Aggregator) Deck(
	deckID uuid.UUID,
	cards []domain.Card,
	reviews []domain.CardReview,
	now time.Time,
) DeckStats {
	dist := Distribution(cards)
	dayStart := DayStart(now, a.tz)

	st := DeckStats{
		DeckID:         deckID,
		TotalCards:     len(cards),
		NewCards:       dist.New(),
		LearningCards:  dist.Learning(),
		ReviewingCards: dist.Reviewing(),
		MasteredCards:  dist.Mastered(),
		DueCards:       DueCount(cards, now),
		OverdueCards:   OverdueCount(cards, dayStart),
		SuccessRate:    SuccessRate(cards),
		Distribution:   dist,
	}

	activity := make([]time.Time, 0, len(reviews)+len(cards))
	for _, c := range cards {
		st.TotalReviews += c.ReviewCount
		if c.LastReviewedAt != nil {
			activity = append(activity, *c.LastReviewedAt)
			if !c.LastReviewedAt.Before(dayStart) {
				st.StudiedToday++
			}
		}
	}
	for _, r := range reviews {
		activity = append(activity, r.Timestamp)
	}
	st.Streak = Streak(activity, now, a.tz)

	if st.TotalCards > 0 {
		st.CompletionRate = float64(st.MasteredCards) / float64(st.TotalCards)
	}
	return st
}

// Card summarises a single card and its review log at now.
func (a *Aggregator) Card(card domain.Card, reviews []domain.CardReview, now time.Time) CardStats {
	st := CardStats{
		CardID:         card.ID,
		MasteryLevel:   card.MasteryLevel,
		IntervalDays:   card.IntervalDays,
		Ease:           card.Ease,
		ReviewCount:    card.ReviewCount,
		CorrectCount:   card.CorrectCount,
		IncorrectCount: card.IncorrectCount,
		SuccessRate:    card.SuccessRate(),
		LastReviewedAt: card.LastReviewedAt,
		NextReviewDate: card.NextReviewDate,
		IsDue:          card.IsDue(now),
	}

	var total time.Duration
	var n int
	for _, r := range reviews {
		if r.CardID != card.ID {
			continue
		}
		total += r.ResponseTime
		n++
	}
	if n > 0 {
		st.AverageResponseTime = total / time.Duration(n)
	}
	return st
}

// Session summarises a study session at now.
func (a *Aggregator) Session(session domain.StudySession, now time.Time) SessionStats {
	st := SessionStats{
		SessionID:      session.ID,
		DeckID:         session.DeckID,
		IsActive:       session.IsActive(),
		ScheduledCount: len(session.ScheduledCards),
		ReviewedCount:  len(session.ReviewedCards),
		SkippedCount:   len(session.SkippedCards),
		RemainingCount: len(session.Remaining()),
		CorrectCount:   session.CorrectCount,
		IncorrectCount: session.IncorrectCount,
		SuccessRate:    session.SuccessRate(),
		Duration:       session.Duration(now),
		TotalStudyTime: session.TotalStudyTime,
	}
	if graded := session.CorrectCount + session.IncorrectCount; graded > 0 {
		st.AverageResponseTime = session.TotalStudyTime / time.Duration(graded)
	}
	return st
}
