package stats_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)

func card(level domain.MasteryLevel, correct, incorrect int, next *time.Time, last *time.Time) domain.Card {
	return domain.Card{
		ID:             uuid.New(),
		DeckID:         uuid.New(),
		Question:       "q",
		Answer:         "a",
		MasteryLevel:   level,
		Ease:           domain.DefaultEase,
		ReviewCount:    correct + incorrect,
		CorrectCount:   correct,
		IncorrectCount: incorrect,
		NextReviewDate: next,
		LastReviewedAt: last,
	}
}

func at(t time.Time) *time.Time { return &t }

func TestDistribution(t *testing.T) {
	t.Parallel()

	cards := []domain.Card{
		card(domain.MasteryNovice, 0, 0, nil, nil),
		card(domain.MasteryBeginner, 1, 0, nil, nil),
		card(domain.MasteryIntermediate, 2, 1, nil, nil),
		card(domain.MasteryAdvanced, 4, 1, nil, nil),
		card(domain.MasteryExpert, 6, 0, nil, nil),
		card(domain.MasteryExpert, 5, 2, nil, nil),
	}

	d := stats.Distribution(cards)
	assert.Equal(t, 6, d.Total())
	assert.Equal(t, 1, d.New())
	assert.Equal(t, 2, d.Learning())
	assert.Equal(t, 1, d.Reviewing())
	assert.Equal(t, 2, d.Mastered())
}

func TestDueAndOverdue(t *testing.T) {
	t.Parallel()

	dayStart := stats.DayStart(now, time.UTC)
	cards := []domain.Card{
		// new: due, never overdue
		card(domain.MasteryNovice, 0, 0, nil, nil),
		// due earlier today
		card(domain.MasteryBeginner, 1, 0, at(now.Add(-time.Hour)), nil),
		// overdue
		card(domain.MasteryBeginner, 1, 0, at(now.AddDate(0, 0, -3)), nil),
		// not due yet
		card(domain.MasteryAdvanced, 3, 0, at(now.Add(48*time.Hour)), nil),
		// reviewed but never scheduled
		card(domain.MasteryAdvanced, 3, 0, nil, at(now.Add(-24*time.Hour))),
	}

	assert.Equal(t, 4, stats.DueCount(cards, now))
	assert.Equal(t, 1, stats.OverdueCount(cards, dayStart))
}

func TestSuccessRate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, stats.SuccessRate(nil))
	cards := []domain.Card{
		card(domain.MasteryBeginner, 3, 1, nil, nil),
		card(domain.MasteryBeginner, 1, 3, nil, nil),
		card(domain.MasteryNovice, 0, 0, nil, nil),
	}
	assert.InDelta(t, 0.5, stats.SuccessRate(cards), 1e-9)
}

func TestStreak(t *testing.T) {
	t.Parallel()

	day := func(offset int, hour int) time.Time {
		d := now.AddDate(0, 0, offset)
		return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
	}

	testCases := []struct {
		name    string
		reviews []time.Time
		want    int
	}{
		{"no reviews", nil, 0},
		{"today only", []time.Time{day(0, 9)}, 1},
		{"today and two before", []time.Time{day(0, 9), day(-1, 22), day(-2, 1), day(-2, 5)}, 3},
		{"yesterday keeps streak alive", []time.Time{day(-1, 10), day(-2, 10)}, 2},
		{"gap breaks streak", []time.Time{day(0, 10), day(-2, 10), day(-3, 10)}, 1},
		{"nothing since two days ago", []time.Time{day(-2, 10), day(-3, 10)}, 0},
		{"future reviews ignored", []time.Time{day(2, 10), day(0, 8)}, 1},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, stats.Streak(tc.reviews, now, time.UTC))
		})
	}
}

func TestStreak_UsesTimezone(t *testing.T) {
	t.Parallel()

	tz := time.FixedZone("UTC+10", 10*60*60)
	// 18:00 UTC on the 15th is 04:00 on the 16th in UTC+10.
	reviews := []time.Time{
		time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC), // 01:00 on the 16th locally
		time.Date(2025, 6, 14, 20, 0, 0, 0, time.UTC), // 06:00 on the 15th locally
	}
	assert.Equal(t, 2, stats.Streak(reviews, now, tz))
	assert.Equal(t, 1, stats.Streak(reviews[:1], now, tz))
}

func TestAggregator_Deck(t *testing.T) {
	t.Parallel()

	agg := stats.NewAggregator(time.UTC)
	deckID := uuid.New()
	cards := []domain.Card{
		card(domain.MasteryNovice, 0, 0, nil, nil),
		card(domain.MasteryExpert, 4, 0, at(now.AddDate(0, 0, 30)), at(now.Add(-time.Hour))),
		card(domain.MasteryIntermediate, 1, 1, at(now.AddDate(0, 0, -2)), at(now.AddDate(0, 0, -1))),
	}
	reviews := []domain.CardReview{{CardID: cards[1].ID, Timestamp: now.AddDate(0, 0, -2), Rating: domain.ReviewRatingGood}}

	st := agg.Deck(deckID, cards, reviews, now)
	assert.Equal(t, deckID, st.DeckID)
	assert.Equal(t, 3, st.TotalCards)
	assert.Equal(t, 1, st.NewCards)
	assert.Equal(t, 1, st.LearningCards)
	assert.Equal(t, 1, st.MasteredCards)
	assert.Equal(t, 2, st.DueCards)
	assert.Equal(t, 1, st.OverdueCards)
	assert.Equal(t, 1, st.StudiedToday)
	assert.Equal(t, 6, st.TotalReviews)
	assert.InDelta(t, 5.0/6.0, st.SuccessRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, st.CompletionRate, 1e-9)
	assert.Equal(t, 3, st.Streak)
}

func TestAggregator_CardAndSession(t *testing.T) {
	t.Parallel()

	agg := stats.NewAggregator(nil)
	c := card(domain.MasteryBeginner, 2, 1, at(now.Add(time.Hour)), nil)
	reviews := []domain.CardReview{
		{CardID: c.ID, ResponseTime: 2 * time.Second},
		{CardID: c.ID, ResponseTime: 4 * time.Second},
		{CardID: uuid.New(), ResponseTime: time.Minute},
	}

	cs := agg.Card(c, reviews, now)
	assert.Equal(t, 3*time.Second, cs.AverageResponseTime)
	assert.InDelta(t, 2.0/3.0, cs.SuccessRate, 1e-9)
	assert.False(t, cs.IsDue)

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	session, err := domain.NewStudySession(uuid.New(), false, nil, ids, now.Add(-10*time.Minute))
	require.NoError(t, err)
	session, err = session.RecordReview(ids[0], true, 6*time.Second)
	require.NoError(t, err)
	session, err = session.RecordReview(ids[1], false, 2*time.Second)
	require.NoError(t, err)
	session, err = session.Skip(ids[2])
	require.NoError(t, err)

	ss := agg.Session(session, now)
	assert.True(t, ss.IsActive)
	assert.Equal(t, 3, ss.ReviewedCount)
	assert.Equal(t, 1, ss.SkippedCount)
	assert.Equal(t, 0, ss.RemainingCount)
	assert.InDelta(t, 0.5, ss.SuccessRate, 1e-9)
	assert.Equal(t, 10*time.Minute, ss.Duration)
	assert.Equal(t, 4*time.Second, ss.AverageResponseTime)
}
