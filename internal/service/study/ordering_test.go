package study

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewedCard(t *testing.T, deckID uuid.UUID, due time.Time) domain.Card {
	t.Helper()
	card, err := domain.NewCard(deckID, "q", "a", due.Add(-48*time.Hour))
	require.NoError(t, err)
	last := due.Add(-24 * time.Hour)
	card.ReviewCount = 1
	card.CorrectCount = 1
	card.IntervalDays = 1
	card.LastReviewedAt = &last
	card.NextReviewDate = &due
	return *card
}

func TestDueFirst(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC)
	deckID := uuid.New()

	later := reviewedCard(t, deckID, now.Add(72*time.Hour))
	soon := reviewedCard(t, deckID, now.Add(24*time.Hour))
	dueRecently := reviewedCard(t, deckID, now.Add(-time.Hour))
	dueLongAgo := reviewedCard(t, deckID, now.Add(-96*time.Hour))
	fresh1, err := domain.NewCard(deckID, "new 1", "a", now)
	require.NoError(t, err)
	fresh2, err := domain.NewCard(deckID, "new 2", "a", now)
	require.NoError(t, err)

	in := []domain.Card{later, fresh1.Clone(), dueRecently, soon, fresh2.Clone(), dueLongAgo}
	out := DueFirst(in, now)

	ids := make([]uuid.UUID, len(out))
	for i, c := range out {
		ids[i] = c.ID
	}
	assert.Equal(t, []uuid.UUID{
		fresh1.ID, fresh2.ID,
		dueLongAgo.ID, dueRecently.ID,
		soon.ID, later.ID,
	}, ids)

	// input untouched
	assert.Equal(t, later.ID, in[0].ID)
}

func TestDeckOrder(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 4, 2, 12, 0, 0, 0, time.UTC)
	deckID := uuid.New()
	a := reviewedCard(t, deckID, now.Add(24*time.Hour))
	b := reviewedCard(t, deckID, now.Add(-24*time.Hour))

	out := DeckOrder([]domain.Card{a, b}, now)
	require.Len(t, out, 2)
	assert.Equal(t, a.ID, out[0].ID)
	assert.Equal(t, b.ID, out[1].ID)
}

func TestFixedClock(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := FixedClock(at)
	assert.Equal(t, at, clock.Now())
	assert.Equal(t, at, clock.Now())
}
