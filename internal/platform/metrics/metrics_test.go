package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudyMetrics_HandleEvent(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	ctx := context.Background()
	now := time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)
	cardID := uuid.New()

	session, err := domain.NewStudySession(uuid.New(), false, nil, []uuid.UUID{cardID, uuid.New()}, now)
	require.NoError(t, err)

	emit := func(e *events.SessionEvent) {
		require.NoError(t, m.HandleEvent(ctx, e))
	}

	emit(events.NewSessionEvent(events.TypeSessionStarted, session, now))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsStarted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeSessions))

	emit(events.NewSessionEvent(events.TypeCardReviewed, session, now).
		WithCard(cardID, domain.ReviewRatingGood, 3*time.Second))
	emit(events.NewSessionEvent(events.TypeCardReviewed, session, now).
		WithCard(cardID, domain.ReviewRatingAgain, time.Second))
	emit(events.NewSessionEvent(events.TypeCardSkipped, session, now).
		WithCard(cardID, "", 0))
	emit(events.NewSessionEvent(events.TypeSessionUpdated, session, now))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviewsTotal.WithLabelValues("good")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviewsTotal.WithLabelValues("again")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skipsTotal))

	emit(events.NewSessionEvent(events.TypeSessionEnded, session, now))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsEnded))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeSessions))

	count, err := testutil.GatherAndCount(reg, "scry_study_review_response_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNew_RegistersOnGivenRegistry(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) }, "duplicate registration on one registry")

	// a fresh registry accepts a second instance
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}
