package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, limit *int, n int) (domain.StudySession, []uuid.UUID) {
	t.Helper()
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	session, err := domain.NewStudySession(uuid.New(), false, limit, ids, testNow)
	require.NoError(t, err)
	return session, ids
}

func intPtr(v int) *int { return &v }

func TestNewStudySession(t *testing.T) {
	t.Parallel()

	session, ids := newTestSession(t, intPtr(2), 3)
	assert.True(t, session.IsActive())
	assert.Equal(t, domain.SessionStatusActive, session.Status())
	assert.Equal(t, ids, session.ScheduledCards)
	assert.Empty(t, session.ReviewedCards)
	assert.Equal(t, 2, session.ReviewsLeft())
	assert.NoError(t, session.Validate())

	// the snapshot does not alias the caller's slice
	ids[0] = uuid.New()
	assert.NotEqual(t, ids[0], session.ScheduledCards[0])

	_, err := domain.NewStudySession(uuid.New(), false, intPtr(0), nil, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidReviewLimit)

	_, err = domain.NewStudySession(uuid.Nil, false, nil, nil, testNow)
	assert.ErrorIs(t, err, domain.ErrDeckIDEmpty)
}

func TestStudySession_RecordReview(t *testing.T) {
	t.Parallel()

	session, ids := newTestSession(t, nil, 3)

	next, err := session.RecordReview(ids[1], true, 4*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[1]}, next.ReviewedCards)
	assert.Equal(t, 1, next.CorrectCount)
	assert.Equal(t, 4*time.Second, next.TotalStudyTime)
	assert.Equal(t, []uuid.UUID{ids[0], ids[2]}, next.Remaining())
	assert.Empty(t, session.ReviewedCards, "receiver must not change")

	_, err = next.RecordReview(ids[1], false, 0)
	assert.ErrorIs(t, err, domain.ErrCardAlreadyReviewed)

	_, err = next.RecordReview(uuid.New(), false, 0)
	assert.ErrorIs(t, err, domain.ErrCardNotScheduled)

	next, err = next.RecordReview(ids[0], false, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, next.IncorrectCount)
	assert.InDelta(t, 0.5, next.SuccessRate(), 1e-9)
	assert.NoError(t, next.Validate())
}

func TestStudySession_ReviewLimit(t *testing.T) {
	t.Parallel()

	session, ids := newTestSession(t, intPtr(2), 3)

	session, err := session.RecordReview(ids[0], true, 0)
	require.NoError(t, err)
	session, err = session.Skip(ids[1])
	require.NoError(t, err)

	assert.True(t, session.LimitReached())
	assert.True(t, session.IsComplete())
	assert.Len(t, session.Remaining(), 1)

	_, err = session.RecordReview(ids[2], true, 0)
	assert.ErrorIs(t, err, domain.ErrReviewLimitReached)
}

func TestStudySession_Skip(t *testing.T) {
	t.Parallel()

	session, ids := newTestSession(t, nil, 2)

	skipped, err := session.Skip(ids[0])
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[0]}, skipped.ReviewedCards)
	assert.Equal(t, []uuid.UUID{ids[0]}, skipped.SkippedCards)
	assert.Zero(t, skipped.CorrectCount)
	assert.Zero(t, skipped.IncorrectCount)
	assert.NoError(t, skipped.Validate())

	_, err = skipped.Skip(ids[0])
	assert.ErrorIs(t, err, domain.ErrCardAlreadyReviewed)
}

func TestStudySession_End(t *testing.T) {
	t.Parallel()

	session, ids := newTestSession(t, nil, 2)

	ended, err := session.End(testNow.Add(15 * time.Minute))
	require.NoError(t, err)
	assert.True(t, ended.IsEnded())
	assert.Equal(t, 15*time.Minute, ended.Duration(testNow.Add(time.Hour)))
	assert.True(t, session.IsActive(), "receiver must not change")

	_, err = ended.RecordReview(ids[0], true, 0)
	assert.ErrorIs(t, err, domain.ErrSessionEnded)
	_, err = ended.Skip(ids[0])
	assert.ErrorIs(t, err, domain.ErrSessionEnded)
	_, err = ended.End(testNow.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrSessionEnded)
}

func TestStudySession_InvariantsHoldOnEveryPath(t *testing.T) {
	t.Parallel()

	session, ids := newTestSession(t, intPtr(4), 6)
	attempts := []uuid.UUID{ids[0], ids[0], ids[3], uuid.New(), ids[5], ids[3], ids[1], ids[2], ids[4]}

	for i, id := range attempts {
		var next domain.StudySession
		var err error
		if i%2 == 0 {
			next, err = session.RecordReview(id, i%3 == 0, time.Second)
		} else {
			next, err = session.Skip(id)
		}
		if err == nil {
			session = next
		}
		require.NoError(t, session.Validate(), "after attempt %d", i)
		assert.LessOrEqual(t, len(session.ReviewedCards), 4)
	}
	assert.Len(t, session.ReviewedCards, 4)
}

func TestStudySession_Validate(t *testing.T) {
	t.Parallel()

	session, ids := newTestSession(t, nil, 2)

	bad := session.Clone()
	bad.ReviewedCards = []uuid.UUID{uuid.New()}
	bad.CorrectCount = 1
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidSessionData)

	bad = session.Clone()
	bad.ReviewedCards = []uuid.UUID{ids[0], ids[0]}
	bad.CorrectCount = 2
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidSessionData)

	bad = session.Clone()
	before := bad.StartTime.Add(-time.Minute)
	bad.EndTime = &before
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidSessionData)

	bad = session.Clone()
	bad.ReviewLimit = intPtr(1)
	bad.ReviewedCards = ids
	bad.CorrectCount = 2
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidSessionData)
}
