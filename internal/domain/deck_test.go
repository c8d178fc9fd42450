package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck(t *testing.T) {
	t.Parallel()

	parent := uuid.New()
	tests := []struct {
		name    string
		deck    string
		parent  *uuid.UUID
		wantErr error
	}{
		{name: "root deck", deck: "Languages"},
		{name: "nested deck", deck: "  Spanish  ", parent: &parent},
		{name: "blank name", deck: "   ", wantErr: domain.ErrDeckNameEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			deck, err := domain.NewDeck(tt.deck, tt.parent, testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, deck.ID)
			assert.NotContains(t, deck.Name, " ")
			assert.Equal(t, testNow, deck.CreatedAt)
			if tt.parent != nil {
				require.NotNil(t, deck.ParentID)
				assert.Equal(t, *tt.parent, *deck.ParentID)
				assert.NotSame(t, tt.parent, deck.ParentID)
			}
		})
	}
}

func TestDeck_ValidateSelfParent(t *testing.T) {
	t.Parallel()

	deck, err := domain.NewDeck("Loop", nil, testNow)
	require.NoError(t, err)
	deck.ParentID = &deck.ID
	assert.ErrorIs(t, deck.Validate(), domain.ErrDeckSelfParent)
}

func TestNewCardReview(t *testing.T) {
	t.Parallel()

	card := newTestCard(t)
	reviewed, err := card.RecordReview(domain.ReviewRatingEasy, srs.NewDefaultScheduler(), testNow)
	require.NoError(t, err)

	sessionID := uuid.New()
	review, err := domain.NewCardReview(reviewed, &sessionID, domain.ReviewRatingEasy, -time.Second, testNow)
	require.NoError(t, err)

	assert.Equal(t, card.ID, review.CardID)
	assert.Equal(t, reviewed.IntervalDays, review.NewInterval)
	assert.Equal(t, reviewed.Ease, review.NewEase)
	assert.Equal(t, reviewed.MasteryLevel, review.NewMasteryLevel)
	assert.Zero(t, review.ResponseTime, "negative response times are clamped")
	require.NotNil(t, review.SessionID)
	assert.Equal(t, sessionID, *review.SessionID)
	assert.True(t, review.IsCorrect())

	_, err = domain.NewCardReview(reviewed, nil, domain.ReviewRating("perfect"), 0, testNow)
	assert.ErrorIs(t, err, domain.ErrInvalidReviewRating)

	_, err = domain.NewCardReview(domain.Card{}, nil, domain.ReviewRatingGood, 0, testNow)
	assert.ErrorIs(t, err, domain.ErrReviewCardIDEmpty)
}
