package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
)

// ReviewLog is an in-memory store.ReviewLog.
type ReviewLog struct {
	mu      sync.RWMutex
	reviews []domain.CardReview
}

var _ store.ReviewLog = (*ReviewLog)(nil)

// NewReviewLog creates an empty ReviewLog.
func NewReviewLog() *ReviewLog {
	return &ReviewLog{}
}

// Append implements store.ReviewLog.
func (l *ReviewLog) Append(ctx context.Context, review domain.CardReview) (domain.CardReview, error) {
	if err := review.Validate(); err != nil {
		return domain.CardReview{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.reviews {
		if existing.ID == review.ID {
			return domain.CardReview{}, fmt.Errorf("%w: review %s", store.ErrDuplicate, review.ID)
		}
	}
	l.reviews = append(l.reviews, copyReview(review))
	return copyReview(review), nil
}

// AllFor implements store.ReviewLog.
func (l *ReviewLog) AllFor(ctx context.Context, cardID uuid.UUID) ([]domain.CardReview, error) {
	return l.filter(func(r domain.CardReview) bool { return r.CardID == cardID }), nil
}

// ForSession implements store.ReviewLog.
func (l *ReviewLog) ForSession(ctx context.Context, sessionID uuid.UUID) ([]domain.CardReview, error) {
	return l.filter(func(r domain.CardReview) bool {
		return r.SessionID != nil && *r.SessionID == sessionID
	}), nil
}

func (l *ReviewLog) filter(keep func(domain.CardReview) bool) []domain.CardReview {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.CardReview, 0)
	for _, r := range l.reviews {
		if keep(r) {
			out = append(out, copyReview(r))
		}
	}
	return out
}

func (l *ReviewLog) dropCard(cardID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.reviews[:0]
	for _, r := range l.reviews {
		if r.CardID != cardID {
			kept = append(kept, r)
		}
	}
	l.reviews = kept
}

func copyReview(r domain.CardReview) domain.CardReview {
	out := r
	if r.SessionID != nil {
		id := *r.SessionID
		out.SessionID = &id
	}
	return out
}
