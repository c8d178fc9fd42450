package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
)

// calls counts method invocations.
type calls struct {
	mu     sync.Mutex
	counts map[string]int
}

func (c *calls) record(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[method]++
}

// Calls returns how many times method was invoked.
func (c *calls) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[method]
}

// CardStore is a store.CardStore test double.
type CardStore struct {
	calls
	Inner store.CardStore

	GetFn    func(ctx context.Context, id uuid.UUID) (domain.Card, error)
	GetAllFn func(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error)
	SaveFn   func(ctx context.Context, card domain.Card) (domain.Card, error)
	DeleteFn func(ctx context.Context, id uuid.UUID) error
}

var _ store.CardStore = (*CardStore)(nil)

// Get implements store.CardStore.
func (m *CardStore) Get(ctx context.Context, id uuid.UUID) (domain.Card, error) {
	m.record("Get")
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return m.Inner.Get(ctx, id)
}

// GetAll implements store.CardStore.
func (m *CardStore) GetAll(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error) {
	m.record("GetAll")
	if m.GetAllFn != nil {
		return m.GetAllFn(ctx, deckID)
	}
	return m.Inner.GetAll(ctx, deckID)
}

// Save implements store.CardStore.
func (m *CardStore) Save(ctx context.Context, card domain.Card) (domain.Card, error) {
	m.record("Save")
	if m.SaveFn != nil {
		return m.SaveFn(ctx, card)
	}
	return m.Inner.Save(ctx, card)
}

// Delete implements store.CardStore.
func (m *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.record("Delete")
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.Inner.Delete(ctx, id)
}

// SessionStore is a store.SessionStore test double.
type SessionStore struct {
	calls
	Inner store.SessionStore

	GetFn  func(ctx context.Context, id uuid.UUID) (domain.StudySession, error)
	SaveFn func(ctx context.Context, session domain.StudySession) (domain.StudySession, error)
	ListFn func(ctx context.Context, limit int) ([]domain.StudySession, error)
}

var _ store.SessionStore = (*SessionStore)(nil)

// Get implements store.SessionStore.
func (m *SessionStore) Get(ctx context.Context, id uuid.UUID) (domain.StudySession, error) {
	m.record("Get")
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}
	return m.Inner.Get(ctx, id)
}

// Save implements store.SessionStore.
func (m *SessionStore) Save(ctx context.Context, session domain.StudySession) (domain.StudySession, error) {
	m.record("Save")
	if m.SaveFn != nil {
		return m.SaveFn(ctx, session)
	}
	return m.Inner.Save(ctx, session)
}

// List implements store.SessionStore.
func (m *SessionStore) List(ctx context.Context, limit int) ([]domain.StudySession, error) {
	m.record("List")
	if m.ListFn != nil {
		return m.ListFn(ctx, limit)
	}
	return m.Inner.List(ctx, limit)
}

// ReviewLog is a store.ReviewLog test double.
type ReviewLog struct {
	calls
	Inner store.ReviewLog

	AppendFn     func(ctx context.Context, review domain.CardReview) (domain.CardReview, error)
	AllForFn     func(ctx context.Context, cardID uuid.UUID) ([]domain.CardReview, error)
	ForSessionFn func(ctx context.Context, sessionID uuid.UUID) ([]domain.CardReview, error)
}

var _ store.ReviewLog = (*ReviewLog)(nil)

// Append implements store.ReviewLog.
func (m *ReviewLog) Append(ctx context.Context, review domain.CardReview) (domain.CardReview, error) {
	m.record("Append")
	if m.AppendFn != nil {
		return m.AppendFn(ctx, review)
	}
	return m.Inner.Append(ctx, review)
}

// AllFor implements store.ReviewLog.
func (m *ReviewLog) AllFor(ctx context.Context, cardID uuid.UUID) ([]domain.CardReview, error) {
	m.record("AllFor")
	if m.AllForFn != nil {
		return m.AllForFn(ctx, cardID)
	}
	return m.Inner.AllFor(ctx, cardID)
}

// ForSession implements store.ReviewLog.
func (m *ReviewLog) ForSession(ctx context.Context, sessionID uuid.UUID) ([]domain.CardReview, error) {
	m.record("ForSession")
	if m.ForSessionFn != nil {
		return m.ForSessionFn(ctx, sessionID)
	}
	return m.Inner.ForSession(ctx, sessionID)
}
