package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
)

// SessionStore is an in-memory store.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]domain.StudySession
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]domain.StudySession)}
}

// Get implements store.SessionStore.
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (domain.StudySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return domain.StudySession{}, fmt.Errorf("%w: %s", store.ErrSessionNotFound, id)
	}
	return session.Clone(), nil
}

// Save implements store.SessionStore.
func (s *SessionStore) Save(ctx context.Context, session domain.StudySession) (domain.StudySession, error) {
	if err := session.Validate(); err != nil {
		return domain.StudySession{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session.Clone()
	return session.Clone(), nil
}

// List implements store.SessionStore.
func (s *SessionStore) List(ctx context.Context, limit int) ([]domain.StudySession, error) {
	s.mu.RLock()
	sessions := make([]domain.StudySession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(sessions, func(a, b domain.StudySession) int {
		return b.StartTime.Compare(a.StartTime)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}
