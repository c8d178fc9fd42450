package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// Event types published by the study service.
const (
	TypeSessionStarted = "session.started"
	TypeSessionUpdated = "session.updated"
	TypeCardReviewed   = "card.reviewed"
	TypeCardSkipped    = "card.skipped"
	TypeSessionEnded   = "session.ended"
)

// SessionEvent describes a committed change to a study session.
// Session is a snapshot taken after the change; handlers may keep it.
type SessionEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	SessionID uuid.UUID           `json:"session_id"`
	DeckID    uuid.UUID           `json:"deck_id"`
	CardID    *uuid.UUID          `json:"card_id,omitempty"`
	Rating    domain.ReviewRating `json:"rating,omitempty"`

	// ResponseTime is set for card.reviewed events
	ResponseTime time.Duration `json:"response_time,omitempty"`

	Session    domain.StudySession `json:"session"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewSessionEvent creates an event of the given type for session.
func NewSessionEvent(eventType string, session domain.StudySession, at time.Time) *SessionEvent {
	return &SessionEvent{
		ID:         uuid.New(),
		Type:       eventType,
		SessionID:  session.ID,
		DeckID:     session.DeckID,
		Session:    session.Clone(),
		OccurredAt: at.UTC(),
	}
}

// WithCard attaches the card a review or skip event refers to.
func (e *SessionEvent) WithCard(cardID uuid.UUID, rating domain.ReviewRating, responseTime time.Duration) *SessionEvent {
	id := cardID
	e.CardID = &id
	e.Rating = rating
	e.ResponseTime = responseTime
	return e
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *SessionEvent) error
}

// HandlerFunc adapts an ordinary function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *SessionEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *SessionEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *SessionEvent) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements EventEmitter.
func (NopEmitter) EmitEvent(context.Context, *SessionEvent) error { return nil }
