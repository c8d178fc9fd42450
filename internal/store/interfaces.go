package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// CardStore defines the interface for card persistence.
// Implementations return copies; callers never share memory with the store.
type CardStore interface {
	// Get retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	Get(ctx context.Context, id uuid.UUID) (domain.Card, error)

	// GetAll retrieves every card in a deck, ordered by creation time.
	// Returns an empty slice if the deck has no cards.
	GetAll(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error)

	// Save inserts or replaces the card with the same ID and returns the
	// stored value. Returns validation errors if the card is invalid.
	Save(ctx context.Context, card domain.Card) (domain.Card, error)

	// Delete removes a card. Reviews of the card are removed with it.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// DeckStore defines the interface for deck persistence.
type DeckStore interface {
	// Get retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	Get(ctx context.Context, id uuid.UUID) (domain.Deck, error)

	// Save inserts or replaces the deck with the same ID.
	Save(ctx context.Context, deck domain.Deck) (domain.Deck, error)

	// Children returns the direct subdecks of a deck.
	Children(ctx context.Context, deckID uuid.UUID) ([]domain.Deck, error)
}

// SessionStore defines the interface for study session persistence.
type SessionStore interface {
	// Get retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	Get(ctx context.Context, id uuid.UUID) (domain.StudySession, error)

	// Save inserts or replaces the session with the same ID.
	Save(ctx context.Context, session domain.StudySession) (domain.StudySession, error)

	// List returns the most recently started sessions, newest first.
	// A limit of zero or less returns every session.
	List(ctx context.Context, limit int) ([]domain.StudySession, error)
}

// ReviewLog defines the interface for the append-only review history.
type ReviewLog interface {
	// Append records a review. Reviews are never updated or deleted.
	Append(ctx context.Context, review domain.CardReview) (domain.CardReview, error)

	// AllFor returns the reviews of a card, oldest first.
	AllFor(ctx context.Context, cardID uuid.UUID) ([]domain.CardReview, error)

	// ForSession returns the reviews made during a session, oldest first.
	ForSession(ctx context.Context, sessionID uuid.UUID) ([]domain.CardReview, error)
}
