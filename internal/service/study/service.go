package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/stats"
)

// StudyService runs study sessions over decks of cards.
//
// At most one session is active per service instance. Operations that touch
// the active session are serialized; reads of stored sessions, cards and
// statistics may run concurrently with them.
type StudyService interface {
	// StartStudySession snapshots the deck's cards (and its subdecks' cards
	// when includeSubdecks is set) and makes a new session active.
	//
	// Returns ErrSessionAlreadyActive if a session is already active,
	// ErrDeckNotFound if the deck does not exist and
	// domain.ErrInvalidReviewLimit if reviewLimit is not positive.
	StartStudySession(
		ctx context.Context,
		deckID uuid.UUID,
		includeSubdecks bool,
		reviewLimit *int,
	) (domain.StudySession, error)

	// GetNextCardForReview returns the next scheduled card that has not been
	// reviewed or skipped. It returns (nil, nil) when the session is complete,
	// either because nothing is left or because the review limit was reached.
	//
	// Returns ErrNoActiveSession if no session is active.
	GetNextCardForReview(ctx context.Context) (*domain.Card, error)

	// RecordCardReview grades a card in the active session, persists the
	// rescheduled card, its review record and the session, and returns the
	// updated card. The session only advances after every write succeeded.
	RecordCardReview(
		ctx context.Context,
		cardID uuid.UUID,
		rating domain.ReviewRating,
		responseTime time.Duration,
	) (domain.Card, error)

	// SkipCard marks a card as done in the active session without grading it.
	// The card's scheduling state and the session's correctness counters are
	// left untouched.
	SkipCard(ctx context.Context, cardID uuid.UUID) (domain.StudySession, error)

	// EndStudySession ends the active session with the given id and frees the
	// active slot. The end stamp is always persisted; saveProgress decides whether
	// the final session state is written with it.
	//
	// Returns ErrSessionNotFound if sessionID is not the active session.
	EndStudySession(ctx context.Context, sessionID uuid.UUID, saveProgress bool) (domain.StudySession, error)

	// GetCurrentSession returns a copy of the active session.
	GetCurrentSession(ctx context.Context) (domain.StudySession, error)

	// GetSession returns the active session or a stored one.
	GetSession(ctx context.Context, sessionID uuid.UUID) (domain.StudySession, error)

	// GetSessionHistory returns stored sessions, newest first.
	GetSessionHistory(ctx context.Context, limit int) ([]domain.StudySession, error)

	// GetScheduledCards returns the cards of a session still waiting for review.
	GetScheduledCards(ctx context.Context, sessionID uuid.UUID) ([]domain.Card, error)

	// GetReviewedCards returns the cards reviewed or skipped in a session, in
	// review order.
	GetReviewedCards(ctx context.Context, sessionID uuid.UUID) ([]domain.Card, error)

	GetCardReviews(ctx context.Context, cardID uuid.UUID) ([]domain.CardReview, error)
	GetDeckStudyStats(ctx context.Context, deckID uuid.UUID) (stats.DeckStats, error)
	GetCardStudyStats(ctx context.Context, cardID uuid.UUID) (stats.CardStats, error)
	GetSessionStats(ctx context.Context, sessionID uuid.UUID) (stats.SessionStats, error)

	// ResetCard clears all study progress of a card.
	ResetCard(ctx context.Context, cardID uuid.UUID) (domain.Card, error)

	// PostponeCard pushes a card's next review back by days.
	PostponeCard(ctx context.Context, cardID uuid.UUID, days int) (domain.Card, error)
}

// Common error types for StudyService
var (
	// ErrSessionAlreadyActive indicates that a session is already in progress.
	ErrSessionAlreadyActive = errors.New("a study session is already active")

	// ErrNoActiveSession indicates that the operation needs an active session.
	ErrNoActiveSession = errors.New("no active study session")

	// ErrSessionNotFound indicates that no session has the requested id.
	ErrSessionNotFound = errors.New("study session not found")

	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrDeckNotFound indicates that the deck does not exist.
	ErrDeckNotFound = errors.New("deck not found")

	// ErrPersistenceFailure marks failures reported by a store. The active
	// session is unchanged when an operation fails with it, so a retry is safe.
	ErrPersistenceFailure = errors.New("persistence failure")

	// Session rule violations, shared with the domain package so errors.Is
	// matches either name.
	ErrCardAlreadyReviewed = domain.ErrCardAlreadyReviewed
	ErrCardNotScheduled    = domain.ErrCardNotScheduled
	ErrReviewLimitReached  = domain.ErrReviewLimitReached
	ErrSessionEnded        = domain.ErrSessionEnded
	ErrInvalidSessionData  = domain.ErrInvalidSessionData
)

// PersistenceError wraps a store failure with the operation that hit it.
// It matches ErrPersistenceFailure and, through Unwrap, the store's own error.
type PersistenceError struct {
	Op  string
	Err error
}

// Error implements the error interface for PersistenceError.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistenceFailure, e.Op, e.Err)
}

// Unwrap returns the store error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPersistenceFailure.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistenceFailure
}

func persistenceError(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// ServiceError wraps errors from the study service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "start_session", "record_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError for operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
