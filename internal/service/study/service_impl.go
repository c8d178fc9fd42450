package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/domain/stats"
	"github.com/phrazzld/scry-study/internal/events"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

// Verify interface compliance at compile time
var _ StudyService = (*Service)(nil)

// Service implements StudyService.
type Service struct {
	cards     store.CardStore
	decks     store.DeckStore
	sessions  store.SessionStore
	reviews   store.ReviewLog
	scheduler srs.Scheduler

	clock        Clock
	logger       *slog.Logger
	emitter      events.EventEmitter
	ordering     Ordering
	aggregator   *stats.Aggregator
	defaultLimit int

	// mu guards active and lastEnded. It is held across the store calls of a
	// transition so that check and commit appear atomic to other callers.
	mu        sync.Mutex
	active    *domain.StudySession
	lastEnded uuid.UUID
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the time source. Defaults to SystemClock.
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the service logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithEmitter sets where session events are published. Defaults to a no-op.
func WithEmitter(e events.EventEmitter) Option {
	return func(s *Service) { s.emitter = e }
}

// WithOrdering sets how scheduled cards are ordered. Defaults to DueFirst.
func WithOrdering(o Ordering) Option {
	return func(s *Service) { s.ordering = o }
}

// WithAggregator sets the statistics aggregator. Defaults to a UTC aggregator.
func WithAggregator(a *stats.Aggregator) Option {
	return func(s *Service) { s.aggregator = a }
}

// WithDefaultReviewLimit applies limit to sessions started without one.
// Zero means unlimited.
func WithDefaultReviewLimit(limit int) Option {
	return func(s *Service) { s.defaultLimit = limit }
}

// NewStudyService creates a Service over the given stores and scheduler.
func NewStudyService(
	cards store.CardStore,
	decks store.DeckStore,
	sessions store.SessionStore,
	reviews store.ReviewLog,
	scheduler srs.Scheduler,
	opts ...Option,
) (*Service, error) {
	if cards == nil || decks == nil || sessions == nil || reviews == nil {
		return nil, errors.New("study service requires card, deck, session and review stores")
	}
	if scheduler == nil {
		return nil, errors.New("study service requires a scheduler")
	}

	s := &Service{
		cards:     cards,
		decks:     decks,
		sessions:  sessions,
		reviews:   reviews,
		scheduler: scheduler,
		clock:     SystemClock{},
		emitter:   events.NopEmitter{},
		ordering:  DueFirst,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With(slog.String("component", "study_service"))
	if s.aggregator == nil {
		s.aggregator = stats.NewAggregator(time.UTC)
	}
	if s.defaultLimit < 0 {
		return nil, fmt.Errorf("%w: default %d", domain.ErrInvalidReviewLimit, s.defaultLimit)
	}
	return s, nil
}

// StartStudySession implements StudyService.StartStudySession.
func (s *Service) StartStudySession(
	ctx context.Context,
	deckID uuid.UUID,
	includeSubdecks bool,
	reviewLimit *int,
) (domain.StudySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := ctx.Err(); err != nil {
		return domain.StudySession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		log.Warn("study session already active",
			slog.String("session_id", s.active.ID.String()),
			slog.String("deck_id", deckID.String()))
		return domain.StudySession{}, ErrSessionAlreadyActive
	}

	if reviewLimit == nil && s.defaultLimit > 0 {
		limit := s.defaultLimit
		reviewLimit = &limit
	}

	cards, err := s.collectCards(ctx, deckID, includeSubdecks)
	if err != nil {
		return domain.StudySession{}, err
	}

	now := s.clock.Now()
	ordered := s.ordering(cards, now)
	scheduled := make([]uuid.UUID, 0, len(ordered))
	for _, c := range ordered {
		scheduled = append(scheduled, c.ID)
	}

	session, err := domain.NewStudySession(deckID, includeSubdecks, reviewLimit, scheduled, now)
	if err != nil {
		return domain.StudySession{}, err
	}

	if _, err := s.sessions.Save(ctx, session); err != nil {
		log.Error("failed to persist new study session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return domain.StudySession{}, persistenceError("save session", err)
	}

	s.active = &session
	s.lastEnded = uuid.Nil

	log.Info("study session started",
		slog.String("session_id", session.ID.String()),
		slog.String("deck_id", deckID.String()),
		slog.Bool("include_subdecks", includeSubdecks),
		slog.Int("scheduled", len(session.ScheduledCards)))
	s.emit(ctx, events.NewSessionEvent(events.TypeSessionStarted, session, now))

	return session.Clone(), nil
}

// GetNextCardForReview implements StudyService.GetNextCardForReview.
func (s *Service) GetNextCardForReview(ctx context.Context) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.requireActive()
	if err != nil {
		return nil, err
	}
	if session.LimitReached() {
		log.Debug("review limit reached", slog.String("session_id", session.ID.String()))
		return nil, nil
	}

	for _, id := range session.Remaining() {
		card, err := s.cards.Get(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				// deleted after the session started
				continue
			}
			log.Error("failed to load scheduled card",
				slog.String("error", err.Error()),
				slog.String("card_id", id.String()))
			return nil, persistenceError("get card", err)
		}
		return &card, nil
	}

	log.Debug("no cards left in session", slog.String("session_id", session.ID.String()))
	return nil, nil
}

// RecordCardReview implements StudyService.RecordCardReview.
func (s *Service) RecordCardReview(
	ctx context.Context,
	cardID uuid.UUID,
	rating domain.ReviewRating,
	responseTime time.Duration,
) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !rating.IsValid() {
		log.Warn("invalid review rating",
			slog.String("card_id", cardID.String()),
			slog.String("rating", string(rating)))
		return domain.Card{}, fmt.Errorf("%w: %q", domain.ErrInvalidReviewRating, rating)
	}
	if err := ctx.Err(); err != nil {
		return domain.Card{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.requireActive()
	if err != nil {
		return domain.Card{}, err
	}
	if err := session.CanReview(cardID); err != nil {
		log.Debug("review rejected",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()),
			slog.String("card_id", cardID.String()))
		return domain.Card{}, err
	}

	card, err := s.getCard(ctx, cardID)
	if err != nil {
		return domain.Card{}, err
	}

	now := s.clock.Now()
	updated, err := card.RecordReview(rating, s.scheduler, now)
	if err != nil {
		return domain.Card{}, NewServiceError("record_review", "failed to schedule card", err)
	}
	nextSession, err := session.RecordReview(cardID, rating.IsCorrect(), responseTime)
	if err != nil {
		return domain.Card{}, err
	}
	sessionID := session.ID
	review, err := domain.NewCardReview(updated, &sessionID, rating, responseTime, now)
	if err != nil {
		return domain.Card{}, NewServiceError("record_review", "failed to build review record", err)
	}

	saved, err := s.cards.Save(ctx, updated)
	if err != nil {
		log.Error("failed to save reviewed card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return domain.Card{}, persistenceError("save card", err)
	}
	if _, err := s.sessions.Save(ctx, nextSession); err != nil {
		log.Error("failed to save session after review",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		s.restoreCard(ctx, card)
		return domain.Card{}, persistenceError("save session", err)
	}
	// The log is append-only, so the review goes in last.
	if _, err := s.reviews.Append(ctx, *review); err != nil {
		log.Error("failed to append review",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		s.restoreCard(ctx, card)
		s.restoreSession(ctx, session)
		return domain.Card{}, persistenceError("append review", err)
	}

	s.active = &nextSession

	log.Debug("card reviewed",
		slog.String("session_id", session.ID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("rating", string(rating)),
		slog.Int("interval_days", saved.IntervalDays))
	s.emit(ctx, events.NewSessionEvent(events.TypeCardReviewed, nextSession, now).
		WithCard(cardID, rating, responseTime))
	s.emit(ctx, events.NewSessionEvent(events.TypeSessionUpdated, nextSession, now))

	return saved, nil
}

// SkipCard implements StudyService.SkipCard.
func (s *Service) SkipCard(ctx context.Context, cardID uuid.UUID) (domain.StudySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := ctx.Err(); err != nil {
		return domain.StudySession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.requireActive()
	if err != nil {
		return domain.StudySession{}, err
	}

	nextSession, err := session.Skip(cardID)
	if err != nil {
		return domain.StudySession{}, err
	}

	if _, err := s.sessions.Save(ctx, nextSession); err != nil {
		log.Error("failed to save session after skip",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return domain.StudySession{}, persistenceError("save session", err)
	}

	s.active = &nextSession

	now := s.clock.Now()
	log.Debug("card skipped",
		slog.String("session_id", session.ID.String()),
		slog.String("card_id", cardID.String()))
	s.emit(ctx, events.NewSessionEvent(events.TypeCardSkipped, nextSession, now).WithCard(cardID, "", 0))
	s.emit(ctx, events.NewSessionEvent(events.TypeSessionUpdated, nextSession, now))

	return nextSession.Clone(), nil
}

// EndStudySession implements StudyService.EndStudySession.
func (s *Service) EndStudySession(
	ctx context.Context,
	sessionID uuid.UUID,
	saveProgress bool,
) (domain.StudySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := ctx.Err(); err != nil {
		return domain.StudySession{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil || s.active.ID != sessionID {
		log.Warn("end requested for a session that is not active",
			slog.String("session_id", sessionID.String()))
		return domain.StudySession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	now := s.clock.Now()
	ended, err := s.active.End(now)
	if err != nil {
		return domain.StudySession{}, err
	}

	// Reviews are persisted as they happen, so without saveProgress only the
	// end stamp is written over the stored row.
	record := ended
	if !saveProgress {
		stored, err := s.sessions.Get(ctx, sessionID)
		switch {
		case err == nil:
			record = stored
			record.EndTime = ended.EndTime
		case !store.IsNotFoundError(err):
			log.Error("failed to load session before ending",
				slog.String("error", err.Error()),
				slog.String("session_id", sessionID.String()))
			return domain.StudySession{}, persistenceError("get session", err)
		}
	}
	if _, err := s.sessions.Save(ctx, record); err != nil {
		log.Error("failed to save ended session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return domain.StudySession{}, persistenceError("save session", err)
	}

	s.active = nil
	s.lastEnded = ended.ID

	log.Info("study session ended",
		slog.String("session_id", sessionID.String()),
		slog.Bool("saved", saveProgress),
		slog.Int("reviewed", len(ended.ReviewedCards)),
		slog.Int("correct", ended.CorrectCount),
		slog.Int("incorrect", ended.IncorrectCount))
	s.emit(ctx, events.NewSessionEvent(events.TypeSessionEnded, ended, now))

	return ended.Clone(), nil
}

// GetCurrentSession implements StudyService.GetCurrentSession.
func (s *Service) GetCurrentSession(ctx context.Context) (domain.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.requireActive()
	if err != nil {
		return domain.StudySession{}, err
	}
	return session.Clone(), nil
}

// GetSession implements StudyService.GetSession.
func (s *Service) GetSession(ctx context.Context, sessionID uuid.UUID) (domain.StudySession, error) {
	s.mu.Lock()
	if s.active != nil && s.active.ID == sessionID {
		session := s.active.Clone()
		s.mu.Unlock()
		return session, nil
	}
	s.mu.Unlock()

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return domain.StudySession{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return domain.StudySession{}, persistenceError("get session", err)
	}
	if err := session.Validate(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("stored session is malformed",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return domain.StudySession{}, err
	}
	return session, nil
}

// GetSessionHistory implements StudyService.GetSessionHistory.
func (s *Service) GetSessionHistory(ctx context.Context, limit int) ([]domain.StudySession, error) {
	sessions, err := s.sessions.List(ctx, limit)
	if err != nil {
		return nil, persistenceError("list sessions", err)
	}
	return sessions, nil
}

// GetScheduledCards implements StudyService.GetScheduledCards.
func (s *Service) GetScheduledCards(ctx context.Context, sessionID uuid.UUID) ([]domain.Card, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.loadCards(ctx, session.Remaining())
}

// GetReviewedCards implements StudyService.GetReviewedCards.
func (s *Service) GetReviewedCards(ctx context.Context, sessionID uuid.UUID) ([]domain.Card, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.loadCards(ctx, session.ReviewedCards)
}

// GetCardReviews implements StudyService.GetCardReviews.
func (s *Service) GetCardReviews(ctx context.Context, cardID uuid.UUID) ([]domain.CardReview, error) {
	if _, err := s.getCard(ctx, cardID); err != nil {
		return nil, err
	}
	reviews, err := s.reviews.AllFor(ctx, cardID)
	if err != nil {
		return nil, persistenceError("list reviews", err)
	}
	return reviews, nil
}

// ResetCard implements StudyService.ResetCard.
func (s *Service) ResetCard(ctx context.Context, cardID uuid.UUID) (domain.Card, error) {
	return s.updateCard(ctx, cardID, "reset", func(c domain.Card, now time.Time) (domain.Card, error) {
		return c.Reset(now), nil
	})
}

// PostponeCard implements StudyService.PostponeCard.
func (s *Service) PostponeCard(ctx context.Context, cardID uuid.UUID, days int) (domain.Card, error) {
	if days < 1 {
		return domain.Card{}, domain.ErrInvalidPostponeDays
	}
	return s.updateCard(ctx, cardID, "postpone", func(c domain.Card, now time.Time) (domain.Card, error) {
		return c.Postpone(days, now)
	})
}

// updateCard applies change to a stored card under the session lock, so it
// cannot interleave with a review of the same card.
func (s *Service) updateCard(
	ctx context.Context,
	cardID uuid.UUID,
	op string,
	change func(domain.Card, time.Time) (domain.Card, error),
) (domain.Card, error) {
	if err := ctx.Err(); err != nil {
		return domain.Card{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	card, err := s.getCard(ctx, cardID)
	if err != nil {
		return domain.Card{}, err
	}
	next, err := change(card, s.clock.Now())
	if err != nil {
		return domain.Card{}, err
	}
	saved, err := s.cards.Save(ctx, next)
	if err != nil {
		return domain.Card{}, persistenceError("save card", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("card updated",
		slog.String("operation", op),
		slog.String("card_id", cardID.String()))
	return saved, nil
}

// requireActive returns the active session. Callers must hold s.mu.
func (s *Service) requireActive() (domain.StudySession, error) {
	if s.active != nil {
		return *s.active, nil
	}
	if s.lastEnded != uuid.Nil {
		return domain.StudySession{}, fmt.Errorf("%w: session %s: %w", ErrNoActiveSession, s.lastEnded, ErrSessionEnded)
	}
	return domain.StudySession{}, ErrNoActiveSession
}

func (s *Service) getCard(ctx context.Context, cardID uuid.UUID) (domain.Card, error) {
	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return domain.Card{}, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return domain.Card{}, persistenceError("get card", err)
	}
	return card, nil
}

// loadCards fetches cards by id in order, skipping ids that no longer exist.
func (s *Service) loadCards(ctx context.Context, ids []uuid.UUID) ([]domain.Card, error) {
	cards := make([]domain.Card, 0, len(ids))
	for _, id := range ids {
		card, err := s.cards.Get(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				continue
			}
			return nil, persistenceError("get card", err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// restoreCard puts back the pre-review card after a later write failed.
func (s *Service) restoreCard(ctx context.Context, original domain.Card) {
	if _, err := s.cards.Save(context.WithoutCancel(ctx), original); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to restore card after aborted review",
			slog.String("error", err.Error()),
			slog.String("card_id", original.ID.String()))
	}
}

// restoreSession puts back the pre-review session after the review append failed.
func (s *Service) restoreSession(ctx context.Context, original domain.StudySession) {
	if _, err := s.sessions.Save(context.WithoutCancel(ctx), original); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to restore session after aborted review",
			slog.String("error", err.Error()),
			slog.String("session_id", original.ID.String()))
	}
}

func (s *Service) emit(ctx context.Context, event *events.SessionEvent) {
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to publish session event",
			slog.String("error", err.Error()),
			slog.String("event_type", event.Type),
			slog.String("session_id", event.SessionID.String()))
	}
}
