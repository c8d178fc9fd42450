package memory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

// CardStore is an in-memory store.CardStore.
type CardStore struct {
	mu    sync.RWMutex
	cards map[uuid.UUID]domain.Card
	// order preserves insertion order so GetAll is stable
	order   []uuid.UUID
	reviews *ReviewLog
	logger  *slog.Logger
}

var _ store.CardStore = (*CardStore)(nil)

// NewCardStore creates an empty CardStore. When reviews is non-nil, deleting
// a card also drops its review history.
func NewCardStore(reviews *ReviewLog, logger *slog.Logger) *CardStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &CardStore{
		cards:   make(map[uuid.UUID]domain.Card),
		reviews: reviews,
		logger:  logger.With(slog.String("component", "memory_card_store")),
	}
}

// Get implements store.CardStore.
func (s *CardStore) Get(ctx context.Context, id uuid.UUID) (domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	card, ok := s.cards[id]
	if !ok {
		return domain.Card{}, fmt.Errorf("%w: %s", store.ErrCardNotFound, id)
	}
	return card.Clone(), nil
}

// GetAll implements store.CardStore.
func (s *CardStore) GetAll(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cards := make([]domain.Card, 0)
	for _, id := range s.order {
		card := s.cards[id]
		if card.DeckID == deckID {
			cards = append(cards, card.Clone())
		}
	}
	return cards, nil
}

// Save implements store.CardStore.
func (s *CardStore) Save(ctx context.Context, card domain.Card) (domain.Card, error) {
	if err := card.Validate(); err != nil {
		return domain.Card{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.cards[card.ID]; !exists {
		s.order = append(s.order, card.ID)
	}
	s.cards[card.ID] = card.Clone()

	logger.FromContextOrDefault(ctx, s.logger).Debug("card saved",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", card.DeckID.String()))
	return card.Clone(), nil
}

// Delete implements store.CardStore.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cards[id]; !ok {
		return fmt.Errorf("%w: %s", store.ErrCardNotFound, id)
	}
	delete(s.cards, id)
	s.order = slices.DeleteFunc(s.order, func(other uuid.UUID) bool { return other == id })

	if s.reviews != nil {
		s.reviews.dropCard(id)
	}
	return nil
}
