package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
)

// DeckStore is an in-memory store.DeckStore.
type DeckStore struct {
	mu    sync.RWMutex
	decks map[uuid.UUID]domain.Deck
	order []uuid.UUID
}

var _ store.DeckStore = (*DeckStore)(nil)

// NewDeckStore creates an empty DeckStore.
func NewDeckStore() *DeckStore {
	return &DeckStore{decks: make(map[uuid.UUID]domain.Deck)}
}

// Get implements store.DeckStore.
func (s *DeckStore) Get(ctx context.Context, id uuid.UUID) (domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck, ok := s.decks[id]
	if !ok {
		return domain.Deck{}, fmt.Errorf("%w: %s", store.ErrDeckNotFound, id)
	}
	return copyDeck(deck), nil
}

// Save implements store.DeckStore.
func (s *DeckStore) Save(ctx context.Context, deck domain.Deck) (domain.Deck, error) {
	if err := deck.Validate(); err != nil {
		return domain.Deck{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if deck.ParentID != nil {
		if _, ok := s.decks[*deck.ParentID]; !ok {
			return domain.Deck{}, fmt.Errorf("%w: parent %s", store.ErrDeckNotFound, *deck.ParentID)
		}
	}
	if _, exists := s.decks[deck.ID]; !exists {
		s.order = append(s.order, deck.ID)
	}
	s.decks[deck.ID] = copyDeck(deck)
	return copyDeck(deck), nil
}

// Children implements store.DeckStore.
func (s *DeckStore) Children(ctx context.Context, deckID uuid.UUID) ([]domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	children := make([]domain.Deck, 0)
	for _, id := range s.order {
		deck := s.decks[id]
		if deck.ParentID != nil && *deck.ParentID == deckID {
			children = append(children, copyDeck(deck))
		}
	}
	return children, nil
}

func copyDeck(d domain.Deck) domain.Deck {
	out := d
	if d.ParentID != nil {
		p := *d.ParentID
		out.ParentID = &p
	}
	return out
}
