package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

// CreateCardParams holds the content of a new card.
type CreateCardParams struct {
	DeckID         uuid.UUID
	Question       string
	Answer         string
	AdditionalInfo string
	Tags           []string
}

// CardService provides deck and card management operations
type CardService interface {
	// CreateDeck creates a deck, optionally nested under parentID.
	// Returns an error wrapping store.ErrDeckNotFound if the parent does not exist.
	CreateDeck(ctx context.Context, name string, parentID *uuid.UUID) (domain.Deck, error)

	// GetDeck retrieves a deck by its ID
	GetDeck(ctx context.Context, deckID uuid.UUID) (domain.Deck, error)

	// ListSubdecks returns the direct children of a deck
	ListSubdecks(ctx context.Context, deckID uuid.UUID) ([]domain.Deck, error)

	// CreateCard creates an unreviewed card in an existing deck
	CreateCard(ctx context.Context, params CreateCardParams) (domain.Card, error)

	// GetCard retrieves a card by its ID
	GetCard(ctx context.Context, cardID uuid.UUID) (domain.Card, error)

	// ListCards returns the cards of a deck in creation order
	ListCards(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error)

	// DeleteCard removes a card together with its review history
	DeleteCard(ctx context.Context, cardID uuid.UUID) error
}

// cardServiceImpl implements the CardService interface
type cardServiceImpl struct {
	cards  store.CardStore
	decks  store.DeckStore
	now    func() time.Time
	logger *slog.Logger
}

// NewCardService creates a new CardService.
// It returns an error if any of the required dependencies are nil.
func NewCardService(
	cards store.CardStore,
	decks store.DeckStore,
	now func() time.Time,
	logger *slog.Logger,
) (CardService, error) {
	if cards == nil {
		return nil, NewCardServiceError("new", "card store cannot be nil", domain.ErrValidation)
	}
	if decks == nil {
		return nil, NewCardServiceError("new", "deck store cannot be nil", domain.ErrValidation)
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &cardServiceImpl{
		cards:  cards,
		decks:  decks,
		now:    now,
		logger: logger.With(slog.String("component", "card_service")),
	}, nil
}

// CreateDeck implements CardService.CreateDeck
func (s *cardServiceImpl) CreateDeck(
	ctx context.Context,
	name string,
	parentID *uuid.UUID,
) (domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if parentID != nil {
		if _, err := s.getDeck(ctx, "create_deck", *parentID); err != nil {
			return domain.Deck{}, err
		}
	}

	deck, err := domain.NewDeck(name, parentID, s.now())
	if err != nil {
		log.Debug("invalid deck", slog.String("error", err.Error()))
		return domain.Deck{}, NewCardServiceError("create_deck", "invalid deck", err)
	}

	saved, err := s.decks.Save(ctx, *deck)
	if err != nil {
		log.Error("failed to save deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return domain.Deck{}, NewCardServiceError("create_deck", "failed to save deck", err)
	}

	log.Info("deck created",
		slog.String("deck_id", saved.ID.String()),
		slog.String("name", saved.Name))
	return saved, nil
}

// GetDeck implements CardService.GetDeck
func (s *cardServiceImpl) GetDeck(ctx context.Context, deckID uuid.UUID) (domain.Deck, error) {
	return s.getDeck(ctx, "get_deck", deckID)
}

// ListSubdecks implements CardService.ListSubdecks
func (s *cardServiceImpl) ListSubdecks(ctx context.Context, deckID uuid.UUID) ([]domain.Deck, error) {
	if _, err := s.getDeck(ctx, "list_subdecks", deckID); err != nil {
		return nil, err
	}
	children, err := s.decks.Children(ctx, deckID)
	if err != nil {
		return nil, NewCardServiceError("list_subdecks", "failed to list subdecks", err)
	}
	return children, nil
}

// CreateCard implements CardService.CreateCard
func (s *cardServiceImpl) CreateCard(ctx context.Context, params CreateCardParams) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.getDeck(ctx, "create_card", params.DeckID); err != nil {
		return domain.Card{}, err
	}

	card, err := domain.NewCard(params.DeckID, params.Question, params.Answer, s.now())
	if err != nil {
		log.Debug("invalid card", slog.String("error", err.Error()))
		return domain.Card{}, NewCardServiceError("create_card", "invalid card", err)
	}
	card.AdditionalInfo = params.AdditionalInfo
	if len(params.Tags) > 0 {
		card.Tags = append([]string(nil), params.Tags...)
	}

	saved, err := s.cards.Save(ctx, *card)
	if err != nil {
		log.Error("failed to save card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return domain.Card{}, NewCardServiceError("create_card", "failed to save card", err)
	}

	log.Info("card created",
		slog.String("card_id", saved.ID.String()),
		slog.String("deck_id", saved.DeckID.String()))
	return saved, nil
}

// GetCard implements CardService.GetCard
func (s *cardServiceImpl) GetCard(ctx context.Context, cardID uuid.UUID) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("card not found", slog.String("card_id", cardID.String()))
			return domain.Card{}, NewCardServiceError("get_card", "card not found", store.ErrCardNotFound)
		}
		log.Error("failed to retrieve card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return domain.Card{}, NewCardServiceError("get_card", "failed to retrieve card", err)
	}
	return card, nil
}

// ListCards implements CardService.ListCards
func (s *cardServiceImpl) ListCards(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error) {
	if _, err := s.getDeck(ctx, "list_cards", deckID); err != nil {
		return nil, err
	}
	cards, err := s.cards.GetAll(ctx, deckID)
	if err != nil {
		return nil, NewCardServiceError("list_cards", "failed to list cards", err)
	}
	return cards, nil
}

// DeleteCard implements CardService.DeleteCard
func (s *cardServiceImpl) DeleteCard(ctx context.Context, cardID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.cards.Delete(ctx, cardID); err != nil {
		if store.IsNotFoundError(err) {
			return NewCardServiceError("delete_card", "card not found", store.ErrCardNotFound)
		}
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return NewCardServiceError("delete_card", "failed to delete card", err)
	}

	log.Info("card deleted", slog.String("card_id", cardID.String()))
	return nil
}

func (s *cardServiceImpl) getDeck(ctx context.Context, op string, deckID uuid.UUID) (domain.Deck, error) {
	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return domain.Deck{}, NewCardServiceError(op, "deck not found", store.ErrDeckNotFound)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return domain.Deck{}, NewCardServiceError(op, "failed to retrieve deck", err)
	}
	return deck, nil
}
