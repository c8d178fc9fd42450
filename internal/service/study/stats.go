package study

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/stats"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
	"golang.org/x/sync/errgroup"
)

// maxParallelLoads bounds concurrent store reads while loading a deck tree.
const maxParallelLoads = 8

// GetDeckStudyStats implements StudyService.GetDeckStudyStats.
// Cards of every subdeck are included.
func (s *Service) GetDeckStudyStats(ctx context.Context, deckID uuid.UUID) (stats.DeckStats, error) {
	cards, err := s.collectCards(ctx, deckID, true)
	if err != nil {
		return stats.DeckStats{}, err
	}

	reviews, err := s.collectReviews(ctx, cards)
	if err != nil {
		return stats.DeckStats{}, err
	}

	st := s.aggregator.Deck(deckID, cards, reviews, s.clock.Now())
	logger.FromContextOrDefault(ctx, s.logger).Debug("deck statistics computed",
		slog.String("deck_id", deckID.String()),
		slog.Int("cards", st.TotalCards),
		slog.Int("due", st.DueCards))
	return st, nil
}

// GetCardStudyStats implements StudyService.GetCardStudyStats.
func (s *Service) GetCardStudyStats(ctx context.Context, cardID uuid.UUID) (stats.CardStats, error) {
	card, err := s.getCard(ctx, cardID)
	if err != nil {
		return stats.CardStats{}, err
	}
	reviews, err := s.reviews.AllFor(ctx, cardID)
	if err != nil {
		return stats.CardStats{}, persistenceError("list reviews", err)
	}
	return s.aggregator.Card(card, reviews, s.clock.Now()), nil
}

// GetSessionStats implements StudyService.GetSessionStats.
func (s *Service) GetSessionStats(ctx context.Context, sessionID uuid.UUID) (stats.SessionStats, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return stats.SessionStats{}, err
	}
	return s.aggregator.Session(session, s.clock.Now()), nil
}

// collectCards returns the cards of a deck, followed by those of its
// subdecks in breadth-first order when includeSubdecks is set.
func (s *Service) collectCards(ctx context.Context, deckID uuid.UUID, includeSubdecks bool) ([]domain.Card, error) {
	if _, err := s.decks.Get(ctx, deckID); err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: %s", ErrDeckNotFound, deckID)
		}
		return nil, persistenceError("get deck", err)
	}

	deckIDs := []uuid.UUID{deckID}
	if includeSubdecks {
		var err error
		if deckIDs, err = s.deckTree(ctx, deckID); err != nil {
			return nil, err
		}
	}

	perDeck := make([][]domain.Card, len(deckIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, id := range deckIDs {
		g.Go(func() error {
			cards, err := s.cards.GetAll(gctx, id)
			if err != nil {
				return persistenceError("list cards", err)
			}
			perDeck[i] = cards
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []domain.Card
	for _, cards := range perDeck {
		all = append(all, cards...)
	}
	return all, nil
}

// deckTree lists root and all of its descendants, root first.
func (s *Service) deckTree(ctx context.Context, root uuid.UUID) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{root: true}
	ids := []uuid.UUID{root}
	for i := 0; i < len(ids); i++ {
		children, err := s.decks.Children(ctx, ids[i])
		if err != nil {
			return nil, persistenceError("list subdecks", err)
		}
		for _, child := range children {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			ids = append(ids, child.ID)
		}
	}
	return ids, nil
}

func (s *Service) collectReviews(ctx context.Context, cards []domain.Card) ([]domain.CardReview, error) {
	var (
		mu  sync.Mutex
		all []domain.CardReview
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for _, card := range cards {
		if card.IsNew() {
			continue
		}
		g.Go(func() error {
			reviews, err := s.reviews.AllFor(gctx, card.ID)
			if err != nil {
				return persistenceError("list reviews", err)
			}
			mu.Lock()
			all = append(all, reviews...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}
