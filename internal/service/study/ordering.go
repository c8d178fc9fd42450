package study

import (
	"slices"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// Ordering arranges a deck's cards into the order a session presents them.
// It must not drop or duplicate cards.
type Ordering func(cards []domain.Card, now time.Time) []domain.Card

// DueFirst puts cards that are due at now ahead of the rest. Due cards start
// with never-reviewed ones, then follow the oldest next review date; cards not
// yet due follow by next review date. Ties keep deck order.
func DueFirst(cards []domain.Card, now time.Time) []domain.Card {
	out := slices.Clone(cards)
	slices.SortStableFunc(out, func(a, b domain.Card) int {
		if r := dueRank(a, now) - dueRank(b, now); r != 0 {
			return r
		}
		if a.NextReviewDate == nil || b.NextReviewDate == nil {
			return 0
		}
		return a.NextReviewDate.Compare(*b.NextReviewDate)
	})
	return out
}

// DeckOrder keeps cards in the order the store returned them.
func DeckOrder(cards []domain.Card, _ time.Time) []domain.Card {
	return slices.Clone(cards)
}

func dueRank(c domain.Card, now time.Time) int {
	switch {
	case c.IsNew() || c.NextReviewDate == nil:
		return 0
	case c.IsDue(now):
		return 1
	default:
		return 2
	}
}
