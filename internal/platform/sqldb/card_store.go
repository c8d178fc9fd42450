package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

// CardStore implements store.CardStore.
type CardStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

var _ store.CardStore = (*CardStore)(nil)

// NewCardStore creates a CardStore over db, which may be a *sql.DB or a
// *sql.Tx managed by the caller.
func NewCardStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "card_store")),
	}
}

const cardColumns = `id, deck_id, question, answer, additional_info, tags,
	mastery_level, interval_days, ease, review_count, correct_count, incorrect_count,
	last_reviewed_at, next_review_date, is_flagged, created_at, updated_at`

// Get implements store.CardStore.
func (s *CardStore) Get(ctx context.Context, id uuid.UUID) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	query := s.dialect.rebind(`SELECT ` + cardColumns + ` FROM cards WHERE id = $1`)

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return domain.Card{}, fmt.Errorf("%w: %s", store.ErrCardNotFound, id)
		}
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return domain.Card{}, MapError(err)
	}
	return card, nil
}

// GetAll implements store.CardStore.
func (s *CardStore) GetAll(ctx context.Context, deckID uuid.UUID) ([]domain.Card, error) {
	query := s.dialect.rebind(`
		SELECT ` + cardColumns + `
		FROM cards
		WHERE deck_id = $1
		ORDER BY created_at, id
	`)

	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]domain.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, MapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return cards, nil
}

// Save implements store.CardStore.
func (s *CardStore) Save(ctx context.Context, card domain.Card) (domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during save",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return domain.Card{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	tags, err := encodeTags(card.Tags)
	if err != nil {
		return domain.Card{}, err
	}

	query := s.dialect.rebind(`
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			deck_id = excluded.deck_id,
			question = excluded.question,
			answer = excluded.answer,
			additional_info = excluded.additional_info,
			tags = excluded.tags,
			mastery_level = excluded.mastery_level,
			interval_days = excluded.interval_days,
			ease = excluded.ease,
			review_count = excluded.review_count,
			correct_count = excluded.correct_count,
			incorrect_count = excluded.incorrect_count,
			last_reviewed_at = excluded.last_reviewed_at,
			next_review_date = excluded.next_review_date,
			is_flagged = excluded.is_flagged,
			updated_at = excluded.updated_at
	`)
	_, err = s.db.ExecContext(ctx, query,
		card.ID,
		card.DeckID,
		card.Question,
		card.Answer,
		card.AdditionalInfo,
		tags,
		int(card.MasteryLevel),
		card.IntervalDays,
		card.Ease,
		card.ReviewCount,
		card.CorrectCount,
		card.IncorrectCount,
		nullMillis(card.LastReviewedAt),
		nullMillis(card.NextReviewDate),
		card.IsFlagged,
		toMillis(card.CreatedAt),
		toMillis(card.UpdatedAt),
	)
	if err != nil {
		log.Error("failed to save card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("deck_id", card.DeckID.String()))
		return domain.Card{}, MapError(err)
	}

	log.Debug("card saved",
		slog.String("card_id", card.ID.String()),
		slog.Int("interval_days", card.IntervalDays))
	return s.Get(ctx, card.ID)
}

// Delete implements store.CardStore. Reviews of the card are removed by the
// foreign key cascade.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := s.dialect.rebind(`DELETE FROM cards WHERE id = $1`)

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, fmt.Errorf("%w: %s", store.ErrCardNotFound, id))
}

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		card             domain.Card
		tags             string
		mastery          int
		lastReviewed     sql.NullInt64
		nextReview       sql.NullInt64
		created, updated int64
	)
	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&card.Question,
		&card.Answer,
		&card.AdditionalInfo,
		&tags,
		&mastery,
		&card.IntervalDays,
		&card.Ease,
		&card.ReviewCount,
		&card.CorrectCount,
		&card.IncorrectCount,
		&lastReviewed,
		&nextReview,
		&card.IsFlagged,
		&created,
		&updated,
	)
	if err != nil {
		return domain.Card{}, err
	}

	if card.Tags, err = decodeTags(tags); err != nil {
		return domain.Card{}, err
	}
	card.MasteryLevel = domain.MasteryLevel(mastery)
	card.LastReviewedAt = fromNullMillis(lastReviewed)
	card.NextReviewDate = fromNullMillis(nextReview)
	card.CreatedAt = fromMillis(created)
	card.UpdatedAt = fromMillis(updated)
	return card, nil
}
