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

// DeckStore implements store.DeckStore.
type DeckStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

var _ store.DeckStore = (*DeckStore)(nil)

// NewDeckStore creates a DeckStore over db.
func NewDeckStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *DeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "deck_store")),
	}
}

const deckColumns = `id, parent_id, name, created_at, updated_at`

// Get implements store.DeckStore.
func (s *DeckStore) Get(ctx context.Context, id uuid.UUID) (domain.Deck, error) {
	query := s.dialect.rebind(`SELECT ` + deckColumns + ` FROM decks WHERE id = $1`)

	deck, err := scanDeck(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Deck{}, fmt.Errorf("%w: %s", store.ErrDeckNotFound, id)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return domain.Deck{}, MapError(err)
	}
	return deck, nil
}

// Save implements store.DeckStore.
func (s *DeckStore) Save(ctx context.Context, deck domain.Deck) (domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during save",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return domain.Deck{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var parent uuid.NullUUID
	if deck.ParentID != nil {
		parent = uuid.NullUUID{UUID: *deck.ParentID, Valid: true}
	}

	query := s.dialect.rebind(`
		INSERT INTO decks (` + deckColumns + `)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			parent_id = excluded.parent_id,
			name = excluded.name,
			updated_at = excluded.updated_at
	`)
	_, err := s.db.ExecContext(ctx, query,
		deck.ID, parent, deck.Name, toMillis(deck.CreatedAt), toMillis(deck.UpdatedAt))
	if err != nil {
		log.Error("failed to save deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return domain.Deck{}, MapError(err)
	}

	log.Debug("deck saved", slog.String("deck_id", deck.ID.String()))
	return s.Get(ctx, deck.ID)
}

// Children implements store.DeckStore.
func (s *DeckStore) Children(ctx context.Context, deckID uuid.UUID) ([]domain.Deck, error) {
	query := s.dialect.rebind(`
		SELECT ` + deckColumns + `
		FROM decks
		WHERE parent_id = $1
		ORDER BY created_at, id
	`)

	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	decks := make([]domain.Deck, 0)
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, MapError(err)
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return decks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeck(row rowScanner) (domain.Deck, error) {
	var (
		deck             domain.Deck
		parent           uuid.NullUUID
		created, updated int64
	)
	if err := row.Scan(&deck.ID, &parent, &deck.Name, &created, &updated); err != nil {
		return domain.Deck{}, err
	}
	if parent.Valid {
		p := parent.UUID
		deck.ParentID = &p
	}
	deck.CreatedAt = fromMillis(created)
	deck.UpdatedAt = fromMillis(updated)
	return deck, nil
}
