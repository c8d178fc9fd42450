package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

// session_cards.kind values
const (
	kindScheduled = "scheduled"
	kindReviewed  = "reviewed"
	kindSkipped   = "skipped"
)

// SessionStore implements store.SessionStore. A session row and its card
// lists are written in one transaction, so it needs the *sql.DB itself.
type SessionStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

var _ store.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore over db.
func NewSessionStore(db *sql.DB, dialect Dialect, logger *slog.Logger) *SessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "session_store")),
	}
}

const sessionColumns = `id, deck_id, start_time, end_time, include_subdecks, review_limit,
	correct_count, incorrect_count, total_study_time`

// Get implements store.SessionStore.
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (domain.StudySession, error) {
	query := s.dialect.rebind(`SELECT ` + sessionColumns + ` FROM study_sessions WHERE id = $1`)

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StudySession{}, fmt.Errorf("%w: %s", store.ErrSessionNotFound, id)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get study session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return domain.StudySession{}, MapError(err)
	}

	if err := s.loadCards(ctx, s.db, &session); err != nil {
		return domain.StudySession{}, err
	}
	return session, nil
}

// Save implements store.SessionStore.
func (s *SessionStore) Save(ctx context.Context, session domain.StudySession) (domain.StudySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("study session validation failed during save",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return domain.StudySession{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		upsert := s.dialect.rebind(`
			INSERT INTO study_sessions (` + sessionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				end_time = excluded.end_time,
				correct_count = excluded.correct_count,
				incorrect_count = excluded.incorrect_count,
				total_study_time = excluded.total_study_time
		`)
		if _, err := tx.ExecContext(ctx, upsert,
			session.ID,
			session.DeckID,
			toMillis(session.StartTime),
			nullMillis(session.EndTime),
			session.IncludeSubdecks,
			nullInt(session.ReviewLimit),
			session.CorrectCount,
			session.IncorrectCount,
			int64(session.TotalStudyTime),
		); err != nil {
			return MapError(err)
		}

		deleteCards := s.dialect.rebind(`DELETE FROM session_cards WHERE session_id = $1`)
		if _, err := tx.ExecContext(ctx, deleteCards, session.ID); err != nil {
			return MapError(err)
		}

		insert := s.dialect.rebind(`
			INSERT INTO session_cards (session_id, kind, position, card_id)
			VALUES ($1, $2, $3, $4)
		`)
		lists := []struct {
			kind string
			ids  []uuid.UUID
		}{
			{kindScheduled, session.ScheduledCards},
			{kindReviewed, session.ReviewedCards},
			{kindSkipped, session.SkippedCards},
		}
		for _, list := range lists {
			for pos, cardID := range list.ids {
				if _, err := tx.ExecContext(ctx, insert, session.ID, list.kind, pos, cardID); err != nil {
					return MapError(err)
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to save study session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return domain.StudySession{}, err
	}

	log.Debug("study session saved",
		slog.String("session_id", session.ID.String()),
		slog.Int("reviewed", len(session.ReviewedCards)))
	return s.Get(ctx, session.ID)
}

// List implements store.SessionStore.
func (s *SessionStore) List(ctx context.Context, limit int) ([]domain.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions ORDER BY start_time DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list study sessions",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	sessions := make([]domain.StudySession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			_ = rows.Close()
			return nil, MapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, MapError(err)
	}
	// rows must be released before loading card lists on a single-connection pool
	_ = rows.Close()

	for i := range sessions {
		if err := s.loadCards(ctx, s.db, &sessions[i]); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *SessionStore) loadCards(ctx context.Context, db store.DBTX, session *domain.StudySession) error {
	query := s.dialect.rebind(`
		SELECT kind, card_id
		FROM session_cards
		WHERE session_id = $1
		ORDER BY kind, position
	`)

	rows, err := db.QueryContext(ctx, query, session.ID)
	if err != nil {
		return MapError(err)
	}
	defer func() { _ = rows.Close() }()

	session.ScheduledCards = []uuid.UUID{}
	session.ReviewedCards = []uuid.UUID{}
	session.SkippedCards = []uuid.UUID{}
	for rows.Next() {
		var (
			kind   string
			cardID uuid.UUID
		)
		if err := rows.Scan(&kind, &cardID); err != nil {
			return MapError(err)
		}
		switch kind {
		case kindScheduled:
			session.ScheduledCards = append(session.ScheduledCards, cardID)
		case kindReviewed:
			session.ReviewedCards = append(session.ReviewedCards, cardID)
		case kindSkipped:
			session.SkippedCards = append(session.SkippedCards, cardID)
		}
	}
	return MapError(rows.Err())
}

func scanSession(row rowScanner) (domain.StudySession, error) {
	var (
		session   domain.StudySession
		start     int64
		end       sql.NullInt64
		limit     sql.NullInt64
		studyTime int64
	)
	err := row.Scan(
		&session.ID,
		&session.DeckID,
		&start,
		&end,
		&session.IncludeSubdecks,
		&limit,
		&session.CorrectCount,
		&session.IncorrectCount,
		&studyTime,
	)
	if err != nil {
		return domain.StudySession{}, err
	}
	session.StartTime = fromMillis(start)
	session.EndTime = fromNullMillis(end)
	session.ReviewLimit = fromNullInt(limit)
	session.TotalStudyTime = time.Duration(studyTime)
	return session, nil
}
