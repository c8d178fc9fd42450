package sqldb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/platform/logger"
	"github.com/phrazzld/scry-study/internal/store"
)

// ReviewLog implements store.ReviewLog over the card_reviews table.
type ReviewLog struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

var _ store.ReviewLog = (*ReviewLog)(nil)

// NewReviewLog creates a ReviewLog over db.
func NewReviewLog(db store.DBTX, dialect Dialect, logger *slog.Logger) *ReviewLog {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewLog{
		db:      db,
		dialect: dialect,
		logger:  logger.With(slog.String("component", "review_log")),
	}
}

const reviewColumns = `id, card_id, session_id, reviewed_at, rating, response_time,
	new_interval, new_ease, new_mastery_level`

// Append implements store.ReviewLog.
func (l *ReviewLog) Append(ctx context.Context, review domain.CardReview) (domain.CardReview, error) {
	log := logger.FromContextOrDefault(ctx, l.logger)

	if err := review.Validate(); err != nil {
		return domain.CardReview{}, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var session uuid.NullUUID
	if review.SessionID != nil {
		session = uuid.NullUUID{UUID: *review.SessionID, Valid: true}
	}

	query := l.dialect.rebind(`
		INSERT INTO card_reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`)
	_, err := l.db.ExecContext(ctx, query,
		review.ID,
		review.CardID,
		session,
		toMillis(review.Timestamp),
		string(review.Rating),
		int64(review.ResponseTime),
		review.NewInterval,
		review.NewEase,
		int(review.NewMasteryLevel),
	)
	if err != nil {
		log.Error("failed to append review",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()),
			slog.String("card_id", review.CardID.String()))
		return domain.CardReview{}, MapError(err)
	}

	out := review
	out.Timestamp = fromMillis(toMillis(review.Timestamp))
	return out, nil
}

// AllFor implements store.ReviewLog.
func (l *ReviewLog) AllFor(ctx context.Context, cardID uuid.UUID) ([]domain.CardReview, error) {
	return l.list(ctx, `card_id = $1`, cardID)
}

// ForSession implements store.ReviewLog.
func (l *ReviewLog) ForSession(ctx context.Context, sessionID uuid.UUID) ([]domain.CardReview, error) {
	return l.list(ctx, `session_id = $1`, sessionID)
}

func (l *ReviewLog) list(ctx context.Context, where string, id uuid.UUID) ([]domain.CardReview, error) {
	query := l.dialect.rebind(`
		SELECT ` + reviewColumns + `
		FROM card_reviews
		WHERE ` + where + `
		ORDER BY reviewed_at, id
	`)

	rows, err := l.db.QueryContext(ctx, query, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, l.logger).Error("failed to list reviews",
			slog.String("error", err.Error()),
			slog.String("filter", where),
			slog.String("id", id.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	reviews := make([]domain.CardReview, 0)
	for rows.Next() {
		var (
			r            domain.CardReview
			session      uuid.NullUUID
			reviewedAt   int64
			rating       string
			responseTime int64
			mastery      int
		)
		if err := rows.Scan(
			&r.ID, &r.CardID, &session, &reviewedAt, &rating, &responseTime,
			&r.NewInterval, &r.NewEase, &mastery,
		); err != nil {
			return nil, MapError(err)
		}
		if session.Valid {
			id := session.UUID
			r.SessionID = &id
		}
		r.Timestamp = fromMillis(reviewedAt)
		r.Rating = domain.ReviewRating(rating)
		r.ResponseTime = time.Duration(responseTime)
		r.NewMasteryLevel = domain.MasteryLevel(mastery)
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return reviews, nil
}
