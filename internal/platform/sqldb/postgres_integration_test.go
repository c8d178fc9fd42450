//go:build integration

package sqldb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: SCRY_TEST_DATABASE_URL=postgres://... go test -tags=integration ./internal/platform/sqldb
func TestPostgresStores(t *testing.T) {
	url := os.Getenv("SCRY_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("SCRY_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	db, dialect, err := Open(ctx, config.DatabaseConfig{Driver: "pgx", URL: url})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.Equal(t, DialectPostgres, dialect)

	migrator, err := NewMigrator(db, dialect, nil)
	require.NoError(t, err)
	require.NoError(t, migrator.Up(ctx))

	stores := NewStores(db, dialect, nil)
	deck := saveDeck(t, stores, "integration-"+uuid.NewString(), nil)
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), "DELETE FROM decks WHERE id = $1", deck.ID)
	})

	card := saveCard(t, stores, deck.ID, "What does MVCC stand for?", testNow)
	card.Tags = []string{"databases", "postgres"}
	card, err = stores.Cards.Save(ctx, card)
	require.NoError(t, err)

	got, err := stores.Cards.Get(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"databases", "postgres"}, got.Tags)

	session, err := domain.NewStudySession(deck.ID, false, nil, []uuid.UUID{card.ID}, testNow)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), "DELETE FROM study_sessions WHERE id = $1", session.ID)
	})
	session, err = session.RecordReview(card.ID, true, 3*time.Second)
	require.NoError(t, err)
	_, err = stores.Sessions.Save(ctx, session)
	require.NoError(t, err)

	loaded, err := stores.Sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{card.ID}, loaded.ReviewedCards)
	assert.Equal(t, 3*time.Second, loaded.TotalStudyTime)

	review, err := domain.NewCardReview(card, &session.ID, domain.ReviewRatingGood, 3*time.Second, testNow)
	require.NoError(t, err)
	_, err = stores.Reviews.Append(ctx, *review)
	require.NoError(t, err)
	_, err = stores.Reviews.Append(ctx, *review)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	missing := uuid.New()
	orphan, err := domain.NewDeck("orphan", &missing, testNow)
	require.NoError(t, err)
	_, err = stores.Decks.Save(ctx, *orphan)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}
