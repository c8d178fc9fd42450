package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/scry-study/internal/config"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/domain/srs"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)

// openTestDB opens a migrated SQLite database in a temporary directory.
func openTestDB(t *testing.T) (*sql.DB, *Stores) {
	t.Helper()
	ctx := context.Background()

	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		URL:    "file:" + filepath.Join(t.TempDir(), "study.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
	}
	db, dialect, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	migrator, err := NewMigrator(db, dialect, nil)
	require.NoError(t, err)
	require.NoError(t, migrator.Up(ctx))

	return db, NewStores(db, dialect, nil)
}

func saveDeck(t *testing.T, stores *Stores, name string, parent *uuid.UUID) domain.Deck {
	t.Helper()
	deck, err := domain.NewDeck(name, parent, testNow)
	require.NoError(t, err)
	saved, err := stores.Decks.Save(context.Background(), *deck)
	require.NoError(t, err)
	return saved
}

func saveCard(t *testing.T, stores *Stores, deckID uuid.UUID, question string, created time.Time) domain.Card {
	t.Helper()
	card, err := domain.NewCard(deckID, question, "answer", created)
	require.NoError(t, err)
	saved, err := stores.Cards.Save(context.Background(), *card)
	require.NoError(t, err)
	return saved
}

func TestDialect(t *testing.T) {
	t.Parallel()

	d, err := DialectFor("pgx")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d)
	assert.Equal(t, "SELECT $1, $2", d.rebind("SELECT $1, $2"))

	d, err = DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "SELECT ?1, ?2", d.rebind("SELECT $1, $2"))

	_, err = DialectFor("mysql")
	assert.Error(t, err)
}

func TestTimestampCodec(t *testing.T) {
	t.Parallel()

	local := time.FixedZone("UTC+2", 2*60*60)
	in := time.Date(2025, 4, 2, 17, 0, 0, 123456789, local)

	out := fromMillis(toMillis(in))
	assert.Equal(t, time.UTC, out.Location())
	assert.True(t, out.Equal(in.Truncate(time.Millisecond)))

	assert.Nil(t, fromNullMillis(nullMillis(nil)))
	got := fromNullMillis(nullMillis(&in))
	require.NotNil(t, got)
	assert.Equal(t, out, *got)
}

func TestMapError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"unique", &pgconn.PgError{Code: uniqueViolationCode}, store.ErrDuplicate},
		{"foreign key", &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "cards_deck_id_fkey"}, store.ErrInvalidEntity},
		{"check", &pgconn.PgError{Code: checkViolationCode}, store.ErrInvalidEntity},
		{"not null", &pgconn.PgError{Code: notNullViolationCode, ColumnName: "question"}, store.ErrInvalidEntity},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, MapError(tc.err), tc.want)
		})
	}

	assert.NoError(t, MapError(nil))
	other := errors.New("boom")
	assert.Same(t, other, MapError(other))
}

func TestMigrator_Status(t *testing.T) {
	t.Parallel()
	db, _ := openTestDB(t)

	migrator, err := NewMigrator(db, DialectSQLite, nil)
	require.NoError(t, err)

	states, err := migrator.Status(context.Background())
	require.NoError(t, err)
	require.Len(t, states, 3)
	for _, st := range states {
		assert.True(t, st.Applied, "migration %d should be applied", st.Version)
	}

	require.NoError(t, migrator.Down(context.Background()))
	states, err = migrator.Status(context.Background())
	require.NoError(t, err)
	assert.False(t, states[2].Applied)
}

func TestDeckStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, stores := openTestDB(t)

	root := saveDeck(t, stores, "Languages", nil)
	child := saveDeck(t, stores, "Spanish", &root.ID)

	got, err := stores.Decks.Get(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Spanish", got.Name)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root.ID, *got.ParentID)
	assert.True(t, got.CreatedAt.Equal(testNow))

	children, err := stores.Decks.Children(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	_, err = stores.Decks.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrDeckNotFound)

	missing := uuid.New()
	orphan, err := domain.NewDeck("Orphan", &missing, testNow)
	require.NoError(t, err)
	_, err = stores.Decks.Save(ctx, *orphan)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestCardStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, stores := openTestDB(t)
	deck := saveDeck(t, stores, "Go", nil)

	t.Run("round trip", func(t *testing.T) {
		card, err := domain.NewCard(deck.ID, "What is a goroutine?", "A lightweight thread", testNow)
		require.NoError(t, err)
		card.Tags = []string{"concurrency", "basics"}
		card.AdditionalInfo = "see the tour"

		reviewed, err := card.RecordReview(domain.ReviewRatingEasy, srs.NewDefaultScheduler(), testNow)
		require.NoError(t, err)

		_, err = stores.Cards.Save(ctx, reviewed)
		require.NoError(t, err)

		got, err := stores.Cards.Get(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, reviewed.Question, got.Question)
		assert.Equal(t, reviewed.AdditionalInfo, got.AdditionalInfo)
		assert.Equal(t, []string{"concurrency", "basics"}, got.Tags)
		assert.Equal(t, reviewed.MasteryLevel, got.MasteryLevel)
		assert.Equal(t, reviewed.IntervalDays, got.IntervalDays)
		assert.Equal(t, reviewed.Ease, got.Ease)
		assert.Equal(t, 1, got.ReviewCount)
		assert.Equal(t, 1, got.CorrectCount)
		require.NotNil(t, got.LastReviewedAt)
		require.NotNil(t, got.NextReviewDate)
		assert.True(t, got.NextReviewDate.Equal(*reviewed.NextReviewDate))
	})

	t.Run("get all ordered by creation", func(t *testing.T) {
		other := saveDeck(t, stores, "Other", nil)
		second := saveCard(t, stores, other.ID, "second", testNow.Add(time.Minute))
		first := saveCard(t, stores, other.ID, "first", testNow)

		cards, err := stores.Cards.GetAll(ctx, other.ID)
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, first.ID, cards[0].ID)
		assert.Equal(t, second.ID, cards[1].ID)
		assert.Nil(t, cards[0].Tags)
		assert.Nil(t, cards[0].NextReviewDate)
	})

	t.Run("unknown deck", func(t *testing.T) {
		card, err := domain.NewCard(uuid.New(), "q", "a", testNow)
		require.NoError(t, err)
		_, err = stores.Cards.Save(ctx, *card)
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("delete removes reviews", func(t *testing.T) {
		card := saveCard(t, stores, deck.ID, "to delete", testNow)
		review, err := domain.NewCardReview(card, nil, domain.ReviewRatingAgain, time.Second, testNow)
		require.NoError(t, err)
		_, err = stores.Reviews.Append(ctx, *review)
		require.NoError(t, err)

		require.NoError(t, stores.Cards.Delete(ctx, card.ID))

		_, err = stores.Cards.Get(ctx, card.ID)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		reviews, err := stores.Reviews.AllFor(ctx, card.ID)
		require.NoError(t, err)
		assert.Empty(t, reviews)

		assert.ErrorIs(t, stores.Cards.Delete(ctx, card.ID), store.ErrCardNotFound)
	})
}

func TestSessionStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, stores := openTestDB(t)
	deckID := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	limit := 2

	session, err := domain.NewStudySession(deckID, true, &limit, ids, testNow)
	require.NoError(t, err)
	_, err = stores.Sessions.Save(ctx, session)
	require.NoError(t, err)

	session, err = session.RecordReview(ids[1], true, 4*time.Second)
	require.NoError(t, err)
	session, err = session.Skip(ids[0])
	require.NoError(t, err)
	session, err = session.End(testNow.Add(10 * time.Minute))
	require.NoError(t, err)

	saved, err := stores.Sessions.Save(ctx, session)
	require.NoError(t, err)

	got, err := stores.Sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, deckID, got.DeckID)
	assert.True(t, got.IncludeSubdecks)
	require.NotNil(t, got.ReviewLimit)
	assert.Equal(t, 2, *got.ReviewLimit)
	assert.Equal(t, ids, got.ScheduledCards)
	assert.Equal(t, []uuid.UUID{ids[1], ids[0]}, got.ReviewedCards)
	assert.Equal(t, []uuid.UUID{ids[0]}, got.SkippedCards)
	assert.Equal(t, 1, got.CorrectCount)
	assert.Equal(t, 0, got.IncorrectCount)
	assert.Equal(t, 4*time.Second, got.TotalStudyTime)
	assert.True(t, got.StartTime.Equal(testNow))
	require.NotNil(t, got.EndTime)
	assert.True(t, got.EndTime.Equal(testNow.Add(10*time.Minute)))
	assert.NoError(t, got.Validate())

	_, err = stores.Sessions.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	later, err := domain.NewStudySession(deckID, false, nil, nil, testNow.Add(time.Hour))
	require.NoError(t, err)
	_, err = stores.Sessions.Save(ctx, later)
	require.NoError(t, err)

	all, err := stores.Sessions.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, later.ID, all[0].ID)
	assert.Empty(t, all[0].ScheduledCards)
	assert.Equal(t, session.ID, all[1].ID)
	assert.Len(t, all[1].ScheduledCards, 3)

	limited, err := stores.Sessions.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, later.ID, limited[0].ID)
}

func TestReviewLog(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	_, stores := openTestDB(t)
	deck := saveDeck(t, stores, "Go", nil)
	card := saveCard(t, stores, deck.ID, "q", testNow)
	sessionID := uuid.New()

	first, err := domain.NewCardReview(card, &sessionID, domain.ReviewRatingHard, 2*time.Second, testNow)
	require.NoError(t, err)
	second, err := domain.NewCardReview(card, nil, domain.ReviewRatingGood, time.Second, testNow.Add(time.Hour))
	require.NoError(t, err)

	for _, r := range []*domain.CardReview{second, first} {
		_, err := stores.Reviews.Append(ctx, *r)
		require.NoError(t, err)
	}

	_, err = stores.Reviews.Append(ctx, *first)
	assert.ErrorIs(t, err, store.ErrDuplicate)

	all, err := stores.Reviews.AllFor(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.ID, all[0].ID, "oldest first")
	assert.Equal(t, domain.ReviewRatingHard, all[0].Rating)
	assert.Equal(t, 2*time.Second, all[0].ResponseTime)
	require.NotNil(t, all[0].SessionID)
	assert.Equal(t, sessionID, *all[0].SessionID)
	assert.Nil(t, all[1].SessionID)

	inSession, err := stores.Reviews.ForSession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, inSession, 1)
	assert.Equal(t, first.ID, inSession[0].ID)
}
