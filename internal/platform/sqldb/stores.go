package sqldb

import (
	"database/sql"
	"log/slog"
)

// Stores bundles the SQL implementations of every store interface.
type Stores struct {
	Cards    *CardStore
	Decks    *DeckStore
	Sessions *SessionStore
	Reviews  *ReviewLog
}

// NewStores creates all stores over one database handle.
func NewStores(db *sql.DB, dialect Dialect, logger *slog.Logger) *Stores {
	return &Stores{
		Cards:    NewCardStore(db, dialect, logger),
		Decks:    NewDeckStore(db, dialect, logger),
		Sessions: NewSessionStore(db, dialect, logger),
		Reviews:  NewReviewLog(db, dialect, logger),
	}
}
