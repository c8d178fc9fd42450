// Package sqldb implements the store interfaces on top of database/sql.
//
// The same store code serves PostgreSQL (through the pgx stdlib driver) and
// SQLite (through modernc.org/sqlite). Queries are written with $n
// placeholders and rebound for SQLite. Timestamps are stored as UTC unix
// milliseconds and durations as nanoseconds so both dialects share one
// column encoding.
//
// Schemas live in migrations/<dialect> and are applied with goose.
package sqldb
