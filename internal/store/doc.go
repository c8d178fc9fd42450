// Package store defines the persistence contracts consumed by the study
// engine: cards, decks, study sessions and the review log. The interfaces
// keep the engine independent of any particular database; in-memory and SQL
// implementations live under internal/platform.
package store
