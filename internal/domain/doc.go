// Package domain contains the study entities of the application: cards, decks,
// study sessions and review records, together with the value-level rules that
// govern them.
//
// Every transition in this package is pure. Methods that change state return
// an updated copy and leave the receiver untouched, so callers decide when
// (and whether) the new value is persisted.
package domain
