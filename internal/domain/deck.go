package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Deck validation errors
var (
	// ErrDeckIDEmpty is returned when a deck ID is empty or nil.
	ErrDeckIDEmpty = errors.New("deck ID cannot be empty")

	// ErrDeckNameEmpty is returned when a deck has no name.
	ErrDeckNameEmpty = errors.New("deck name cannot be empty")

	// ErrDeckSelfParent is returned when a deck is its own parent.
	ErrDeckSelfParent = errors.New("deck cannot be its own parent")
)

// Deck groups cards. Decks can be nested through ParentID.
type Deck struct {
	ID        uuid.UUID  `json:"id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewDeck creates a new Deck, optionally nested under parentID.
func NewDeck(name string, parentID *uuid.UUID, now time.Time) (*Deck, error) {
	deck := &Deck{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if parentID != nil {
		p := *parentID
		deck.ParentID = &p
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// Validate checks if the Deck has valid data.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrDeckIDEmpty
	}
	if strings.TrimSpace(d.Name) == "" {
		return ErrDeckNameEmpty
	}
	if d.ParentID != nil && *d.ParentID == d.ID {
		return ErrDeckSelfParent
	}
	return nil
}
