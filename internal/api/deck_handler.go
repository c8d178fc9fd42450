package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/study"
)

// DeckHandler handles deck-related HTTP requests
type DeckHandler struct {
	cards  service.CardService
	study  study.StudyService
	logger *slog.Logger
}

// NewDeckHandler creates a new DeckHandler
func NewDeckHandler(
	cardService service.CardService,
	studyService study.StudyService,
	logger *slog.Logger,
) *DeckHandler {
	if cardService == nil || studyService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("card and study services cannot be nil for DeckHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DeckHandler{
		cards:  cardService,
		study:  studyService,
		logger: logger.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeck handles POST /api/decks requests
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	var req CreateDeckRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		id := uuid.MustParse(*req.ParentID) // validated as uuid
		parentID = &id
	}

	deck, err := h.cards.CreateDeck(r.Context(), req.Name, parentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, deckToResponse(deck))
}

// GetDeck handles GET /api/decks/{id} requests
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	deckID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	deck, err := h.cards.GetDeck(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get deck")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deckToResponse(deck))
}

// ListCards handles GET /api/decks/{id}/cards requests
func (h *DeckHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	deckID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	cards, err := h.cards.ListCards(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}

// ListSubdecks handles GET /api/decks/{id}/subdecks requests
func (h *DeckHandler) ListSubdecks(w http.ResponseWriter, r *http.Request) {
	deckID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	decks, err := h.cards.ListSubdecks(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list subdecks")
		return
	}

	out := make([]DeckResponse, 0, len(decks))
	for _, d := range decks {
		out = append(out, deckToResponse(d))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// GetDeckStats handles GET /api/decks/{id}/stats requests.
// Statistics cover the deck and all of its subdecks.
func (h *DeckHandler) GetDeckStats(w http.ResponseWriter, r *http.Request) {
	deckID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	st, err := h.study.GetDeckStudyStats(r.Context(), deckID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute deck statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, st)
}
