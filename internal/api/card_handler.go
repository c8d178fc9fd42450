package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/service"
	"github.com/phrazzld/scry-study/internal/service/study"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	cards  service.CardService
	study  study.StudyService
	logger *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(
	cardService service.CardService,
	studyService study.StudyService,
	logger *slog.Logger,
) *CardHandler {
	if cardService == nil || studyService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("card and study services cannot be nil for CardHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CardHandler{
		cards:  cardService,
		study:  studyService,
		logger: logger.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /api/cards requests
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	var req CreateCardRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	card, err := h.cards.CreateCard(r.Context(), service.CreateCardParams{
		DeckID:         uuid.MustParse(req.DeckID), // validated as uuid
		Question:       req.Question,
		Answer:         req.Answer,
		AdditionalInfo: req.AdditionalInfo,
		Tags:           req.Tags,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(card))
}

// GetCard handles GET /api/cards/{id} requests
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	card, err := h.cards.GetCard(r.Context(), cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// DeleteCard handles DELETE /api/cards/{id} requests
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	if err := h.cards.DeleteCard(r.Context(), cardID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete card")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCardStats handles GET /api/cards/{id}/stats requests
func (h *CardHandler) GetCardStats(w http.ResponseWriter, r *http.Request) {
	cardID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	st, err := h.study.GetCardStudyStats(r.Context(), cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute card statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, st)
}

// GetCardReviews handles GET /api/cards/{id}/reviews requests
func (h *CardHandler) GetCardReviews(w http.ResponseWriter, r *http.Request) {
	cardID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	reviews, err := h.study.GetCardReviews(r.Context(), cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list card reviews")
		return
	}

	out := make([]ReviewResponse, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, reviewToResponse(rv))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// ResetCard handles POST /api/cards/{id}/reset requests
func (h *CardHandler) ResetCard(w http.ResponseWriter, r *http.Request) {
	cardID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	card, err := h.study.ResetCard(r.Context(), cardID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to reset card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// PostponeCard handles POST /api/cards/{id}/postpone requests
func (h *CardHandler) PostponeCard(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	cardID, ok := handlePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req PostponeCardRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	card, err := h.study.PostponeCard(r.Context(), cardID, req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone card")
		return
	}

	log.Debug("card postponed",
		slog.String("card_id", cardID.String()),
		slog.Int("days", req.Days))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}
