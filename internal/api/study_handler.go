package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/api/shared"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/service/study"
)

// defaultHistoryLimit caps GET /api/sessions when no limit is given.
const defaultHistoryLimit = 20

// StudyHandler handles study session HTTP requests
type StudyHandler struct {
	study  study.StudyService
	logger *slog.Logger
}

// NewStudyHandler creates a new StudyHandler
func NewStudyHandler(studyService study.StudyService, logger *slog.Logger) *StudyHandler {
	if studyService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("study service cannot be nil for StudyHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StudyHandler{
		study:  studyService,
		logger: logger.With(slog.String("component", "study_handler")),
	}
}

// StartSession handles POST /api/sessions requests
func (h *StudyHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	deckID := uuid.MustParse(req.DeckID) // validated as uuid

	session, err := h.study.StartStudySession(r.Context(), deckID, req.IncludeSubdecks, req.ReviewLimit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start study session")
		return
	}

	log.Debug("study session started", slog.String("session_id", session.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(session))
}

// GetCurrentSession handles GET /api/sessions/current requests
func (h *StudyHandler) GetCurrentSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.study.GetCurrentSession(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get current session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// GetNextCard handles GET /api/sessions/current/next requests.
// It responds 204 No Content once the session has nothing left to review.
func (h *StudyHandler) GetNextCard(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	card, err := h.study.GetNextCardForReview(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get next review card")
		return
	}
	if card == nil {
		log.Debug("study session complete")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(*card))
}

// RecordReview handles POST /api/sessions/current/reviews requests
func (h *StudyHandler) RecordReview(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	var req RecordReviewRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	cardID := uuid.MustParse(req.CardID) // validated as uuid
	responseTime := time.Duration(req.ResponseTimeMs) * time.Millisecond

	card, err := h.study.RecordCardReview(r.Context(), cardID, domain.ReviewRating(req.Rating), responseTime)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record review")
		return
	}

	log.Debug("review recorded",
		slog.String("card_id", card.ID.String()),
		slog.String("rating", req.Rating))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// SkipCard handles POST /api/sessions/current/skips requests
func (h *StudyHandler) SkipCard(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	var req SkipCardRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	session, err := h.study.SkipCard(r.Context(), uuid.MustParse(req.CardID))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to skip card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// EndSession handles POST /api/sessions/{id}/end requests.
// The body is optional; progress is saved unless save_progress is false.
func (h *StudyHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r, h.logger)

	sessionID, ok := handlePathUUID(w, r, "id", log)
	if !ok {
		return
	}

	saveProgress := true
	if r.ContentLength != 0 {
		var req EndSessionRequest
		if !decodeAndValidate(w, r, &req, log) {
			return
		}
		if req.SaveProgress != nil {
			saveProgress = *req.SaveProgress
		}
	}

	session, err := h.study.EndStudySession(r.Context(), sessionID, saveProgress)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to end study session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// GetSession handles GET /api/sessions/{id} requests
func (h *StudyHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	session, err := h.study.GetSession(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get study session")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(session))
}

// GetSessionStats handles GET /api/sessions/{id}/stats requests
func (h *StudyHandler) GetSessionStats(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	st, err := h.study.GetSessionStats(r.Context(), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute session statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, st)
}

// ListSessions handles GET /api/sessions requests. The optional limit query
// parameter defaults to 20; zero returns every session.
func (h *StudyHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultHistoryLimit)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
		return
	}

	sessions, err := h.study.GetSessionHistory(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list study sessions")
		return
	}

	out := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionToResponse(s))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// GetSessionCards handles GET /api/sessions/{id}/cards requests. The state
// query parameter selects "scheduled" (default) or "reviewed" cards.
func (h *StudyHandler) GetSessionCards(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathUUID(w, r, "id", requestLogger(r, h.logger))
	if !ok {
		return
	}

	var (
		cards []domain.Card
		err   error
	)
	switch r.URL.Query().Get("state") {
	case "", "scheduled":
		cards, err = h.study.GetScheduledCards(r.Context(), sessionID)
	case "reviewed":
		cards, err = h.study.GetReviewedCards(r.Context(), sessionID)
	default:
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid state: must be scheduled or reviewed")
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list session cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cardsToResponse(cards))
}
