package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-study/internal/domain"
)

// CreateDeckRequest is the payload for POST /api/decks.
type CreateDeckRequest struct {
	Name     string  `json:"name"      validate:"required,max=200"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

// CreateCardRequest is the payload for POST /api/cards.
type CreateCardRequest struct {
	DeckID         string   `json:"deck_id"         validate:"required,uuid"`
	Question       string   `json:"question"        validate:"required,max=10000"`
	Answer         string   `json:"answer"          validate:"required,max=10000"`
	AdditionalInfo string   `json:"additional_info" validate:"max=10000"`
	Tags           []string `json:"tags"            validate:"max=50,dive,required,max=64"`
}

// StartSessionRequest is the payload for POST /api/sessions.
type StartSessionRequest struct {
	DeckID          string `json:"deck_id"          validate:"required,uuid"`
	IncludeSubdecks bool   `json:"include_subdecks"`
	ReviewLimit     *int   `json:"review_limit"     validate:"omitempty,gte=1"`
}

// RecordReviewRequest is the payload for POST /api/sessions/current/reviews.
type RecordReviewRequest struct {
	CardID         string `json:"card_id"          validate:"required,uuid"`
	Rating         string `json:"rating"           validate:"required,oneof=again hard good easy"`
	ResponseTimeMs int64  `json:"response_time_ms" validate:"gte=0"`
}

// SkipCardRequest is the payload for POST /api/sessions/current/skips.
type SkipCardRequest struct {
	CardID string `json:"card_id" validate:"required,uuid"`
}

// EndSessionRequest is the optional payload for POST /api/sessions/{id}/end.
// SaveProgress defaults to true.
type EndSessionRequest struct {
	SaveProgress *bool `json:"save_progress"`
}

// PostponeCardRequest is the payload for POST /api/cards/{id}/postpone.
type PostponeCardRequest struct {
	Days int `json:"days" validate:"required,gte=1,lte=3650"`
}

// DeckResponse represents a deck.
type DeckResponse struct {
	ID        string    `json:"id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CardResponse represents a card with its scheduling state.
type CardResponse struct {
	ID             string     `json:"id"`
	DeckID         string     `json:"deck_id"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	AdditionalInfo string     `json:"additional_info,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	MasteryLevel   string     `json:"mastery_level"`
	IntervalDays   int        `json:"interval_days"`
	Ease           float64    `json:"ease"`
	ReviewCount    int        `json:"review_count"`
	CorrectCount   int        `json:"correct_count"`
	IncorrectCount int        `json:"incorrect_count"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewDate *time.Time `json:"next_review_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SessionResponse represents a study session and its progress.
type SessionResponse struct {
	ID               string      `json:"id"`
	DeckID           string      `json:"deck_id"`
	Status           string      `json:"status"`
	IncludeSubdecks  bool        `json:"include_subdecks"`
	ReviewLimit      *int        `json:"review_limit,omitempty"`
	StartTime        time.Time   `json:"start_time"`
	EndTime          *time.Time  `json:"end_time,omitempty"`
	ScheduledCards   []uuid.UUID `json:"scheduled_cards"`
	ReviewedCards    []uuid.UUID `json:"reviewed_cards"`
	SkippedCards     []uuid.UUID `json:"skipped_cards"`
	CorrectCount     int         `json:"correct_count"`
	IncorrectCount   int         `json:"incorrect_count"`
	TotalStudyTimeMs int64       `json:"total_study_time_ms"`
	ReviewsLeft      int         `json:"reviews_left"`
}

// ReviewResponse represents one entry of a card's review history.
type ReviewResponse struct {
	ID             string    `json:"id"`
	CardID         string    `json:"card_id"`
	SessionID      *string   `json:"session_id,omitempty"`
	Rating         string    `json:"rating"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	NewInterval    int       `json:"new_interval"`
	NewEase        float64   `json:"new_ease"`
	NewMastery     string    `json:"new_mastery_level"`
	Timestamp      time.Time `json:"timestamp"`
}

func deckToResponse(d domain.Deck) DeckResponse {
	resp := DeckResponse{
		ID:        d.ID.String(),
		Name:      d.Name,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if d.ParentID != nil {
		parent := d.ParentID.String()
		resp.ParentID = &parent
	}
	return resp
}

func cardToResponse(c domain.Card) CardResponse {
	return CardResponse{
		ID:             c.ID.String(),
		DeckID:         c.DeckID.String(),
		Question:       c.Question,
		Answer:         c.Answer,
		AdditionalInfo: c.AdditionalInfo,
		Tags:           c.Tags,
		MasteryLevel:   c.MasteryLevel.String(),
		IntervalDays:   c.IntervalDays,
		Ease:           c.Ease,
		ReviewCount:    c.ReviewCount,
		CorrectCount:   c.CorrectCount,
		IncorrectCount: c.IncorrectCount,
		LastReviewedAt: c.LastReviewedAt,
		NextReviewDate: c.NextReviewDate,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func cardsToResponse(cards []domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	return out
}

func sessionToResponse(s domain.StudySession) SessionResponse {
	return SessionResponse{
		ID:               s.ID.String(),
		DeckID:           s.DeckID.String(),
		Status:           string(s.Status()),
		IncludeSubdecks:  s.IncludeSubdecks,
		ReviewLimit:      s.ReviewLimit,
		StartTime:        s.StartTime,
		EndTime:          s.EndTime,
		ScheduledCards:   s.ScheduledCards,
		ReviewedCards:    s.ReviewedCards,
		SkippedCards:     s.SkippedCards,
		CorrectCount:     s.CorrectCount,
		IncorrectCount:   s.IncorrectCount,
		TotalStudyTimeMs: s.TotalStudyTime.Milliseconds(),
		ReviewsLeft:      s.ReviewsLeft(),
	}
}

func reviewToResponse(r domain.CardReview) ReviewResponse {
	resp := ReviewResponse{
		ID:             r.ID.String(),
		CardID:         r.CardID.String(),
		Rating:         string(r.Rating),
		ResponseTimeMs: r.ResponseTime.Milliseconds(),
		NewInterval:    r.NewInterval,
		NewEase:        r.NewEase,
		NewMastery:     r.NewMasteryLevel.String(),
		Timestamp:      r.Timestamp,
	}
	if r.SessionID != nil {
		sid := r.SessionID.String()
		resp.SessionID = &sid
	}
	return resp
}
