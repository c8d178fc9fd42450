package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{
			name:           "nil error",
			err:            nil,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "persistence failure",
			err:            &study.PersistenceError{Op: "save card", Err: errors.New("disk full")},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "persistence failure wrapping not found",
			err:            &study.PersistenceError{Op: "get card", Err: store.ErrCardNotFound},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "deadline exceeded",
			err:            fmt.Errorf("query: %w", context.DeadlineExceeded),
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "card not found",
			err:            fmt.Errorf("%w: 42", study.ErrCardNotFound),
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "store not found",
			err:            store.ErrDeckNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "session already active",
			err:            study.ErrSessionAlreadyActive,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "session ended",
			err:            fmt.Errorf("%w: %w", study.ErrNoActiveSession, study.ErrSessionEnded),
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "card already reviewed",
			err:            study.ErrCardAlreadyReviewed,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "review limit reached",
			err:            study.ErrReviewLimitReached,
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "card not scheduled",
			err:            study.ErrCardNotScheduled,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid rating",
			err:            fmt.Errorf("%w: %q", domain.ErrInvalidReviewRating, "perfect"),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid entity",
			err:            store.ErrInvalidEntity,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "deck self parent",
			err:            domain.ErrDeckSelfParent,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown error",
			err:            errors.New("unknown error"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expectedStatus, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "nil error",
			err:     nil,
			message: "An unexpected error occurred",
		},
		{
			name:    "persistence failure hides store detail",
			err:     &study.PersistenceError{Op: "save session", Err: errors.New("pq: relation \"sessions\" does not exist")},
			message: "Storage is temporarily unavailable, please retry",
		},
		{
			name:    "session not found",
			err:     store.ErrSessionNotFound,
			message: "Study session not found",
		},
		{
			name:    "ended session wins over no active session",
			err:     fmt.Errorf("%w: session 1: %w", study.ErrNoActiveSession, study.ErrSessionEnded),
			message: "The study session has ended",
		},
		{
			name:    "no active session",
			err:     study.ErrNoActiveSession,
			message: "No study session is active",
		},
		{
			name:    "card not scheduled",
			err:     study.ErrCardNotScheduled,
			message: "Card is not part of this session",
		},
		{
			name:    "postpone days",
			err:     domain.ErrInvalidPostponeDays,
			message: "Postpone days must be at least 1",
		},
		{
			name:    "unknown error",
			err:     errors.New("SELECT * FROM cards failed"),
			message: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.message, GetSafeErrorMessage(tt.err))
		})
	}
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	validate := validator.New()

	err := validate.Struct(RecordReviewRequest{CardID: "not-a-uuid", Rating: "good"})
	require.Error(t, err)
	assert.Equal(t, "Invalid CardID: must be a UUID", SanitizeValidationError(err))

	err = validate.Struct(RecordReviewRequest{CardID: "9f0c1c0e-8a7d-4b7e-9b1a-3a3f2c1d0e5f", Rating: "perfect"})
	require.Error(t, err)
	assert.Equal(t, "Invalid Rating: invalid value", SanitizeValidationError(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("boom")))
}
