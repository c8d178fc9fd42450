package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/scry-study/internal/domain"
	"github.com/phrazzld/scry-study/internal/service/study"
	"github.com/phrazzld/scry-study/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// exposing their types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Store failures first: a wrapped store error may itself match a
	// validation or not-found sentinel below.
	case errors.Is(err, study.ErrPersistenceFailure),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable

	case errors.Is(err, study.ErrSessionNotFound),
		errors.Is(err, study.ErrCardNotFound),
		errors.Is(err, study.ErrDeckNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, study.ErrSessionAlreadyActive),
		errors.Is(err, study.ErrNoActiveSession),
		errors.Is(err, study.ErrSessionEnded),
		errors.Is(err, study.ErrCardAlreadyReviewed),
		errors.Is(err, study.ErrReviewLimitReached),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, study.ErrCardNotScheduled):
		return http.StatusUnprocessableEntity

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidReviewRating),
		errors.Is(err, domain.ErrInvalidReviewLimit),
		errors.Is(err, domain.ErrInvalidPostponeDays),
		errors.Is(err, domain.ErrCardQuestionEmpty),
		errors.Is(err, domain.ErrCardAnswerEmpty),
		errors.Is(err, domain.ErrDeckNameEmpty),
		errors.Is(err, domain.ErrDeckSelfParent):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that leaks no
// internal detail.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, study.ErrPersistenceFailure),
		errors.Is(err, context.DeadlineExceeded):
		return "Storage is temporarily unavailable, please retry"

	case errors.Is(err, study.ErrSessionNotFound),
		errors.Is(err, store.ErrSessionNotFound):
		return "Study session not found"
	case errors.Is(err, study.ErrCardNotFound),
		errors.Is(err, store.ErrCardNotFound):
		return "Card not found"
	case errors.Is(err, study.ErrDeckNotFound),
		errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, study.ErrSessionAlreadyActive):
		return "A study session is already active"
	case errors.Is(err, study.ErrSessionEnded):
		return "The study session has ended"
	case errors.Is(err, study.ErrNoActiveSession):
		return "No study session is active"
	case errors.Is(err, study.ErrCardAlreadyReviewed):
		return "Card was already reviewed in this session"
	case errors.Is(err, study.ErrReviewLimitReached):
		return "Review limit reached for this session"
	case errors.Is(err, study.ErrCardNotScheduled):
		return "Card is not part of this session"

	case errors.Is(err, domain.ErrInvalidReviewRating):
		return "Rating must be one of again, hard, good or easy"
	case errors.Is(err, domain.ErrInvalidReviewLimit):
		return "Review limit must be positive"
	case errors.Is(err, domain.ErrInvalidPostponeDays):
		return "Postpone days must be at least 1"
	case errors.Is(err, domain.ErrCardQuestionEmpty):
		return "Question cannot be empty"
	case errors.Is(err, domain.ErrCardAnswerEmpty):
		return "Answer cannot be empty"
	case errors.Is(err, domain.ErrDeckNameEmpty):
		return "Deck name cannot be empty"
	case errors.Is(err, domain.ErrDeckSelfParent):
		return "Deck cannot be its own parent"
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns a validator error into a message naming the
// first offending field.
func SanitizeValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "must be a UUID"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
