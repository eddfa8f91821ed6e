package api

import (
	"errors"
	"net/http"

	"github.com/inkwell-ai/inkwell-api/internal/domain"
	"github.com/inkwell-ai/inkwell-api/internal/generation"
	"github.com/inkwell-ai/inkwell-api/internal/service/auth"
	"github.com/inkwell-ai/inkwell-api/internal/store"
	"github.com/inkwell-ai/inkwell-api/internal/task"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	// Provider limit errors carry their own status code (402 or 429).
	if limitErr, ok := generation.AsLimitExceeded(err); ok {
		if limitErr.StatusCode == http.StatusPaymentRequired ||
			limitErr.StatusCode == http.StatusTooManyRequests {
			return limitErr.StatusCode
		}
		return http.StatusTooManyRequests
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, task.ErrNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrNoKeywords),
		errors.Is(err, domain.ErrNoSections),
		errors.Is(err, domain.ErrMissingResearch),
		errors.Is(err, domain.ErrEmptySetting),
		errors.Is(err, domain.ErrEmptyTopic),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	if limitErr, ok := generation.AsLimitExceeded(err); ok {
		return limitErr.Error()
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	// Not found errors
	case errors.Is(err, task.ErrNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrAssetNotFound):
		return "Asset not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	// Validation errors surface their own message; the sentinels carry no
	// internal detail.
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrNoKeywords),
		errors.Is(err, domain.ErrNoSections),
		errors.Is(err, domain.ErrMissingResearch),
		errors.Is(err, domain.ErrEmptySetting),
		errors.Is(err, domain.ErrEmptyTopic):
		return err.Error()

	default:
		return "An unexpected error occurred"
	}
}
