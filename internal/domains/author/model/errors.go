package model

import (
	"errors"
	"net/http"

	"book-catalog/internal/shared/validate"
)

var (
	// ErrAuthorNotFound is the NotFound kind for authors.
	ErrAuthorNotFound = errors.New("author not found")

	ErrInvalidID = errors.New("invalid author id")
)

// ToErrorCode converts error to API error code
func ToErrorCode(err error) string {
	var fe validate.FieldErrors
	switch {
	case errors.As(err, &fe):
		return "VALIDATION_FAILED"
	case errors.Is(err, ErrAuthorNotFound):
		return "AUTHOR_NOT_FOUND"
	case errors.Is(err, ErrInvalidID):
		return "INVALID_ID"
	default:
		return "INTERNAL_ERROR"
	}
}

// ToHTTPStatus converts error to HTTP status code
func ToHTTPStatus(err error) int {
	var fe validate.FieldErrors
	switch {
	case errors.As(err, &fe):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrAuthorNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
