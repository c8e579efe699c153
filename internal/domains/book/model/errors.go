package model

import (
	"errors"
	"net/http"

	authorModel "book-catalog/internal/domains/author/model"
	"book-catalog/internal/shared/validate"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrISBNAlreadyExists = errors.New("ISBN already exists")
	ErrInvalidID         = errors.New("invalid book id")

	// ErrAuthorNotFound is shared with the author domain so callers can
	// match it with errors.Is from either side.
	ErrAuthorNotFound = authorModel.ErrAuthorNotFound

	ErrImportEmptyFile     = errors.New("import file has no data rows")
	ErrImportTooManyRows   = errors.New("import file has too many rows")
	ErrImportMissingHeader = errors.New("import file is missing required columns")
	ErrImportUnsupported   = errors.New("unsupported import file type")
)

type errorInfo struct {
	Status  int
	Code    string
	Message string
}

var bookErrorMap = map[error]errorInfo{
	ErrBookNotFound: {
		Status:  http.StatusNotFound,
		Code:    "BOOK_NOT_FOUND",
		Message: "The specified book does not exist",
	},
	ErrISBNAlreadyExists: {
		Status:  http.StatusConflict,
		Code:    "ISBN_ALREADY_EXISTS",
		Message: "This ISBN is already used by another book",
	},
	ErrAuthorNotFound: {
		Status:  http.StatusBadRequest,
		Code:    "AUTHOR_NOT_FOUND",
		Message: "The specified author does not exist",
	},
	ErrInvalidID:           {Status: http.StatusBadRequest, Code: "INVALID_ID", Message: "Book id must be a positive integer"},
	ErrImportEmptyFile:     {Status: http.StatusBadRequest, Code: "IMPORT_EMPTY", Message: "The file contains no books"},
	ErrImportTooManyRows:   {Status: http.StatusBadRequest, Code: "IMPORT_TOO_LARGE", Message: "The file contains too many rows"},
	ErrImportMissingHeader: {Status: http.StatusBadRequest, Code: "IMPORT_BAD_HEADER", Message: "The file header is missing required columns"},
	ErrImportUnsupported:   {Status: http.StatusBadRequest, Code: "IMPORT_UNSUPPORTED", Message: "Only .csv and .xlsx files are supported"},
}

// LookupError resolves err against the book error map. Field errors map to
// 422; anything unknown reports ok=false.
func LookupError(err error) (status int, code, message string, ok bool) {
	var fe validate.FieldErrors
	if errors.As(err, &fe) {
		return http.StatusUnprocessableEntity, "VALIDATION_FAILED", "Validation failed", true
	}
	for target, info := range bookErrorMap {
		if errors.Is(err, target) {
			return info.Status, info.Code, info.Message, true
		}
	}
	return http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", false
}

// ImportError carries the per-row failures of a rejected import.
type ImportError struct {
	Rows []RowError
}

func (e *ImportError) Error() string {
	return "import rejected: invalid rows"
}
