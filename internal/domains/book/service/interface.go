package service

import (
	"context"
	"io"

	"github.com/xuri/excelize/v2"

	authorModel "book-catalog/internal/domains/author/model"
	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/shared/validate"
)

// AuthorLookup is the slice of the author repository books depend on.
type AuthorLookup interface {
	GetByID(ctx context.Context, id int64) (*authorModel.Author, error)
	FindByName(ctx context.Context, name string) (*authorModel.Author, error)
}

// ServiceInterface - business logic for books
type ServiceInterface interface {
	// Create looks the author up for its birth date, validates and stores.
	// Errors: validate.FieldErrors, model.ErrAuthorNotFound, model.ErrISBNAlreadyExists
	Create(ctx context.Context, in validate.BookInput) (*model.Book, error)

	GetByID(ctx context.Context, id int64) (*model.Book, error)
	List(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	Update(ctx context.Context, id int64, in validate.BookInput) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)

	// Validate runs the same checks as Create without storing anything.
	Validate(ctx context.Context, in validate.BookInput) error

	// ExportBooksToExcel renders the filtered list as a workbook.
	ExportBooksToExcel(ctx context.Context, filter model.BookFilter) (*excelize.File, error)
}

// BulkImportServiceInterface - all-or-nothing import from CSV or XLSX
type BulkImportServiceInterface interface {
	// ImportBooks returns *model.ImportError when any row is rejected;
	// nothing is stored in that case.
	ImportBooks(ctx context.Context, fileName string, src io.Reader) (*model.ImportResult, error)
}
