package service

import (
	"context"

	"book-catalog/internal/domains/author/model"
	"book-catalog/internal/shared/validate"
)

// ServiceInterface defines business logic operations for the Author domain
type ServiceInterface interface {
	// Create validates the input and stores the normalized author.
	// Errors: validate.FieldErrors
	Create(ctx context.Context, in validate.AuthorInput) (*model.Author, error)

	// Errors: model.ErrAuthorNotFound
	GetByID(ctx context.Context, id int64) (*model.Author, error)

	// GetWithBooks backs the detail page: the author plus its books by title.
	GetWithBooks(ctx context.Context, id int64) (*model.Author, []model.BookSummary, error)

	List(ctx context.Context, filter model.AuthorFilter) ([]model.Author, error)

	// Update replaces every editable field.
	// Errors: model.ErrAuthorNotFound, validate.FieldErrors
	Update(ctx context.Context, id int64, in validate.AuthorInput) (*model.Author, error)

	// Delete removes the author and all of its books atomically and returns
	// how many books went with it.
	Delete(ctx context.Context, id int64) (int64, error)

	Count(ctx context.Context) (int64, error)

	// Validate runs the author rules without storing anything.
	Validate(in validate.AuthorInput) error
}
