package repository

import (
	"context"

	"book-catalog/internal/domains/book/model"
)

// RepositoryInterface defines data access for books.
// Duplicate ISBNs surface as model.ErrISBNAlreadyExists and unknown authors
// as model.ErrAuthorNotFound.
type RepositoryInterface interface {
	Create(ctx context.Context, b *model.Book) (*model.Book, error)

	// CreateMany inserts every book in one transaction; nothing is stored
	// if any insert fails.
	CreateMany(ctx context.Context, books []*model.Book) ([]*model.Book, error)

	// GetByID joins the author name. Returns model.ErrBookNotFound.
	GetByID(ctx context.Context, id int64) (*model.Book, error)

	// List returns books ordered by title.
	List(ctx context.Context, filter model.BookFilter) ([]model.Book, error)

	Update(ctx context.Context, b *model.Book) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)

	// ISBNExists reports whether another book (id != excludeID) holds isbn.
	ISBNExists(ctx context.Context, isbn string, excludeID int64) (bool, error)
}
