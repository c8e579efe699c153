package repository

import (
	"context"

	"book-catalog/internal/domains/author/model"
)

// RepositoryInterface defines data access for authors.
// Implementations: Postgres (pgxpool) and SQLite (database/sql).
type RepositoryInterface interface {
	// Create inserts a validated author and returns it with id and timestamps.
	Create(ctx context.Context, a *model.Author) (*model.Author, error)

	// GetByID returns model.ErrAuthorNotFound if the author does not exist.
	GetByID(ctx context.Context, id int64) (*model.Author, error)

	// FindByName does a case-insensitive exact match; the oldest author wins
	// when names repeat. Returns model.ErrAuthorNotFound when nothing matches.
	FindByName(ctx context.Context, name string) (*model.Author, error)

	// List returns authors ordered by name, each with its BookCount.
	List(ctx context.Context, filter model.AuthorFilter) ([]model.Author, error)

	// Update overwrites name, birth date and bio.
	Update(ctx context.Context, a *model.Author) (*model.Author, error)

	// Delete removes the author and every book it owns in one transaction.
	// Returns the number of books removed.
	Delete(ctx context.Context, id int64) (int64, error)

	Count(ctx context.Context) (int64, error)

	// ListBooks returns the author's books ordered by title.
	ListBooks(ctx context.Context, authorID int64) ([]model.BookSummary, error)
}
