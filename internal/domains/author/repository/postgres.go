package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"book-catalog/internal/domains/author/model"
	"book-catalog/internal/infrastructure/database"
	pkgdb "book-catalog/pkg/database"
)

// postgresRepository implements RepositoryInterface on a pgx pool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new author repository instance
func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const authorColumns = `id, name, birth_date, bio, created_at, updated_at`

func scanAuthor(row pgx.Row, a *model.Author) error {
	return row.Scan(
		&a.ID,
		&a.Name,
		&a.BirthDate,
		&a.Bio,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}

// Create inserts new author with generated ID and timestamps
func (r *postgresRepository) Create(ctx context.Context, a *model.Author) (*model.Author, error) {
	query := `
        INSERT INTO authors (name, birth_date, bio)
        VALUES ($1, $2, $3)
        RETURNING ` + authorColumns

	var created model.Author
	if err := scanAuthor(r.pool.QueryRow(ctx, query, a.Name, a.BirthDate, a.Bio), &created); err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}

	return &created, nil
}

// GetByID retrieves author by id
func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Author, error) {
	query := `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`

	var a model.Author
	if err := scanAuthor(r.pool.QueryRow(ctx, query, id), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author by id: %w", err)
	}

	return &a, nil
}

func (r *postgresRepository) FindByName(ctx context.Context, name string) (*model.Author, error) {
	query := `
        SELECT ` + authorColumns + `
        FROM authors
        WHERE LOWER(name) = LOWER($1)
        ORDER BY id
        LIMIT 1
    `

	var a model.Author
	if err := scanAuthor(r.pool.QueryRow(ctx, query, strings.TrimSpace(name)), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to find author by name: %w", err)
	}

	return &a, nil
}

// List retrieves authors ordered by name with their book counts
func (r *postgresRepository) List(ctx context.Context, filter model.AuthorFilter) ([]model.Author, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT a.id, a.name, a.birth_date, a.bio, a.created_at, a.updated_at, COUNT(b.id)
        FROM authors a
        LEFT JOIN books b ON b.author_id = a.id
        WHERE 1=1
    `)

	args := []interface{}{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		queryBuilder.WriteString(` AND (a.name ILIKE $1 ESCAPE '\' OR a.bio ILIKE $1 ESCAPE '\')`)
		args = append(args, database.ContainsPattern(search))
	}
	queryBuilder.WriteString(` GROUP BY a.id ORDER BY a.name ASC, a.id ASC`)

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	authors := []model.Author{}
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(
			&a.ID,
			&a.Name,
			&a.BirthDate,
			&a.Bio,
			&a.CreatedAt,
			&a.UpdatedAt,
			&a.BookCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authors: %w", err)
	}

	return authors, nil
}

// Update overwrites the editable fields of an author
func (r *postgresRepository) Update(ctx context.Context, a *model.Author) (*model.Author, error) {
	query := `
        UPDATE authors
        SET
            name = $1,
            birth_date = $2,
            bio = $3,
            updated_at = NOW()
        WHERE id = $4
        RETURNING ` + authorColumns

	var updated model.Author
	if err := scanAuthor(r.pool.QueryRow(ctx, query, a.Name, a.BirthDate, a.Bio, a.ID), &updated); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to update author: %w", err)
	}

	return &updated, nil
}

// Delete removes the author and its books atomically
func (r *postgresRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (int64, error) {
		books, err := tx.Exec(ctx, `DELETE FROM books WHERE author_id = $1`, id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete author books: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete author: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return 0, model.ErrAuthorNotFound
		}

		return books.RowsAffected(), nil
	})
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM authors`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count authors: %w", err)
	}
	return total, nil
}

// ListBooks returns the books written by the author, ordered by title
func (r *postgresRepository) ListBooks(ctx context.Context, authorID int64) ([]model.BookSummary, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, title, published_date, isbn, pages
        FROM books
        WHERE author_id = $1
        ORDER BY title ASC, id ASC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query author books: %w", err)
	}
	defer rows.Close()

	books := []model.BookSummary{}
	for rows.Next() {
		var b model.BookSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.PublishedDate.Time, &b.ISBN, &b.Pages); err != nil {
			return nil, fmt.Errorf("failed to scan author book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author books: %w", err)
	}

	return books, nil
}
