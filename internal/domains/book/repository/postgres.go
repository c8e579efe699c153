package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/infrastructure/database"
	pkgdb "book-catalog/pkg/database"
)

const isbnConstraint = "books_isbn_key"

// postgresRepository - raw SQL with pgxpool
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository - constructor
func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// pgQuerier is satisfied by both the pool and a transaction.
type pgQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const selectBook = `
    SELECT
      b.id, b.title, b.author_id, a.name AS author_name,
      b.published_date, b.isbn, b.pages, b.created_at, b.updated_at
    FROM books b
    JOIN authors a ON a.id = b.author_id`

// translateError maps constraint violations onto domain errors
func translateError(err error) error {
	switch {
	case database.IsPgUniqueViolation(err, isbnConstraint):
		return model.ErrISBNAlreadyExists
	case database.IsPgForeignKeyViolation(err):
		return model.ErrAuthorNotFound
	}
	return err
}

func (r *postgresRepository) getByID(ctx context.Context, q pgQuerier, id int64) (*model.Book, error) {
	rows, err := q.Query(ctx, selectBook+` WHERE b.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get book query failed: %w", err)
	}

	book, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}
	return &book, nil
}

func (r *postgresRepository) insert(ctx context.Context, q pgQuerier, b *model.Book) (int64, error) {
	query := `
		INSERT INTO books (title, author_id, published_date, isbn, pages)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	if err := q.QueryRow(ctx, query, b.Title, b.AuthorID, b.PublishedDate, b.ISBN, b.Pages).Scan(&id); err != nil {
		if translated := translateError(err); translated != err {
			return 0, translated
		}
		return 0, fmt.Errorf("failed to insert book: %w", err)
	}
	return id, nil
}

// Create - insert new book and read it back with its author name
func (r *postgresRepository) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	id, err := r.insert(ctx, r.pool, b)
	if err != nil {
		return nil, err
	}
	return r.getByID(ctx, r.pool, id)
}

func (r *postgresRepository) CreateMany(ctx context.Context, books []*model.Book) ([]*model.Book, error) {
	return pkgdb.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) ([]*model.Book, error) {
		created := make([]*model.Book, 0, len(books))
		for i, b := range books {
			id, err := r.insert(ctx, tx, b)
			if err != nil {
				return nil, fmt.Errorf("book %d (%s): %w", i+1, b.ISBN, err)
			}
			book, err := r.getByID(ctx, tx, id)
			if err != nil {
				return nil, err
			}
			created = append(created, book)
		}
		return created, nil
	})
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	return r.getByID(ctx, r.pool, id)
}

// buildWhereClause - construct WHERE clause dynamically
func (r *postgresRepository) buildWhereClause(filter model.BookFilter) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if filter.AuthorID > 0 {
		conditions = append(conditions, fmt.Sprintf("b.author_id = $%d", argIndex))
		args = append(args, filter.AuthorID)
		argIndex++
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(b.title ILIKE $%d ESCAPE '\' OR b.isbn ILIKE $%d ESCAPE '\' OR a.name ILIKE $%d ESCAPE '\')`,
			argIndex, argIndex, argIndex))
		args = append(args, database.ContainsPattern(search))
	}

	return strings.Join(conditions, " AND "), args
}

func (r *postgresRepository) List(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	whereClause, args := r.buildWhereClause(filter)
	query := selectBook + ` WHERE ` + whereClause + ` ORDER BY b.title ASC, b.id ASC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list books query failed: %w", err)
	}

	books, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Book])
	if err != nil {
		return nil, fmt.Errorf("collect rows failed: %w", err)
	}
	return books, nil
}

func (r *postgresRepository) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	query := `
		UPDATE books
		SET title = $1, author_id = $2, published_date = $3, isbn = $4, pages = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query, b.Title, b.AuthorID, b.PublishedDate, b.ISBN, b.Pages, b.ID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		if translated := translateError(err); translated != err {
			return nil, translated
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	return r.getByID(ctx, r.pool, id)
}

func (r *postgresRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *postgresRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) ISBNExists(ctx context.Context, isbn string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE isbn = $1 AND id <> $2)`, isbn, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check isbn: %w", err)
	}
	return exists, nil
}
