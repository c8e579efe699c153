package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/infrastructure/database"
	pkgdb "book-catalog/pkg/database"
)

// sqliteRepository implements RepositoryInterface on database/sql + modernc sqlite.
type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a book repository backed by SQLite
func NewSQLiteRepository(db *sql.DB) RepositoryInterface {
	return &sqliteRepository{db: db}
}

// sqlQuerier is satisfied by *sql.DB and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectSQLiteBook = `
	SELECT b.id, b.title, b.author_id, a.name, b.published_date, b.isbn, b.pages, b.created_at, b.updated_at
	FROM books b
	JOIN authors a ON a.id = b.author_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteBook(row rowScanner) (*model.Book, error) {
	var (
		b         model.Book
		published string
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&b.ID, &b.Title, &b.AuthorID, &b.AuthorName, &published, &b.ISBN, &b.Pages, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	pd, err := database.ParseSQLiteDate(sql.NullString{String: published, Valid: true})
	if err != nil || pd == nil {
		return nil, fmt.Errorf("invalid published_date for book %d: %q", b.ID, published)
	}
	b.PublishedDate = *pd
	b.CreatedAt = database.FromMillis(createdAt)
	b.UpdatedAt = database.FromMillis(updatedAt)
	return &b, nil
}

func translateSQLiteError(err error) error {
	switch {
	case database.IsSQLiteUniqueViolation(err, "books.isbn"):
		return model.ErrISBNAlreadyExists
	case database.IsSQLiteForeignKeyViolation(err):
		return model.ErrAuthorNotFound
	}
	return err
}

func (r *sqliteRepository) getByID(ctx context.Context, q sqlQuerier, id int64) (*model.Book, error) {
	b, err := scanSQLiteBook(q.QueryRowContext(ctx, selectSQLiteBook+` WHERE b.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book by id: %w", err)
	}
	return b, nil
}

func (r *sqliteRepository) insert(ctx context.Context, q sqlQuerier, b *model.Book) (int64, error) {
	now := database.ToMillis(time.Now())
	res, err := q.ExecContext(ctx, `
		INSERT INTO books (title, author_id, published_date, isbn, pages, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.Title, b.AuthorID, database.SQLiteDate(&b.PublishedDate), b.ISBN, b.Pages, now, now,
	)
	if err != nil {
		if translated := translateSQLiteError(err); translated != err {
			return 0, translated
		}
		return 0, fmt.Errorf("failed to insert book: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read book id: %w", err)
	}
	return id, nil
}

func (r *sqliteRepository) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	id, err := r.insert(ctx, r.db, b)
	if err != nil {
		return nil, err
	}
	return r.getByID(ctx, r.db, id)
}

func (r *sqliteRepository) CreateMany(ctx context.Context, books []*model.Book) ([]*model.Book, error) {
	return pkgdb.WithSQLTransactionResult(ctx, r.db, func(tx *sql.Tx) ([]*model.Book, error) {
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

func (r *sqliteRepository) GetByID(ctx context.Context, id int64) (*model.Book, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *sqliteRepository) List(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(selectSQLiteBook)
	queryBuilder.WriteString(` WHERE 1=1`)

	args := []any{}
	if filter.AuthorID > 0 {
		queryBuilder.WriteString(` AND b.author_id = ?`)
		args = append(args, filter.AuthorID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		queryBuilder.WriteString(` AND (b.title LIKE ? ESCAPE '\' OR b.isbn LIKE ? ESCAPE '\' OR a.name LIKE ? ESCAPE '\')`)
		pattern := database.ContainsPattern(search)
		args = append(args, pattern, pattern, pattern)
	}
	queryBuilder.WriteString(` ORDER BY b.title ASC, b.id ASC`)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	books := []model.Book{}
	for rows.Next() {
		b, err := scanSQLiteBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating books: %w", err)
	}
	return books, nil
}

func (r *sqliteRepository) Update(ctx context.Context, b *model.Book) (*model.Book, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET title = ?, author_id = ?, published_date = ?, isbn = ?, pages = ?, updated_at = ?
		WHERE id = ?`,
		b.Title, b.AuthorID, database.SQLiteDate(&b.PublishedDate), b.ISBN, b.Pages,
		database.ToMillis(time.Now()), b.ID,
	)
	if err != nil {
		if translated := translateSQLiteError(err); translated != err {
			return nil, translated
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	if affected == 0 {
		return nil, model.ErrBookNotFound
	}

	return r.getByID(ctx, r.db, b.ID)
}

func (r *sqliteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if affected == 0 {
		return model.ErrBookNotFound
	}
	return nil
}

func (r *sqliteRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return total, nil
}

func (r *sqliteRepository) ISBNExists(ctx context.Context, isbn string, excludeID int64) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE isbn = ? AND id <> ?)`, isbn, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check isbn: %w", err)
	}
	return exists == 1, nil
}
