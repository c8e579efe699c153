package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"book-catalog/internal/domains/author/model"
	"book-catalog/internal/infrastructure/database"
	pkgdb "book-catalog/pkg/database"
)

// sqliteRepository implements RepositoryInterface on database/sql + modernc sqlite.
// Dates are stored as YYYY-MM-DD text, timestamps as unix millis.
type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates an author repository backed by SQLite
func NewSQLiteRepository(db *sql.DB) RepositoryInterface {
	return &sqliteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteAuthor(row rowScanner, a *model.Author, extra ...any) error {
	var (
		birth     sql.NullString
		createdAt int64
		updatedAt int64
	)
	dest := append([]any{&a.ID, &a.Name, &birth, &a.Bio, &createdAt, &updatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}

	bd, err := database.ParseSQLiteDate(birth)
	if err != nil {
		return fmt.Errorf("invalid birth_date for author %d: %w", a.ID, err)
	}
	a.BirthDate = bd
	a.CreatedAt = database.FromMillis(createdAt)
	a.UpdatedAt = database.FromMillis(updatedAt)
	return nil
}

func (r *sqliteRepository) Create(ctx context.Context, a *model.Author) (*model.Author, error) {
	now := database.ToMillis(time.Now())
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO authors (name, birth_date, bio, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		a.Name, database.SQLiteDate(a.BirthDate), a.Bio, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read author id: %w", err)
	}

	return r.GetByID(ctx, id)
}

func (r *sqliteRepository) GetByID(ctx context.Context, id int64) (*model.Author, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, birth_date, bio, created_at, updated_at FROM authors WHERE id = ?`, id)

	var a model.Author
	if err := scanSQLiteAuthor(row, &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to get author by id: %w", err)
	}
	return &a, nil
}

func (r *sqliteRepository) FindByName(ctx context.Context, name string) (*model.Author, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, birth_date, bio, created_at, updated_at
		FROM authors
		WHERE LOWER(name) = LOWER(?)
		ORDER BY id
		LIMIT 1`, strings.TrimSpace(name))

	var a model.Author
	if err := scanSQLiteAuthor(row, &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("failed to find author by name: %w", err)
	}
	return &a, nil
}

func (r *sqliteRepository) List(ctx context.Context, filter model.AuthorFilter) ([]model.Author, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT a.id, a.name, a.birth_date, a.bio, a.created_at, a.updated_at, COUNT(b.id)
		FROM authors a
		LEFT JOIN books b ON b.author_id = a.id
		WHERE 1=1`)

	args := []any{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		queryBuilder.WriteString(` AND (a.name LIKE ? ESCAPE '\' OR a.bio LIKE ? ESCAPE '\')`)
		pattern := database.ContainsPattern(search)
		args = append(args, pattern, pattern)
	}
	queryBuilder.WriteString(` GROUP BY a.id ORDER BY a.name ASC, a.id ASC`)

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query authors: %w", err)
	}
	defer rows.Close()

	authors := []model.Author{}
	for rows.Next() {
		var a model.Author
		if err := scanSQLiteAuthor(rows, &a, &a.BookCount); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authors: %w", err)
	}

	return authors, nil
}

func (r *sqliteRepository) Update(ctx context.Context, a *model.Author) (*model.Author, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE authors
		SET name = ?, birth_date = ?, bio = ?, updated_at = ?
		WHERE id = ?`,
		a.Name, database.SQLiteDate(a.BirthDate), a.Bio, database.ToMillis(time.Now()), a.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update author: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update author: %w", err)
	}
	if affected == 0 {
		return nil, model.ErrAuthorNotFound
	}

	return r.GetByID(ctx, a.ID)
}

func (r *sqliteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return pkgdb.WithSQLTransactionResult(ctx, r.db, func(tx *sql.Tx) (int64, error) {
		books, err := tx.ExecContext(ctx, `DELETE FROM books WHERE author_id = ?`, id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete author books: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM authors WHERE id = ?`, id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete author: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to delete author: %w", err)
		}
		if affected == 0 {
			return 0, model.ErrAuthorNotFound
		}

		deletedBooks, err := books.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count deleted books: %w", err)
		}
		return deletedBooks, nil
	})
}

func (r *sqliteRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM authors`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count authors: %w", err)
	}
	return total, nil
}

func (r *sqliteRepository) ListBooks(ctx context.Context, authorID int64) ([]model.BookSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, published_date, isbn, pages
		FROM books
		WHERE author_id = ?
		ORDER BY title ASC, id ASC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query author books: %w", err)
	}
	defer rows.Close()

	books := []model.BookSummary{}
	for rows.Next() {
		var (
			b         model.BookSummary
			published sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Title, &published, &b.ISBN, &b.Pages); err != nil {
			return nil, fmt.Errorf("failed to scan author book: %w", err)
		}
		pd, err := database.ParseSQLiteDate(published)
		if err != nil || pd == nil {
			return nil, fmt.Errorf("invalid published_date for book %d", b.ID)
		}
		b.PublishedDate.Time = *pd
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author books: %w", err)
	}

	return books, nil
}
