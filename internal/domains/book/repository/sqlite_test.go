package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"book-catalog/internal/domains/book/model"
	"book-catalog/internal/infrastructure/database"
	"book-catalog/internal/shared/validate"
)

func newTestRepo(t *testing.T) (RepositoryInterface, *sql.DB) {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.MigrateSQLite(context.Background(), db))
	return NewSQLiteRepository(db), db
}

func addAuthor(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	now := database.ToMillis(time.Now())
	res, err := db.Exec(`INSERT INTO authors (name, created_at, updated_at) VALUES (?, ?, ?)`, name, now, now)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func newBook(authorID int64, title, isbn string) *model.Book {
	return &model.Book{
		Title:         title,
		AuthorID:      authorID,
		PublishedDate: validate.NewDate(1869, time.January, 1),
		ISBN:          isbn,
		Pages:         1225,
	}
}

func TestSQLite_CreateAndGet(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	authorID := addAuthor(t, db, "Leo Tolstoy")

	created, err := repo.Create(ctx, newBook(authorID, "War and Peace", "9780140449334"))
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "Leo Tolstoy", created.AuthorName)
	assert.Equal(t, "1869-01-01", created.PublishedDateString())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ISBN, got.ISBN)
	assert.Equal(t, 1225, got.Pages)

	_, err = repo.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestSQLite_CreateTranslatesConstraints(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	authorID := addAuthor(t, db, "Leo Tolstoy")

	_, err := repo.Create(ctx, newBook(authorID, "War and Peace", "9780140449334"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newBook(authorID, "Copy", "9780140449334"))
	assert.ErrorIs(t, err, model.ErrISBNAlreadyExists)

	_, err = repo.Create(ctx, newBook(authorID+50, "Orphan", "9780000000002"))
	assert.ErrorIs(t, err, model.ErrAuthorNotFound)
}

func TestSQLite_CreateManyIsAtomic(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	authorID := addAuthor(t, db, "Emile Zola")

	created, err := repo.CreateMany(ctx, []*model.Book{
		newBook(authorID, "Germinal", "9780140447422"),
		newBook(authorID, "Nana", "9780199555949"),
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, "Emile Zola", created[1].AuthorName)

	_, err = repo.CreateMany(ctx, []*model.Book{
		newBook(authorID, "Therese Raquin", "9780140449440"),
		newBook(authorID, "Duplicate", "9780140447422"),
	})
	assert.ErrorIs(t, err, model.ErrISBNAlreadyExists)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "failed batch must not leave rows behind")
}

func TestSQLite_ListFilters(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	tolstoy := addAuthor(t, db, "Leo Tolstoy")
	zola := addAuthor(t, db, "Emile Zola")

	_, err := repo.Create(ctx, newBook(tolstoy, "War and Peace", "9780140449334"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBook(tolstoy, "Anna Karenina", "9780143035008"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBook(zola, "Germinal", "9780140447422"))
	require.NoError(t, err)

	all, err := repo.List(ctx, model.BookFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Anna Karenina", all[0].Title)

	byAuthor, err := repo.List(ctx, model.BookFilter{AuthorID: zola})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "Germinal", byAuthor[0].Title)

	byName, err := repo.List(ctx, model.BookFilter{Search: "tolstoy"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byISBN, err := repo.List(ctx, model.BookFilter{Search: "9780143"})
	require.NoError(t, err)
	require.Len(t, byISBN, 1)
	assert.Equal(t, "Anna Karenina", byISBN[0].Title)
}

func TestSQLite_ListSearchTreatsWildcardsLiterally(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	tolstoy := addAuthor(t, db, "Leo Tolstoy")

	_, err := repo.Create(ctx, newBook(tolstoy, "War and Peace", "9780140449334"))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBook(tolstoy, "100% Tolstoy_Stories", "9780143035008"))
	require.NoError(t, err)

	for _, search := range []string{"0%", "y_S"} {
		found, err := repo.List(ctx, model.BookFilter{Search: search})
		require.NoError(t, err)
		require.Len(t, found, 1, search)
		assert.Equal(t, "100% Tolstoy_Stories", found[0].Title)
	}

	percent, err := repo.List(ctx, model.BookFilter{Search: "%"})
	require.NoError(t, err)
	assert.Len(t, percent, 1, "a lone % only matches titles containing it")

	none, err := repo.List(ctx, model.BookFilter{Search: "W_r"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSQLite_UpdateAndDelete(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	authorID := addAuthor(t, db, "Leo Tolstoy")

	a, err := repo.Create(ctx, newBook(authorID, "War and Peace", "9780140449334"))
	require.NoError(t, err)
	b, err := repo.Create(ctx, newBook(authorID, "Anna Karenina", "9780143035008"))
	require.NoError(t, err)

	a.Title = "War & Peace"
	a.Pages = 1300
	updated, err := repo.Update(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "War & Peace", updated.Title)
	assert.Equal(t, 1300, updated.Pages)

	b.ISBN = a.ISBN
	_, err = repo.Update(ctx, b)
	assert.ErrorIs(t, err, model.ErrISBNAlreadyExists)

	_, err = repo.Update(ctx, &model.Book{ID: 999, Title: "x", AuthorID: authorID, ISBN: "9781111111111", Pages: 1})
	assert.ErrorIs(t, err, model.ErrBookNotFound)

	require.NoError(t, repo.Delete(ctx, a.ID))
	assert.ErrorIs(t, repo.Delete(ctx, a.ID), model.ErrBookNotFound)
}

func TestSQLite_ISBNExists(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	authorID := addAuthor(t, db, "Leo Tolstoy")

	b, err := repo.Create(ctx, newBook(authorID, "War and Peace", "9780140449334"))
	require.NoError(t, err)

	exists, err := repo.ISBNExists(ctx, "9780140449334", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ISBNExists(ctx, "9780140449334", b.ID)
	require.NoError(t, err)
	assert.False(t, exists, "the book itself is excluded")

	exists, err = repo.ISBNExists(ctx, "9999999999999", 0)
	require.NoError(t, err)
	assert.False(t, exists)
}
