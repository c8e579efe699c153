package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	authorModel "book-catalog/internal/domains/author/model"
	authorRepo "book-catalog/internal/domains/author/repository"
	"book-catalog/internal/domains/book/repository"
	"book-catalog/internal/infrastructure/database"
	"book-catalog/internal/shared/validate"
)

var today = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db        *sql.DB
	authors   authorRepo.RepositoryInterface
	books     repository.RepositoryInterface
	validator *validate.Validator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.MigrateSQLite(context.Background(), db))

	return &fixture{
		db:        db,
		authors:   authorRepo.NewSQLiteRepository(db),
		books:     repository.NewSQLiteRepository(db),
		validator: validate.NewWithClock(func() time.Time { return today }),
	}
}

func (f *fixture) author(t *testing.T, name string, birth *time.Time) *authorModel.Author {
	t.Helper()
	a, err := f.authors.Create(context.Background(), &authorModel.Author{Name: name, BirthDate: birth})
	require.NoError(t, err)
	return a
}

func date(y int, m time.Month, d int) *time.Time {
	t := validate.NewDate(y, m, d)
	return &t
}

func intPtr(v int) *int { return &v }
