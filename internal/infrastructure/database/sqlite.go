package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"book-catalog/internal/shared/validate"
)

// OpenSQLite opens (creating if needed) a SQLite database with foreign keys on.
// ":memory:" is pinned to a single connection so every query sees the same db.
func OpenSQLite(path string) (*sql.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	memory := path == ":memory:"
	if !memory {
		path = filepath.Clean(path)
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if !memory {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	log.Info().Str("path", path).Msg("[DATABASE] SQLite opened")
	return db, nil
}

// IsSQLiteUniqueViolation reports a UNIQUE failure; when column is set
// ("books.isbn") the failing column must match.
func IsSQLiteUniqueViolation(err error, column string) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.Code() != sqlite3lib.SQLITE_CONSTRAINT_UNIQUE {
		return false
	}
	return column == "" || strings.Contains(sqliteErr.Error(), column)
}

// IsSQLiteForeignKeyViolation reports a FOREIGN KEY constraint failure.
func IsSQLiteForeignKeyViolation(err error) bool {
	var sqliteErr *msqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY
}

// SQLiteDate converts an optional date into a bind value.
func SQLiteDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(validate.DateLayout)
}

// ParseSQLiteDate reads a nullable YYYY-MM-DD column.
func ParseSQLiteDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(validate.DateLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func ToMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func FromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}
