package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/alimgiray/bookshelf/internal/models"
	"github.com/mattn/go-sqlite3"
)

// ErrDuplicateISBN is returned when the books.isbn unique constraint rejects a write.
var ErrDuplicateISBN = errors.New("a book with this ISBN already exists")

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// dateValue converts an optional date into its stored form
func dateValue(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(models.DateLayout)
}

// scanDate converts a stored date back into an optional time
func scanDate(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := models.ParseDate(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
