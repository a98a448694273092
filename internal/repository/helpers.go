package repository

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableBool maps a nullable SQLite integer to a tri-state *bool.
func nullableBool(v sql.NullInt64) *bool {
	if !v.Valid {
		return nil
	}
	b := v.Int64 != 0
	return &b
}

// nullableInt64ToValue converts a *int64 to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil.
func nullableInt64ToValue(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// nowUTC returns the current UTC time formatted as RFC3339.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTimestamp(column, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}

// descendantOf matches rows whose path column lies strictly below path.
// Every stored path ends with the delimiter, so an exact prefix compare is
// delimiter-bounded. substr is used instead of LIKE so path text is never
// interpreted as a pattern.
func descendantOf(column, path string) sq.Sqlizer {
	return sq.And{
		sq.Expr("substr("+column+", 1, ?) = ?", len(path), path),
		sq.Expr("length("+column+") > ?", len(path)),
	}
}

// selfOrDescendantOf is descendantOf including the row at path itself.
func selfOrDescendantOf(column, path string) sq.Sqlizer {
	return sq.Expr("substr("+column+", 1, ?) = ?", len(path), path)
}
