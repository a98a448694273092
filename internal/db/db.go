package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// MemoryPath is the DSN for a private in-memory database.
const MemoryPath = ":memory:"

// OpenDB opens the casetree SQLite database at the given path.
// If path is ":memory:", uses an in-memory database pinned to a single
// connection so every statement sees the same schema.
// Sets WAL mode and enables foreign keys, then runs migrations.
func OpenDB(path string) (*sql.DB, error) {
	if path != MemoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == MemoryPath {
		// Each pooled connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// node_keywords relies on enforcement to block orphaned associations.
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

// dsn applies per-connection pragmas to file databases, so every pooled
// connection enforces foreign keys and waits on a busy writer.
func dsn(path string) string {
	if path == MemoryPath {
		return path
	}
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
