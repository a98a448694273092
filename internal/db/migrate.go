package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PlaceholderPath is written on insert, before the row id is known.
const PlaceholderPath = "."

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateRepairPlaceholderPaths(db); err != nil {
		return fmt.Errorf("repairing placeholder paths: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS nodes (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id  INTEGER REFERENCES nodes(id),
		name       TEXT NOT NULL CHECK(name != ''),
		node_type  INTEGER NOT NULL CHECK(node_type IN (1, 2, 3)),
		node_order INTEGER NOT NULL DEFAULT 0,
		path       TEXT NOT NULL DEFAULT '.',
		details    TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, node_order)`,
	`CREATE INDEX IF NOT EXISTS idx_nodes_path ON nodes(path)`,

	// One status row per case node; absence means "never marked".
	`CREATE TABLE IF NOT EXISTS test_cases (
		id     INTEGER PRIMARY KEY REFERENCES nodes(id) ON DELETE CASCADE,
		active INTEGER NOT NULL DEFAULT 1
	)`,

	`CREATE TABLE IF NOT EXISTS test_plans (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL CHECK(name != ''),
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS test_plan_cases (
		test_plan_id INTEGER NOT NULL REFERENCES test_plans(id) ON DELETE CASCADE,
		test_case_id INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		PRIMARY KEY (test_plan_id, test_case_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_test_plan_cases_case ON test_plan_cases(test_case_id)`,

	`CREATE TABLE IF NOT EXISTS keywords (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,

	// No cascade from nodes: node deletion cleans these rows up explicitly.
	`CREATE TABLE IF NOT EXISTS node_keywords (
		node_id    INTEGER NOT NULL REFERENCES nodes(id),
		keyword_id INTEGER NOT NULL REFERENCES keywords(id) ON DELETE CASCADE,
		PRIMARY KEY (node_id, keyword_id)
	)`,
}

// migrateRepairPlaceholderPaths derives the real path for rows still holding
// the insert-time placeholder. Rows are fixed top-down: a child is only
// repaired once its parent carries a real path, so the loop runs once per
// affected tree level. Idempotent: a database with no placeholder rows is a
// single no-op UPDATE.
func migrateRepairPlaceholderPaths(db *sql.DB) error {
	ctx := context.Background()

	query := `UPDATE nodes
		SET path = CASE
			WHEN parent_id IS NULL THEN '.' || id || '.'
			ELSE (SELECT p.path FROM nodes p WHERE p.id = nodes.parent_id) || id || '.'
		END
		WHERE path = ?
		  AND (parent_id IS NULL
		       OR (SELECT p.path FROM nodes p WHERE p.id = nodes.parent_id) != ?)`

	for {
		res, err := db.ExecContext(ctx, query, PlaceholderPath, PlaceholderPath)
		if err != nil {
			return fmt.Errorf("updating placeholder paths: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("counting repaired paths: %w", err)
		}
		if n == 0 {
			return nil
		}
	}
}
