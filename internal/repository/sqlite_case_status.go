package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexanderramin/casetree/internal/db"
)

// SQLiteCaseStatusRepo stores the per-case active flag in test_cases.
type SQLiteCaseStatusRepo struct {
	db db.DBTX
}

func NewSQLiteCaseStatusRepo(conn db.DBTX) *SQLiteCaseStatusRepo {
	return &SQLiteCaseStatusRepo{db: conn}
}

func (r *SQLiteCaseStatusRepo) SetActive(ctx context.Context, caseID int64, active bool) error {
	query := `INSERT INTO test_cases (id, active) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET active = excluded.active`
	if _, err := r.db.ExecContext(ctx, query, caseID, boolToInt(active)); err != nil {
		return fmt.Errorf("setting case %d status: %w", caseID, err)
	}
	return nil
}

func (r *SQLiteCaseStatusRepo) Get(ctx context.Context, caseID int64) (*bool, error) {
	var active sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT active FROM test_cases WHERE id = ?`, caseID).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading case %d status: %w", caseID, err)
	}
	return nullableBool(active), nil
}
