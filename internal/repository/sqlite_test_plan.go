package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
)

// SQLiteTestPlanRepo implements TestPlanRepo using a SQLite database.
type SQLiteTestPlanRepo struct {
	db db.DBTX
}

func NewSQLiteTestPlanRepo(conn db.DBTX) *SQLiteTestPlanRepo {
	return &SQLiteTestPlanRepo{db: conn}
}

func (r *SQLiteTestPlanRepo) Create(ctx context.Context, p *domain.TestPlan) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO test_plans (name, created_at) VALUES (?, ?) RETURNING id`,
		p.Name, p.CreatedAt.UTC().Format(time.RFC3339),
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting test plan: %w", err)
	}
	return nil
}

func (r *SQLiteTestPlanRepo) GetByID(ctx context.Context, id int64) (*domain.TestPlan, error) {
	p, err := scanTestPlan(r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM test_plans WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("test plan %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning test plan: %w", err)
	}
	return p, nil
}

func (r *SQLiteTestPlanRepo) List(ctx context.Context) ([]*domain.TestPlan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM test_plans ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing test plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.TestPlan
	for rows.Next() {
		p, err := scanTestPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning test plan row: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating test plans: %w", err)
	}
	return plans, nil
}

// Delete removes the plan; its memberships cascade.
func (r *SQLiteTestPlanRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM test_plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting test plan: %w", err)
	}
	return requireRow(res, "test plan", id)
}

// AddCase is idempotent.
func (r *SQLiteTestPlanRepo) AddCase(ctx context.Context, planID, caseID int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO test_plan_cases (test_plan_id, test_case_id) VALUES (?, ?)`,
		planID, caseID)
	if err != nil {
		return fmt.Errorf("adding case %d to plan %d: %w", caseID, planID, err)
	}
	return nil
}

func (r *SQLiteTestPlanRepo) RemoveCase(ctx context.Context, planID, caseID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM test_plan_cases WHERE test_plan_id = ? AND test_case_id = ?`,
		planID, caseID)
	if err != nil {
		return fmt.Errorf("removing case %d from plan %d: %w", caseID, planID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking plan membership delete: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("case %d in plan %d: %w", caseID, planID, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteTestPlanRepo) ListCaseIDs(ctx context.Context, planID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT test_case_id FROM test_plan_cases WHERE test_plan_id = ? ORDER BY test_case_id`, planID)
	if err != nil {
		return nil, fmt.Errorf("listing plan cases: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning plan case: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan cases: %w", err)
	}
	return ids, nil
}

func scanTestPlan(row rowScanner) (*domain.TestPlan, error) {
	var p domain.TestPlan
	var createdAtStr string
	if err := row.Scan(&p.ID, &p.Name, &createdAtStr); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTimestamp("created_at", createdAtStr); err != nil {
		return nil, err
	}
	return &p, nil
}
