package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
)

// depthExpr counts path delimiters, which orders ancestors before descendants.
const depthExpr = "(length(%[1]s.path) - length(replace(%[1]s.path, '.', '')))"

var caseType = int(domain.NodeTypeCase)

// SQLiteTreeQueryRepo implements TreeQueryRepo with squirrel-composed SQL.
type SQLiteTreeQueryRepo struct {
	db db.DBTX
}

func NewSQLiteTreeQueryRepo(conn db.DBTX) *SQLiteTreeQueryRepo {
	return &SQLiteTreeQueryRepo{db: conn}
}

// subtreeStage narrows the structural candidate scan. Stages are applied in
// a fixed order and each one is a no-op when its input is unset.
type subtreeStage func(b sq.SelectBuilder, q SubtreeQuery) sq.SelectBuilder

var subtreeStages = []subtreeStage{
	scopeStage,
	planStage,
	textStage,
}

func scopeStage(b sq.SelectBuilder, q SubtreeQuery) sq.SelectBuilder {
	if q.ScopePath == "" {
		return b
	}
	return b.Where(descendantOf("n.path", q.ScopePath))
}

// planStage keeps nodes that are, or lie above, a case belonging to the plan.
// A member case matches itself; a structural node matches through any member
// below it, so the chain down to every member stays visible.
func planStage(b sq.SelectBuilder, q SubtreeQuery) sq.SelectBuilder {
	if q.PlanID == nil {
		return b
	}
	return b.
		Join("nodes AS d ON substr(d.path, 1, length(n.path)) = n.path AND d.node_type = ?", caseType).
		Join("test_plan_cases AS tpc ON tpc.test_case_id = d.id AND tpc.test_plan_id = ?", *q.PlanID)
}

// textStage matches case names only; structural nodes always pass.
func textStage(b sq.SelectBuilder, q SubtreeQuery) sq.SelectBuilder {
	if q.Filter.Query == "" {
		return b
	}
	return b.Where(sq.Or{
		sq.NotEq{"n.node_type": caseType},
		sq.Expr(fmt.Sprintf("instr(%[1]s(n.name), %[1]s(?)) > 0", db.FoldFunc), q.Filter.Query),
	})
}

// candidates builds the distinct structural scan.
func candidates(q SubtreeQuery) sq.SelectBuilder {
	var cols []string
	for _, c := range nodeColumnsAs("n") {
		cols = append(cols, c+" AS "+c[len("n."):])
	}
	cols = append(cols, fmt.Sprintf(depthExpr, "n")+" AS depth")
	b := sq.Select(cols...).Distinct().From("nodes AS n")
	for _, stage := range subtreeStages {
		b = stage(b, q)
	}
	return b
}

// buildSubtree attaches case status and plan membership to the candidates
// and applies the status filter. Status rows only join to cases, so
// structural nodes always pass the filter.
func buildSubtree(q SubtreeQuery) sq.SelectBuilder {
	b := sq.Select(nodeColumnsAs("c")...).
		Column("tc.active")
	if q.PlanID != nil {
		b = b.Column(sq.Expr(`CASE WHEN c.node_type = ? THEN EXISTS(
			SELECT 1 FROM test_plan_cases AS p
			WHERE p.test_plan_id = ? AND p.test_case_id = c.id) END AS planned`, caseType, *q.PlanID))
	} else {
		b = b.Column("NULL AS planned")
	}

	b = b.FromSelect(candidates(q), "c").
		LeftJoin("test_cases AS tc ON tc.id = c.id AND c.node_type = ?", caseType)

	if !q.Filter.IncludeInactive {
		b = b.Where(sq.Or{
			sq.Eq{"tc.active": nil},
			sq.NotEq{"tc.active": 0},
		})
	}
	return b.OrderBy("c.depth", "c.node_order", "c.id")
}

// Subtree runs the filtered subtree read. Results are ordered by depth, then
// sibling order, then id.
func (r *SQLiteTreeQueryRepo) Subtree(ctx context.Context, q SubtreeQuery) ([]domain.TreeEntry, error) {
	if q.ScopePath != "" && !domain.ValidPath(q.ScopePath) {
		return nil, fmt.Errorf("subtree query: malformed scope path %q", q.ScopePath)
	}
	query, args, err := buildSubtree(q).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building subtree query: %w", err)
	}
	return r.queryEntries(ctx, query, args)
}

// DescendantCases returns the case nodes at or below path. With plan info
// each entry carries its status and whether any plan contains it.
func (r *SQLiteTreeQueryRepo) DescendantCases(ctx context.Context, path string, withPlanInfo bool) ([]domain.TreeEntry, error) {
	if !domain.ValidPath(path) {
		return nil, fmt.Errorf("descendant cases: malformed path %q", path)
	}

	b := sq.Select(nodeColumnsAs("n")...)
	if withPlanInfo {
		b = b.Column("tc.active").
			Column("EXISTS(SELECT 1 FROM test_plan_cases AS p WHERE p.test_case_id = n.id) AS planned").
			LeftJoin("test_cases AS tc ON tc.id = n.id")
	} else {
		b = b.Column("NULL AS active").Column("NULL AS planned")
	}
	b = b.From("nodes AS n").
		Where(selfOrDescendantOf("n.path", path)).
		Where(sq.Eq{"n.node_type": caseType}).
		OrderBy(fmt.Sprintf(depthExpr, "n"), "n.node_order", "n.id")

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building descendant case query: %w", err)
	}
	return r.queryEntries(ctx, query, args)
}

func (r *SQLiteTreeQueryRepo) queryEntries(ctx context.Context, query string, args []any) ([]domain.TreeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tree: %w", err)
	}
	defer rows.Close()

	var entries []domain.TreeEntry
	for rows.Next() {
		var active, planned sql.NullInt64
		n, err := scanNode(rows, &active, &planned)
		if err != nil {
			return nil, fmt.Errorf("scanning tree row: %w", err)
		}
		entries = append(entries, domain.TreeEntry{
			Node:    n,
			Active:  nullableBool(active),
			Planned: nullableBool(planned),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tree rows: %w", err)
	}
	return entries, nil
}
