package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
)

// nodeColumns is the canonical SELECT column list for nodes.
const nodeColumns = `id, parent_id, name, node_type, node_order, path, details, created_at, updated_at`

// nodeColumnsAs lists nodeColumns qualified by a table alias, for composed queries.
func nodeColumnsAs(alias string) []string {
	return []string{
		alias + ".id", alias + ".parent_id", alias + ".name", alias + ".node_type",
		alias + ".node_order", alias + ".path", alias + ".details",
		alias + ".created_at", alias + ".updated_at",
	}
}

// SQLiteNodeRepo implements NodeRepo using a SQLite database.
type SQLiteNodeRepo struct {
	db db.DBTX
}

// NewSQLiteNodeRepo creates a new SQLiteNodeRepo.
func NewSQLiteNodeRepo(conn db.DBTX) *SQLiteNodeRepo {
	return &SQLiteNodeRepo{db: conn}
}

func (r *SQLiteNodeRepo) Create(ctx context.Context, n *domain.Node) error {
	query := `INSERT INTO nodes (parent_id, name, node_type, node_order, path, details, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		nullableInt64ToValue(n.ParentID),
		n.Name,
		int(n.Type),
		n.Order,
		db.PlaceholderPath,
		n.Details,
		n.CreatedAt.UTC().Format(time.RFC3339),
		n.UpdatedAt.UTC().Format(time.RFC3339),
	).Scan(&n.ID)
	if err != nil {
		return fmt.Errorf("inserting node: %w", err)
	}
	n.Path = db.PlaceholderPath
	return nil
}

func (r *SQLiteNodeRepo) GetByID(ctx context.Context, id int64) (*domain.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE id = ?`
	n, err := scanNode(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning node: %w", err)
	}
	return n, nil
}

func (r *SQLiteNodeRepo) Update(ctx context.Context, n *domain.Node) error {
	query := `UPDATE nodes SET parent_id = ?, name = ?, node_type = ?, node_order = ?,
		path = ?, details = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableInt64ToValue(n.ParentID),
		n.Name,
		int(n.Type),
		n.Order,
		n.Path,
		n.Details,
		n.UpdatedAt.UTC().Format(time.RFC3339),
		n.ID,
	)
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}
	return requireRow(res, "node", n.ID)
}

func (r *SQLiteNodeRepo) UpdatePath(ctx context.Context, id int64, path string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE nodes SET path = ?, updated_at = ? WHERE id = ?`, path, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating node path: %w", err)
	}
	return requireRow(res, "node", id)
}

func (r *SQLiteNodeRepo) UpdateOrder(ctx context.Context, id int64, order int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE nodes SET node_order = ?, updated_at = ? WHERE id = ?`, order, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating node order: %w", err)
	}
	return requireRow(res, "node", id)
}

func (r *SQLiteNodeRepo) ListChildren(ctx context.Context, parentID *int64) ([]*domain.Node, error) {
	var rows *sql.Rows
	var err error
	if parentID == nil {
		rows, err = r.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes
			WHERE parent_id IS NULL ORDER BY node_order, id`)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes
			WHERE parent_id = ? ORDER BY node_order, id`, *parentID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing child nodes: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

func (r *SQLiteNodeRepo) ListSiblings(ctx context.Context, n *domain.Node) ([]*domain.Node, error) {
	var rows *sql.Rows
	var err error
	if n.ParentID == nil {
		rows, err = r.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes
			WHERE parent_id IS NULL AND id != ? ORDER BY node_order, id`, n.ID)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes
			WHERE parent_id = ? AND id != ? ORDER BY node_order, id`, *n.ParentID, n.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing sibling nodes: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

func (r *SQLiteNodeRepo) CountChildren(ctx context.Context, id int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE parent_id = ?`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting children of node %d: %w", id, err)
	}
	return count, nil
}

// RewriteDescendantPaths rebases every proper descendant of oldPath in one
// statement. Only rows that start with oldPath are touched and only their
// leading oldPath is replaced, so an equal segment sequence deeper in a path
// is left alone.
func (r *SQLiteNodeRepo) RewriteDescendantPaths(ctx context.Context, oldPath, newPath string) (int64, error) {
	if !domain.ValidPath(oldPath) || !domain.ValidPath(newPath) {
		return 0, fmt.Errorf("rewriting descendant paths %q -> %q: malformed path", oldPath, newPath)
	}
	if oldPath == newPath {
		return 0, nil
	}

	query, args, err := sq.Update("nodes").
		Set("path", sq.Expr("? || substr(path, ?)", newPath, len(oldPath)+1)).
		Set("updated_at", nowUTC()).
		Where(descendantOf("path", oldPath)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building path rewrite: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("rewriting descendant paths: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting rewritten paths: %w", err)
	}
	return n, nil
}

func (r *SQLiteNodeRepo) DeleteSubtree(ctx context.Context, path string) (int64, error) {
	if !domain.ValidPath(path) {
		return 0, fmt.Errorf("deleting subtree %q: malformed path", path)
	}
	query, args, err := sq.Delete("nodes").Where(selfOrDescendantOf("path", path)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building subtree delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting subtree: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted nodes: %w", err)
	}
	return n, nil
}

func requireRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking %s update: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", entity, id, domain.ErrNotFound)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanNode scans nodeColumns plus any extra destinations appended after them.
func scanNode(row rowScanner, extra ...any) (*domain.Node, error) {
	var n domain.Node
	var parentID sql.NullInt64
	var nodeType int
	var createdAtStr, updatedAtStr string

	dest := append([]any{
		&n.ID, &parentID, &n.Name, &nodeType, &n.Order, &n.Path, &n.Details,
		&createdAtStr, &updatedAtStr,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	n.Type = domain.NodeType(nodeType)
	if parentID.Valid {
		v := parentID.Int64
		n.ParentID = &v
	}

	var err error
	if n.CreatedAt, err = parseTimestamp("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTimestamp("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &n, nil
}

// scanNodes scans multiple nodes from *sql.Rows.
func scanNodes(rows *sql.Rows) ([]*domain.Node, error) {
	var nodes []*domain.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning node row: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}
	return nodes, nil
}
