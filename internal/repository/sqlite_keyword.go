package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
)

// SQLiteKeywordRepo manages the keywords side table. Keyword names are
// expected to be normalized by the caller.
type SQLiteKeywordRepo struct {
	db db.DBTX
}

func NewSQLiteKeywordRepo(conn db.DBTX) *SQLiteKeywordRepo {
	return &SQLiteKeywordRepo{db: conn}
}

func (r *SQLiteKeywordRepo) Tag(ctx context.Context, nodeID int64, keyword string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO keywords (name) VALUES (?)`, keyword); err != nil {
		return fmt.Errorf("inserting keyword: %w", err)
	}
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO node_keywords (node_id, keyword_id)
		SELECT ?, id FROM keywords WHERE name = ?`, nodeID, keyword)
	if err != nil {
		return fmt.Errorf("tagging node %d: %w", nodeID, err)
	}
	return nil
}

func (r *SQLiteKeywordRepo) Untag(ctx context.Context, nodeID int64, keyword string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM node_keywords
		WHERE node_id = ? AND keyword_id = (SELECT id FROM keywords WHERE name = ?)`,
		nodeID, keyword)
	if err != nil {
		return fmt.Errorf("untagging node %d: %w", nodeID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking untag: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("keyword %q on node %d: %w", keyword, nodeID, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteKeywordRepo) ListByNode(ctx context.Context, nodeID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT k.name FROM keywords k
		JOIN node_keywords nk ON nk.keyword_id = k.id
		WHERE nk.node_id = ? ORDER BY k.name`, nodeID)
	if err != nil {
		return nil, fmt.Errorf("listing keywords: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning keyword: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating keywords: %w", err)
	}
	return names, nil
}

func (r *SQLiteKeywordRepo) DeleteForSubtree(ctx context.Context, path string) (int64, error) {
	if !domain.ValidPath(path) {
		return 0, fmt.Errorf("deleting subtree keywords %q: malformed path", path)
	}
	subtree, subtreeArgs, err := sq.Select("n.id").
		From("nodes AS n").
		Where(selfOrDescendantOf("n.path", path)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building keyword cleanup: %w", err)
	}
	query, args, err := sq.Delete("node_keywords").
		Where(sq.Expr("node_id IN ("+subtree+")", subtreeArgs...)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("building keyword cleanup: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("deleting subtree keywords: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted keywords: %w", err)
	}
	return n, nil
}
