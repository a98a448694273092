package service

import (
	"context"
	"fmt"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
)

// pathMaintainer keeps materialized paths consistent with parent links.
type pathMaintainer struct {
	nodes repository.NodeRepo
}

func newPathMaintainer(nodes repository.NodeRepo) *pathMaintainer {
	return &pathMaintainer{nodes: nodes}
}

// assign derives n's path from parent (nil for roots) and persists it.
// n must already have its storage id.
func (m *pathMaintainer) assign(ctx context.Context, n, parent *domain.Node) error {
	path, err := domain.OwnPath(n, parent)
	if err != nil {
		return err
	}
	if err := m.nodes.UpdatePath(ctx, n.ID, path); err != nil {
		return err
	}
	n.Path = path
	return nil
}

// propagate rebases every descendant of oldPath onto newPath. The node that
// owned oldPath must already be stored under newPath.
func (m *pathMaintainer) propagate(ctx context.Context, oldPath, newPath string) (int64, error) {
	if domain.IsDescendantPath(oldPath, newPath) {
		return 0, fmt.Errorf("propagating %q to %q: %w", oldPath, newPath, domain.ErrInvalidMove)
	}
	return m.nodes.RewriteDescendantPaths(ctx, oldPath, newPath)
}
