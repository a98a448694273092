package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/casetree/internal/domain"
)

// seedNode persists n the way the node service does: insert, derive the real
// path from the parent, then append it to its sibling group unless an order
// was given.
func seedNode(t *testing.T, ctx context.Context, repo *SQLiteNodeRepo, n *domain.Node) *domain.Node {
	t.Helper()
	if n.Order == domain.OrderLast {
		siblings, err := repo.ListChildren(ctx, n.ParentID)
		require.NoError(t, err)
		n.Order = len(siblings)
	}
	require.NoError(t, repo.Create(ctx, n))

	var parent *domain.Node
	if n.ParentID != nil {
		var err error
		parent, err = repo.GetByID(ctx, *n.ParentID)
		require.NoError(t, err)
	}
	path, err := domain.OwnPath(n, parent)
	require.NoError(t, err)
	require.NoError(t, repo.UpdatePath(ctx, n.ID, path))
	n.Path = path
	return n
}

func entryIDs(entries []domain.TreeEntry) []int64 {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Node.ID)
	}
	return ids
}

func entryByID(t *testing.T, entries []domain.TreeEntry, id int64) domain.TreeEntry {
	t.Helper()
	for _, e := range entries {
		if e.Node.ID == id {
			return e
		}
	}
	t.Fatalf("entry %d not found", id)
	return domain.TreeEntry{}
}
