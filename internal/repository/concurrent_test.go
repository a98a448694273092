package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConcurrentTestDB creates a file-backed SQLite database in a temp directory.
// Unlike :memory:, a file-backed DB shares state across all connections in the
// pool, which is required to test real concurrent access with WAL mode.
func newConcurrentTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "concurrent_test.db")
	database, err := db.OpenDB(dbPath)
	require.NoError(t, err, "failed to create concurrent test database")
	t.Cleanup(func() { database.Close() })
	return database
}

// appendChild inserts a case as the last child of parent inside one
// transaction, deriving its path and order.
func appendChild(ctx context.Context, uow db.UnitOfWork, parent *domain.Node, name string) error {
	return uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		nodes := NewSQLiteNodeRepo(tx)
		siblings, err := nodes.ListChildren(ctx, &parent.ID)
		if err != nil {
			return err
		}
		n := testutil.NewTestCase(parent.ID, name, testutil.WithOrder(len(siblings)))
		if err := nodes.Create(ctx, n); err != nil {
			return err
		}
		path, err := domain.OwnPath(n, parent)
		if err != nil {
			return err
		}
		return nodes.UpdatePath(ctx, n.ID, path)
	})
}

// TestConcurrentAccess_ReadDuringWrite verifies that concurrent Subtree reads
// neither fail nor observe half-written nodes while cases are being added.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()

	nodeRepo := NewSQLiteNodeRepo(database)
	treeRepo := NewSQLiteTreeQueryRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	root := seedNode(t, ctx, nodeRepo, testutil.NewTestNode("Root"))

	var wg sync.WaitGroup

	// Writer goroutine: add 20 cases sequentially.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			if err := appendChild(ctx, uow, root, fmt.Sprintf("Case-%d", i)); err != nil {
				t.Errorf("writer: create case %d: %v", i, err)
				return
			}
		}
	}()

	// Reader goroutines: repeatedly read the tree while writes happen.
	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				entries, err := treeRepo.Subtree(ctx, SubtreeQuery{})
				if err != nil {
					t.Errorf("reader %d: subtree: %v", reader, err)
					return
				}
				// Path and insert commit together, so no placeholder is visible.
				for _, e := range entries {
					if !domain.ValidPath(e.Node.Path) {
						t.Errorf("reader %d: node %d has path %q", reader, e.Node.ID, e.Node.Path)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	entries, err := treeRepo.Subtree(ctx, SubtreeQuery{ScopePath: root.Path})
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}

// TestConcurrentAccess_SequentialWritesConcurrentReads verifies that many
// readers see the same complete tree once writes have finished.
func TestConcurrentAccess_SequentialWritesConcurrentReads(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()

	nodeRepo := NewSQLiteNodeRepo(database)
	treeRepo := NewSQLiteTreeQueryRepo(database)
	statusRepo := NewSQLiteCaseStatusRepo(database)

	const folderCount = 10

	for i := 0; i < folderCount; i++ {
		folder := seedNode(t, ctx, nodeRepo, testutil.NewTestNode(fmt.Sprintf("Folder-%d", i)))
		c := seedNode(t, ctx, nodeRepo, testutil.NewTestCase(folder.ID, fmt.Sprintf("Case-%d", i)))
		require.NoError(t, statusRepo.SetActive(ctx, c.ID, i%2 == 0))
	}

	var wg sync.WaitGroup
	const readers = 20

	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()

			all, err := treeRepo.Subtree(ctx, SubtreeQuery{Filter: domain.SubtreeFilter{IncludeInactive: true}})
			if err != nil {
				t.Errorf("reader %d: subtree: %v", reader, err)
				return
			}
			if len(all) != 2*folderCount {
				t.Errorf("reader %d: expected %d nodes, got %d", reader, 2*folderCount, len(all))
			}

			active, err := treeRepo.Subtree(ctx, SubtreeQuery{})
			if err != nil {
				t.Errorf("reader %d: active subtree: %v", reader, err)
				return
			}
			if len(active) != folderCount+folderCount/2 {
				t.Errorf("reader %d: expected %d active nodes, got %d", reader, folderCount+folderCount/2, len(active))
			}
		}(r)
	}

	wg.Wait()
}

// TestConcurrentAccess_AppendKeepsOrderContiguous runs competing appends to
// one sibling group. Each append reads the group and writes in the same
// transaction, so conflicting writers retry rather than reuse a position.
func TestConcurrentAccess_AppendKeepsOrderContiguous(t *testing.T) {
	database := newConcurrentTestDB(t)
	ctx := context.Background()

	nodeRepo := NewSQLiteNodeRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	root := seedNode(t, ctx, nodeRepo, testutil.NewTestNode("Root"))

	retryTx := func(fn func() error) error {
		const maxRetries = 10
		for attempt := 0; attempt < maxRetries; attempt++ {
			err := fn()
			if err == nil {
				return nil
			}
			if attempt == maxRetries-1 {
				return err
			}
			time.Sleep(time.Millisecond * time.Duration(1<<attempt))
		}
		return nil
	}

	const workers = 40
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := retryTx(func() error {
				return appendChild(ctx, uow, root, fmt.Sprintf("Case-%d", i))
			})
			if err != nil {
				errCh <- err
			}
		}(i)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	children, err := nodeRepo.ListChildren(ctx, &root.ID)
	require.NoError(t, err)
	assert.Len(t, children, workers)
	assert.True(t, domain.IsContiguousOrder(children), "sibling orders must be exactly 0..N-1")
}
