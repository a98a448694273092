package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/casetree/internal/db"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/repository"
	"github.com/alexanderramin/casetree/internal/testutil"
)

type testServices struct {
	db      *sql.DB
	nodes   NodeService
	queries QueryService
	plans   TestPlanService
	repo    *repository.SQLiteNodeRepo
}

func setupServices(t *testing.T, observers ...UseCaseObserver) testServices {
	t.Helper()
	database := testutil.NewTestDB(t)
	return setupServicesWithUoW(t, database, db.NewSQLiteUnitOfWork(database), observers...)
}

func setupServicesWithUoW(t *testing.T, database *sql.DB, uow db.UnitOfWork, observers ...UseCaseObserver) testServices {
	t.Helper()
	nodeRepo := repository.NewSQLiteNodeRepo(database)
	planRepo := repository.NewSQLiteTestPlanRepo(database)
	return testServices{
		db:      database,
		nodes:   NewNodeService(nodeRepo, repository.NewSQLiteKeywordRepo(database), uow, observers...),
		queries: NewQueryService(nodeRepo, planRepo, repository.NewSQLiteTreeQueryRepo(database), observers...),
		plans:   NewTestPlanService(planRepo, uow, observers...),
		repo:    nodeRepo,
	}
}

// create is svc.Create that fails the test on error.
func create(t *testing.T, svc NodeService, n *domain.Node) *domain.Node {
	t.Helper()
	require.NoError(t, svc.Create(context.Background(), n))
	return n
}

func childOrders(t *testing.T, svc NodeService, parentID *int64) map[string]int {
	t.Helper()
	children, err := svc.ListChildren(context.Background(), parentID)
	require.NoError(t, err)
	out := make(map[string]int, len(children))
	for _, c := range children {
		out[c.Name] = c.Order
	}
	return out
}

func treeIDs(entries []domain.TreeEntry) []int64 {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Node.ID)
	}
	return ids
}
