package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/testutil"
)

func TestTestPlanRepo_CRUD(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteTestPlanRepo(database)
	ctx := context.Background()

	p := testutil.NewTestPlan("Release 1.0")
	require.NoError(t, repo.Create(ctx, p))
	assert.Positive(t, p.ID)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Release 1.0", got.Name)

	require.NoError(t, repo.Create(ctx, testutil.NewTestPlan("Nightly")))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), domain.ErrNotFound)
}

func TestTestPlanRepo_Membership(t *testing.T) {
	database := testutil.NewTestDB(t)
	plans := NewSQLiteTestPlanRepo(database)
	nodes := NewSQLiteNodeRepo(database)
	ctx := context.Background()

	root := seedNode(t, ctx, nodes, testutil.NewTestNode("Root"))
	c1 := seedNode(t, ctx, nodes, testutil.NewTestCase(root.ID, "one"))
	c2 := seedNode(t, ctx, nodes, testutil.NewTestCase(root.ID, "two"))

	p := testutil.NewTestPlan("Release")
	require.NoError(t, plans.Create(ctx, p))
	require.NoError(t, plans.AddCase(ctx, p.ID, c2.ID))
	require.NoError(t, plans.AddCase(ctx, p.ID, c1.ID))
	require.NoError(t, plans.AddCase(ctx, p.ID, c1.ID), "adding twice is a no-op")

	ids, err := plans.ListCaseIDs(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{c1.ID, c2.ID}, ids)

	require.NoError(t, plans.RemoveCase(ctx, p.ID, c1.ID))
	assert.ErrorIs(t, plans.RemoveCase(ctx, p.ID, c1.ID), domain.ErrNotFound)

	_, err = nodes.DeleteSubtree(ctx, c2.Path)
	require.NoError(t, err)
	ids, err = plans.ListCaseIDs(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, ids, "membership cascades with the case")
}

func TestTestPlanRepo_DeleteCascadesMembership(t *testing.T) {
	database := testutil.NewTestDB(t)
	plans := NewSQLiteTestPlanRepo(database)
	nodes := NewSQLiteNodeRepo(database)
	ctx := context.Background()

	root := seedNode(t, ctx, nodes, testutil.NewTestNode("Root"))
	c := seedNode(t, ctx, nodes, testutil.NewTestCase(root.ID, "one"))
	p := testutil.NewTestPlan("Release")
	require.NoError(t, plans.Create(ctx, p))
	require.NoError(t, plans.AddCase(ctx, p.ID, c.ID))

	require.NoError(t, plans.Delete(ctx, p.ID))

	var count int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM test_plan_cases`).Scan(&count))
	assert.Zero(t, count)
}
