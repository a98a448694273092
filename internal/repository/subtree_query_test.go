package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/testutil"
)

// treeFixture is:
//
//	Login (folder)
//	├── Smoke (suite)
//	│   ├── valid password     (case, active)
//	│   └── wrong password     (case, inactive)
//	└── Lockout (case, no status row)
//	Billing (folder)
//	└── refund (case, active)
type treeFixture struct {
	login, smoke, valid, wrong, lockout, billing, refund *domain.Node
}

func seedTree(t *testing.T, ctx context.Context, database *sql.DB) treeFixture {
	t.Helper()
	nodes := NewSQLiteNodeRepo(database)
	status := NewSQLiteCaseStatusRepo(database)

	var f treeFixture
	f.login = seedNode(t, ctx, nodes, testutil.NewTestNode("Login"))
	f.smoke = seedNode(t, ctx, nodes, testutil.NewTestNode("Smoke",
		testutil.WithParent(f.login.ID), testutil.WithType(domain.NodeTypeSuite)))
	f.valid = seedNode(t, ctx, nodes, testutil.NewTestCase(f.smoke.ID, "valid password"))
	f.wrong = seedNode(t, ctx, nodes, testutil.NewTestCase(f.smoke.ID, "wrong password"))
	f.lockout = seedNode(t, ctx, nodes, testutil.NewTestCase(f.login.ID, "Lockout"))
	f.billing = seedNode(t, ctx, nodes, testutil.NewTestNode("Billing"))
	f.refund = seedNode(t, ctx, nodes, testutil.NewTestCase(f.billing.ID, "refund"))

	require.NoError(t, status.SetActive(ctx, f.valid.ID, true))
	require.NoError(t, status.SetActive(ctx, f.wrong.ID, false))
	require.NoError(t, status.SetActive(ctx, f.refund.ID, true))
	return f
}

func TestSubtree_ChainScenario(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	nodes := NewSQLiteNodeRepo(database)

	a := seedNode(t, ctx, nodes, testutil.NewTestNode("A"))
	b := seedNode(t, ctx, nodes, testutil.NewTestNode("B",
		testutil.WithParent(a.ID), testutil.WithType(domain.NodeTypeSuite)))
	c := seedNode(t, ctx, nodes, testutil.NewTestCase(b.ID, "C"))
	require.NoError(t, NewSQLiteCaseStatusRepo(database).SetActive(ctx, c.ID, true))

	entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, entryIDs(entries))
	assert.Equal(t, ".1.", entries[0].Node.Path)
	assert.Equal(t, ".1.2.", entries[1].Node.Path)
	assert.Equal(t, ".1.2.3.", entries[2].Node.Path)
	assert.Nil(t, entries[0].Active)
	require.NotNil(t, entries[2].Active)
	assert.True(t, *entries[2].Active)
	assert.Nil(t, entries[2].Planned)
}

func TestSubtree_WholeTreeOrdersAncestorsFirst(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	f := seedTree(t, ctx, database)

	entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{
		Filter: domain.SubtreeFilter{IncludeInactive: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{
		f.login.ID, f.billing.ID, // depth 0
		f.smoke.ID, f.refund.ID, f.lockout.ID, // depth 1, by sibling order then id
		f.valid.ID, f.wrong.ID, // depth 2
	}, entryIDs(entries))

	pos := make(map[int64]int)
	for i, e := range entries {
		pos[e.Node.ID] = i
	}
	for _, e := range entries {
		if e.Node.ParentID != nil {
			assert.Less(t, pos[*e.Node.ParentID], pos[e.Node.ID])
		}
	}
}

func TestSubtree_ExcludesOnlyExplicitlyInactiveCases(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	f := seedTree(t, ctx, database)

	entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{})
	require.NoError(t, err)

	ids := entryIDs(entries)
	assert.NotContains(t, ids, f.wrong.ID)
	assert.Contains(t, ids, f.lockout.ID, "a case without status is active")
	assert.Len(t, ids, 6)

	lockout := entryByID(t, entries, f.lockout.ID)
	assert.Nil(t, lockout.Active)
	assert.True(t, lockout.IsActive())
}

func TestSubtree_ScopeIsDelimiterBounded(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	nodes := NewSQLiteNodeRepo(database)

	// Ids 1..12 so that root 1 and root 12 share a textual prefix.
	var one, twelve *domain.Node
	for i := 1; i <= 12; i++ {
		n := seedNode(t, ctx, nodes, testutil.NewTestNode(testutil.UniqueName("n")))
		switch i {
		case 1:
			one = n
		case 12:
			twelve = n
		}
	}
	child := seedNode(t, ctx, nodes, testutil.NewTestNode("under twelve", testutil.WithParent(twelve.ID)))
	assert.Equal(t, ".12.13.", child.Path)

	entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{ScopePath: one.Path})
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{ScopePath: twelve.Path})
	require.NoError(t, err)
	assert.Equal(t, []int64{child.ID}, entryIDs(entries))
}

func TestSubtree_ScopeExcludesAncestorItself(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	f := seedTree(t, ctx, database)

	entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{ScopePath: f.smoke.Path})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.valid.ID}, entryIDs(entries))
}

func TestSubtree_TextFilterMatchesCasesOnly(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	f := seedTree(t, ctx, database)

	entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{
		Filter: domain.SubtreeFilter{Query: "PASSWORD", IncludeInactive: true},
	})
	require.NoError(t, err)

	ids := entryIDs(entries)
	assert.ElementsMatch(t, []int64{f.login.ID, f.billing.ID, f.smoke.ID, f.valid.ID, f.wrong.ID}, ids)
	assert.NotContains(t, ids, f.lockout.ID)
	assert.NotContains(t, ids, f.refund.ID)
}

func TestSubtree_TextFilterIsLiteral(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	nodes := NewSQLiteNodeRepo(database)

	root := seedNode(t, ctx, nodes, testutil.NewTestNode("Root"))
	pct := seedNode(t, ctx, nodes, testutil.NewTestCase(root.ID, "100% coverage"))
	seedNode(t, ctx, nodes, testutil.NewTestCase(root.ID, "full coverage"))

	entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{
		ScopePath: root.Path,
		Filter:    domain.SubtreeFilter{Query: "%"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{pct.ID}, entryIDs(entries))
}

func TestSubtree_TextFilterFoldsNonASCII(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	nodes := NewSQLiteNodeRepo(database)

	root := seedNode(t, ctx, nodes, testutil.NewTestNode("Root"))
	umlaut := seedNode(t, ctx, nodes, testutil.NewTestCase(root.ID, "Überprüfung Login"))
	seedNode(t, ctx, nodes, testutil.NewTestCase(root.ID, "Logout"))

	for _, query := range []string{"überprüfung", "ÜBERPRÜFUNG"} {
		entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{
			Filter: domain.SubtreeFilter{Query: query},
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{root.ID, umlaut.ID}, entryIDs(entries), query)
	}
}

func TestSubtree_StatusRowOnStructuralNodeIsIgnored(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	f := seedTree(t, ctx, database)

	_, err := database.ExecContext(ctx, "INSERT INTO test_cases (id, active) VALUES (?, 0), (?, 0)", f.login.ID, f.smoke.ID)
	require.NoError(t, err)

	entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{})
	require.NoError(t, err)

	ids := entryIDs(entries)
	assert.Contains(t, ids, f.login.ID)
	assert.Contains(t, ids, f.smoke.ID)
	assert.Contains(t, ids, f.valid.ID)
	assert.NotContains(t, ids, f.wrong.ID)
	assert.Nil(t, entryByID(t, entries, f.smoke.ID).Active)
}

func TestSubtree_PlanFilterKeepsChainsToMembers(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	f := seedTree(t, ctx, database)

	plans := NewSQLiteTestPlanRepo(database)
	plan := testutil.NewTestPlan("release")
	require.NoError(t, plans.Create(ctx, plan))
	require.NoError(t, plans.AddCase(ctx, plan.ID, f.valid.ID))

	other := testutil.NewTestPlan("nightly")
	require.NoError(t, plans.Create(ctx, other))
	require.NoError(t, plans.AddCase(ctx, other.ID, f.refund.ID))

	entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{PlanID: &plan.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.login.ID, f.smoke.ID, f.valid.ID}, entryIDs(entries))

	valid := entryByID(t, entries, f.valid.ID)
	require.NotNil(t, valid.Planned)
	assert.True(t, *valid.Planned)
	assert.Nil(t, entryByID(t, entries, f.login.ID).Planned, "structural nodes carry no plan flag")
}

func TestSubtree_FiltersCompose(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	f := seedTree(t, ctx, database)

	plans := NewSQLiteTestPlanRepo(database)
	plan := testutil.NewTestPlan("release")
	require.NoError(t, plans.Create(ctx, plan))
	require.NoError(t, plans.AddCase(ctx, plan.ID, f.valid.ID))
	require.NoError(t, plans.AddCase(ctx, plan.ID, f.wrong.ID))
	require.NoError(t, plans.AddCase(ctx, plan.ID, f.lockout.ID))

	entries, err := NewSQLiteTreeQueryRepo(database).Subtree(ctx, SubtreeQuery{
		ScopePath: f.login.Path,
		PlanID:    &plan.ID,
		Filter:    domain.SubtreeFilter{Query: "password"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{f.smoke.ID, f.valid.ID}, entryIDs(entries))
}

func TestSubtree_RejectsMalformedScope(t *testing.T) {
	database := testutil.NewTestDB(t)

	_, err := NewSQLiteTreeQueryRepo(database).Subtree(context.Background(), SubtreeQuery{ScopePath: "1."})
	assert.Error(t, err)
}

func TestDescendantCases(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	f := seedTree(t, ctx, database)

	plans := NewSQLiteTestPlanRepo(database)
	plan := testutil.NewTestPlan("any")
	require.NoError(t, plans.Create(ctx, plan))
	require.NoError(t, plans.AddCase(ctx, plan.ID, f.wrong.ID))

	repo := NewSQLiteTreeQueryRepo(database)

	entries, err := repo.DescendantCases(ctx, f.login.Path, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.lockout.ID, f.valid.ID, f.wrong.ID}, entryIDs(entries))

	wrong := entryByID(t, entries, f.wrong.ID)
	require.NotNil(t, wrong.Active)
	assert.False(t, *wrong.Active, "inactive cases are still collected")
	assert.True(t, wrong.IsPlanned())

	valid := entryByID(t, entries, f.valid.ID)
	require.NotNil(t, valid.Planned)
	assert.False(t, *valid.Planned)

	bare, err := repo.DescendantCases(ctx, f.login.Path, false)
	require.NoError(t, err)
	assert.Equal(t, entryIDs(entries), entryIDs(bare))
	for _, e := range bare {
		assert.Nil(t, e.Active)
		assert.Nil(t, e.Planned)
	}
}

func TestDescendantCases_IncludesCaseItself(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	f := seedTree(t, ctx, database)

	entries, err := NewSQLiteTreeQueryRepo(database).DescendantCases(ctx, f.refund.Path, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{f.refund.ID}, entryIDs(entries))
}
