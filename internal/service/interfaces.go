package service

import (
	"context"

	"github.com/alexanderramin/casetree/internal/domain"
)

// NodeService owns every structural mutation of the tree. Each mutation runs
// in one transaction, so path cascades and sibling renumbering are atomic.
type NodeService interface {
	// Create inserts n under n.ParentID at position n.Order (domain.OrderLast
	// appends) and fills in its id, path and final order.
	Create(ctx context.Context, n *domain.Node) error
	GetByID(ctx context.Context, id int64) (*domain.Node, error)
	// ListChildren lists the children of parentID, or the roots when nil.
	ListChildren(ctx context.Context, parentID *int64) ([]*domain.Node, error)
	// Update edits name and details. Path, parent and order are untouched.
	Update(ctx context.Context, n *domain.Node) error
	// Move reparents id under newParentID (nil for root level) at index.
	Move(ctx context.Context, id int64, newParentID *int64, index int) (*domain.Node, error)
	// Reorder moves id to index within its current sibling group.
	Reorder(ctx context.Context, id int64, index int) (*domain.Node, error)
	// Delete removes a leaf node. A node with children is rejected with
	// domain.ErrHasChildren unless force is set, which removes the subtree.
	Delete(ctx context.Context, id int64, force bool) error
	SetCaseActive(ctx context.Context, id int64, active bool) error
	Tag(ctx context.Context, id int64, keyword string) error
	Untag(ctx context.Context, id int64, keyword string) error
	ListKeywords(ctx context.Context, id int64) ([]string, error)
}

type QueryService interface {
	// Subtree returns the proper descendants of ancestorID, or the whole
	// tree for domain.RootSentinel, filtered and ordered by depth then
	// sibling order. With a plan, cases carry plan-scoped Planned flags.
	Subtree(ctx context.Context, ancestorID int64, planID *int64, filter domain.SubtreeFilter) ([]domain.TreeEntry, error)
	// DescendantCases returns the cases at or below id. withPlanInfo adds
	// status and membership in any plan.
	DescendantCases(ctx context.Context, id int64, withPlanInfo bool) ([]domain.TreeEntry, error)
}

type TestPlanService interface {
	Create(ctx context.Context, name string) (*domain.TestPlan, error)
	GetByID(ctx context.Context, id int64) (*domain.TestPlan, error)
	List(ctx context.Context) ([]*domain.TestPlan, error)
	AddCases(ctx context.Context, planID int64, caseIDs ...int64) error
	RemoveCase(ctx context.Context, planID, caseID int64) error
	ListCaseIDs(ctx context.Context, planID int64) ([]int64, error)
	Delete(ctx context.Context, id int64) error
}
