package repository

import (
	"context"

	"github.com/alexanderramin/casetree/internal/domain"
)

type NodeRepo interface {
	// Create inserts n with the placeholder path and sets n.ID.
	Create(ctx context.Context, n *domain.Node) error
	GetByID(ctx context.Context, id int64) (*domain.Node, error)
	Update(ctx context.Context, n *domain.Node) error
	UpdatePath(ctx context.Context, id int64, path string) error
	UpdateOrder(ctx context.Context, id int64, order int) error
	// ListChildren lists the children of parentID, or the roots when nil,
	// by sibling order.
	ListChildren(ctx context.Context, parentID *int64) ([]*domain.Node, error)
	// ListSiblings lists the other members of n's sibling group by order.
	ListSiblings(ctx context.Context, n *domain.Node) ([]*domain.Node, error)
	CountChildren(ctx context.Context, id int64) (int, error)
	// RewriteDescendantPaths replaces the oldPath prefix of every proper
	// descendant of oldPath with newPath and reports the rows touched.
	RewriteDescendantPaths(ctx context.Context, oldPath, newPath string) (int64, error)
	// DeleteSubtree removes the node at path and all its descendants.
	DeleteSubtree(ctx context.Context, path string) (int64, error)
}

// SubtreeQuery selects the rows of a filtered subtree read.
type SubtreeQuery struct {
	// ScopePath restricts results to proper descendants; "" is the whole tree.
	ScopePath string
	PlanID    *int64
	Filter    domain.SubtreeFilter
}

type TreeQueryRepo interface {
	Subtree(ctx context.Context, q SubtreeQuery) ([]domain.TreeEntry, error)
	DescendantCases(ctx context.Context, path string, withPlanInfo bool) ([]domain.TreeEntry, error)
}

type CaseStatusRepo interface {
	SetActive(ctx context.Context, caseID int64, active bool) error
	// Get returns nil when the case was never marked.
	Get(ctx context.Context, caseID int64) (*bool, error)
}

type TestPlanRepo interface {
	Create(ctx context.Context, p *domain.TestPlan) error
	GetByID(ctx context.Context, id int64) (*domain.TestPlan, error)
	List(ctx context.Context) ([]*domain.TestPlan, error)
	Delete(ctx context.Context, id int64) error
	AddCase(ctx context.Context, planID, caseID int64) error
	RemoveCase(ctx context.Context, planID, caseID int64) error
	ListCaseIDs(ctx context.Context, planID int64) ([]int64, error)
}

type KeywordRepo interface {
	Tag(ctx context.Context, nodeID int64, keyword string) error
	Untag(ctx context.Context, nodeID int64, keyword string) error
	ListByNode(ctx context.Context, nodeID int64) ([]string, error)
	// DeleteForSubtree drops keyword associations of the node at path and
	// its descendants.
	DeleteForSubtree(ctx context.Context, path string) (int64, error)
}
