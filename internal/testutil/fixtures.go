package testutil

import (
	"time"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/google/uuid"
)

// UniqueName suffixes prefix with a short random token so fixtures created
// in loops or parallel tests never collide.
func UniqueName(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}

// Node options
type NodeOption func(*domain.Node)

func WithParent(id int64) NodeOption {
	return func(n *domain.Node) {
		n.ParentID = &id
	}
}

func WithType(t domain.NodeType) NodeOption {
	return func(n *domain.Node) {
		n.Type = t
	}
}

func WithOrder(i int) NodeOption {
	return func(n *domain.Node) {
		n.Order = i
	}
}

func WithDetails(d string) NodeOption {
	return func(n *domain.Node) {
		n.Details = d
	}
}

// NewTestNode builds an unsaved root folder appended after its siblings.
func NewTestNode(name string, opts ...NodeOption) *domain.Node {
	now := time.Now().UTC()
	n := &domain.Node{
		Name:      name,
		Type:      domain.NodeTypeFolder,
		Order:     domain.OrderLast,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func NewTestCase(parentID int64, name string, opts ...NodeOption) *domain.Node {
	return NewTestNode(name, append([]NodeOption{WithParent(parentID), WithType(domain.NodeTypeCase)}, opts...)...)
}

func NewTestPlan(name string) *domain.TestPlan {
	return &domain.TestPlan{
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
