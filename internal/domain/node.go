package domain

import "time"

// Node is a vertex of the test tree. Path is the materialized ancestor
// chain ".<root id>.<...>.<own id>." and is derived, never set by callers.
type Node struct {
	ID        int64
	ParentID  *int64
	Name      string   `validate:"required,notblank"`
	Type      NodeType `validate:"oneof=1 2 3"`
	Order     int      // zero-based, contiguous within the sibling group
	Path      string
	Details   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks the fields required before a node is persisted.
func (n *Node) Validate() error {
	return validateStruct(n)
}

func (n *Node) IsCase() bool {
	return n.Type == NodeTypeCase
}

func (n *Node) IsSuite() bool {
	return n.Type == NodeTypeSuite
}

func (n *Node) IsRoot() bool {
	return n.ParentID == nil
}

// Depth is the number of ancestors above n, derived from its path.
func (n *Node) Depth() int {
	return PathDepth(n.Path)
}

// SameParent reports whether a and b refer to the same parent, treating
// two nil pointers (root level) as equal.
func SameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
