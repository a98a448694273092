package domain

// SubtreeFilter holds the optional content filters of a subtree query.
// The zero value matches every node except explicitly inactive cases.
type SubtreeFilter struct {
	// Query is matched case-insensitively as a substring of case names.
	Query string
	// IncludeInactive keeps cases whose status is explicitly inactive.
	IncludeInactive bool
}

// TreeEntry is a node annotated with case status as returned by tree reads.
type TreeEntry struct {
	Node *Node
	// Active is nil for structural nodes and for cases never marked.
	Active *bool
	// Planned is nil when plan membership was not computed.
	Planned *bool
}

// IsActive treats anything but an explicit false as active.
func (e TreeEntry) IsActive() bool {
	return e.Active == nil || *e.Active
}

func (e TreeEntry) IsPlanned() bool {
	return e.Planned != nil && *e.Planned
}

// PreOrder rearranges entries so that every node is immediately followed by
// its whole subtree. Siblings keep their relative input order; entries whose
// parent is absent from the set act as roots, also in input order.
//
// Query results are ordered by depth then sibling position, which places
// ancestors first but interleaves disjoint subtrees. Renderers need
// pre-order.
func PreOrder(entries []TreeEntry) []TreeEntry {
	present := make(map[int64]bool, len(entries))
	for _, e := range entries {
		present[e.Node.ID] = true
	}

	children := make(map[int64][]int, len(entries))
	var roots []int
	for i, e := range entries {
		if e.Node.ParentID != nil && present[*e.Node.ParentID] {
			children[*e.Node.ParentID] = append(children[*e.Node.ParentID], i)
			continue
		}
		roots = append(roots, i)
	}

	out := make([]TreeEntry, 0, len(entries))
	var walk func(i int)
	walk = func(i int) {
		out = append(out, entries[i])
		for _, c := range children[entries[i].Node.ID] {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}
