package domain

// ClampOrder bounds a requested sibling position to [0, count]. Negative
// indices map to 0; OrderLast maps to count.
func ClampOrder(index, count int) int {
	switch {
	case index < 0:
		return 0
	case index > count:
		return count
	}
	return index
}

// PlaceAmongSiblings inserts moved into siblings (which must be ordered by
// current position and must not contain moved) at ClampOrder(index) and
// renumbers the resulting group to 0..N-1.
//
// moved.Order is always set. The returned slice holds the other siblings
// whose Order changed and therefore need persisting.
func PlaceAmongSiblings(siblings []*Node, moved *Node, index int) []*Node {
	pos := ClampOrder(index, len(siblings))

	group := make([]*Node, 0, len(siblings)+1)
	group = append(group, siblings[:pos]...)
	group = append(group, moved)
	group = append(group, siblings[pos:]...)

	var changed []*Node
	for i, n := range group {
		if n == moved {
			n.Order = i
			continue
		}
		if n.Order != i {
			n.Order = i
			changed = append(changed, n)
		}
	}
	return changed
}

// RenumberSiblings closes gaps in an ordered sibling group, e.g. after a
// member left it, and returns the nodes whose Order changed.
func RenumberSiblings(siblings []*Node) []*Node {
	var changed []*Node
	for i, n := range siblings {
		if n.Order != i {
			n.Order = i
			changed = append(changed, n)
		}
	}
	return changed
}

// IsContiguousOrder reports whether the orders of group form exactly
// {0, ..., len(group)-1}.
func IsContiguousOrder(group []*Node) bool {
	seen := make([]bool, len(group))
	for _, n := range group {
		if n.Order < 0 || n.Order >= len(group) || seen[n.Order] {
			return false
		}
		seen[n.Order] = true
	}
	return true
}
