package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PathDelimiter brackets every id segment of a materialized path.
const PathDelimiter = "."

// RootPath is the path of a node without a parent: ".<id>.".
func RootPath(id int64) string {
	return PathDelimiter + strconv.FormatInt(id, 10) + PathDelimiter
}

// ChildPath appends id to a parent's path: "<parent path><id>.".
func ChildPath(parentPath string, id int64) string {
	return parentPath + strconv.FormatInt(id, 10) + PathDelimiter
}

// OwnPath computes the canonical path of n from its parent. It must only be
// called once n has a storage-assigned id. parent is nil for roots and must
// match n.ParentID otherwise.
func OwnPath(n, parent *Node) (string, error) {
	if n.ID <= 0 {
		return "", fmt.Errorf("computing path: node id not assigned")
	}
	if parent == nil {
		if n.ParentID != nil {
			return "", fmt.Errorf("computing path for node %d: parent %d not loaded", n.ID, *n.ParentID)
		}
		return RootPath(n.ID), nil
	}
	if n.ParentID == nil || *n.ParentID != parent.ID {
		return "", fmt.Errorf("computing path for node %d: parent mismatch", n.ID)
	}
	if !ValidPath(parent.Path) {
		return "", fmt.Errorf("computing path for node %d: parent %d has invalid path %q", n.ID, parent.ID, parent.Path)
	}
	return ChildPath(parent.Path, n.ID), nil
}

// ValidPath reports whether p is a well-formed materialized path: one or
// more positive integer segments, each followed by the delimiter, with a
// leading delimiter.
func ValidPath(p string) bool {
	ids, err := PathIDs(p)
	return err == nil && len(ids) > 0
}

// PathIDs returns the ancestor ids encoded in p, root first, self last.
func PathIDs(p string) ([]int64, error) {
	if len(p) < 3 || !strings.HasPrefix(p, PathDelimiter) || !strings.HasSuffix(p, PathDelimiter) {
		return nil, fmt.Errorf("malformed path %q", p)
	}
	segs := strings.Split(p[1:len(p)-1], PathDelimiter)
	ids := make([]int64, 0, len(segs))
	for _, s := range segs {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 || s != strconv.FormatInt(id, 10) {
			return nil, fmt.Errorf("malformed path %q: bad segment %q", p, s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// PathDepth is the number of ancestors encoded in p; roots are depth 0.
func PathDepth(p string) int {
	d := strings.Count(p, PathDelimiter) - 2
	if d < 0 {
		return 0
	}
	return d
}

// IsDescendantPath reports whether candidate lies strictly below ancestor.
// Matching is by delimiter-bounded prefix: ".1." is an ancestor of ".1.2."
// but not of ".12." or ".3.1.".
func IsDescendantPath(ancestor, candidate string) bool {
	if !strings.HasSuffix(ancestor, PathDelimiter) || !strings.HasPrefix(ancestor, PathDelimiter) {
		return false
	}
	return len(candidate) > len(ancestor) && strings.HasPrefix(candidate, ancestor)
}

// RebasePath replaces the oldPrefix that p starts with by newPrefix. The
// suffix after the prefix is kept byte-for-byte. ok is false when p is not
// a descendant of oldPrefix, in which case p is returned unchanged.
func RebasePath(p, oldPrefix, newPrefix string) (rebased string, ok bool) {
	if !IsDescendantPath(oldPrefix, p) {
		return p, false
	}
	return newPrefix + p[len(oldPrefix):], true
}
