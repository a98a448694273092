package domain

import (
	"fmt"
	"math"
	"strings"
)

// NodeType classifies a tree node. Suite and case carry the reserved tags
// 2 and 3; the numeric values are persisted and must not change.
type NodeType int

const (
	NodeTypeFolder NodeType = 1
	NodeTypeSuite  NodeType = 2
	NodeTypeCase   NodeType = 3
)

// ValidNodeTypes maps accepted CLI spellings to node types.
var ValidNodeTypes = map[string]NodeType{
	"folder": NodeTypeFolder,
	"suite":  NodeTypeSuite,
	"case":   NodeTypeCase,
}

func (t NodeType) String() string {
	switch t {
	case NodeTypeFolder:
		return "folder"
	case NodeTypeSuite:
		return "suite"
	case NodeTypeCase:
		return "case"
	default:
		return fmt.Sprintf("node_type(%d)", int(t))
	}
}

// IsStructural reports whether t is a folder or suite. Structural nodes are
// never excluded by case-level filters.
func (t NodeType) IsStructural() bool {
	return t == NodeTypeFolder || t == NodeTypeSuite
}

// ParseNodeType accepts "folder", "suite" or "case" (any case).
func ParseNodeType(s string) (NodeType, error) {
	t, ok := ValidNodeTypes[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, &ValidationError{Field: "Type", Reason: fmt.Sprintf("unknown node type %q (folder|suite|case)", s)}
	}
	return t, nil
}

// RootSentinel selects the whole tree where an ancestor id is expected.
const RootSentinel int64 = -1

// OrderLast places a node after its last sibling. Any index past the end
// clamps to the same position.
const OrderLast = math.MaxInt
