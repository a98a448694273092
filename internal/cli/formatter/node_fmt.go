package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/casetree/internal/domain"
)

// FormatTree renders query results as a tree. Entries may arrive in any
// ancestor-first order; they are rearranged into pre-order here.
func FormatTree(entries []domain.TreeEntry) string {
	if len(entries) == 0 {
		return Dim("No nodes match.") + "\n"
	}
	return RenderTree(TreeItems(domain.PreOrder(entries)))
}

// FormatNodeDetail renders one node with its keywords and case status.
func FormatNodeDetail(n *domain.Node, keywords []string, active *bool) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s\n\n", Bold(n.Name), Dim(n.Type.String())))
	b.WriteString(fmt.Sprintf("  %s  #%d\n", Dim("ID     "), n.ID))
	b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("PATH   "), n.Path))
	b.WriteString(fmt.Sprintf("  %s  %d\n", Dim("ORDER  "), n.Order))
	if n.ParentID != nil {
		b.WriteString(fmt.Sprintf("  %s  #%d\n", Dim("PARENT "), *n.ParentID))
	}
	if n.IsCase() {
		b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("ACTIVE "), StatusIndicator(domain.TreeEntry{Node: n, Active: active})))
	}
	if len(keywords) > 0 {
		b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("TAGS   "), strings.Join(keywords, ", ")))
	}
	b.WriteString(fmt.Sprintf("  %s  %s\n", Dim("UPDATED"), HumanTimestamp(n.UpdatedAt)))
	if n.Details != "" {
		b.WriteString("\n" + n.Details + "\n")
	}

	return RenderBox("Node", b.String())
}

// FormatNodeList renders nodes as an id/name/type/order table.
func FormatNodeList(nodes []*domain.Node) string {
	if len(nodes) == 0 {
		return Dim("No nodes.") + "\n"
	}
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			n.Name,
			n.Type.String(),
			strconv.Itoa(n.Order),
		})
	}
	return RenderTable([]string{"ID", "NAME", "TYPE", "ORDER"}, rows, 0, 3)
}

// FormatCases renders collected cases with their status columns.
func FormatCases(entries []domain.TreeEntry) string {
	if len(entries) == 0 {
		return Dim("No cases.") + "\n"
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(e.Node.ID, 10),
			e.Node.Name,
			e.Node.Path,
			YesNo(e.Active),
			YesNo(e.Planned),
		})
	}
	return RenderTable([]string{"ID", "NAME", "PATH", "ACTIVE", "PLANNED"}, rows, 0)
}

// FormatPlans renders test plans as a table.
func FormatPlans(plans []*domain.TestPlan) string {
	if len(plans) == 0 {
		return Dim("No test plans.") + "\n"
	}
	rows := make([][]string, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			HumanTimestamp(p.CreatedAt),
		})
	}
	return RenderTable([]string{"ID", "NAME", "CREATED"}, rows, 0)
}
