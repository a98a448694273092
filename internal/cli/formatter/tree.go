package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title string
	ID    int64 // 0 means don't display
	Type  domain.NodeType
	// Guides holds, per ancestor level below the top, whether that ancestor
	// was the last of its siblings (no vertical rule is drawn under it).
	Guides []bool
	Level  int
	IsLast bool
	Status string
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// TreeItems converts pre-ordered entries into TreeItems. Levels are relative
// to the shallowest entry so a scoped subtree starts at level 0.
func TreeItems(entries []domain.TreeEntry) []TreeItem {
	if len(entries) == 0 {
		return nil
	}
	base := entries[0].Node.Depth()
	for _, e := range entries {
		if d := e.Node.Depth(); d < base {
			base = d
		}
	}

	items := make([]TreeItem, len(entries))
	for i, e := range entries {
		level := e.Node.Depth() - base
		items[i] = TreeItem{
			Title:  e.Node.Name,
			ID:     e.Node.ID,
			Type:   e.Node.Type,
			Level:  level,
			IsLast: isLastAtLevel(entries, i, base),
			Status: StatusIndicator(e),
		}
		if e.Planned != nil && *e.Planned {
			items[i].Detail = "planned"
		}
	}

	// An ancestor's guide is blank when it was the last child at its level.
	lastAt := map[int]bool{}
	for i := range items {
		it := &items[i]
		for l := 1; l < it.Level; l++ {
			it.Guides = append(it.Guides, lastAt[l])
		}
		lastAt[it.Level] = it.IsLast
	}
	return items
}

// isLastAtLevel reports whether no later sibling follows entry i before
// the walk climbs above its level.
func isLastAtLevel(entries []domain.TreeEntry, i, base int) bool {
	level := entries[i].Node.Depth() - base
	for j := i + 1; j < len(entries); j++ {
		l := entries[j].Node.Depth() - base
		if l < level {
			return true
		}
		if l == level {
			return false
		}
	}
	return true
}

// RenderTree renders a list of TreeItems as an indented tree using
// box-drawing characters for connectors. Status and detail badges are
// right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			for i := 1; i < item.Level; i++ {
				if i-1 < len(item.Guides) && item.Guides[i-1] {
					prefix += treeBlank
				} else {
					prefix += treePipe
				}
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := TypeStyle(item.Type).Render(item.Title)
		if item.ID > 0 {
			title = StyleDim.Render(fmt.Sprintf("#%d ", item.ID)) + title
		}
		content := prefix + TypeIcon(item.Type) + " " + title
		lines[idx].content = content

		var badges []string
		if item.Status != "" {
			badges = append(badges, item.Status)
		}
		if item.Detail != "" {
			badges = append(badges, StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail)))
		}
		lines[idx].badge = strings.Join(badges, " ")

		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := maxContentWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}

	return b.String()
}
