package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
	StyleCursor = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
)

// SetColorMode applies the configured colour mode: "always", "never", or
// "auto" (colour only when isTTY).
func SetColorMode(mode string, isTTY bool) {
	switch {
	case mode == "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case mode == "never", !isTTY:
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// TypeStyle returns the style used for a node type's name.
func TypeStyle(t domain.NodeType) lipgloss.Style {
	switch t {
	case domain.NodeTypeFolder:
		return StyleBold
	case domain.NodeTypeSuite:
		return StylePurple
	default:
		return StyleFg
	}
}

// TypeIcon returns a one-glyph marker for the node type.
func TypeIcon(t domain.NodeType) string {
	switch t {
	case domain.NodeTypeFolder:
		return "▸"
	case domain.NodeTypeSuite:
		return "◆"
	default:
		return "•"
	}
}

// StatusIndicator renders a case's active flag. Structural nodes and cases
// never marked are shown as plain active.
func StatusIndicator(e domain.TreeEntry) string {
	if !e.Node.IsCase() {
		return ""
	}
	if e.IsActive() {
		return StyleGreen.Render("● active")
	}
	return StyleRed.Render("○ inactive")
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
