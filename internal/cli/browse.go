package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	var plan int64

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the tree interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errors.New("browse needs an interactive terminal")
			}
			var planID *int64
			if cmd.Flags().Changed("plan") {
				planID = &plan
			}
			m := newBrowseModel(cmd.Context(), app.Queries, planID)
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().Int64Var(&plan, "plan", 0, "Restrict to cases in this test plan")

	return cmd
}

type browseKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Filter   key.Binding
	Inactive key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

func (k browseKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Filter, k.Inactive, k.Refresh, k.Quit}
}

func (k browseKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var browseKeys = browseKeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Filter:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Inactive: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "toggle inactive")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// browseLoadedMsg carries a finished subtree query.
type browseLoadedMsg struct {
	entries []domain.TreeEntry
	err     error
}

// browseModel shows the tree with a cursor, a case-name filter and an
// inactive toggle. Every filter change re-runs the query.
type browseModel struct {
	ctx     context.Context
	queries service.QueryService
	planID  *int64

	entries         []domain.TreeEntry
	lines           []string
	cursor          int
	includeInactive bool
	loading         bool
	err             error

	filter    textinput.Model
	filtering bool
	help      help.Model
}

func newBrowseModel(ctx context.Context, queries service.QueryService, planID *int64) *browseModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "case name"
	ti.CharLimit = 200

	return &browseModel{
		ctx:     ctx,
		queries: queries,
		planID:  planID,
		loading: true,
		filter:  ti,
		help:    help.New(),
	}
}

func (m *browseModel) Init() tea.Cmd {
	return m.load()
}

func (m *browseModel) load() tea.Cmd {
	ctx, queries, planID := m.ctx, m.queries, m.planID
	f := domain.SubtreeFilter{Query: m.filter.Value(), IncludeInactive: m.includeInactive}
	return func() tea.Msg {
		entries, err := queries.Subtree(ctx, domain.RootSentinel, planID, f)
		return browseLoadedMsg{entries: domain.PreOrder(entries), err: err}
	}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case browseLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.entries = msg.entries
		m.lines = nil
		if len(msg.entries) > 0 {
			m.lines = strings.Split(strings.TrimRight(formatter.RenderTree(formatter.TreeItems(msg.entries)), "\n"), "\n")
		}
		if m.cursor >= len(m.entries) {
			m.cursor = max(len(m.entries)-1, 0)
		}
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		switch {
		case key.Matches(msg, browseKeys.Quit):
			return m, tea.Quit
		case key.Matches(msg, browseKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, browseKeys.Down):
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case key.Matches(msg, browseKeys.Filter):
			m.filtering = true
			return m, m.filter.Focus()
		case key.Matches(msg, browseKeys.Inactive):
			m.includeInactive = !m.includeInactive
			m.loading = true
			return m, m.load()
		case key.Matches(msg, browseKeys.Refresh):
			m.loading = true
			return m, m.load()
		}
	}
	return m, nil
}

func (m *browseModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		m.cursor = 0
		m.loading = true
		return m, m.load()
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

// Selected returns the entry under the cursor, or false when the tree is empty.
func (m *browseModel) Selected() (domain.TreeEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return domain.TreeEntry{}, false
	}
	return m.entries[m.cursor], true
}

func (m *browseModel) View() string {
	var b strings.Builder

	title := "casetree"
	if m.includeInactive {
		title += " (all cases)"
	}
	b.WriteString(formatter.Header(title) + "\n")

	switch {
	case m.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n")
	case m.loading:
		b.WriteString(formatter.Dim("Loading...") + "\n")
	case len(m.lines) == 0:
		b.WriteString(formatter.Dim("No nodes match.") + "\n")
	default:
		for i, line := range m.lines {
			if i == m.cursor {
				b.WriteString(formatter.StyleCursor.Render("> ") + line + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}

	b.WriteString("\n")
	if m.filtering || m.filter.Value() != "" {
		b.WriteString(m.filter.View() + "\n")
	}
	if e, ok := m.Selected(); ok {
		b.WriteString(formatter.Dim(fmt.Sprintf("%s #%d  %s", e.Node.Type, e.Node.ID, e.Node.Path)) + "\n")
	}
	b.WriteString(m.help.View(browseKeys))
	return b.String()
}
