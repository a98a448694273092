// Package teatest drives bubbletea models synchronously in tests.
//
// Update is called directly and every returned Cmd is run to completion
// and fed back in, so a test observes the model after all follow-up
// messages (query results, reloads) have been processed.
package teatest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDepth bounds Cmd chains so a model that keeps scheduling work
// cannot hang a test.
const maxDepth = 64

// cmdTimeout separates immediate Cmds (queries, message factories) from
// timer Cmds such as cursor blinks, which are dropped.
const cmdTimeout = 250 * time.Millisecond

// namedKeys maps the key names accepted by Press to key types.
var namedKeys = map[string]tea.KeyType{
	"up":     tea.KeyUp,
	"down":   tea.KeyDown,
	"enter":  tea.KeyEnter,
	"esc":    tea.KeyEsc,
	"ctrl+c": tea.KeyCtrlC,
	"bksp":   tea.KeyBackspace,
}

// Driver owns a model under test.
type Driver struct {
	t     *testing.T
	model tea.Model

	// Quit is set once a Cmd produced tea.QuitMsg.
	Quit bool
}

// New wraps model and processes its Init Cmd.
func New(t *testing.T, model tea.Model) *Driver {
	t.Helper()
	d := &Driver{t: t, model: model}
	d.run(model.Init(), 0)
	return d
}

// Model returns the current model, for type assertions in tests.
func (d *Driver) Model() tea.Model {
	return d.model
}

// Send dispatches msg and settles every resulting Cmd.
func (d *Driver) Send(msg tea.Msg) {
	d.t.Helper()
	if d.Quit {
		return
	}
	next, cmd := d.model.Update(msg)
	d.model = next
	d.run(cmd, 0)
}

// Press sends each key in turn. Names in namedKeys become special keys;
// anything else is sent as typed runes.
func (d *Driver) Press(keys ...string) {
	d.t.Helper()
	for _, k := range keys {
		if typ, ok := namedKeys[k]; ok {
			d.Send(tea.KeyMsg{Type: typ})
			continue
		}
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

// Type sends s one rune at a time.
func (d *Driver) Type(s string) {
	d.t.Helper()
	for _, r := range s {
		d.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func (d *Driver) View() string {
	return d.model.View()
}

func (d *Driver) run(cmd tea.Cmd, depth int) {
	d.t.Helper()
	if cmd == nil {
		return
	}
	if depth >= maxDepth {
		d.t.Logf("teatest: command chain deeper than %d, stopping", maxDepth)
		return
	}

	msg := await(cmd)
	switch m := msg.(type) {
	case nil:
		return
	case tea.BatchMsg:
		for _, c := range m {
			d.run(c, depth+1)
		}
		return
	case tea.QuitMsg:
		d.Quit = true
		return
	}
	if isBlink(msg) {
		return
	}

	next, follow := d.model.Update(msg)
	d.model = next
	d.run(follow, depth+1)
}

// await runs cmd and gives up after cmdTimeout.
func await(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(cmdTimeout):
		return nil
	}
}

// isBlink matches the unexported blink messages of bubbles/cursor.
func isBlink(msg tea.Msg) bool {
	return strings.Contains(strings.ToLower(fmt.Sprintf("%T", msg)), "blink")
}
