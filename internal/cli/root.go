package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Nodes   service.NodeService
	Queries service.QueryService
	Plans   service.TestPlanService

	// ConfigDir is where "config init" writes config.yaml.
	ConfigDir string

	// IsInteractive reports whether prompts and the browser may take over
	// the terminal. Nil means never.
	IsInteractive func() bool

	// Confirm asks a yes/no question. Nil falls back to a huh confirm form.
	Confirm func(title string) (bool, error)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	return confirmForm(title)
}

// NewRootCmd creates the top-level "casetree" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "casetree",
		Short:         "Hierarchical test case manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newNodeCmd(app),
		newTreeCmd(app),
		newCasesCmd(app),
		newCaseCmd(app),
		newPlanCmd(app),
		newBrowseCmd(app),
		newConfigCmd(app),
	)

	return root
}

// parseID parses a positional node or plan id.
func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: what, Reason: fmt.Sprintf("%q is not a valid id", s)}
	}
	return id, nil
}

// parentFlag returns the --parent value, or nil when the flag was not
// given (root level).
func parentFlag(flags *pflag.FlagSet, parent int64) (*int64, error) {
	if !flags.Changed("parent") {
		return nil, nil
	}
	if parent <= 0 {
		return nil, &domain.ValidationError{Field: "Parent", Reason: fmt.Sprintf("%d is not a valid id", parent)}
	}
	return &parent, nil
}
