package cli

import (
	"fmt"

	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	var plan int64
	var query string
	var all bool

	cmd := &cobra.Command{
		Use:   "tree [ANCESTOR]",
		Short: "Show the tree, or the subtree below ANCESTOR",
		Long: `Show the tree, or the subtree below ANCESTOR (which itself is not listed).

Inactive cases are hidden unless --all is given. --query keeps only cases whose
name contains the text; --plan keeps only branches that lead to cases in the
plan and marks planned cases.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ancestor := domain.RootSentinel
			if len(args) == 1 {
				id, err := parseID("Ancestor", args[0])
				if err != nil {
					return err
				}
				ancestor = id
			}
			var planID *int64
			if cmd.Flags().Changed("plan") {
				planID = &plan
			}

			entries, err := app.Queries.Subtree(cmd.Context(), ancestor, planID, domain.SubtreeFilter{
				Query:           query,
				IncludeInactive: all,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTree(entries))
			return nil
		},
	}

	cmd.Flags().Int64Var(&plan, "plan", 0, "Restrict to cases in this test plan")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Case name substring")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include inactive cases")

	return cmd
}

func newCasesCmd(app *App) *cobra.Command {
	var planInfo bool

	cmd := &cobra.Command{
		Use:   "cases ID",
		Short: "List every case at or below a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("Node", args[0])
			if err != nil {
				return err
			}
			entries, err := app.Queries.DescendantCases(cmd.Context(), id, planInfo)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCases(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&planInfo, "plan-info", false, "Include active status and plan membership")

	return cmd
}

func newCaseCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Manage case status",
	}
	cmd.AddCommand(
		newCaseStatusCmd(app, "activate", true),
		newCaseStatusCmd(app, "deactivate", false),
	)
	return cmd
}

func newCaseStatusCmd(app *App, verb string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " ID...",
		Short: fmt.Sprintf("Mark cases %sd", verb),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				id, err := parseID("Case", arg)
				if err != nil {
					return err
				}
				if err := app.Nodes.SetCaseActive(cmd.Context(), id, active); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "#%d %sd\n", id, verb)
			}
			return nil
		},
	}
}
