package cli

import (
	"fmt"

	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage test plans",
	}

	cmd.AddCommand(
		newPlanCreateCmd(app),
		newPlanListCmd(app),
		newPlanShowCmd(app),
		newPlanAddCmd(app),
		newPlanRemoveCaseCmd(app),
		newPlanDeleteCmd(app),
	)

	return cmd
}

func newPlanCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create an empty test plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Plans.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created plan %s (#%d)\n", p.Name, p.ID)
			return nil
		},
	}
}

func newPlanListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List test plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := app.Plans.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlans(plans))
			return nil
		},
	}
}

func newPlanShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a plan as a tree of its cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID("Plan", args[0])
			if err != nil {
				return err
			}
			p, err := app.Plans.GetByID(ctx, id)
			if err != nil {
				return err
			}
			entries, err := app.Queries.Subtree(ctx, domain.RootSentinel, &p.ID, domain.SubtreeFilter{IncludeInactive: true})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Header(p.Name))
			fmt.Fprint(out, formatter.FormatTree(entries))
			return nil
		},
	}
}

func newPlanAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add PLAN CASE...",
		Short: "Add cases to a plan",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseID("Plan", args[0])
			if err != nil {
				return err
			}
			caseIDs := make([]int64, 0, len(args)-1)
			for _, a := range args[1:] {
				id, err := parseID("Case", a)
				if err != nil {
					return err
				}
				caseIDs = append(caseIDs, id)
			}
			if err := app.Plans.AddCases(cmd.Context(), planID, caseIDs...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %d case(s) to plan #%d\n", len(caseIDs), planID)
			return nil
		},
	}
}

func newPlanRemoveCaseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm PLAN CASE",
		Short: "Remove a case from a plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			planID, err := parseID("Plan", args[0])
			if err != nil {
				return err
			}
			caseID, err := parseID("Case", args[1])
			if err != nil {
				return err
			}
			if err := app.Plans.RemoveCase(cmd.Context(), planID, caseID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed #%d from plan #%d\n", caseID, planID)
			return nil
		},
	}
}

func newPlanDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a plan (its cases are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("Plan", args[0])
			if err != nil {
				return err
			}
			if err := app.Plans.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted plan #%d\n", id)
			return nil
		},
	}
}
