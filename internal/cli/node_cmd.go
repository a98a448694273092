package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/spf13/cobra"
)

func newNodeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Manage tree nodes",
	}

	cmd.AddCommand(
		newNodeAddCmd(app),
		newNodeShowCmd(app),
		newNodeListCmd(app),
		newNodeEditCmd(app),
		newNodeMoveCmd(app),
		newNodeReorderCmd(app),
		newNodeRemoveCmd(app),
		newNodeTagCmd(app),
		newNodeUntagCmd(app),
	)

	return cmd
}

func newNodeAddCmd(app *App) *cobra.Command {
	var parent int64
	var kind, details string
	var order int

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a folder, suite or case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := domain.ParseNodeType(kind)
			if err != nil {
				return err
			}
			parentID, err := parentFlag(cmd.Flags(), parent)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("order") {
				order = domain.OrderLast
			}
			n := &domain.Node{
				ParentID: parentID,
				Name:     args[0],
				Type:     typ,
				Order:    order,
				Details:  details,
			}
			if err := app.Nodes.Create(cmd.Context(), n); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (#%d)\n", n.Type, n.Name, n.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&parent, "parent", 0, "Parent node ID (omit for root level)")
	cmd.Flags().StringVar(&kind, "type", "folder", "Node type (folder|suite|case)")
	cmd.Flags().IntVar(&order, "order", 0, "Position among siblings (default: last)")
	cmd.Flags().StringVar(&details, "details", "", "Free-form description")

	return cmd
}

func newNodeShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show node details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID("Node", args[0])
			if err != nil {
				return err
			}
			n, err := app.Nodes.GetByID(ctx, id)
			if err != nil {
				return err
			}
			keywords, err := app.Nodes.ListKeywords(ctx, id)
			if err != nil {
				return err
			}

			var active *bool
			if n.IsCase() {
				cases, err := app.Queries.DescendantCases(ctx, id, true)
				if err != nil {
					return err
				}
				if len(cases) > 0 {
					active = cases[0].Active
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatNodeDetail(n, keywords, active))
			return nil
		},
	}
}

func newNodeListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [PARENT]",
		Short: "List the children of a node, or the root nodes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parentID *int64
			if len(args) == 1 {
				id, err := parseID("Parent", args[0])
				if err != nil {
					return err
				}
				parentID = &id
			}
			children, err := app.Nodes.ListChildren(cmd.Context(), parentID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNodeList(children))
			return nil
		},
	}
}

func newNodeEditCmd(app *App) *cobra.Command {
	var name, details string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Rename a node or replace its details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID("Node", args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("details") {
				return &domain.ValidationError{Field: "Flags", Reason: "nothing to change (use --name or --details)"}
			}

			n, err := app.Nodes.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				n.Name = name
			}
			if cmd.Flags().Changed("details") {
				n.Details = details
			}
			if err := app.Nodes.Update(ctx, n); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s (#%d)\n", n.Name, n.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&details, "details", "", "New details")

	return cmd
}

func newNodeMoveCmd(app *App) *cobra.Command {
	var parent int64
	var index int

	cmd := &cobra.Command{
		Use:   "move ID",
		Short: "Move a node (and its subtree) under another parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("Node", args[0])
			if err != nil {
				return err
			}
			parentID, err := parentFlag(cmd.Flags(), parent)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("index") {
				index = domain.OrderLast
			}
			n, err := app.Nodes.Move(cmd.Context(), id, parentID, index)
			if err != nil {
				return err
			}

			dest := "root level"
			if n.ParentID != nil {
				dest = fmt.Sprintf("#%d", *n.ParentID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s (#%d) to %s at position %d\n", n.Name, n.ID, dest, n.Order)
			return nil
		},
	}

	cmd.Flags().Int64Var(&parent, "parent", 0, "New parent node ID (omit for root level)")
	cmd.Flags().IntVar(&index, "index", 0, "Position among the new siblings (default: last)")

	return cmd
}

func newNodeReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder ID INDEX",
		Short: "Change a node's position among its siblings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("Node", args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return &domain.ValidationError{Field: "Index", Reason: fmt.Sprintf("%q is not a number", args[1])}
			}
			n, err := app.Nodes.Reorder(cmd.Context(), id, index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (#%d) is now at position %d\n", n.Name, n.ID, n.Order)
			return nil
		},
	}
}

func newNodeRemoveCmd(app *App) *cobra.Command {
	var force, yes bool

	cmd := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a node; --force deletes its whole subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID("Node", args[0])
			if err != nil {
				return err
			}

			if force && !yes {
				n, err := app.Nodes.GetByID(ctx, id)
				if err != nil {
					return err
				}
				if !app.interactive() {
					return fmt.Errorf("deleting the subtree of %s (#%d) needs --yes when not running in a terminal", n.Name, n.ID)
				}
				ok, err := app.confirm(fmt.Sprintf("Delete %s (#%d) and everything under it?", n.Name, n.ID))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			err = app.Nodes.Delete(ctx, id, force)
			if errors.Is(err, domain.ErrHasChildren) {
				return fmt.Errorf("%w (use --force to delete the subtree)", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Delete descendants too")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func newNodeTagCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tag ID KEYWORD...",
		Short: "Attach keywords to a node",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("Node", args[0])
			if err != nil {
				return err
			}
			for _, kw := range args[1:] {
				if err := app.Nodes.Tag(cmd.Context(), id, kw); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Tagged #%d with %d keyword(s)\n", id, len(args)-1)
			return nil
		},
	}
}

func newNodeUntagCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "untag ID KEYWORD",
		Short: "Detach a keyword from a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("Node", args[0])
			if err != nil {
				return err
			}
			if err := app.Nodes.Untag(cmd.Context(), id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed keyword %q from #%d\n", args[1], id)
			return nil
		},
	}
}
