package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newPlansCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Inspect scheduled plans",
	}

	cmd.AddCommand(
		newPlansListCmd(app),
		newPlansBrowseCmd(app),
	)

	return cmd
}

func newPlansListCmd(app *App) *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "list <group>",
		Short: "List a group's plans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			groupID, err := resolveGroupID(ctx, app, args[0])
			if err != nil {
				return err
			}
			start, err := parseDateFlag("from", from)
			if err != nil {
				return err
			}
			end, err := parseDateFlag("to", to)
			if err != nil {
				return err
			}
			plans, err := app.Groups.ListPlans(ctx, groupID, start, end)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlans(plans, app.today()))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last date (YYYY-MM-DD)")

	return cmd
}

func newPlansBrowseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "browse <group>",
		Short: "Browse a group's plans interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("plans browse needs a terminal; use plans list")
			}
			ctx := context.Background()
			groupID, err := resolveGroupID(ctx, app, args[0])
			if err != nil {
				return err
			}
			group, err := app.Groups.GetGroup(ctx, groupID)
			if err != nil {
				return err
			}
			plans, err := app.Groups.ListPlans(ctx, groupID, nil, nil)
			if err != nil {
				return err
			}

			browser := newPlanBrowser(group.Name, plans, app.today())
			_, err = tea.NewProgram(browser,
				tea.WithAltScreen(),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			).Run()
			return err
		},
	}
}
