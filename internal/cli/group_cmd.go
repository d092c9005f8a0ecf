package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newGroupCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage plan groups",
	}

	cmd.AddCommand(
		newGroupImportCmd(app),
		newGroupListCmd(app),
	)

	return cmd
}

func newGroupImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a plan group from a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Import.ImportGroup(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImport(res))
			return nil
		},
	}
}

func newGroupListCmd(app *App) *cobra.Command {
	var studentID string
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plan groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := app.Groups.ListGroups(context.Background(), studentID, all)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGroups(groups))
			return nil
		},
	}

	cmd.Flags().StringVar(&studentID, "student", "", "Only groups of this student")
	cmd.Flags().BoolVar(&all, "all", false, "Include deleted groups")

	return cmd
}

func newExclusionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclusions",
		Short: "Manage excluded dates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import <group> <file.ics>",
		Short: "Import excluded dates from an iCalendar file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			groupID, err := resolveGroupID(ctx, app, args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("opening calendar: %w", err)
			}
			defer f.Close()

			n, err := app.Import.ImportExclusionsICS(ctx, groupID, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d excluded dates into %s\n", n, groupID)
			return nil
		},
	})

	return cmd
}
