package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newSuggestCmd(app *App) *cobra.Command {
	var today string

	cmd := &cobra.Command{
		Use:   "suggest <group>",
		Short: "Suggest adjustments for a group that is falling behind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			groupID, err := resolveGroupID(ctx, app, args[0])
			if err != nil {
				return err
			}
			day, err := todayFlag(app, today)
			if err != nil {
				return err
			}
			suggestions, err := app.Suggest.Suggest(ctx, groupID, day)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSuggestions(groupID, suggestions))
			return nil
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "Reference date (YYYY-MM-DD, default today)")

	return cmd
}

func newPatternsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns <group>",
		Short: "Show which subjects and contents keep getting rescheduled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			groupID, err := resolveGroupID(ctx, app, args[0])
			if err != nil {
				return err
			}
			patterns, err := app.Suggest.Patterns(ctx, groupID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPatterns(patterns))
			return nil
		},
	}
}
