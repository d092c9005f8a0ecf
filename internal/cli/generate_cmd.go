package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newGenerateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <group>",
		Short: "Generate the full schedule of a group",
		Long:  "Generate places every content of the group over its period. It refuses once any plan has been started or closed; use reschedule from then on.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			groupID, err := resolveGroupID(ctx, app, args[0])
			if err != nil {
				return err
			}
			res, err := app.Generate.Generate(ctx, groupID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGenerate(res))
			return nil
		},
	}
}

func newDelayCmd(app *App) *cobra.Command {
	var studentID, today string

	cmd := &cobra.Command{
		Use:   "delay [<group>]",
		Short: "Compare actual progress against the schedule",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			day, err := todayFlag(app, today)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				groupID, err := resolveGroupID(ctx, app, args[0])
				if err != nil {
					return err
				}
				gd, err := app.Delay.AnalyzeGroup(ctx, groupID, day)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatGroupDelay(gd))
				return nil
			}

			if studentID == "" {
				return fmt.Errorf("pass a group or --student")
			}
			report, err := app.Delay.AnalyzeStudent(ctx, studentID, day)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatDelayReport(report))
			return nil
		},
	}

	cmd.Flags().StringVar(&studentID, "student", "", "Analyze every active group of this student")
	cmd.Flags().StringVar(&today, "today", "", "Reference date (YYYY-MM-DD, default today)")

	return cmd
}
