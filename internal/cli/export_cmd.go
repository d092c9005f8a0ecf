package cli

import (
	"context"
	"fmt"
	"os"

	studyapp "github.com/alexanderramin/studyplan/internal/app"
	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var format, output, from, to string

	cmd := &cobra.Command{
		Use:   "export <group>",
		Short: "Export a group's plans to iCalendar or Excel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			groupID, err := resolveGroupID(ctx, app, args[0])
			if err != nil {
				return err
			}
			req := studyapp.ExportRequest{GroupID: groupID, Format: studyapp.ExportFormat(format)}
			if req.From, err = parseDateFlag("from", from); err != nil {
				return err
			}
			if req.To, err = parseDateFlag("to", to); err != nil {
				return err
			}
			if output == "" {
				output = fmt.Sprintf("%s.%s", groupID, format)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			n, err := app.Export.Export(ctx, req, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(output)
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d plans to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(studyapp.FormatICS), "Output format (ics|xlsx)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <group>.<format>)")
	cmd.Flags().StringVar(&from, "from", "", "First date to export (default period start)")
	cmd.Flags().StringVar(&to, "to", "", "Last date to export (default period end)")

	return cmd
}
