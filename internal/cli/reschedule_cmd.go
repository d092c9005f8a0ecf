package cli

import (
	"context"
	"fmt"
	"io"

	studyapp "github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/cli/formatter"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// rescheduleFlags are shared by preview and apply so both compute the
// same request, and therefore the same cached result.
type rescheduleFlags struct {
	adjust       []string
	from, to     string
	placeFrom    string
	placeTo      string
	includeToday bool
	today        string
	reason       string
}

func (f *rescheduleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.adjust, "adjust", nil, "Adjustment: <content>:range:<s>-<e> | <content>:replace:<type>/<id>[:<s>-<e>] | <content>:full (repeatable)")
	cmd.Flags().StringVar(&f.from, "from", "", "Reschedule window start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Reschedule window end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.placeFrom, "place-from", "", "Placement window start; overrides --from/--to")
	cmd.Flags().StringVar(&f.placeTo, "place-to", "", "Placement window end")
	cmd.Flags().BoolVar(&f.includeToday, "include-today", false, "Allow today's pending plans to be rewritten")
	cmd.Flags().StringVar(&f.today, "today", "", "Reference date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&f.reason, "reason", "", "Reason recorded in the reschedule log")
}

func (f *rescheduleFlags) request(ctx context.Context, a *App, groupArg string) (studyapp.RescheduleRequest, error) {
	var req studyapp.RescheduleRequest
	groupID, err := resolveGroupID(ctx, a, groupArg)
	if err != nil {
		return req, err
	}
	adjustments, err := parseAdjustments(f.adjust)
	if err != nil {
		return req, err
	}
	placement, err := dateRangeFlags("place-from", f.placeFrom, "place-to", f.placeTo)
	if err != nil {
		return req, err
	}
	window, err := dateRangeFlags("from", f.from, "to", f.to)
	if err != nil {
		return req, err
	}
	today, err := todayFlag(a, f.today)
	if err != nil {
		return req, err
	}

	return studyapp.RescheduleRequest{
		GroupID:     groupID,
		Adjustments: adjustments,
		Window: reschedule.Window{
			Placement:    placement,
			Reschedule:   window,
			IncludeToday: f.includeToday,
		},
		Today:  &today,
		Reason: f.reason,
	}, nil
}

func dateRangeFlags(startName, start, endName, end string) (*reschedule.DateRange, error) {
	if start == "" && end == "" {
		return nil, nil
	}
	if start == "" || end == "" {
		return nil, fmt.Errorf("--%s and --%s must be given together", startName, endName)
	}
	s, err := parseDateFlag(startName, start)
	if err != nil {
		return nil, err
	}
	e, err := parseDateFlag(endName, end)
	if err != nil {
		return nil, err
	}
	return &reschedule.DateRange{Start: *s, End: *e}, nil
}

func newRescheduleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reschedule",
		Short: "Preview or apply schedule adjustments",
	}

	cmd.AddCommand(
		newReschedulePreviewCmd(app),
		newRescheduleApplyCmd(app),
	)

	return cmd
}

func newReschedulePreviewCmd(app *App) *cobra.Command {
	var flags rescheduleFlags

	cmd := &cobra.Command{
		Use:   "preview <group>",
		Short: "Show what a reschedule would change without writing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			req, err := flags.request(ctx, app, args[0])
			if err != nil {
				return err
			}
			resp, err := app.Reschedule.Preview(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPreview(resp.Result, resp.Cached))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newRescheduleApplyCmd(app *App) *cobra.Command {
	var flags rescheduleFlags
	var yes, async bool

	cmd := &cobra.Command{
		Use:   "apply <group>",
		Short: "Commit a reschedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out := cmd.OutOrStdout()
			req, err := flags.request(ctx, app, args[0])
			if err != nil {
				return err
			}

			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to apply without --yes in a non-interactive session")
				}
				preview, err := app.Reschedule.Preview(ctx, req)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, formatter.FormatPreview(preview.Result, preview.Cached))
				if preview.Result.Empty() {
					fmt.Fprint(out, formatter.FormatApply(&studyapp.ApplyResponse{Result: preview.Result, NoChange: true}))
					return nil
				}
				ok, err := app.confirm(fmt.Sprintf("Apply %d operations to %s?", len(preview.Result.Operations), req.GroupID))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, formatter.Dim("Cancelled."))
					return nil
				}
			}

			runAsync := async
			if !runAsync && app.AsyncAfterPlans > 0 && app.Jobs != nil {
				plans, err := app.Groups.ListPlans(ctx, req.GroupID, nil, nil)
				if err != nil {
					return err
				}
				runAsync = len(plans) >= app.AsyncAfterPlans
			}
			if runAsync {
				return applyAsync(ctx, app, out, req)
			}

			resp, err := app.Reschedule.Apply(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprint(out, formatter.FormatApply(resp))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply without previewing and confirming")
	cmd.Flags().BoolVar(&async, "async", false, "Run the apply on the background job queue and wait for it")

	return cmd
}

func applyAsync(ctx context.Context, a *App, out io.Writer, req studyapp.RescheduleRequest) error {
	if a.Jobs == nil {
		return fmt.Errorf("background jobs are not available")
	}
	handle, err := a.Jobs.Enqueue(ctx, studyapp.BatchRequest{Items: []studyapp.RescheduleRequest{req}})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Queued job %s\n", handle.ID)

	stop := func() {}
	if a.interactive() {
		stop = formatter.StartSpinner(out, "applying reschedule")
	}
	status, err := a.Jobs.Wait(ctx, handle.ID)
	stop()
	if err != nil {
		return err
	}
	fmt.Fprint(out, formatter.FormatJob(status))
	if status.State == studyapp.JobFailed {
		return fmt.Errorf("job %s failed", status.ID)
	}
	return nil
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Apply").
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
