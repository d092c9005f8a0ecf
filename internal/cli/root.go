package cli

import (
	"time"

	"github.com/alexanderramin/studyplan/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Groups     service.GroupService
	Generate   service.GenerateService
	Delay      service.DelayService
	Reschedule service.RescheduleService
	Suggest    service.SuggestionService
	Import     service.ImportService
	Export     service.ExportService
	Jobs       service.JobQueue

	// Now is the clock for "today"; nil means the wall clock in UTC.
	Now func() time.Time
	// IsInteractive reports whether prompts and the plan browser may take
	// over the terminal.
	IsInteractive func() bool
	// Confirm asks a yes/no question. Nil uses a huh confirmation form.
	Confirm func(title string) (bool, error)
	// AsyncAfterPlans routes applies on groups with at least this many
	// plans through the job queue. Zero disables it.
	AsyncAfterPlans int
}

func (a *App) today() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "studyplan" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "studyplan",
		Short:         "Study plan scheduling and adaptive rescheduling",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	// Read by main before the App is built; registered here so cobra
	// accepts it on every subcommand.
	root.PersistentFlags().String("config", "", "Config file (default ./studyplan.yaml or ~/.studyplan/studyplan.yaml)")

	root.AddCommand(
		newGroupCmd(app),
		newExclusionsCmd(app),
		newGenerateCmd(app),
		newDelayCmd(app),
		newRescheduleCmd(app),
		newSuggestCmd(app),
		newPatternsCmd(app),
		newPlansCmd(app),
		newExportCmd(app),
	)

	return root
}
