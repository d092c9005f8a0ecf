package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/scheduler"
)

const delayProgressBarWidth = 10

// FormatGroupDelay renders the delay analysis of one group.
func FormatGroupDelay(gd *app.GroupDelay) string {
	a := gd.Analysis
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", Bold(groupLabel(gd)), DelayBadge(a.Status))
	fmt.Fprintf(&b, "  Progress:   %s  %s\n",
		RenderProgress(a.ProgressRate, a.ExpectedProgressRate, delayProgressBarWidth),
		Dim(fmt.Sprintf("expected %.1f%%", a.ExpectedProgressRate)))
	fmt.Fprintf(&b, "  Completed:  %d of %d plans\n", a.CompletedPlans, a.TotalPlans)
	fmt.Fprintf(&b, "  Overdue:    %d plans", a.AtRiskPlanCount)
	if a.AtRiskPlanCount > 0 {
		fmt.Fprintf(&b, " %s", Dim(fmt.Sprintf("(%.1f days late on average)", a.AverageDelayDays)))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Finish:     %s\n", a.EstimatedCompletion)

	if actions := actionsLine(a.SuggestedActions); actions != "" {
		fmt.Fprintf(&b, "  Actions:    %s\n", actions)
	}
	if gd.Recommendation != nil {
		fmt.Fprintf(&b, "  Workload:   %s %s\n",
			StyleYellow.Render(gd.Recommendation.Level),
			Dim(fmt.Sprintf("(priority %d)", gd.Recommendation.Priority)))
	}
	return RenderBox("Delay", b.String())
}

// FormatDelayReport renders every group of a student as a table followed
// by the overall status.
func FormatDelayReport(r *app.DelayReport) string {
	if len(r.Groups) == 0 {
		return Dim("No active plan groups.") + "\n"
	}
	headers := []string{"GROUP", "STATUS", "PROGRESS", "EXPECTED", "OVERDUE", "FINISH"}
	rows := make([][]string, 0, len(r.Groups))
	for i := range r.Groups {
		gd := &r.Groups[i]
		a := gd.Analysis
		rows = append(rows, []string{
			Bold(groupLabel(gd)),
			DelayBadge(a.Status),
			RenderProgress(a.ProgressRate, a.ExpectedProgressRate, delayProgressBarWidth),
			fmt.Sprintf("%.1f%%", a.ExpectedProgressRate),
			fmt.Sprintf("%d", a.AtRiskPlanCount),
			a.EstimatedCompletion.String(),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable(headers, rows))
	fmt.Fprintf(&b, "\nOverall: %s\n", OverallBadge(r.Overall))
	title := "Delay"
	if r.StudentID != "" {
		title = "Delay · " + r.StudentID
	}
	return RenderBox(title, b.String())
}

func groupLabel(gd *app.GroupDelay) string {
	if gd.Group != nil && gd.Group.Name != "" {
		return gd.Group.Name
	}
	return gd.Analysis.GroupID
}

func actionsLine(actions []scheduler.SuggestedAction) string {
	parts := make([]string, 0, len(actions))
	for _, a := range actions {
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Kind, PriorityBadge(a.Priority)))
	}
	return strings.Join(parts, ", ")
}
