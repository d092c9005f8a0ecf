package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/reschedule"
)

// FormatPreview renders a proposed reschedule: counts, the operations it
// would run and the dates it touches.
func FormatPreview(res *reschedule.Result, cached bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Group:      %s (v%d)\n", res.GroupID, res.GroupVersion)
	fmt.Fprintf(&b, "  Window:     %s → %s\n", domain.DateKey(res.Period.Start), domain.DateKey(res.Period.End))
	s := res.AdjustmentsSummary
	fmt.Fprintf(&b, "  Changes:    %d range, %d replace, %d full\n", s.RangeChanges, s.Replacements, s.FullRegenerations)
	fmt.Fprintf(&b, "  Plans:      %d → %d\n", res.PlansBeforeCount, res.PlansAfterCount)
	fmt.Fprintf(&b, "  Days:       %s added, %s changed, %s removed\n",
		StyleGreen.Render(fmt.Sprint(res.Summary.AddedDays)),
		StyleYellow.Render(fmt.Sprint(res.Summary.ChangedDays)),
		StyleRed.Render(fmt.Sprint(res.Summary.RemovedDays)))
	fmt.Fprintf(&b, "  Estimated:  %.1fh\n", res.EstimatedHours)
	if len(res.Subjects) > 0 {
		fmt.Fprintf(&b, "  Subjects:   %s\n", strings.Join(res.Subjects, ", "))
	}
	if cached {
		b.WriteString(Dim("  (cached preview)") + "\n")
	}
	b.WriteString("\n")

	if len(res.Operations) == 0 {
		b.WriteString(Dim("  No plan changes.") + "\n")
	} else {
		b.WriteString(FormatOperations(res.Operations))
	}
	if len(res.AffectedDates) > 0 {
		fmt.Fprintf(&b, "\nAffected dates: %s\n", strings.Join(res.AffectedDates, ", "))
	}
	b.WriteString(FormatShortfalls(res.Shortfalls))
	return RenderBox("Reschedule preview", b.String())
}

// FormatOperations renders diff operations as a table. Updates show the
// previous time and range next to the new ones.
func FormatOperations(ops []reschedule.Operation) string {
	headers := []string{"OP", "DATE", "TIME", "CONTENT", "RANGE", "DAY"}
	rows := make([][]string, 0, len(ops))
	for _, op := range ops {
		p := op.Plan
		timeCell := fmt.Sprintf("%s-%s", p.StartTime, p.EndTime)
		rangeCell := UnitRange(p.RangeStart, p.RangeEnd)
		if op.Before != nil {
			if op.Before.StartTime != p.StartTime || op.Before.EndTime != p.EndTime {
				timeCell = Dim(fmt.Sprintf("%s-%s → ", op.Before.StartTime, op.Before.EndTime)) + timeCell
			}
			if op.Before.RangeStart != p.RangeStart || op.Before.RangeEnd != p.RangeEnd {
				rangeCell = Dim(UnitRange(op.Before.RangeStart, op.Before.RangeEnd)+" → ") + rangeCell
			}
		}
		rows = append(rows, []string{
			opBadge(op.Kind),
			domain.DateKey(p.PlanDate),
			timeCell,
			fmt.Sprintf("%s %s", p.ContentType, p.ContentID),
			rangeCell,
			DayTypeBadge(p.DayType),
		})
	}
	return RenderTable(headers, rows)
}

func opBadge(kind domain.OperationKind) string {
	switch kind {
	case domain.OpCreate:
		return StyleGreen.Render("+ create")
	case domain.OpUpdate:
		return StyleYellow.Render("~ update")
	case domain.OpDelete:
		return StyleRed.Render("- delete")
	default:
		return string(kind)
	}
}

// FormatApply reports a committed reschedule.
func FormatApply(resp *app.ApplyResponse) string {
	if resp.NoChange {
		return Dim("Nothing to apply: the adjustments produce the current schedule.") + "\n"
	}
	var b strings.Builder
	res := resp.Result
	fmt.Fprintf(&b, "Applied %d operations to %s (now v%d)\n", len(res.Operations), res.GroupID, resp.Version)
	fmt.Fprintf(&b, "  Plans: %d → %d\n", res.PlansBeforeCount, res.PlansAfterCount)
	if len(res.AffectedDates) > 0 {
		fmt.Fprintf(&b, "  Dates: %s\n", strings.Join(res.AffectedDates, ", "))
	}
	if resp.Log != nil {
		fmt.Fprintf(&b, "  Log:   %s\n", resp.Log.ID)
	}
	b.WriteString(FormatShortfalls(res.Shortfalls))
	return b.String()
}

// FormatJob renders the state of a background batch.
func FormatJob(st *app.JobStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %s: %s\n", st.ID, jobStateBadge(st.State))
	for _, o := range st.Outcomes {
		if o.Err != "" {
			fmt.Fprintf(&b, "  %s  %s\n", o.GroupID, StyleRed.Render(o.Err))
			continue
		}
		if o.LogID == "" {
			fmt.Fprintf(&b, "  %s  %s\n", o.GroupID, Dim("no change"))
			continue
		}
		fmt.Fprintf(&b, "  %s  %s\n", o.GroupID, StyleGreen.Render("applied "+o.LogID))
	}
	return b.String()
}

func jobStateBadge(s app.JobState) string {
	switch s {
	case app.JobSucceeded:
		return StyleGreen.Render(string(s))
	case app.JobFailed:
		return StyleRed.Render(string(s))
	default:
		return StyleYellow.Render(string(s))
	}
}
