package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// FormatGroups renders plan groups as a table.
func FormatGroups(groups []*domain.PlanGroup) string {
	if len(groups) == 0 {
		return Dim("No plan groups.") + "\n"
	}
	headers := []string{"ID", "NAME", "STUDENT", "PERIOD", "CYCLE", "STATUS", "VERSION"}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.ID,
			Bold(g.Name),
			g.StudentID,
			fmt.Sprintf("%s → %s", domain.DateKey(g.PeriodStart), domain.DateKey(g.PeriodEnd)),
			cycleLabel(g),
			GroupStatusPill(g.Status),
			fmt.Sprintf("v%d", g.Version),
		})
	}
	return RenderTable(headers, rows)
}

func cycleLabel(g *domain.PlanGroup) string {
	if g.StudyDays == 0 && g.ReviewDays == 0 {
		return Dim("default")
	}
	return fmt.Sprintf("%d+%d", g.StudyDays, g.ReviewDays)
}

func FormatImport(res *app.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Imported group %s [%s]\n", Bold(res.Group.Name), res.Group.ID)
	fmt.Fprintf(&b, "  Contents:   %d\n", res.ContentCount)
	fmt.Fprintf(&b, "  Durations:  %d\n", res.DurationCount)
	fmt.Fprintf(&b, "  Blocks:     %d\n", res.BlockCount)
	fmt.Fprintf(&b, "  Exclusions: %d\n", res.ExclusionCount)
	if res.AcademyCount > 0 {
		fmt.Fprintf(&b, "  Academies:  %d\n", res.AcademyCount)
	}
	if l := res.Group.Lunch; l != nil {
		fmt.Fprintf(&b, "  Lunch:      %s-%s\n", l.Start, l.End)
	}
	return b.String()
}

// FormatGenerate reports a full generation, including any content that
// did not fit before the period end.
func FormatGenerate(res *app.GenerateResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated %d plans for %s (replaced %d, now v%d)\n",
		res.Created, res.GroupID, res.Removed, res.Version)
	b.WriteString(FormatShortfalls(res.Shortfalls))
	return b.String()
}
