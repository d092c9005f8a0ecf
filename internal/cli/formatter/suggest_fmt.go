package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/suggest"
)

// AdjustFlag renders an adjustment in --adjust syntax.
func AdjustFlag(a domain.AdjustmentInput) string {
	switch a.ChangeType {
	case domain.AdjustRange:
		if a.NewStartRange != nil && a.NewEndRange != nil {
			return fmt.Sprintf("%s:range:%d-%d", a.PlanContentID, *a.NewStartRange, *a.NewEndRange)
		}
	case domain.AdjustReplace:
		s := fmt.Sprintf("%s:replace:%s/%s", a.PlanContentID, a.NewContentType, a.NewContentID)
		if a.NewStartRange != nil && a.NewEndRange != nil {
			s += fmt.Sprintf(":%d-%d", *a.NewStartRange, *a.NewEndRange)
		}
		return s
	}
	return a.PlanContentID + ":" + string(a.ChangeType)
}

// FormatSuggestions lists suggested adjustments with the flag that would
// apply each one.
func FormatSuggestions(groupID string, suggestions []suggest.Suggestion) string {
	if len(suggestions) == 0 {
		return StyleGreen.Render("On track, nothing to suggest.") + "\n"
	}
	headers := []string{"PRIORITY", "ADJUSTMENT", "REASON"}
	rows := make([][]string, 0, len(suggestions))
	flags := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		flag := AdjustFlag(s.Adjustment)
		rows = append(rows, []string{PriorityBadge(s.Priority), flag, s.Reason})
		flags = append(flags, "--adjust "+flag)
	}

	var b strings.Builder
	b.WriteString(RenderTable(headers, rows))
	b.WriteString("\n")
	b.WriteString(Dim(fmt.Sprintf("studyplan reschedule preview %s %s", groupID, strings.Join(flags, " "))))
	b.WriteString("\n")
	return b.String()
}

func FormatPatterns(patterns []suggest.Pattern) string {
	if len(patterns) == 0 {
		return Dim("No reschedule history.") + "\n"
	}
	headers := []string{"BY", "KEY", "COUNT", "EVERY", "LAST", ""}
	rows := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		every := Dim("--")
		if p.Count >= 2 {
			every = fmt.Sprintf("%.1fd", p.AverageIntervalDays)
		}
		flag := ""
		if p.Recurring {
			flag = StyleRed.Render("recurring")
		}
		rows = append(rows, []string{
			string(p.Dimension),
			Bold(p.Key),
			fmt.Sprintf("%d", p.Count),
			every,
			domain.DateKey(p.LastRescheduled),
			flag,
		})
	}
	return RenderTable(headers, rows)
}
