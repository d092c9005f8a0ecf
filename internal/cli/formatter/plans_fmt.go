package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/scheduler"
)

// PlanHeaders are the columns of every plan listing.
var PlanHeaders = []string{"DATE", "TIME", "SUBJECT", "CONTENT", "RANGE", "DAY", "MIN", "STATUS"}

// PlanCells returns the unstyled cells of one plan row.
func PlanCells(p domain.Plan) []string {
	subject := p.Subject
	if subject == "" {
		subject = "--"
	}
	return []string{
		domain.DateKey(p.PlanDate),
		fmt.Sprintf("%s-%s", p.StartTime, p.EndTime),
		subject,
		fmt.Sprintf("%s %s", p.ContentType, p.ContentID),
		UnitRange(p.RangeStart, p.RangeEnd),
		string(p.DayType),
		fmt.Sprintf("%d", p.Minutes()),
		string(p.Status),
	}
}

// FormatPlans renders plans as a table. Overdue pending plans are marked
// relative to today.
func FormatPlans(plans []domain.Plan, today time.Time) string {
	if len(plans) == 0 {
		return Dim("No plans.") + "\n"
	}
	today = domain.Day(today)
	rows := make([][]string, 0, len(plans))
	total := 0
	for _, p := range plans {
		cells := PlanCells(p)
		cells[0] = dateCell(p, today)
		cells[5] = DayTypeBadge(p.DayType)
		cells[7] = PlanStatusPill(p.Status)
		rows = append(rows, cells)
		total += p.Minutes()
	}

	var b strings.Builder
	b.WriteString(RenderTable(PlanHeaders, rows))
	fmt.Fprintf(&b, "\n%d plans, %s scheduled\n", len(plans), FormatMinutes(total))
	return b.String()
}

func dateCell(p domain.Plan, today time.Time) string {
	key := domain.DateKey(p.PlanDate)
	if p.Status == domain.PlanPending && p.PlanDate.Before(today) {
		return StyleRed.Render(key + " (" + RelativeDay(p.PlanDate, today) + ")")
	}
	if p.PlanDate.Equal(today) {
		return StyleGreen.Render(key)
	}
	return key
}

func FormatShortfalls(shortfalls []scheduler.Shortfall) string {
	if len(shortfalls) == 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range shortfalls {
		b.WriteString(StyleYellow.Render(fmt.Sprintf("  WARNING: %s placed %s of %s before the period end",
			s.PlanContentID, FormatMinutes(s.PlacedMinutes), FormatMinutes(s.RequiredMinutes))))
		b.WriteString("\n")
	}
	return b.String()
}
