package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/alexanderramin/studyplan/internal/suggest"
	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func plan(date string, lo, hi int, status domain.PlanStatus) domain.Plan {
	return domain.Plan{
		ID:      "p-" + date,
		GroupID: "g1",
		ScheduledPlan: domain.ScheduledPlan{
			PlanDate:      day(date),
			StartTime:     domain.MustClock("09:00"),
			EndTime:       domain.MustClock("10:00"),
			PlanContentID: "g1/algebra",
			ContentType:   domain.ContentBook,
			ContentID:     "book-1",
			Subject:       "math",
			RangeStart:    lo,
			RangeEnd:      hi,
			DayType:       domain.DayStudy,
		},
		Status: status,
	}
}

func intPtr(v int) *int { return &v }

func TestRenderTable_AlignsStyledCells(t *testing.T) {
	out := stripANSI(RenderTable(
		[]string{"A", "LONGER"},
		[][]string{{StyleRed.Render("xyz"), "1"}, {"q", "22"}},
	))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "A    LONGER", lines[0])
	assert.Equal(t, "xyz  1", lines[2])
	assert.Equal(t, "q    22", lines[3])
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"x"}}))
}

func TestRelativeDay(t *testing.T) {
	today := day("2025-03-10")
	tests := []struct {
		date string
		want string
	}{
		{"2025-03-10", "Today"},
		{"2025-03-11", "Tomorrow"},
		{"2025-03-09", "Yesterday"},
		{"2025-03-13", "In 3d"},
		{"2025-03-07", "3d ago"},
		{"2025-03-31", "In 3w"},
		{"2025-02-17", "3w ago"},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDay(day(tt.date), today))
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "2h", FormatMinutes(120))
	assert.Equal(t, "1h 30m", FormatMinutes(90))
}

func TestRenderProgress_Clamps(t *testing.T) {
	assert.Contains(t, stripANSI(RenderProgress(150, 50, 10)), "100%")
	assert.Contains(t, stripANSI(RenderProgress(-5, 50, 10)), "  0%")
	assert.Equal(t, "[█████░░░░░]  50%", stripANSI(RenderProgress(50, 40, 10)))
}

func TestFormatPlans_MarksOverdueAndTotals(t *testing.T) {
	plans := []domain.Plan{
		plan("2025-03-03", 1, 10, domain.PlanPending),
		plan("2025-03-04", 11, 20, domain.PlanCompleted),
	}
	out := stripANSI(FormatPlans(plans, day("2025-03-05")))
	assert.Contains(t, out, "2025-03-03 (2d ago)")
	assert.Contains(t, out, "book book-1")
	assert.Contains(t, out, "11-20")
	assert.Contains(t, out, "2 plans, 2h scheduled")
	assert.Contains(t, FormatPlans(nil, time.Now()), "No plans.")
}

func TestPlanCells(t *testing.T) {
	p := plan("2025-03-03", 5, 5, domain.PlanPending)
	p.Subject = ""
	assert.Equal(t,
		[]string{"2025-03-03", "09:00-10:00", "--", "book book-1", "5", "study", "60", "pending"},
		PlanCells(p))
}

func TestFormatGroupDelay(t *testing.T) {
	gd := &app.GroupDelay{
		Group: &domain.PlanGroup{ID: "g1", Name: "Week one"},
		Analysis: scheduler.DelayAnalysis{
			GroupID:              "g1",
			TotalPlans:           3,
			CompletedPlans:       1,
			ProgressRate:         33.33,
			ExpectedProgressRate: 66.67,
			Status:               domain.DelayCritical,
			AtRiskPlanCount:      1,
			AverageDelayDays:     2,
			EstimatedCompletion:  scheduler.CompletionEstimate{Kind: scheduler.CompletionUnknown},
			SuggestedActions: []scheduler.SuggestedAction{
				{Kind: domain.ActionReschedule, Priority: domain.PriorityHigh},
			},
		},
		Recommendation: &scheduler.DelayRecommendation{Priority: 4, Level: "somewhat-high"},
	}
	out := stripANSI(FormatGroupDelay(gd))
	assert.Contains(t, out, "Week one")
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "1 of 3 plans")
	assert.Contains(t, out, "expected 66.7%")
	assert.Contains(t, out, "reschedule (high)")
	assert.Contains(t, out, "somewhat-high")
	assert.Contains(t, out, "unknown")
}

func TestFormatDelayReport(t *testing.T) {
	report := &app.DelayReport{
		StudentID: "student-1",
		Overall:   domain.OverallNeedsAttention,
		Groups: []app.GroupDelay{
			{Analysis: scheduler.DelayAnalysis{GroupID: "g2", Status: domain.DelayBehind}},
		},
	}
	out := stripANSI(FormatDelayReport(report))
	assert.Contains(t, out, "STUDENT-1")
	assert.Contains(t, out, "g2")
	assert.Contains(t, out, "BEHIND")
	assert.Contains(t, out, "NEEDS ATTENTION")

	assert.Contains(t, FormatDelayReport(&app.DelayReport{}), "No active plan groups.")
}

func TestFormatPreview_ShowsOperations(t *testing.T) {
	before := plan("2025-03-04", 11, 20, domain.PlanPending)
	after := before
	after.RangeEnd = 15
	res := &reschedule.Result{
		GroupID:            "g1",
		GroupVersion:       2,
		Period:             reschedule.DateRange{Start: day("2025-03-04"), End: day("2025-03-09")},
		AdjustmentsSummary: reschedule.AdjustmentsSummary{RangeChanges: 1},
		PlansBeforeCount:   3,
		PlansAfterCount:    4,
		Summary:            reschedule.DiffSummary{AddedDays: 1, ChangedDays: 1},
		EstimatedHours:     2.5,
		AffectedDates:      []string{"2025-03-04", "2025-03-06"},
		Operations: []reschedule.Operation{
			{Kind: domain.OpUpdate, Plan: after, Before: &before},
			{Kind: domain.OpCreate, Plan: plan("2025-03-06", 16, 20, domain.PlanPending)},
		},
	}
	out := stripANSI(FormatPreview(res, true))
	assert.Contains(t, out, "g1 (v2)")
	assert.Contains(t, out, "2025-03-04 → 2025-03-09")
	assert.Contains(t, out, "1 range, 0 replace, 0 full")
	assert.Contains(t, out, "3 → 4")
	assert.Contains(t, out, "2.5h")
	assert.Contains(t, out, "~ update")
	assert.Contains(t, out, "11-20 → 11-15")
	assert.Contains(t, out, "+ create")
	assert.Contains(t, out, "cached preview")
	assert.Contains(t, out, "Affected dates: 2025-03-04, 2025-03-06")
}

func TestFormatApply(t *testing.T) {
	assert.Contains(t, FormatApply(&app.ApplyResponse{NoChange: true}), "Nothing to apply")

	out := stripANSI(FormatApply(&app.ApplyResponse{
		Result:  &reschedule.Result{GroupID: "g1", PlansBeforeCount: 3, PlansAfterCount: 4, AffectedDates: []string{"2025-03-06"}},
		Log:     &domain.RescheduleLog{ID: "log-1"},
		Version: 3,
	}))
	assert.Contains(t, out, "now v3")
	assert.Contains(t, out, "log-1")
}

func TestAdjustFlag(t *testing.T) {
	assert.Equal(t, "g1/algebra:range:1-30", AdjustFlag(domain.AdjustmentInput{
		PlanContentID: "g1/algebra", ChangeType: domain.AdjustRange,
		NewStartRange: intPtr(1), NewEndRange: intPtr(30),
	}))
	assert.Equal(t, "g1/algebra:replace:lecture/lec-9:1-4", AdjustFlag(domain.AdjustmentInput{
		PlanContentID: "g1/algebra", ChangeType: domain.AdjustReplace,
		NewContentType: domain.ContentLecture, NewContentID: "lec-9",
		NewStartRange: intPtr(1), NewEndRange: intPtr(4),
	}))
	assert.Equal(t, "g1/algebra:full", AdjustFlag(domain.AdjustmentInput{
		PlanContentID: "g1/algebra", ChangeType: domain.AdjustFull,
	}))
}

func TestFormatSuggestions(t *testing.T) {
	out := stripANSI(FormatSuggestions("g1", []suggest.Suggestion{{
		Adjustment: domain.AdjustmentInput{PlanContentID: "g1/algebra", ChangeType: domain.AdjustFull},
		Priority:   domain.PriorityHigh,
		Reason:     "overdue plans",
	}}))
	assert.Contains(t, out, "high")
	assert.Contains(t, out, "overdue plans")
	assert.Contains(t, out, "studyplan reschedule preview g1 --adjust g1/algebra:full")

	assert.Contains(t, FormatSuggestions("g1", nil), "nothing to suggest")
}

func TestFormatPatterns(t *testing.T) {
	out := stripANSI(FormatPatterns([]suggest.Pattern{
		{Dimension: suggest.BySubject, Key: "math", Count: 3, AverageIntervalDays: 2.5, LastRescheduled: day("2025-03-07"), Recurring: true},
		{Dimension: suggest.ByContent, Key: "g1/algebra", Count: 1, LastRescheduled: day("2025-03-07")},
	}))
	assert.Contains(t, out, "math")
	assert.Contains(t, out, "2.5d")
	assert.Contains(t, out, "recurring")
	assert.Contains(t, out, "--")
	assert.Contains(t, FormatPatterns(nil), "No reschedule history.")
}

func TestFormatGroups(t *testing.T) {
	out := stripANSI(FormatGroups([]*domain.PlanGroup{{
		ID: "g1", Name: "Week one", StudentID: "student-1",
		PeriodStart: day("2025-03-03"), PeriodEnd: day("2025-03-09"),
		StudyDays: 6, ReviewDays: 1, Status: domain.GroupActive, Version: 2,
	}}))
	assert.Contains(t, out, "2025-03-03 → 2025-03-09")
	assert.Contains(t, out, "6+1")
	assert.Contains(t, out, "Active")
	assert.Contains(t, out, "v2")
}
