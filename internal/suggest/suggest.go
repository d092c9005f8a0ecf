package suggest

import (
	"math"
	"sort"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"github.com/alexanderramin/studyplan/internal/scheduler"
)

// Suggestion is a candidate adjustment derived from a delay analysis.
type Suggestion struct {
	Adjustment domain.AdjustmentInput `json:"adjustment"`
	Priority   domain.Priority        `json:"priority"`
	Reason     string                 `json:"reason"`
}

type Input struct {
	Analysis  scheduler.DelayAnalysis
	Contents  []domain.PlanContent
	Plans     []domain.Plan
	Today     time.Time
	PeriodEnd time.Time
}

// Suggest maps a delay analysis to adjustment candidates.
//
// A critical group gets each unfinished content shrunk to what the
// current pace can cover by the period end. Contents that cannot be
// shrunk, and every content with overdue plans in a behind or at-risk
// group, get a full regeneration. Groups that are on track get nothing.
func Suggest(in Input) []Suggestion {
	a := in.Analysis
	critical := a.Status == domain.DelayCritical
	if !critical && a.Status != domain.DelayBehind && a.AtRiskPlanCount == 0 {
		return nil
	}
	today := domain.Day(in.Today)

	overdue := make(map[string]int)
	for _, p := range in.Plans {
		if p.Status == domain.PlanPending && domain.Day(p.PlanDate).Before(today) {
			overdue[p.PlanContentID]++
		}
	}

	contents := append([]domain.PlanContent(nil), in.Contents...)
	sort.SliceStable(contents, func(i, j int) bool {
		if contents[i].Order != contents[j].Order {
			return contents[i].Order < contents[j].Order
		}
		return contents[i].ID < contents[j].ID
	})

	var out []Suggestion
	for _, c := range contents {
		if critical {
			if s, ok := shrink(c, in.Plans, today, in.PeriodEnd); ok {
				out = append(out, s)
				continue
			}
		}
		n := overdue[c.ID]
		if n == 0 && !critical {
			continue
		}
		if n == 0 {
			if _, unfinished := reschedule.UncompletedStart(c, in.Plans); !unfinished {
				continue
			}
		}
		prio := domain.PriorityMedium
		if critical || n >= 5 {
			prio = domain.PriorityHigh
		}
		out = append(out, Suggestion{
			Adjustment: domain.AdjustmentInput{PlanContentID: c.ID, ChangeType: domain.AdjustFull},
			Priority:   prio,
			Reason:     "regenerate remaining plans",
		})
	}
	return out
}

// shrink proposes a range that ends where the content's observed pace
// will reach by the period end.
func shrink(c domain.PlanContent, plans []domain.Plan, today, periodEnd time.Time) (Suggestion, bool) {
	start, ok := reschedule.UncompletedStart(c, plans)
	if !ok {
		return Suggestion{}, false
	}
	done := start - c.StartRange
	first, found := firstPlanDate(c.ID, plans)
	if done <= 0 || !found {
		return Suggestion{}, false
	}
	elapsed := domain.DaysBetween(first, today)
	remainingDays := domain.DaysBetween(today, periodEnd) + 1
	if elapsed <= 0 || remainingDays <= 0 {
		return Suggestion{}, false
	}

	pace := float64(done) / float64(elapsed)
	reachable := int(math.Floor(pace * float64(remainingDays)))
	if reachable < 1 {
		reachable = 1
	}
	newEnd := start + reachable - 1
	if newEnd >= c.EndRange {
		return Suggestion{}, false
	}
	lo := c.StartRange
	return Suggestion{
		Adjustment: domain.AdjustmentInput{
			PlanContentID: c.ID,
			ChangeType:    domain.AdjustRange,
			NewStartRange: &lo,
			NewEndRange:   &newEnd,
		},
		Priority: domain.PriorityHigh,
		Reason:   "shrink range to current pace",
	}, true
}

func firstPlanDate(contentID string, plans []domain.Plan) (time.Time, bool) {
	var first time.Time
	found := false
	for _, p := range plans {
		if p.PlanContentID != contentID {
			continue
		}
		if !found || p.PlanDate.Before(first) {
			first = p.PlanDate
			found = true
		}
	}
	return domain.Day(first), found
}
