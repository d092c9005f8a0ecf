package scheduler

import (
	"math"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

type CompletionKind string

const (
	CompletionUnknown CompletionKind = "unknown"
	CompletionToday   CompletionKind = "today"
	CompletionDate    CompletionKind = "date"
)

// CompletionEstimate is the extrapolated finish of a group. Date is only
// meaningful for CompletionDate.
type CompletionEstimate struct {
	Kind CompletionKind
	Date time.Time
}

func (c CompletionEstimate) String() string {
	if c.Kind == CompletionDate {
		return domain.DateKey(c.Date)
	}
	return string(c.Kind)
}

type SuggestedAction struct {
	Kind     domain.ActionKind
	Priority domain.Priority
}

// DelayAnalysis compares actual and expected progress of one group.
type DelayAnalysis struct {
	GroupID              string
	TotalPlans           int
	CompletedPlans       int
	ProgressRate         float64
	ExpectedProgressRate float64
	Status               domain.DelayStatus
	AtRiskPlanCount      int
	AverageDelayDays     float64
	EstimatedCompletion  CompletionEstimate
	SuggestedActions     []SuggestedAction
}

type DelayInput struct {
	GroupID string
	Plans   []domain.Plan
	Today   time.Time
}

// ClassifyDelay buckets the gap between actual and expected progress.
// Each bucket includes its lower bound.
func ClassifyDelay(progressRate, expectedRate float64) domain.DelayStatus {
	diff := progressRate - expectedRate
	switch {
	case diff >= 10:
		return domain.DelayAhead
	case diff >= -10:
		return domain.DelayOnTrack
	case diff >= -25:
		return domain.DelayBehind
	default:
		return domain.DelayCritical
	}
}

// EstimateCompletion extrapolates the current pace to the remaining plans.
func EstimateCompletion(completed, total, elapsedDays int, today time.Time) CompletionEstimate {
	if completed == 0 {
		return CompletionEstimate{Kind: CompletionUnknown}
	}
	if completed >= total {
		return CompletionEstimate{Kind: CompletionToday}
	}
	daysPerPlan := float64(elapsedDays) / float64(completed)
	daysToComplete := int(math.Ceil(float64(total-completed) * daysPerPlan))
	return CompletionEstimate{Kind: CompletionDate, Date: domain.Day(today).AddDate(0, 0, daysToComplete)}
}

// SuggestActions maps a status and the overdue plan count to actions.
func SuggestActions(status domain.DelayStatus, atRiskPlans int) []SuggestedAction {
	var actions []SuggestedAction
	switch status {
	case domain.DelayCritical:
		actions = append(actions,
			SuggestedAction{Kind: domain.ActionReschedule, Priority: domain.PriorityHigh},
			SuggestedAction{Kind: domain.ActionReduce, Priority: domain.PriorityHigh})
	case domain.DelayBehind:
		actions = append(actions, SuggestedAction{Kind: domain.ActionReschedule, Priority: domain.PriorityMedium})
	default:
		actions = append(actions, SuggestedAction{Kind: domain.ActionMaintain, Priority: domain.PriorityLow})
	}
	if atRiskPlans > 0 {
		p := domain.PriorityMedium
		if atRiskPlans >= 5 {
			p = domain.PriorityHigh
		}
		actions = append(actions, SuggestedAction{Kind: domain.ActionReschedule, Priority: p})
	}
	return actions
}

// AnalyzeDelay derives the delay analysis of one group from its plans.
func AnalyzeDelay(in DelayInput) DelayAnalysis {
	today := domain.Day(in.Today)
	a := DelayAnalysis{GroupID: in.GroupID, TotalPlans: len(in.Plans)}
	if a.TotalPlans == 0 {
		a.Status = domain.DelayOnTrack
		a.EstimatedCompletion = CompletionEstimate{Kind: CompletionUnknown}
		a.SuggestedActions = SuggestActions(a.Status, 0)
		return a
	}

	var (
		due       int
		delaySum  int
		firstDate time.Time
	)
	for _, p := range in.Plans {
		d := domain.Day(p.PlanDate)
		if firstDate.IsZero() || d.Before(firstDate) {
			firstDate = d
		}
		if p.Status == domain.PlanCompleted {
			a.CompletedPlans++
		}
		if d.Before(today) {
			due++
			if p.Status == domain.PlanPending {
				a.AtRiskPlanCount++
				delaySum += domain.DaysBetween(d, today)
			}
		}
	}

	total := float64(a.TotalPlans)
	a.ProgressRate = float64(a.CompletedPlans) / total * 100
	a.ExpectedProgressRate = float64(due) / total * 100
	a.Status = ClassifyDelay(a.ProgressRate, a.ExpectedProgressRate)
	if a.AtRiskPlanCount > 0 {
		a.AverageDelayDays = float64(delaySum) / float64(a.AtRiskPlanCount)
	}

	elapsed := domain.DaysBetween(firstDate, today)
	if elapsed < 0 {
		elapsed = 0
	}
	a.EstimatedCompletion = EstimateCompletion(a.CompletedPlans, a.TotalPlans, elapsed, today)
	a.SuggestedActions = SuggestActions(a.Status, a.AtRiskPlanCount)
	return a
}

// OverallStatus rolls group statuses up for one student.
func OverallStatus(analyses []DelayAnalysis) domain.OverallStatus {
	behind := false
	for _, a := range analyses {
		switch a.Status {
		case domain.DelayCritical:
			return domain.OverallCritical
		case domain.DelayBehind:
			behind = true
		}
	}
	if behind {
		return domain.OverallNeedsAttention
	}
	return domain.OverallGood
}

// DelayRecommendation is the workload recommendation derived from the
// average delay of overdue plans.
type DelayRecommendation struct {
	Priority int
	Level    string
}

// RecommendForDelay returns false when the delay does not warrant one.
func RecommendForDelay(averageDelayDays float64) (DelayRecommendation, bool) {
	switch {
	case averageDelayDays < 2:
		return DelayRecommendation{}, false
	case averageDelayDays < 3:
		return DelayRecommendation{Priority: 4, Level: "somewhat-high"}, true
	case averageDelayDays < 5:
		return DelayRecommendation{Priority: 4, Level: "high"}, true
	default:
		return DelayRecommendation{Priority: 5, Level: "very-high"}, true
	}
}
