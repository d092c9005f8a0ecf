package reschedule

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"time"

	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/google/uuid"
)

// Snapshot is the persisted state of one group that a reschedule reads.
type Snapshot struct {
	Group      domain.PlanGroup             `json:"group"`
	Contents   []domain.PlanContent         `json:"contents"`
	Durations  []domain.ContentDurationInfo `json:"durations"`
	Blocks     []domain.BlockDefinition     `json:"blocks"`
	Academies  []domain.AcademySchedule     `json:"academies,omitempty"`
	Exclusions []domain.Exclusion           `json:"exclusions"`
	Plans      []domain.Plan                `json:"plans"`
}

// Request is a proposed set of adjustments and the window they apply to.
type Request struct {
	Adjustments []domain.AdjustmentInput `json:"adjustments"`
	Window      Window                   `json:"window"`
	Today       time.Time                `json:"today"`
}

// Result is the proposed diff of one reschedule. It is never applied by
// the engine itself.
type Result struct {
	GroupID      string    `json:"group_id"`
	GroupVersion int       `json:"group_version"`
	Period       DateRange `json:"period"`

	Adjustments    []domain.AdjustmentInput `json:"adjustments"`
	ContentChanges []domain.PlanContent     `json:"content_changes"`
	Subjects       []string                 `json:"subjects"`

	PlansBefore      []domain.Plan `json:"plans_before"`
	PlansAfter       []domain.Plan `json:"plans_after"`
	PlansBeforeCount int           `json:"plans_before_count"`
	PlansAfterCount  int           `json:"plans_after_count"`

	AffectedDates      []string              `json:"affected_dates"`
	EstimatedHours     float64               `json:"estimated_hours"`
	AdjustmentsSummary AdjustmentsSummary    `json:"adjustments_summary"`
	Operations         []Operation           `json:"operations"`
	Summary            DiffSummary           `json:"summary"`
	Shortfalls         []scheduler.Shortfall `json:"shortfalls,omitempty"`
}

// Empty reports whether committing the result would change nothing.
func (r *Result) Empty() bool {
	return len(r.Operations) == 0 && len(r.ContentChanges) == 0
}

// Engine turns adjustments plus a snapshot into a proposed diff. It does
// no I/O and is safe for concurrent use.
type Engine struct {
	gen   *scheduler.Generator
	newID func() string
}

type EngineOption func(*Engine)

// WithIDGenerator overrides how ids of created plans are minted.
func WithIDGenerator(fn func() string) EngineOption {
	return func(e *Engine) {
		e.newID = fn
	}
}

func NewEngine(gen *scheduler.Generator, opts ...EngineOption) *Engine {
	e := &Engine{gen: gen, newID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PreviewKey hashes the request together with the engine's own settings,
// so engines sizing or cycling differently never share a preview.
func (e *Engine) PreviewKey(snap Snapshot, req Request) (PreviewKey, error) {
	return previewKey([]config.SchedulerConfig{e.gen.Estimator().Config(), e.gen.Config()}, snap, req)
}

// Validate checks adjustments against contents without computing anything.
func (e *Engine) Validate(adjustments []domain.AdjustmentInput, contents []domain.PlanContent) error {
	return Validate(adjustments, contents)
}

// Apply validates the request and computes the resulting diff.
func (e *Engine) Apply(snap Snapshot, req Request) (*Result, error) {
	if err := Validate(req.Adjustments, snap.Contents); err != nil {
		return nil, err
	}
	if err := snap.Group.Validate(); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	period, err := AdjustedPeriod(req.Window, req.Today, snap.Group.PeriodEnd)
	if err != nil {
		return nil, err
	}

	merged, affected := mergeAdjustments(snap.Contents, req.Adjustments)

	var regen, kept []domain.Plan
	for _, p := range snap.Plans {
		if affected[p.PlanContentID] && p.Status.Reschedulable() &&
			(period.Contains(p.PlanDate) || domain.Day(p.PlanDate).Before(period.Start)) {
			regen = append(regen, p)
			continue
		}
		kept = append(kept, p)
	}

	consumed := consumedUnits(kept)
	continued := make(map[string]bool)
	for _, p := range kept {
		if affected[p.PlanContentID] && p.DayType == domain.DayStudy && p.Status != domain.PlanSkipped {
			continued[p.PlanContentID] = true
		}
	}

	var (
		toGenerate []domain.PlanContent
		changes    []domain.PlanContent
		subjects   []string
	)
	original := make(map[string]domain.PlanContent, len(snap.Contents))
	for _, c := range snap.Contents {
		original[c.ID] = c
	}
	for _, c := range merged {
		if !affected[c.ID] {
			continue
		}
		if c != original[c.ID] {
			changes = append(changes, c)
		}
		if c.Subject != "" && !slices.Contains(subjects, c.Subject) {
			subjects = append(subjects, c.Subject)
		}
		for _, run := range unconsumedRuns(c.StartRange, c.EndRange, consumed[c.Ref()]) {
			remaining := c
			remaining.StartRange, remaining.EndRange = run.lo, run.hi
			toGenerate = append(toGenerate, remaining)
		}
	}

	busy := make(map[string][]domain.StudyTimeSlot)
	seqBase := make(map[string]int)
	for _, p := range kept {
		if !period.Contains(p.PlanDate) {
			continue
		}
		dk := domain.DateKey(p.PlanDate)
		busy[dk] = append(busy[dk], domain.StudyTimeSlot{Start: p.StartTime, End: p.EndTime})
		if p.Sequence+1 > seqBase[dk] {
			seqBase[dk] = p.Sequence + 1
		}
	}

	gen, err := e.gen.Generate(scheduler.GenerateInput{
		Group:        snap.Group,
		Contents:     toGenerate,
		Durations:    scheduler.NewDurationIndex(snap.Durations),
		Blocks:       snap.Blocks,
		Academies:    snap.Academies,
		Exclusions:   snap.Exclusions,
		PeriodStart:  period.Start,
		PeriodEnd:    period.End,
		Busy:         busy,
		SequenceBase: seqBase,
		Continued:    continued,
	})
	if err != nil {
		if errors.Is(err, scheduler.ErrInvalidBlock) {
			return nil, &ValidationError{Reason: fmt.Sprintf("%s: %v", reasonInvalidBlocks, err)}
		}
		return nil, &ComputationError{Op: "generate", Err: err}
	}
	if err := checkGenerated(gen.Plans, period); err != nil {
		return nil, &ComputationError{Op: "generate", Err: err}
	}

	diff := diffPlans(regen, gen.Plans, snap.Group.ID, e.newID)

	minutes := 0
	for _, p := range gen.Plans {
		minutes += p.Minutes()
	}

	sortPlans(regen)
	sort.Strings(subjects)
	return &Result{
		GroupID:            snap.Group.ID,
		GroupVersion:       snap.Group.Version,
		Period:             period,
		Adjustments:        req.Adjustments,
		ContentChanges:     changes,
		Subjects:           subjects,
		PlansBefore:        regen,
		PlansAfter:         diff.after,
		PlansBeforeCount:   len(regen),
		PlansAfterCount:    len(diff.after),
		AffectedDates:      diff.affectedDates,
		EstimatedHours:     math.Round(float64(minutes)/60*10) / 10,
		AdjustmentsSummary: summarizeAdjustments(req.Adjustments),
		Operations:         diff.ops,
		Summary:            diff.summary,
		Shortfalls:         gen.Shortfalls,
	}, nil
}

// checkGenerated guards the determinism contract the preview cache relies
// on: plans stay inside the window and dates never go backwards.
func checkGenerated(plans []domain.ScheduledPlan, period DateRange) error {
	for i, p := range plans {
		if !period.Contains(p.PlanDate) {
			return &scheduler.InvariantError{Op: "window", Detail: fmt.Sprintf("plan on %s outside %s..%s",
				domain.DateKey(p.PlanDate), domain.DateKey(period.Start), domain.DateKey(period.End))}
		}
		if i > 0 && p.PlanDate.Before(plans[i-1].PlanDate) {
			return &scheduler.InvariantError{Op: "order", Detail: fmt.Sprintf("date %s precedes %s",
				domain.DateKey(p.PlanDate), domain.DateKey(plans[i-1].PlanDate))}
		}
	}
	return nil
}

func sortPlans(plans []domain.Plan) {
	sort.SliceStable(plans, func(i, j int) bool {
		if !plans[i].PlanDate.Equal(plans[j].PlanDate) {
			return plans[i].PlanDate.Before(plans[j].PlanDate)
		}
		return plans[i].Sequence < plans[j].Sequence
	})
}
