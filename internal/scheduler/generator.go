package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// ErrInvalidBlock is returned for block definitions without capacity.
var ErrInvalidBlock = errors.New("invalid block definition")

// InvariantError reports a broken scheduling invariant. It always points
// at a bug, never at bad input.
type InvariantError struct {
	Op     string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("scheduler invariant violated in %s: %s", e.Op, e.Detail)
}

// GenerateInput is everything a generation run depends on.
type GenerateInput struct {
	Group     domain.PlanGroup
	Contents  []domain.PlanContent
	Durations DurationIndex
	Blocks    []domain.BlockDefinition
	// Academies are weekly classes; each blocks its time plus travel.
	Academies  []domain.AcademySchedule
	Exclusions []domain.Exclusion
	// PeriodStart and PeriodEnd bound the dates that receive plans. The
	// study/review cycle is always numbered from the group's period start.
	PeriodStart time.Time
	PeriodEnd   time.Time
	// Busy holds, per date key, windows already taken by kept plans.
	Busy map[string][]domain.StudyTimeSlot
	// SequenceBase holds, per date key, the first free sequence number.
	SequenceBase map[string]int
	// Continued marks plan content ids that already have earlier plans.
	Continued map[string]bool
}

// Shortfall records content that did not fully fit before the period end.
type Shortfall struct {
	PlanContentID   string `json:"plan_content_id"`
	RequiredMinutes int    `json:"required_minutes"`
	PlacedMinutes   int    `json:"placed_minutes"`
}

type GenerateResult struct {
	Plans      []domain.ScheduledPlan
	Shortfalls []Shortfall
}

// Generator expands blocks into dated slots and fills them with content.
type Generator struct {
	est *Estimator
	cfg config.SchedulerConfig
}

func NewGenerator(est *Estimator, cfg config.SchedulerConfig) *Generator {
	return &Generator{est: est, cfg: cfg}
}

// Estimator returns the estimator the generator sizes content with.
func (g *Generator) Estimator() *Estimator {
	return g.est
}

// Config returns the settings the generator lays out cycles with.
func (g *Generator) Config() config.SchedulerConfig {
	return g.cfg
}

type span struct{ lo, hi int }

// Generate produces date- and sequence-ordered plans for the window. Output
// depends only on the input, so identical inputs give identical plans.
func (g *Generator) Generate(in GenerateInput) (GenerateResult, error) {
	slotsByDay, err := weekdaySlots(in.Blocks)
	if err != nil {
		return GenerateResult{}, err
	}

	unavailable := weekdayUnavailable(in.Group.Lunch, in.Academies)

	contents := make([]domain.PlanContent, len(in.Contents))
	copy(contents, in.Contents)
	sort.SliceStable(contents, func(i, j int) bool {
		if contents[i].Order != contents[j].Order {
			return contents[i].Order < contents[j].Order
		}
		return contents[i].ID < contents[j].ID
	})

	demands := make([]Demand, 0, len(contents))
	byID := make(map[string]domain.PlanContent, len(contents))
	for _, c := range contents {
		byID[c.ID] = c
		minutes := g.est.Estimate(c, in.Durations.Lookup(c.Ref()), domain.DayStudy)
		if minutes <= 0 {
			continue
		}
		demands = append(demands, Demand{
			Content:      c,
			RangeStart:   c.StartRange,
			RangeEnd:     c.EndRange,
			TotalMinutes: minutes,
			DayType:      domain.DayStudy,
			Continued:    in.Continued[c.ID],
		})
	}

	windowStart := domain.Day(in.PeriodStart)
	windowEnd := domain.Day(in.PeriodEnd)
	// Dates outside the group period never receive plans.
	calStart, calEnd := domain.Day(in.Group.PeriodStart), domain.Day(in.Group.PeriodEnd)
	if in.Group.PeriodStart.IsZero() {
		calStart = windowStart
	}
	if in.Group.PeriodEnd.IsZero() {
		calEnd = windowEnd
	}
	cal := NewCalendar(calStart, calEnd,
		domain.PositiveOr(in.Group.StudyDays, g.cfg.StudyDays),
		domain.PositiveOr(in.Group.ReviewDays, g.cfg.ReviewDays),
		in.Blocks, in.Exclusions)

	var (
		plans   []domain.ScheduledPlan
		studied = make(map[int]map[string]span)
		last    time.Time
	)
	for _, day := range cal.Days() {
		if day.Date.Before(windowStart) || day.Date.After(windowEnd) {
			continue
		}
		if !last.IsZero() && !day.Date.After(last) {
			return GenerateResult{}, &InvariantError{Op: "generate", Detail: fmt.Sprintf("date %s does not follow %s", domain.DateKey(day.Date), domain.DateKey(last))}
		}
		last = day.Date
		key := domain.DateKey(day.Date)

		free := SubtractBusy(slotsByDay[day.Date.Weekday()], unavailable[day.Date.Weekday()])
		ledger := NewSlotLedger(SubtractBusy(free, in.Busy[key]))
		if ledger.Len() == 0 {
			continue
		}

		var alloc Allocation
		if day.DayType == domain.DayReview {
			alloc = Allocate(g.reviewDemands(contents, studied[day.Cycle], in.Durations), ledger, in.Group.DailyCapMinutes)
		} else {
			alloc = Allocate(pending(demands), ledger, in.Group.DailyCapMinutes)
			for _, d := range alloc.Demands {
				for i := range demands {
					// A content split around kept plans has one demand per run.
					if demands[i].Content.ID == d.Content.ID && demands[i].RangeStart == d.RangeStart {
						demands[i].Placed = d.Placed
					}
				}
			}
			for _, seg := range alloc.Segments {
				cycle := studied[day.Cycle]
				if cycle == nil {
					cycle = make(map[string]span)
					studied[day.Cycle] = cycle
				}
				if sp, ok := cycle[seg.PlanContentID]; ok {
					cycle[seg.PlanContentID] = span{lo: min(sp.lo, seg.RangeStart), hi: max(sp.hi, seg.RangeEnd)}
				} else {
					cycle[seg.PlanContentID] = span{lo: seg.RangeStart, hi: seg.RangeEnd}
				}
			}
		}

		dayPlans, err := toPlans(day, alloc.Segments, byID, in.SequenceBase[key])
		if err != nil {
			return GenerateResult{}, err
		}
		plans = append(plans, dayPlans...)
	}

	return GenerateResult{Plans: plans, Shortfalls: shortfallsOf(demands)}, nil
}

// shortfallsOf sums, per content, the demands that did not fully fit.
func shortfallsOf(demands []Demand) []Shortfall {
	var out []Shortfall
	idx := make(map[string]int)
	for _, d := range demands {
		i, seen := idx[d.Content.ID]
		if !seen {
			i = len(out)
			idx[d.Content.ID] = i
			out = append(out, Shortfall{PlanContentID: d.Content.ID})
		}
		out[i].RequiredMinutes += d.TotalMinutes
		out[i].PlacedMinutes += d.Placed
	}
	shortfalls := out[:0]
	for _, sf := range out {
		if sf.PlacedMinutes < sf.RequiredMinutes {
			shortfalls = append(shortfalls, sf)
		}
	}
	if len(shortfalls) == 0 {
		return nil
	}
	return shortfalls
}

// reviewDemands builds one review demand per content studied in the cycle,
// covering exactly the units studied, in content order.
func (g *Generator) reviewDemands(contents []domain.PlanContent, cycle map[string]span, durations DurationIndex) []Demand {
	if len(cycle) == 0 {
		return nil
	}
	var out []Demand
	for _, c := range contents {
		sp, ok := cycle[c.ID]
		if !ok {
			continue
		}
		minutes := g.est.EstimateRange(c.Ref(), sp.lo, sp.hi, durations.Lookup(c.Ref()), domain.DayReview)
		if minutes <= 0 {
			continue
		}
		out = append(out, Demand{
			Content:      c,
			RangeStart:   sp.lo,
			RangeEnd:     sp.hi,
			TotalMinutes: minutes,
			DayType:      domain.DayReview,
		})
	}
	return out
}

func pending(demands []Demand) []Demand {
	var out []Demand
	for _, d := range demands {
		if d.Remaining() > 0 {
			out = append(out, d)
		}
	}
	return out
}

func toPlans(day DayInfo, segs []Segment, byID map[string]domain.PlanContent, seqBase int) ([]domain.ScheduledPlan, error) {
	ordered := make([]Segment, len(segs))
	copy(ordered, segs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Start < ordered[j].Start
	})

	plans := make([]domain.ScheduledPlan, 0, len(ordered))
	for i, seg := range ordered {
		if seg.End <= seg.Start {
			return nil, &InvariantError{Op: "generate", Detail: fmt.Sprintf("empty segment %s-%s on %s", seg.Start, seg.End, domain.DateKey(day.Date))}
		}
		if seg.RangeEnd < seg.RangeStart {
			return nil, &InvariantError{Op: "generate", Detail: fmt.Sprintf("inverted range %d-%d for %s", seg.RangeStart, seg.RangeEnd, seg.PlanContentID)}
		}
		if i > 0 && seg.Start < ordered[i-1].End {
			return nil, &InvariantError{Op: "generate", Detail: fmt.Sprintf("overlapping segments at %s on %s", seg.Start, domain.DateKey(day.Date))}
		}
		c := byID[seg.PlanContentID]
		plans = append(plans, domain.ScheduledPlan{
			PlanDate:      day.Date,
			StartTime:     seg.Start,
			EndTime:       seg.End,
			PlanContentID: seg.PlanContentID,
			ContentType:   c.ContentType,
			ContentID:     c.ContentID,
			Subject:       c.Subject,
			RangeStart:    seg.RangeStart,
			RangeEnd:      seg.RangeEnd,
			DayType:       seg.DayType,
			IsPartial:     seg.IsPartial,
			IsContinued:   seg.IsContinued,
			Sequence:      seqBase + i,
		})
	}
	return plans, nil
}

func weekdaySlots(blocks []domain.BlockDefinition) (map[time.Weekday][]domain.StudyTimeSlot, error) {
	out := make(map[time.Weekday][]domain.StudyTimeSlot)
	for _, b := range blocks {
		if b.EndTime <= b.StartTime {
			return nil, fmt.Errorf("%w: %s %s-%s", ErrInvalidBlock, b.DayOfWeek, b.StartTime, b.EndTime)
		}
		out[b.DayOfWeek] = append(out[b.DayOfWeek], b.Slot())
	}
	for wd := range out {
		slots := out[wd]
		sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })
	}
	return out, nil
}

// weekdayUnavailable collects, per weekday, the lunch window and every
// academy class widened by its travel time.
func weekdayUnavailable(lunch *domain.StudyTimeSlot, academies []domain.AcademySchedule) map[time.Weekday][]domain.StudyTimeSlot {
	out := make(map[time.Weekday][]domain.StudyTimeSlot)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if lunch != nil {
			out[wd] = append(out[wd], *lunch)
		}
	}
	for _, a := range academies {
		out[a.DayOfWeek] = append(out[a.DayOfWeek], a.Busy())
	}
	return out
}

// SubtractBusy removes busy windows from slots, splitting slots where a
// busy window falls inside them.
func SubtractBusy(slots, busy []domain.StudyTimeSlot) []domain.StudyTimeSlot {
	if len(busy) == 0 {
		return slots
	}
	out := make([]domain.StudyTimeSlot, 0, len(slots))
	for _, s := range slots {
		parts := []domain.StudyTimeSlot{s}
		for _, b := range busy {
			var next []domain.StudyTimeSlot
			for _, p := range parts {
				if b.End <= p.Start || b.Start >= p.End {
					next = append(next, p)
					continue
				}
				if b.Start > p.Start {
					next = append(next, domain.StudyTimeSlot{Start: p.Start, End: b.Start})
				}
				if b.End < p.End {
					next = append(next, domain.StudyTimeSlot{Start: b.End, End: p.End})
				}
			}
			parts = next
		}
		out = append(out, parts...)
	}
	return out
}
