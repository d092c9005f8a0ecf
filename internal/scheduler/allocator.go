package scheduler

import (
	"sort"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// Demand is the outstanding work of one content within an allocation.
// Placed tracks minutes already scheduled (on earlier slots or days), so a
// demand can be carried forward and its unit range stays proportional.
type Demand struct {
	Content      domain.PlanContent
	RangeStart   int
	RangeEnd     int
	TotalMinutes int
	Placed       int
	DayType      domain.DayType
	// Continued marks a demand whose content already has earlier plans, so
	// even its first new segment continues the chain.
	Continued bool
}

// Remaining returns the minutes still to place.
func (d Demand) Remaining() int {
	if r := d.TotalMinutes - d.Placed; r > 0 {
		return r
	}
	return 0
}

// Segment is one contiguous placement of part of a demand into one slot.
type Segment struct {
	PlanContentID string
	Start         domain.Clock
	End           domain.Clock
	Minutes       int
	RangeStart    int
	RangeEnd      int
	IsPartial     bool
	IsContinued   bool
	SlotIndex     int
	DayType       domain.DayType
	Content       domain.PlanContent
}

type slotState struct {
	slot   domain.StudyTimeSlot
	cursor domain.Clock
}

func (s slotState) free() int {
	if s.slot.End <= s.cursor {
		return 0
	}
	return int(s.slot.End - s.cursor)
}

// SlotLedger tracks free capacity of one day's slots during a single
// allocation pass. Slots are held in chronological order. The input slice
// is never modified.
type SlotLedger struct {
	slots []slotState
}

// NewSlotLedger copies slots into a fresh ledger sorted by start time.
func NewSlotLedger(slots []domain.StudyTimeSlot) *SlotLedger {
	l := &SlotLedger{slots: make([]slotState, 0, len(slots))}
	for _, s := range slots {
		if s.Minutes() <= 0 {
			continue
		}
		l.slots = append(l.slots, slotState{slot: s, cursor: s.Start})
	}
	sort.SliceStable(l.slots, func(i, j int) bool {
		return l.slots[i].slot.Start < l.slots[j].slot.Start
	})
	return l
}

// TotalFree returns the free minutes across all slots.
func (l *SlotLedger) TotalFree() int {
	total := 0
	for _, s := range l.slots {
		total += s.free()
	}
	return total
}

// Free returns the free minutes of slot i.
func (l *SlotLedger) Free(i int) int {
	return l.slots[i].free()
}

// Len returns the number of usable slots.
func (l *SlotLedger) Len() int {
	return len(l.slots)
}

// bestFit returns the slot with the smallest free capacity that still
// holds need, earliest first on ties, or -1.
func (l *SlotLedger) bestFit(need int) int {
	best := -1
	for i, s := range l.slots {
		f := s.free()
		if f <= 0 || f < need {
			continue
		}
		if best == -1 || f < l.slots[best].free() {
			best = i
		}
	}
	return best
}

// largest returns the slot with the most free capacity, earliest first on
// ties, or -1 when every slot is full.
func (l *SlotLedger) largest() int {
	best := -1
	for i, s := range l.slots {
		f := s.free()
		if f <= 0 {
			continue
		}
		if best == -1 || f > l.slots[best].free() {
			best = i
		}
	}
	return best
}

func (l *SlotLedger) take(i, minutes int) (domain.Clock, domain.Clock) {
	start := l.slots[i].cursor
	end := start.Add(minutes)
	l.slots[i].cursor = end
	return start, end
}

// Allocation is the outcome of one allocation pass.
type Allocation struct {
	Segments []Segment
	// Demands holds every input demand with Placed updated; callers carry
	// the ones with Remaining() > 0 forward.
	Demands []Demand
	Ledger  *SlotLedger
}

// Unplaced returns the demands that still have minutes outstanding.
func (a Allocation) Unplaced() []Demand {
	var out []Demand
	for _, d := range a.Demands {
		if d.Remaining() > 0 {
			out = append(out, d)
		}
	}
	return out
}

// PlacedMinutes returns the total minutes placed in this pass.
func (a Allocation) PlacedMinutes() int {
	total := 0
	for _, s := range a.Segments {
		total += s.Minutes
	}
	return total
}

// Allocate packs demands, in order, into the ledger using best fit. When no
// slot can hold the remainder whole, the largest free slot takes a partial
// segment and the rest flows into the other free slots in chronological
// order. capMinutes > 0 bounds the minutes placed in this pass.
func Allocate(demands []Demand, ledger *SlotLedger, capMinutes int) Allocation {
	out := Allocation{
		Demands: make([]Demand, len(demands)),
		Ledger:  ledger,
	}
	copy(out.Demands, demands)

	budget := capMinutes
	capped := func(m int) int {
		if capMinutes > 0 && budget < m {
			return budget
		}
		return m
	}
	for di := range out.Demands {
		d := &out.Demands[di]
		if d.Remaining() == 0 {
			continue
		}
		if capMinutes > 0 && budget <= 0 {
			break
		}
		need := capped(d.Remaining())

		idx := ledger.bestFit(need)
		if idx == -1 {
			idx = ledger.largest()
		}
		if idx == -1 {
			continue
		}
		minutes := min(need, ledger.Free(idx))
		out.Segments = append(out.Segments, place(d, ledger, idx, minutes))
		budget -= minutes

		// Overflow goes to the remaining free slots in chronological order.
		for i := 0; i < ledger.Len() && d.Remaining() > 0; i++ {
			if capMinutes > 0 && budget <= 0 {
				break
			}
			f := ledger.Free(i)
			if f <= 0 {
				continue
			}
			m := capped(min(d.Remaining(), f))
			out.Segments = append(out.Segments, place(d, ledger, i, m))
			budget -= m
		}
	}
	return out
}

// place records minutes of d in slot idx and builds the segment.
func place(d *Demand, ledger *SlotLedger, idx, minutes int) Segment {
	start, end := ledger.take(idx, minutes)
	from, to := unitSpan(d.RangeStart, d.RangeEnd, d.TotalMinutes, d.Placed, d.Placed+minutes)
	seg := Segment{
		PlanContentID: d.Content.ID,
		Start:         start,
		End:           end,
		Minutes:       minutes,
		RangeStart:    from,
		RangeEnd:      to,
		IsContinued:   d.Placed > 0 || d.Continued,
		SlotIndex:     idx,
		DayType:       d.DayType,
		Content:       d.Content,
	}
	d.Placed += minutes
	seg.IsPartial = d.Remaining() > 0
	return seg
}

// unitSpan maps the minute interval [from, to) of a demand onto its unit
// range proportionally.
func unitSpan(rangeStart, rangeEnd, total, from, to int) (int, int) {
	units := rangeEnd - rangeStart + 1
	if units <= 0 || total <= 0 {
		return rangeStart, rangeEnd
	}
	lo := rangeStart + from*units/total
	hi := rangeStart + ceilDiv(to*units, total) - 1
	if hi < lo {
		hi = lo
	}
	if hi > rangeEnd {
		hi = rangeEnd
	}
	return lo, hi
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Allocator wires the estimator to the packing routine for callers that
// work with whole contents rather than demands.
type Allocator struct {
	est *Estimator
}

func NewAllocator(est *Estimator) *Allocator {
	return &Allocator{est: est}
}

// Assign estimates each content and packs it into slots. totalHoursHint > 0
// caps the minutes placed. Content with zero required minutes produces no
// segment; content that does not fit is simply placed partially or not at
// all, which callers observe through Allocation.Unplaced.
func (a *Allocator) Assign(contents []domain.PlanContent, slots []domain.StudyTimeSlot, durations DurationIndex, dayType domain.DayType, totalHoursHint float64) Allocation {
	ledger := NewSlotLedger(slots)
	if len(contents) == 0 || ledger.Len() == 0 {
		return Allocation{Ledger: ledger}
	}
	demands := make([]Demand, 0, len(contents))
	for _, c := range contents {
		minutes := a.est.Estimate(c, durations.Lookup(c.Ref()), dayType)
		if minutes <= 0 {
			continue
		}
		demands = append(demands, Demand{
			Content:      c,
			RangeStart:   c.StartRange,
			RangeEnd:     c.EndRange,
			TotalMinutes: minutes,
			DayType:      dayType,
		})
	}
	capMinutes := 0
	if totalHoursHint > 0 {
		capMinutes = roundHalfUp(totalHoursHint * 60)
	}
	return Allocate(demands, ledger, capMinutes)
}
