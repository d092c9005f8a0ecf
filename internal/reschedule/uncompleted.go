package reschedule

import "github.com/alexanderramin/studyplan/internal/domain"

// unitSet is the set of units of one content already covered by plans.
type unitSet map[int]bool

// consumedUnits collects, per content, the units covered by study plans
// that stay in place. Skipped plans do not consume their units.
func consumedUnits(kept []domain.Plan) map[domain.ContentRef]unitSet {
	out := make(map[domain.ContentRef]unitSet)
	for _, p := range kept {
		if p.DayType != domain.DayStudy || p.Status == domain.PlanSkipped {
			continue
		}
		ref := domain.ContentRef{Type: p.ContentType, ID: p.ContentID}
		set := out[ref]
		if set == nil {
			set = make(unitSet)
			out[ref] = set
		}
		for u := p.RangeStart; u <= p.RangeEnd; u++ {
			set[u] = true
		}
	}
	return out
}

// unitRun is a contiguous range of units.
type unitRun struct{ lo, hi int }

// unconsumedRuns splits [start, end] into the maximal runs of units not in
// consumed, in ascending order. Units covered by kept plans are never
// handed out again.
func unconsumedRuns(start, end int, consumed unitSet) []unitRun {
	var out []unitRun
	for u := start; u <= end; u++ {
		if consumed[u] {
			continue
		}
		if n := len(out); n > 0 && out[n-1].hi == u-1 {
			out[n-1].hi = u
			continue
		}
		out = append(out, unitRun{lo: u, hi: u})
	}
	return out
}

// UncompletedStart reports where the unfinished part of c begins, given
// the plans recorded for it. Only completed and in-progress study plans
// count as done.
func UncompletedStart(c domain.PlanContent, plans []domain.Plan) (int, bool) {
	var done []domain.Plan
	for _, p := range plans {
		if p.PlanContentID != c.ID {
			continue
		}
		if p.Status == domain.PlanCompleted || p.Status == domain.PlanInProgress {
			done = append(done, p)
		}
	}
	runs := unconsumedRuns(c.StartRange, c.EndRange, consumedUnits(done)[c.Ref()])
	if len(runs) == 0 {
		return 0, false
	}
	return runs[0].lo, true
}
