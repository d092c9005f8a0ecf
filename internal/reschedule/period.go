package reschedule

import (
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (r DateRange) Contains(t time.Time) bool {
	d := domain.Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Window selects the dates a reschedule may rewrite. Placement takes
// precedence over Reschedule; with neither, the window runs from today
// (or tomorrow) to the end of the group period.
type Window struct {
	Placement    *DateRange `json:"placement,omitempty"`
	Reschedule   *DateRange `json:"reschedule,omitempty"`
	IncludeToday bool       `json:"include_today"`
}

// AdjustedPeriod resolves the regeneration window. It never starts before
// today and never ends after the group's period end.
func AdjustedPeriod(w Window, today, periodEnd time.Time) (DateRange, error) {
	today = domain.Day(today)
	periodEnd = domain.Day(periodEnd)

	var r DateRange
	switch {
	case w.Placement != nil:
		r = DateRange{Start: domain.Day(w.Placement.Start), End: domain.Day(w.Placement.End)}
	case w.Reschedule != nil:
		r = DateRange{Start: domain.Day(w.Reschedule.Start), End: domain.Day(w.Reschedule.End)}
	default:
		start := today
		if !w.IncludeToday {
			start = today.AddDate(0, 0, 1)
		}
		r = DateRange{Start: start, End: periodEnd}
	}

	if r.Start.Before(today) {
		r.Start = today
	}
	if r.End.After(periodEnd) {
		r.End = periodEnd
	}
	if r.Start.After(r.End) {
		return DateRange{}, &ValidationError{Reason: reasonInvalidPeriod}
	}
	return r, nil
}
