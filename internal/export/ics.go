package export

import (
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	ics "github.com/arran4/golang-ical"
)

const floatingLayout = "20060102T150405"

// WriteICS writes one VEVENT per plan. Start and end are floating local
// times since blocks carry no timezone.
func WriteICS(w io.Writer, group *domain.PlanGroup, plans []domain.Plan, now time.Time) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//studyplan//schedule export//EN")
	cal.SetXWRCalName(group.Name)

	for _, p := range plans {
		evt := cal.AddEvent(p.ID + "@studyplan")
		evt.SetDtStampTime(now.UTC())
		evt.SetProperty(ics.ComponentPropertyDtStart, atClock(p.PlanDate, p.StartTime).Format(floatingLayout))
		evt.SetProperty(ics.ComponentPropertyDtEnd, atClock(p.PlanDate, p.EndTime).Format(floatingLayout))
		evt.SetSummary(Summary(p))
		evt.SetDescription(fmt.Sprintf("%s %s, status %s", p.ContentType, p.ContentID, p.Status))
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

// Summary is the one-line title of a plan.
func Summary(p domain.Plan) string {
	label := p.ContentID
	if p.Subject != "" {
		label = p.Subject + " " + label
	}
	s := fmt.Sprintf("%s %d-%d", label, p.RangeStart, p.RangeEnd)
	if p.DayType == domain.DayReview {
		s = "Review: " + s
	}
	return s
}

func atClock(day time.Time, c domain.Clock) time.Time {
	return domain.Day(day).Add(time.Duration(c) * time.Minute)
}
