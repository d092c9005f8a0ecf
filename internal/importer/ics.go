package importer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

// DefaultExclusionKeywords maps SUMMARY keywords to exclusion types.
// Events matching none of them are holidays.
var DefaultExclusionKeywords = map[string]domain.ExclusionType{
	"vacation": domain.ExclusionVacation,
	"personal": domain.ExclusionPersonal,
}

// ParseExclusionsICS turns every VEVENT of a calendar into an exclusion
// on its start date. Multi-day events exclude every day up to, but not
// including, an all-day DTEND. Dates repeat at most once.
func ParseExclusionsICS(r io.Reader, groupID string, keywords map[string]domain.ExclusionType) ([]domain.Exclusion, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}
	if keywords == nil {
		keywords = DefaultExclusionKeywords
	}

	seen := make(map[string]bool)
	var out []domain.Exclusion
	for _, evt := range cal.Events() {
		start, allDay, err := eventDate(evt, ics.ComponentPropertyDtStart)
		if err != nil {
			continue
		}
		last := start
		if end, endAllDay, err := eventDate(evt, ics.ComponentPropertyDtEnd); err == nil && end.After(start) {
			last = end
			if endAllDay || allDay {
				last = end.AddDate(0, 0, -1)
			}
		}

		summary := ""
		if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil {
			summary = strings.TrimSpace(p.Value)
		}
		typ := classify(summary, keywords)

		for d := start; !d.After(last); d = d.AddDate(0, 0, 1) {
			key := domain.DateKey(d)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, domain.Exclusion{
				ID:      uuid.New().String(),
				GroupID: groupID,
				Date:    d,
				Type:    typ,
				Reason:  summary,
			})
		}
	}
	return out, nil
}

func classify(summary string, keywords map[string]domain.ExclusionType) domain.ExclusionType {
	lower := strings.ToLower(summary)
	for kw, typ := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return typ
		}
	}
	return domain.ExclusionHoliday
}

// eventDate returns the calendar date of a DTSTART or DTEND property and
// whether it was an all-day value. Times keep their written wall date.
func eventDate(evt *ics.VEvent, prop ics.ComponentProperty) (time.Time, bool, error) {
	p := evt.GetProperty(prop)
	if p == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", prop)
	}
	val := strings.TrimSpace(p.Value)
	if t, err := time.Parse("20060102", val); err == nil {
		return domain.Day(t), true, nil
	}
	for _, layout := range []string{"20060102T150405Z", "20060102T150405"} {
		if t, err := time.Parse(layout, val); err == nil {
			return domain.Day(t), false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("unparseable date %q", val)
}
