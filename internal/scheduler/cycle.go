package scheduler

import (
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// DayInfo classifies one schedulable date.
type DayInfo struct {
	Date    time.Time
	DayType domain.DayType
	// Cycle is the 1-based study/review cycle the date belongs to.
	Cycle int
	// Position is the 1-based index of the date within its cycle.
	Position int
}

// Calendar holds the inputs that decide which dates are schedulable.
type Calendar struct {
	Start      time.Time
	End        time.Time
	StudyDays  int
	ReviewDays int
	Excluded   map[string]bool
	Weekdays   map[time.Weekday]bool
}

// NewCalendar builds a calendar for a group period from its blocks and
// exclusions.
func NewCalendar(start, end time.Time, studyDays, reviewDays int, blocks []domain.BlockDefinition, exclusions []domain.Exclusion) Calendar {
	cal := Calendar{
		Start:      domain.Day(start),
		End:        domain.Day(end),
		StudyDays:  studyDays,
		ReviewDays: reviewDays,
		Excluded:   make(map[string]bool, len(exclusions)),
		Weekdays:   make(map[time.Weekday]bool),
	}
	for _, ex := range exclusions {
		cal.Excluded[domain.DateKey(ex.Date)] = true
	}
	for _, b := range blocks {
		if b.Slot().Minutes() > 0 {
			cal.Weekdays[b.DayOfWeek] = true
		}
	}
	return cal
}

// Days numbers every schedulable date in the calendar. Excluded dates and
// weekdays without blocks are skipped and do not advance the cycle.
func (c Calendar) Days() []DayInfo {
	length := c.StudyDays + c.ReviewDays
	if length <= 0 || c.End.Before(c.Start) {
		return nil
	}
	var days []DayInfo
	n := 0
	for d := c.Start; !d.After(c.End); d = d.AddDate(0, 0, 1) {
		if c.Excluded[domain.DateKey(d)] || !c.Weekdays[d.Weekday()] {
			continue
		}
		pos := n%length + 1
		info := DayInfo{Date: d, Cycle: n/length + 1, Position: pos, DayType: domain.DayStudy}
		if pos > c.StudyDays {
			info.DayType = domain.DayReview
		}
		days = append(days, info)
		n++
	}
	return days
}
