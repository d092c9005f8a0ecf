package domain

import (
	"fmt"
	"time"
)

// PlanGroup is a student's scheduling container for one period.
type PlanGroup struct {
	ID          string
	StudentID   string
	Name        string
	Mode        GroupMode
	PeriodStart time.Time
	PeriodEnd   time.Time
	// StudyDays and ReviewDays define the study/review cycle. Zero means the
	// configured default applies.
	StudyDays  int
	ReviewDays int
	// DailyCapMinutes limits how much is placed per day; zero is unlimited.
	DailyCapMinutes int
	// Lunch, when set, is kept free on every study and review day.
	Lunch  *StudyTimeSlot
	Status GroupStatus
	// Version increments on every committed reschedule and backs the
	// optimistic check at the persistence boundary.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Validate checks the structural invariants of a group.
func (g *PlanGroup) Validate() error {
	if g.StudentID == "" {
		return fmt.Errorf("student id is required")
	}
	if g.PeriodEnd.Before(g.PeriodStart) {
		return fmt.Errorf("period start %s is after period end %s",
			DateKey(g.PeriodStart), DateKey(g.PeriodEnd))
	}
	if g.StudyDays < 0 || g.ReviewDays < 0 {
		return fmt.Errorf("study and review days must not be negative")
	}
	if g.Lunch != nil && g.Lunch.Minutes() == 0 {
		return fmt.Errorf("lunch %s-%s is empty", g.Lunch.Start, g.Lunch.End)
	}
	return nil
}

// PlanContent is one ordered demand unit of a group.
type PlanContent struct {
	ID          string      `json:"id"`
	GroupID     string      `json:"group_id"`
	ContentType ContentType `json:"content_type"`
	ContentID   string      `json:"content_id"`
	StartRange  int         `json:"start_range"`
	EndRange    int         `json:"end_range"`
	Subject     string      `json:"subject,omitempty"`
	Order       int         `json:"order"`
}

// Units returns the number of pages, episodes or custom units in range.
func (c PlanContent) Units() int {
	if c.EndRange < c.StartRange {
		return 0
	}
	return c.EndRange - c.StartRange + 1
}

func (c PlanContent) Validate() error {
	if !c.ContentType.Valid() {
		return fmt.Errorf("content %s: unknown content type %q", c.ID, c.ContentType)
	}
	if c.StartRange > c.EndRange {
		return fmt.Errorf("content %s: start range %d exceeds end range %d", c.ID, c.StartRange, c.EndRange)
	}
	return nil
}

// ContentRef identifies a piece of master content independent of the
// group that schedules it.
type ContentRef struct {
	Type ContentType
	ID   string
}

func (c PlanContent) Ref() ContentRef {
	return ContentRef{Type: c.ContentType, ID: c.ContentID}
}

// Episode is one lecture episode. A nil duration means unknown.
type Episode struct {
	Number      int  `json:"number"`
	DurationMin *int `json:"duration_min,omitempty"`
}

// ContentDurationInfo carries what the estimator needs for one content.
type ContentDurationInfo struct {
	ContentType ContentType `json:"content_type"`
	ContentID   string      `json:"content_id"`
	Difficulty  string      `json:"difficulty,omitempty"`
	Episodes    []Episode   `json:"episodes,omitempty"`
	// TotalMinutes is the explicit duration of a custom content. When
	// TotalUnits is set it is spread evenly over that many units.
	TotalMinutes *int `json:"total_minutes,omitempty"`
	TotalUnits   int  `json:"total_units,omitempty"`
}

func (d ContentDurationInfo) Ref() ContentRef {
	return ContentRef{Type: d.ContentType, ID: d.ContentID}
}

// BlockDefinition is a weekly recurring time window.
type BlockDefinition struct {
	ID        string
	GroupID   string
	DayOfWeek time.Weekday
	StartTime Clock
	EndTime   Clock
}

func (b BlockDefinition) Slot() StudyTimeSlot {
	return StudyTimeSlot{Start: b.StartTime, End: b.EndTime}
}

// DefaultTravelMinutes is the one-way travel time assumed for an academy
// class when none is given.
const DefaultTravelMinutes = 60

// AcademySchedule is a weekly class outside the study plan. The class and
// the travel to and from it are unavailable for study.
type AcademySchedule struct {
	ID            string
	GroupID       string
	DayOfWeek     time.Weekday
	StartTime     Clock
	EndTime       Clock
	Name          string
	Subject       string
	TravelMinutes int
}

// Busy returns the window the class blocks, travel included, clamped to
// the day.
func (a AcademySchedule) Busy() StudyTimeSlot {
	return StudyTimeSlot{Start: a.StartTime.Add(-a.TravelMinutes), End: a.EndTime.Add(a.TravelMinutes)}
}

func (a AcademySchedule) Validate() error {
	if a.EndTime <= a.StartTime {
		return fmt.Errorf("academy %s: end %s is not after start %s", a.Name, a.EndTime, a.StartTime)
	}
	if a.TravelMinutes < 0 {
		return fmt.Errorf("academy %s: travel minutes must not be negative", a.Name)
	}
	return nil
}

// Exclusion removes a date from scheduling.
type Exclusion struct {
	ID      string
	GroupID string
	Date    time.Time
	Type    ExclusionType
	Reason  string
}
