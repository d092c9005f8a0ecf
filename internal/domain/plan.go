package domain

import "time"

// ScheduledPlan is one placed segment of a content on a date.
type ScheduledPlan struct {
	PlanDate      time.Time   `json:"plan_date"`
	StartTime     Clock       `json:"start_time"`
	EndTime       Clock       `json:"end_time"`
	PlanContentID string      `json:"plan_content_id"`
	ContentType   ContentType `json:"content_type"`
	ContentID     string      `json:"content_id"`
	Subject       string      `json:"subject,omitempty"`
	RangeStart    int         `json:"range_start"`
	RangeEnd      int         `json:"range_end"`
	DayType       DayType     `json:"day_type"`
	IsPartial     bool        `json:"is_partial"`
	IsContinued   bool        `json:"is_continued"`
	Sequence      int         `json:"sequence"`
}

func (p ScheduledPlan) Minutes() int {
	if p.EndTime <= p.StartTime {
		return 0
	}
	return int(p.EndTime - p.StartTime)
}

// SameSchedule reports whether two plans place the same work at the same
// time. Identity and status are not compared.
func (p ScheduledPlan) SameSchedule(o ScheduledPlan) bool {
	return p.PlanDate.Equal(o.PlanDate) &&
		p.StartTime == o.StartTime &&
		p.EndTime == o.EndTime &&
		p.PlanContentID == o.PlanContentID &&
		p.ContentType == o.ContentType &&
		p.ContentID == o.ContentID &&
		p.RangeStart == o.RangeStart &&
		p.RangeEnd == o.RangeEnd &&
		p.DayType == o.DayType &&
		p.IsPartial == o.IsPartial &&
		p.IsContinued == o.IsContinued &&
		p.Sequence == o.Sequence
}

// Plan is a persisted ScheduledPlan.
type Plan struct {
	ID      string `json:"id"`
	GroupID string `json:"group_id"`
	ScheduledPlan
	Status    PlanStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// PlanHistory is a snapshot of a plan taken before a reschedule touched it.
type PlanHistory struct {
	ID              string
	PlanID          string
	GroupID         string
	Snapshot        Plan
	RescheduleLogID *string
	CreatedAt       time.Time
}
