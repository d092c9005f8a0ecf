package domain

import "time"

// AdjustmentInput is a proposed change to one content of a group.
type AdjustmentInput struct {
	PlanContentID string         `json:"plan_content_id"`
	ChangeType    AdjustmentKind `json:"change_type"`
	// Range changes, and optionally the range of a replacement.
	NewStartRange *int `json:"new_start_range,omitempty"`
	NewEndRange   *int `json:"new_end_range,omitempty"`
	// Replacement content.
	NewContentType ContentType `json:"new_content_type,omitempty"`
	NewContentID   string      `json:"new_content_id,omitempty"`
}

// RescheduleLog records one committed reschedule.
type RescheduleLog struct {
	ID            string
	GroupID       string
	StudentID     string
	Adjustments   []AdjustmentInput
	Subjects      []string
	AffectedDates []string
	PlansBefore   int
	PlansAfter    int
	Reason        string
	Status        RescheduleLogStatus
	CreatedAt     time.Time
}
