package domain

type GroupMode string

const (
	GroupModeNormal GroupMode = "normal"
	GroupModeCamp   GroupMode = "camp"
)

type GroupStatus string

const (
	GroupActive    GroupStatus = "active"
	GroupPaused    GroupStatus = "paused"
	GroupCompleted GroupStatus = "completed"
)

type ContentType string

const (
	ContentBook    ContentType = "book"
	ContentLecture ContentType = "lecture"
	ContentCustom  ContentType = "custom"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentBook, ContentLecture, ContentCustom:
		return true
	}
	return false
}

type DayType string

const (
	DayStudy  DayType = "study"
	DayReview DayType = "review"
)

type PlanStatus string

const (
	PlanPending    PlanStatus = "pending"
	PlanInProgress PlanStatus = "in_progress"
	PlanCompleted  PlanStatus = "completed"
	PlanSkipped    PlanStatus = "skipped"
)

// Reschedulable reports whether a plan in this status may be replaced by
// a regenerated one. Anything already started or closed is history.
func (s PlanStatus) Reschedulable() bool {
	return s == PlanPending
}

type ExclusionType string

const (
	ExclusionVacation ExclusionType = "vacation"
	ExclusionPersonal ExclusionType = "personal"
	ExclusionHoliday  ExclusionType = "holiday"
	ExclusionOther    ExclusionType = "other"
)

type AdjustmentKind string

const (
	AdjustRange   AdjustmentKind = "range"
	AdjustReplace AdjustmentKind = "replace"
	AdjustFull    AdjustmentKind = "full"
)

type DelayStatus string

const (
	DelayAhead    DelayStatus = "ahead"
	DelayOnTrack  DelayStatus = "on-track"
	DelayBehind   DelayStatus = "behind"
	DelayCritical DelayStatus = "critical"
)

type OverallStatus string

const (
	OverallGood           OverallStatus = "good"
	OverallNeedsAttention OverallStatus = "needs-attention"
	OverallCritical       OverallStatus = "critical"
)

type ActionKind string

const (
	ActionReschedule ActionKind = "reschedule"
	ActionReduce     ActionKind = "reduce"
	ActionMaintain   ActionKind = "maintain"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type OperationKind string

const (
	OpCreate OperationKind = "create"
	OpUpdate OperationKind = "update"
	OpDelete OperationKind = "delete"
)

type RescheduleLogStatus string

const (
	LogCompleted  RescheduleLogStatus = "completed"
	LogRolledBack RescheduleLogStatus = "rolled_back"
)
