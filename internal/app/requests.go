package app

import (
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"github.com/alexanderramin/studyplan/internal/scheduler"
)

type GenerateResult struct {
	GroupID    string
	Created    int
	Removed    int
	Version    int
	Shortfalls []scheduler.Shortfall
}

// GroupDelay is the delay analysis of one group plus the workload
// recommendation its overdue plans warrant, if any.
type GroupDelay struct {
	Group          *domain.PlanGroup
	Analysis       scheduler.DelayAnalysis
	Recommendation *scheduler.DelayRecommendation
}

type DelayReport struct {
	StudentID string
	Groups    []GroupDelay
	Overall   domain.OverallStatus
}

// RescheduleRequest addresses contents either by plan content id or by
// their content id within the group.
type RescheduleRequest struct {
	GroupID     string
	Adjustments []domain.AdjustmentInput
	Window      reschedule.Window
	Today       *time.Time
	Reason      string
}

type PreviewResponse struct {
	Result *reschedule.Result
	Cached bool
}

type ApplyResponse struct {
	Result  *reschedule.Result
	Log     *domain.RescheduleLog
	Version int
	// NoChange is set when the adjustments produced nothing to commit.
	NoChange bool
}

type ImportResult struct {
	Group          *domain.PlanGroup
	ContentCount   int
	DurationCount  int
	BlockCount     int
	ExclusionCount int
	AcademyCount   int
}

type ExportFormat string

const (
	FormatICS  ExportFormat = "ics"
	FormatXLSX ExportFormat = "xlsx"
)

type ExportRequest struct {
	GroupID string
	Format  ExportFormat
	From    *time.Time
	To      *time.Time
}

type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// BatchRequest is a set of independent per-group reschedules.
type BatchRequest struct {
	Items []RescheduleRequest
}

type JobHandle struct {
	ID         string
	EnqueuedAt time.Time
}

type JobOutcome struct {
	GroupID string
	LogID   string
	Err     string
}

type JobStatus struct {
	ID         string
	State      JobState
	EnqueuedAt time.Time
	FinishedAt *time.Time
	Outcomes   []JobOutcome
}
