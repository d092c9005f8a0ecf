package service

import (
	"context"
	"io"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/importer"
	"github.com/alexanderramin/studyplan/internal/suggest"
)

type GroupService interface {
	ListGroups(ctx context.Context, studentID string, includeDeleted bool) ([]*domain.PlanGroup, error)
	GetGroup(ctx context.Context, id string) (*domain.PlanGroup, error)
	ListPlans(ctx context.Context, groupID string, from, to *time.Time) ([]domain.Plan, error)
}

type GenerateService interface {
	Generate(ctx context.Context, groupID string) (*app.GenerateResult, error)
}

type DelayService interface {
	AnalyzeGroup(ctx context.Context, groupID string, today time.Time) (*app.GroupDelay, error)
	AnalyzeStudent(ctx context.Context, studentID string, today time.Time) (*app.DelayReport, error)
}

type RescheduleService interface {
	Preview(ctx context.Context, req app.RescheduleRequest) (*app.PreviewResponse, error)
	Apply(ctx context.Context, req app.RescheduleRequest) (*app.ApplyResponse, error)
	ApplyBatch(ctx context.Context, reqs []app.RescheduleRequest) []app.JobOutcome
}

type SuggestionService interface {
	Suggest(ctx context.Context, groupID string, today time.Time) ([]suggest.Suggestion, error)
	Patterns(ctx context.Context, groupID string) ([]suggest.Pattern, error)
}

type ImportService interface {
	ImportGroup(ctx context.Context, filePath string) (*app.ImportResult, error)
	ImportGroupFromSchema(ctx context.Context, schema *importer.ImportSchema) (*app.ImportResult, error)
	ImportExclusionsICS(ctx context.Context, groupID string, r io.Reader) (int, error)
}

type ExportService interface {
	Export(ctx context.Context, req app.ExportRequest, w io.Writer) (int, error)
}

// JobQueue runs batch reschedules in the background.
type JobQueue interface {
	Enqueue(ctx context.Context, req app.BatchRequest) (app.JobHandle, error)
	Status(ctx context.Context, id string) (*app.JobStatus, error)
	Wait(ctx context.Context, id string) (*app.JobStatus, error)
}
