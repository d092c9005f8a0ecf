package app

import (
	"context"
	"io"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/importer"
	"github.com/alexanderramin/studyplan/internal/suggest"
)

type GroupQueryUseCase interface {
	ListGroups(ctx context.Context, studentID string, includeDeleted bool) ([]*domain.PlanGroup, error)
	GetGroup(ctx context.Context, id string) (*domain.PlanGroup, error)
	ListPlans(ctx context.Context, groupID string, from, to *time.Time) ([]domain.Plan, error)
}

type GenerateUseCase interface {
	Generate(ctx context.Context, groupID string) (*GenerateResult, error)
}

type DelayUseCase interface {
	AnalyzeGroup(ctx context.Context, groupID string, today time.Time) (*GroupDelay, error)
	AnalyzeStudent(ctx context.Context, studentID string, today time.Time) (*DelayReport, error)
}

type RescheduleUseCase interface {
	Preview(ctx context.Context, req RescheduleRequest) (*PreviewResponse, error)
	Apply(ctx context.Context, req RescheduleRequest) (*ApplyResponse, error)
}

type SuggestUseCase interface {
	Suggest(ctx context.Context, groupID string, today time.Time) ([]suggest.Suggestion, error)
	Patterns(ctx context.Context, groupID string) ([]suggest.Pattern, error)
}

type ImportUseCase interface {
	ImportGroup(ctx context.Context, filePath string) (*ImportResult, error)
	ImportGroupFromSchema(ctx context.Context, schema *importer.ImportSchema) (*ImportResult, error)
	ImportExclusionsICS(ctx context.Context, groupID string, r io.Reader) (int, error)
}

type ExportUseCase interface {
	Export(ctx context.Context, req ExportRequest, w io.Writer) (int, error)
}

type JobUseCase interface {
	Enqueue(ctx context.Context, req BatchRequest) (JobHandle, error)
	Status(ctx context.Context, id string) (*JobStatus, error)
}
