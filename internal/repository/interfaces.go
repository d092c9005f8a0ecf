package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
)

type GroupRepo interface {
	Create(ctx context.Context, g *domain.PlanGroup) error
	GetByID(ctx context.Context, id string) (*domain.PlanGroup, error)
	List(ctx context.Context, studentID string, includeDeleted bool) ([]*domain.PlanGroup, error)
	Update(ctx context.Context, g *domain.PlanGroup) error
	SoftDelete(ctx context.Context, id string) error
	BumpVersion(ctx context.Context, id string, expected int) error
}

type ContentRepo interface {
	Create(ctx context.Context, c *domain.PlanContent) error
	ListByGroup(ctx context.Context, groupID string) ([]domain.PlanContent, error)
	Update(ctx context.Context, c *domain.PlanContent) error
}

type DurationRepo interface {
	Upsert(ctx context.Context, info *domain.ContentDurationInfo) error
	ListForGroup(ctx context.Context, groupID string) ([]domain.ContentDurationInfo, error)
}

type BlockRepo interface {
	Create(ctx context.Context, b *domain.BlockDefinition) error
	ListByGroup(ctx context.Context, groupID string) ([]domain.BlockDefinition, error)
}

type AcademyRepo interface {
	Create(ctx context.Context, a *domain.AcademySchedule) error
	ListByGroup(ctx context.Context, groupID string) ([]domain.AcademySchedule, error)
}

type ExclusionRepo interface {
	Upsert(ctx context.Context, e *domain.Exclusion) error
	ListByGroup(ctx context.Context, groupID string) ([]domain.Exclusion, error)
}

type PlanRepo interface {
	CreateBatch(ctx context.Context, plans []domain.Plan) error
	GetByID(ctx context.Context, id string) (*domain.Plan, error)
	ListByGroup(ctx context.Context, groupID string) ([]domain.Plan, error)
	ListBetween(ctx context.Context, groupID string, from, to time.Time) ([]domain.Plan, error)
	UpdateSchedule(ctx context.Context, p *domain.Plan) error
	UpdateStatus(ctx context.Context, id string, status domain.PlanStatus) error
	DeletePending(ctx context.Context, id string) error
	DeleteAllPending(ctx context.Context, groupID string) (int, error)
}

type RescheduleLogRepo interface {
	Create(ctx context.Context, l *domain.RescheduleLog) error
	GetByID(ctx context.Context, id string) (*domain.RescheduleLog, error)
	ListByGroup(ctx context.Context, groupID string) ([]domain.RescheduleLog, error)
}

type HistoryRepo interface {
	CreateBatch(ctx context.Context, hs []domain.PlanHistory) error
	ListByPlan(ctx context.Context, planID string) ([]domain.PlanHistory, error)
	ListByLog(ctx context.Context, logID string) ([]domain.PlanHistory, error)
}
