package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type generateService struct {
	uow      db.UnitOfWork
	gen      *scheduler.Generator
	logger   *zap.Logger
	observer UseCaseObserver
}

func NewGenerateService(uow db.UnitOfWork, gen *scheduler.Generator, logger *zap.Logger, observers ...UseCaseObserver) GenerateService {
	return &generateService{uow: uow, gen: gen, logger: logger, observer: useCaseObserverOrNoop(observers)}
}

// Generate lays out the whole group period from scratch. Pending plans are
// replaced; a group whose plans have already been worked on must be
// rescheduled instead.
func (s *generateService) Generate(ctx context.Context, groupID string) (res *app.GenerateResult, err error) {
	fields := map[string]any{"group_id": groupID}
	defer observe(ctx, s.observer, "generate", fields, &err)()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		snap, err := repository.LoadSnapshot(ctx, tx, groupID)
		if err != nil {
			return err
		}
		for _, p := range snap.Plans {
			if p.Status != domain.PlanPending {
				return &reschedule.ValidationError{Reason: fmt.Sprintf("plan %s is %s; reschedule the group instead", p.ID, p.Status)}
			}
		}
		if len(snap.Contents) == 0 {
			return &reschedule.ValidationError{Reason: "no contents"}
		}
		for _, c := range snap.Contents {
			if err := c.Validate(); err != nil {
				return &reschedule.ValidationError{Reason: err.Error()}
			}
		}

		out, err := s.gen.Generate(scheduler.GenerateInput{
			Group:       snap.Group,
			Contents:    snap.Contents,
			Durations:   scheduler.NewDurationIndex(snap.Durations),
			Blocks:      snap.Blocks,
			Academies:   snap.Academies,
			Exclusions:  snap.Exclusions,
			PeriodStart: snap.Group.PeriodStart,
			PeriodEnd:   snap.Group.PeriodEnd,
		})
		if err != nil {
			if errors.Is(err, scheduler.ErrInvalidBlock) {
				return &reschedule.ValidationError{Reason: err.Error()}
			}
			return &reschedule.ComputationError{Op: "generate", Err: err}
		}

		plans := repository.NewSQLitePlanRepo(tx)
		removed, err := plans.DeleteAllPending(ctx, groupID)
		if err != nil {
			return err
		}
		now := time.Now().UTC().Truncate(time.Second)
		created := make([]domain.Plan, len(out.Plans))
		for i, sp := range out.Plans {
			created[i] = domain.Plan{
				ID:            uuid.New().String(),
				GroupID:       groupID,
				ScheduledPlan: sp,
				Status:        domain.PlanPending,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
		}
		if err := plans.CreateBatch(ctx, created); err != nil {
			return err
		}
		if err := repository.NewSQLiteGroupRepo(tx).BumpVersion(ctx, groupID, snap.Group.Version); err != nil {
			return err
		}

		res = &app.GenerateResult{
			GroupID:    groupID,
			Created:    len(created),
			Removed:    removed,
			Version:    snap.Group.Version + 1,
			Shortfalls: out.Shortfalls,
		}
		return nil
	})
	if err != nil {
		logComputationError(s.logger, groupID, err)
		return nil, toRescheduleError(err)
	}
	fields["created"] = res.Created
	fields["shortfalls"] = len(res.Shortfalls)
	return res, nil
}
