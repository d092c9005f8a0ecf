package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"github.com/google/uuid"
)

// RescheduleCommitter persists a computed reschedule atomically.
type RescheduleCommitter struct {
	uow   db.UnitOfWork
	newID func() string
	now   func() time.Time
}

func NewRescheduleCommitter(uow db.UnitOfWork) *RescheduleCommitter {
	return &RescheduleCommitter{uow: uow, newID: uuid.NewString, now: nowUTC}
}

// Commit applies res to the group in one transaction: history snapshots of
// every touched plan, deletes, updates, creates, content changes, the log
// row, and the version bump. The bump only succeeds while the group is
// still at expectedVersion; otherwise nothing is written and the error
// wraps ErrVersionConflict.
func (c *RescheduleCommitter) Commit(ctx context.Context, groupID string, expectedVersion int, res *reschedule.Result, reason string) (*domain.RescheduleLog, error) {
	if res.GroupID != groupID {
		return nil, fmt.Errorf("result is for group %s, not %s", res.GroupID, groupID)
	}
	now := c.now()
	var log *domain.RescheduleLog

	err := c.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		groups := NewSQLiteGroupRepo(tx)
		plans := NewSQLitePlanRepo(tx)
		contents := NewSQLiteContentRepo(tx)

		if err := groups.BumpVersion(ctx, groupID, expectedVersion); err != nil {
			return err
		}
		g, err := groups.GetByID(ctx, groupID)
		if err != nil {
			return err
		}

		log = &domain.RescheduleLog{
			ID:            c.newID(),
			GroupID:       groupID,
			StudentID:     g.StudentID,
			Adjustments:   res.Adjustments,
			Subjects:      res.Subjects,
			AffectedDates: res.AffectedDates,
			PlansBefore:   res.PlansBeforeCount,
			PlansAfter:    res.PlansAfterCount,
			Reason:        reason,
			Status:        domain.LogCompleted,
			CreatedAt:     now,
		}
		if err := NewSQLiteRescheduleLogRepo(tx).Create(ctx, log); err != nil {
			return err
		}

		var (
			history []domain.PlanHistory
			creates []domain.Plan
		)
		for _, op := range res.Operations {
			switch op.Kind {
			case domain.OpDelete:
				history = append(history, c.snapshot(op.Plan, log.ID, now))
			case domain.OpUpdate:
				before := op.Plan
				if op.Before != nil {
					before = *op.Before
				}
				history = append(history, c.snapshot(before, log.ID, now))
			}
		}
		if err := NewSQLiteHistoryRepo(tx).CreateBatch(ctx, history); err != nil {
			return err
		}

		for _, op := range res.Operations {
			switch op.Kind {
			case domain.OpDelete:
				err = plans.DeletePending(ctx, op.Plan.ID)
			case domain.OpUpdate:
				p := op.Plan
				err = plans.UpdateSchedule(ctx, &p)
			case domain.OpCreate:
				p := op.Plan
				p.CreatedAt, p.UpdatedAt = now, now
				creates = append(creates, p)
			}
			if err != nil {
				return fmt.Errorf("applying %s of plan %s: %w", op.Kind, op.Plan.ID, err)
			}
		}
		if err := plans.CreateBatch(ctx, creates); err != nil {
			return err
		}

		for _, changed := range res.ContentChanges {
			if err := contents.Update(ctx, &changed); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

func (c *RescheduleCommitter) snapshot(p domain.Plan, logID string, now time.Time) domain.PlanHistory {
	return domain.PlanHistory{
		ID:              c.newID(),
		PlanID:          p.ID,
		GroupID:         p.GroupID,
		Snapshot:        p,
		RescheduleLogID: &logID,
		CreatedAt:       now,
	}
}
