package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/reschedule"
)

// LoadSnapshot reads everything the adjustment engine needs for one group.
// Run it inside a UnitOfWork so every table is read at the same point.
func LoadSnapshot(ctx context.Context, conn db.DBTX, groupID string) (reschedule.Snapshot, error) {
	var snap reschedule.Snapshot

	g, err := NewSQLiteGroupRepo(conn).GetByID(ctx, groupID)
	if err != nil {
		return snap, err
	}
	if g.DeletedAt != nil {
		return snap, fmt.Errorf("plan group %s is deleted: %w", groupID, ErrNotFound)
	}
	snap.Group = *g

	if snap.Contents, err = NewSQLiteContentRepo(conn).ListByGroup(ctx, groupID); err != nil {
		return snap, err
	}
	if snap.Durations, err = NewSQLiteDurationRepo(conn).ListForGroup(ctx, groupID); err != nil {
		return snap, err
	}
	if snap.Blocks, err = NewSQLiteBlockRepo(conn).ListByGroup(ctx, groupID); err != nil {
		return snap, err
	}
	if snap.Academies, err = NewSQLiteAcademyRepo(conn).ListByGroup(ctx, groupID); err != nil {
		return snap, err
	}
	if snap.Exclusions, err = NewSQLiteExclusionRepo(conn).ListByGroup(ctx, groupID); err != nil {
		return snap, err
	}
	if snap.Plans, err = NewSQLitePlanRepo(conn).ListByGroup(ctx, groupID); err != nil {
		return snap, err
	}
	return snap, nil
}
