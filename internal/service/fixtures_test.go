package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/importer"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/alexanderramin/studyplan/internal/testutil"
	"github.com/stretchr/testify/require"
)

const (
	groupID   = "g1"
	contentID = "g1/algebra"
)

// groupSchema is a one-week group: pages 1-20 of one book at 6 minutes a
// page, one hour every day, six study days then one review day.
func groupSchema() *importer.ImportSchema {
	s := &importer.ImportSchema{
		Group: importer.GroupImport{
			ID:          groupID,
			StudentID:   "student-1",
			Name:        "Week one",
			PeriodStart: "2025-03-03",
			PeriodEnd:   "2025-03-09",
			StudyDays:   6,
			ReviewDays:  1,
		},
		Contents: []importer.ContentImport{
			{Ref: "algebra", ContentType: "book", ContentID: "book-1", StartRange: 1, EndRange: 20, Subject: "math"},
		},
	}
	for wd := 0; wd < 7; wd++ {
		s.Blocks = append(s.Blocks, importer.BlockImport{DayOfWeek: wd, StartTime: "09:00", EndTime: "10:00"})
	}
	return s
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls map[string][]string
}

func (n *recordingNotifier) DatesChanged(_ context.Context, groupID string, dates []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.calls == nil {
		n.calls = make(map[string][]string)
	}
	n.calls[groupID] = append(n.calls[groupID], dates...)
}

type fixture struct {
	conn       *sql.DB
	uow        db.UnitOfWork
	groups     *repository.SQLiteGroupRepo
	plans      *repository.SQLitePlanRepo
	logs       *repository.SQLiteRescheduleLogRepo
	generator  *scheduler.Generator
	cache      *reschedule.PreviewCache
	notifier   *recordingNotifier
	imports    ImportService
	generate   GenerateService
	reschedule RescheduleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn := testutil.NewTestDB(t)
	cfg := config.DefaultScheduler()
	gen := scheduler.NewGenerator(scheduler.NewEstimator(cfg), cfg)
	cache, err := reschedule.NewPreviewCache(16, nil)
	require.NoError(t, err)

	f := &fixture{
		conn:      conn,
		uow:       testutil.NewTestUoW(conn),
		groups:    repository.NewSQLiteGroupRepo(conn),
		plans:     repository.NewSQLitePlanRepo(conn),
		logs:      repository.NewSQLiteRescheduleLogRepo(conn),
		generator: gen,
		cache:     cache,
		notifier:  &recordingNotifier{},
	}
	f.imports = NewImportService(f.uow, nil)
	f.generate = NewGenerateService(f.uow, gen, nil)
	f.reschedule = NewRescheduleService(RescheduleDeps{
		UoW:        f.uow,
		Engine:     reschedule.NewEngine(gen),
		Cache:      cache,
		Notifier:   f.notifier,
		BatchLimit: 2,
	})
	return f
}

// seeded imports groupSchema and generates its plans.
func seeded(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.imports.ImportGroupFromSchema(ctx, groupSchema())
	require.NoError(t, err)
	_, err = f.generate.Generate(ctx, groupID)
	require.NoError(t, err)
	return f
}

func (f *fixture) listPlans(t *testing.T) []domain.Plan {
	t.Helper()
	plans, err := f.plans.ListByGroup(context.Background(), groupID)
	require.NoError(t, err)
	return plans
}

func (f *fixture) complete(t *testing.T, date string) {
	t.Helper()
	for _, p := range f.listPlans(t) {
		if domain.DateKey(p.PlanDate) == date {
			require.NoError(t, f.plans.UpdateStatus(context.Background(), p.ID, domain.PlanCompleted))
		}
	}
}

func ptrTime(s string) *time.Time {
	t := testutil.Date(s)
	return &t
}

func intPtr(v int) *int {
	return &v
}

// extendTo30 widens the book to pages 1-30, addressed by its content id.
func extendTo30() app.RescheduleRequest {
	return app.RescheduleRequest{
		GroupID: groupID,
		Adjustments: []domain.AdjustmentInput{{
			PlanContentID: "book-1",
			ChangeType:    domain.AdjustRange,
			NewStartRange: intPtr(1),
			NewEndRange:   intPtr(30),
		}},
		Today:  ptrTime("2025-03-05"),
		Reason: "more chapters assigned",
	}
}
