package reschedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/stretchr/testify/require"
)

func d(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func ip(v int) *int { return &v }

func newTestEngine() *Engine {
	cfg := config.DefaultScheduler()
	n := 0
	return NewEngine(
		scheduler.NewGenerator(scheduler.NewEstimator(cfg), cfg),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("new-%d", n)
		}),
	)
}

// testSnapshot builds a two-week group with daily 09:00-10:00 blocks, a
// 20 page book (A) and a 10 page book (B), and plans generated for the
// whole period. The initial plans are:
//
//	2025-03-03 A 1-10, 2025-03-04 A 11-20, 2025-03-05 B 1-10,
//	2025-03-09 review of A 1-20.
func testSnapshot(t *testing.T) Snapshot {
	t.Helper()
	cfg := config.DefaultScheduler()
	snap := Snapshot{
		Group: domain.PlanGroup{
			ID: "g1", StudentID: "s1", Name: "Spring",
			PeriodStart: d("2025-03-03"), PeriodEnd: d("2025-03-16"),
			Status: domain.GroupActive, Version: 1,
		},
		Contents: []domain.PlanContent{
			{ID: "A", GroupID: "g1", ContentType: domain.ContentBook, ContentID: "book-a", StartRange: 1, EndRange: 20, Subject: "math", Order: 1},
			{ID: "B", GroupID: "g1", ContentType: domain.ContentBook, ContentID: "book-b", StartRange: 1, EndRange: 10, Subject: "english", Order: 2},
		},
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		snap.Blocks = append(snap.Blocks, domain.BlockDefinition{
			ID: fmt.Sprintf("blk-%d", wd), GroupID: "g1", DayOfWeek: wd,
			StartTime: domain.MustClock("09:00"), EndTime: domain.MustClock("10:00"),
		})
	}

	gen, err := scheduler.NewGenerator(scheduler.NewEstimator(cfg), cfg).Generate(scheduler.GenerateInput{
		Group: snap.Group, Contents: snap.Contents, Blocks: snap.Blocks,
		PeriodStart: snap.Group.PeriodStart, PeriodEnd: snap.Group.PeriodEnd,
	})
	require.NoError(t, err)
	for i, sp := range gen.Plans {
		snap.Plans = append(snap.Plans, domain.Plan{
			ID: fmt.Sprintf("p%d", i+1), GroupID: "g1", ScheduledPlan: sp, Status: domain.PlanPending,
		})
	}
	require.Len(t, snap.Plans, 4)
	return snap
}

func planOn(snap Snapshot, date, contentID string) *domain.Plan {
	for i := range snap.Plans {
		p := &snap.Plans[i]
		if domain.DateKey(p.PlanDate) == date && p.PlanContentID == contentID {
			return p
		}
	}
	return nil
}
