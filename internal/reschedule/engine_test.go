package reschedule

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply_RangeExtensionKeepsCompletedWork(t *testing.T) {
	snap := testSnapshot(t)
	planOn(snap, "2025-03-03", "A").Status = domain.PlanCompleted

	res, err := newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustRange, NewStartRange: ip(1), NewEndRange: ip(30)}},
		Today:       d("2025-03-04"),
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-05", domain.DateKey(res.Period.Start))
	assert.Equal(t, "2025-03-16", domain.DateKey(res.Period.End))
	assert.Equal(t, 2, res.PlansBeforeCount)
	assert.Equal(t, 3, res.PlansAfterCount)
	assert.Equal(t, []string{"2025-03-04", "2025-03-06", "2025-03-07", "2025-03-09"}, res.AffectedDates)
	assert.Equal(t, DiffSummary{AddedDays: 2, ChangedDays: 1, RemovedDays: 1}, res.Summary)
	assert.Equal(t, AdjustmentsSummary{RangeChanges: 1}, res.AdjustmentsSummary)
	assert.InDelta(t, 3.0, res.EstimatedHours, 1e-9)

	require.Len(t, res.Operations, 4)
	assert.Equal(t, domain.OpDelete, res.Operations[0].Kind)
	assert.Equal(t, "p2", res.Operations[0].Plan.ID)

	assert.Equal(t, domain.OpUpdate, res.Operations[1].Kind)
	assert.Equal(t, "p4", res.Operations[1].Plan.ID)
	assert.Equal(t, domain.DayReview, res.Operations[1].Plan.DayType)
	assert.Equal(t, 11, res.Operations[1].Plan.RangeStart)
	assert.Equal(t, 30, res.Operations[1].Plan.RangeEnd)
	require.NotNil(t, res.Operations[1].Before)
	assert.Equal(t, 1, res.Operations[1].Before.RangeStart)

	created := res.Operations[2].Plan
	assert.Equal(t, domain.OpCreate, res.Operations[2].Kind)
	assert.Equal(t, "new-1", created.ID)
	assert.Equal(t, "2025-03-06", domain.DateKey(created.PlanDate))
	assert.Equal(t, 11, created.RangeStart)
	assert.Equal(t, 20, created.RangeEnd)
	assert.True(t, created.IsContinued)
	assert.True(t, created.IsPartial)
	assert.Equal(t, domain.PlanPending, created.Status)

	last := res.Operations[3].Plan
	assert.Equal(t, "2025-03-07", domain.DateKey(last.PlanDate))
	assert.Equal(t, 21, last.RangeStart)
	assert.Equal(t, 30, last.RangeEnd)
	assert.False(t, last.IsPartial)

	require.Len(t, res.ContentChanges, 1)
	assert.Equal(t, 30, res.ContentChanges[0].EndRange)
	assert.Empty(t, res.Shortfalls)
}

func TestApply_DoesNotTouchOtherContentsOrHistory(t *testing.T) {
	snap := testSnapshot(t)
	planOn(snap, "2025-03-03", "A").Status = domain.PlanCompleted
	before, _ := json.Marshal(snap)

	res, err := newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustFull}},
		Today:       d("2025-03-04"),
	})
	require.NoError(t, err)

	for _, op := range res.Operations {
		assert.NotEqual(t, "B", op.Plan.PlanContentID)
		assert.NotEqual(t, "p1", op.Plan.ID)
	}
	after, _ := json.Marshal(snap)
	assert.JSONEq(t, string(before), string(after), "snapshot must not be mutated")
}

func TestApply_FullyConsumedContentIsDropped(t *testing.T) {
	snap := testSnapshot(t)
	planOn(snap, "2025-03-03", "A").Status = domain.PlanCompleted

	res, err := newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustRange, NewStartRange: ip(1), NewEndRange: ip(10)}},
		Today:       d("2025-03-04"),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.PlansAfterCount)
	require.Len(t, res.Operations, 2)
	for _, op := range res.Operations {
		assert.Equal(t, domain.OpDelete, op.Kind)
	}
	assert.Equal(t, DiffSummary{RemovedDays: 2}, res.Summary)
}

func TestApply_ReplaceSwapsReferenceKeepsOrderAndSubject(t *testing.T) {
	snap := testSnapshot(t)

	res, err := newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{
			PlanContentID: "B", ChangeType: domain.AdjustReplace,
			NewContentType: domain.ContentLecture, NewContentID: "lec-1",
			NewStartRange: ip(1), NewEndRange: ip(2),
		}},
		Window: Window{IncludeToday: true},
		Today:  d("2025-03-05"),
	})
	require.NoError(t, err)

	require.Len(t, res.ContentChanges, 1)
	c := res.ContentChanges[0]
	assert.Equal(t, domain.ContentLecture, c.ContentType)
	assert.Equal(t, "lec-1", c.ContentID)
	assert.Equal(t, "english", c.Subject)
	assert.Equal(t, 2, c.Order)

	// The 03-05 plan is rewritten in place for the new lecture.
	require.NotEmpty(t, res.Operations)
	upd := res.Operations[0]
	assert.Equal(t, domain.OpUpdate, upd.Kind)
	assert.Equal(t, "p3", upd.Plan.ID)
	assert.Equal(t, "lec-1", upd.Plan.ContentID)
	assert.Equal(t, 1, upd.Plan.RangeStart)
	assert.Equal(t, 2, upd.Plan.RangeEnd)
	assert.Equal(t, 1, res.AdjustmentsSummary.Replacements)
}

func TestApply_NoChangeProducesNoOperations(t *testing.T) {
	snap := testSnapshot(t)
	res, err := newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "B", ChangeType: domain.AdjustFull}},
		Window:      Window{IncludeToday: true},
		Today:       d("2025-03-03"),
	})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, res.PlansBeforeCount, res.PlansAfterCount)
}

func TestApply_ValidationBeforeComputation(t *testing.T) {
	snap := testSnapshot(t)
	_, err := newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "missing", ChangeType: domain.AdjustFull}},
		Today:       d("2025-03-04"),
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "invalid content id: missing", err.Error())

	snap.Blocks[0].EndTime = snap.Blocks[0].StartTime
	_, err = newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustFull}},
		Today:       d("2025-03-04"),
	})
	require.True(t, errors.As(err, &verr))
}

func TestApply_ShortfallReportedAsData(t *testing.T) {
	snap := testSnapshot(t)
	res, err := newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustRange, NewStartRange: ip(1), NewEndRange: ip(200)}},
		Today:       d("2025-03-14"),
	})
	require.NoError(t, err)
	require.Len(t, res.Shortfalls, 1)
	assert.Equal(t, "A", res.Shortfalls[0].PlanContentID)
	assert.Less(t, res.Shortfalls[0].PlacedMinutes, res.Shortfalls[0].RequiredMinutes)
}

func TestApply_DeterministicAcrossRuns(t *testing.T) {
	snap := testSnapshot(t)
	req := Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustRange, NewStartRange: ip(5), NewEndRange: ip(40)}},
		Today:       d("2025-03-04"),
	}
	a, err := newTestEngine().Apply(snap, req)
	require.NoError(t, err)
	b, err := newTestEngine().Apply(snap, req)
	require.NoError(t, err)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.Equal(t, string(ja), string(jb))
}

func TestApply_NarrowWindowLeavesLaterPlansToTheirUnits(t *testing.T) {
	snap := testSnapshot(t)
	window := Window{Reschedule: &DateRange{Start: d("2025-03-03"), End: d("2025-03-03")}}

	res, err := newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustFull}},
		Window:      window,
		Today:       d("2025-03-03"),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Shortfalls, "03-04 already covers pages 11-20")
	require.Len(t, res.PlansAfter, 1)
	assert.Equal(t, 1, res.PlansAfter[0].RangeStart)
	assert.Equal(t, 10, res.PlansAfter[0].RangeEnd)

	// A roomier Monday must not pull the kept pages forward either.
	snap.Blocks = append(snap.Blocks, domain.BlockDefinition{
		ID: "blk-extra", GroupID: "g1", DayOfWeek: time.Monday,
		StartTime: domain.MustClock("10:00"), EndTime: domain.MustClock("12:00"),
	})
	res, err = newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustFull}},
		Window:      window,
		Today:       d("2025-03-03"),
	})
	require.NoError(t, err)
	require.Len(t, res.PlansAfter, 1)
	assert.Equal(t, 10, res.PlansAfter[0].RangeEnd)
	assert.Equal(t, "09:00", res.PlansAfter[0].StartTime.String())
	for _, op := range res.Operations {
		assert.Equal(t, domain.OpUpdate, op.Kind)
		assert.Equal(t, "p1", op.Plan.ID)
	}
}

func TestApply_ExtensionAroundKeptPlansFillsOnlyTheGaps(t *testing.T) {
	snap := testSnapshot(t)
	snap.Blocks = append(snap.Blocks, domain.BlockDefinition{
		ID: "blk-extra", GroupID: "g1", DayOfWeek: time.Monday,
		StartTime: domain.MustClock("10:00"), EndTime: domain.MustClock("12:00"),
	})

	res, err := newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustRange, NewStartRange: ip(1), NewEndRange: ip(30)}},
		Window:      Window{Reschedule: &DateRange{Start: d("2025-03-03"), End: d("2025-03-03")}},
		Today:       d("2025-03-03"),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Shortfalls)

	require.Len(t, res.PlansAfter, 2)
	for _, p := range res.PlansAfter {
		assert.False(t, p.RangeStart <= 20 && p.RangeEnd >= 11, "pages 11-20 stay with the 03-04 plan, got %d-%d", p.RangeStart, p.RangeEnd)
	}
	assert.Equal(t, 1, res.PlansAfter[0].RangeStart)
	assert.Equal(t, 10, res.PlansAfter[0].RangeEnd)
	assert.Equal(t, 21, res.PlansAfter[1].RangeStart)
	assert.Equal(t, 30, res.PlansAfter[1].RangeEnd)
	assert.Equal(t, "10:00", res.PlansAfter[1].StartTime.String())
}

func TestApply_RegeneratedPlansAvoidAcademyAndTravel(t *testing.T) {
	snap := testSnapshot(t)
	snap.Blocks = append(snap.Blocks, domain.BlockDefinition{
		ID: "blk-extra", GroupID: "g1", DayOfWeek: time.Monday,
		StartTime: domain.MustClock("10:00"), EndTime: domain.MustClock("12:00"),
	})
	academy := domain.AcademySchedule{
		ID: "ac1", GroupID: "g1", DayOfWeek: time.Monday, Name: "Piano",
		StartTime: domain.MustClock("10:00"), EndTime: domain.MustClock("11:00"), TravelMinutes: 30,
	}
	snap.Academies = []domain.AcademySchedule{academy}

	res, err := newTestEngine().Apply(snap, Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustFull}},
		Window:      Window{Reschedule: &DateRange{Start: d("2025-03-03"), End: d("2025-03-03")}},
		Today:       d("2025-03-03"),
	})
	require.NoError(t, err)
	assert.Empty(t, res.Shortfalls)
	require.NotEmpty(t, res.PlansAfter)

	busy := academy.Busy()
	minutes := 0
	for _, p := range res.PlansAfter {
		assert.False(t, p.StartTime < busy.End && busy.Start < p.EndTime,
			"plan %s-%s overlaps the academy window", p.StartTime, p.EndTime)
		minutes += p.Minutes()
	}
	assert.Equal(t, 60, minutes)
}

func TestUnconsumedRuns(t *testing.T) {
	assert.Equal(t, []unitRun{{1, 2}, {5, 6}, {8, 8}}, unconsumedRuns(1, 8, unitSet{3: true, 4: true, 7: true}))
	assert.Equal(t, []unitRun{{1, 5}}, unconsumedRuns(1, 5, nil))
	assert.Empty(t, unconsumedRuns(2, 3, unitSet{2: true, 3: true}))
}
