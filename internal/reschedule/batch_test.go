package reschedule

import (
	"context"
	"testing"

	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchAdjuster_IndependentOutcomes(t *testing.T) {
	good := testSnapshot(t)
	bad := testSnapshot(t)
	bad.Group.ID = "g2"

	items := []BatchItem{
		{Snapshot: good, Request: rangeRequest(1, 30)},
		{Snapshot: bad, Request: Request{Adjustments: []domain.AdjustmentInput{{PlanContentID: "nope", ChangeType: domain.AdjustFull}}, Today: d("2025-03-04")}},
		{Snapshot: good, Request: rangeRequest(1, 25)},
	}
	out := NewBatchAdjuster(newTestEngine(), 2).Run(context.Background(), items)

	require.Len(t, out, 3)
	assert.Equal(t, "g1", out[0].GroupID)
	assert.NoError(t, out[0].Err)
	assert.NotNil(t, out[0].Result)

	assert.Equal(t, "g2", out[1].GroupID)
	var verr *ValidationError
	assert.ErrorAs(t, out[1].Err, &verr)

	assert.NoError(t, out[2].Err)
}

func TestBatchAdjuster_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := NewBatchAdjuster(newTestEngine(), 1).Run(ctx, []BatchItem{{Snapshot: testSnapshot(t), Request: rangeRequest(1, 30)}})
	require.Len(t, out, 1)
	assert.ErrorIs(t, out[0].Err, context.Canceled)
}

func TestUncompletedStart(t *testing.T) {
	snap := testSnapshot(t)
	a := snap.Contents[0]

	start, ok := UncompletedStart(a, snap.Plans)
	require.True(t, ok)
	assert.Equal(t, 1, start)

	planOn(snap, "2025-03-03", "A").Status = domain.PlanCompleted
	start, ok = UncompletedStart(a, snap.Plans)
	require.True(t, ok)
	assert.Equal(t, 11, start)

	planOn(snap, "2025-03-04", "A").Status = domain.PlanInProgress
	_, ok = UncompletedStart(a, snap.Plans)
	assert.False(t, ok)
}
