package reschedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/scheduler"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangeRequest(start, end int) Request {
	return Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustRange, NewStartRange: ip(start), NewEndRange: ip(end)}},
		Today:       d("2025-03-04"),
	}
}

func TestNewPreviewKey_CapturesInputs(t *testing.T) {
	snap := testSnapshot(t)
	base, err := NewPreviewKey(config.DefaultScheduler(), snap, rangeRequest(1, 30))
	require.NoError(t, err)

	same, err := NewPreviewKey(config.DefaultScheduler(), snap, rangeRequest(1, 30))
	require.NoError(t, err)
	assert.Equal(t, base, same)

	otherRange, _ := NewPreviewKey(config.DefaultScheduler(), snap, rangeRequest(1, 31))
	assert.NotEqual(t, base, otherRange)

	req := rangeRequest(1, 30)
	req.Today = d("2025-03-05")
	otherDay, _ := NewPreviewKey(config.DefaultScheduler(), snap, req)
	assert.NotEqual(t, base, otherDay)

	bumped := snap
	bumped.Group.Version++
	otherVersion, _ := NewPreviewKey(config.DefaultScheduler(), bumped, rangeRequest(1, 30))
	assert.NotEqual(t, base, otherVersion)

	snap.Plans[0].Status = domain.PlanCompleted
	otherState, _ := NewPreviewKey(config.DefaultScheduler(), snap, rangeRequest(1, 30))
	assert.NotEqual(t, base, otherState)
}

func TestNewPreviewKey_CapturesSchedulerConfig(t *testing.T) {
	snap := testSnapshot(t)
	base, err := NewPreviewKey(config.DefaultScheduler(), snap, rangeRequest(1, 30))
	require.NoError(t, err)

	slower := config.DefaultScheduler()
	slower.DefaultMinutesPerPage = 12
	k, _ := NewPreviewKey(slower, snap, rangeRequest(1, 30))
	assert.NotEqual(t, base, k)

	cadence := config.DefaultScheduler()
	cadence.StudyDays = 5
	k, _ = NewPreviewKey(cadence, snap, rangeRequest(1, 30))
	assert.NotEqual(t, base, k)
}

func TestNewPreviewKey_AdjustmentOrderInsensitive(t *testing.T) {
	snap := testSnapshot(t)
	a := domain.AdjustmentInput{PlanContentID: "A", ChangeType: domain.AdjustFull}
	b := domain.AdjustmentInput{PlanContentID: "B", ChangeType: domain.AdjustFull}

	k1, err := NewPreviewKey(config.DefaultScheduler(), snap, Request{Adjustments: []domain.AdjustmentInput{a, b}, Today: d("2025-03-04")})
	require.NoError(t, err)
	k2, err := NewPreviewKey(config.DefaultScheduler(), snap, Request{Adjustments: []domain.AdjustmentInput{b, a}, Today: d("2025-03-04")})
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
}

func TestPreviewCache_HitMatchesRecomputation(t *testing.T) {
	snap := testSnapshot(t)
	req := rangeRequest(1, 30)
	key, err := NewPreviewKey(config.DefaultScheduler(), snap, req)
	require.NoError(t, err)

	cache, err := NewPreviewCache(8, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, ok := cache.Get(ctx, key)
	assert.False(t, ok)

	computed, err := newTestEngine().Apply(snap, req)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, key, computed))

	hit, ok := cache.Get(ctx, key)
	require.True(t, ok)
	assert.Same(t, computed, hit)

	again, err := newTestEngine().Apply(snap, req)
	require.NoError(t, err)
	assert.Equal(t, again, hit)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestPreviewCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewPreviewCache(2, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, 1, &Result{GroupID: "one"}))
	require.NoError(t, cache.Put(ctx, 2, &Result{GroupID: "two"}))
	_, _ = cache.Get(ctx, 1)
	require.NoError(t, cache.Put(ctx, 3, &Result{GroupID: "three"}))

	_, ok := cache.Get(ctx, 2)
	assert.False(t, ok)
	_, ok = cache.Get(ctx, 1)
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Len())
}

func TestPreviewCache_GetOrComputeDeduplicates(t *testing.T) {
	cache, err := NewPreviewCache(4, nil)
	require.NoError(t, err)

	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (*Result, error) {
		calls.Add(1)
		<-release
		return &Result{GroupID: "g"}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, _, err := cache.GetOrCompute(context.Background(), 42, compute)
			assert.NoError(t, err)
			assert.Equal(t, "g", r.GroupID)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))

	_, hit, err := cache.GetOrCompute(context.Background(), 42, compute)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestPreviewCache_ErrorsAreNotCached(t *testing.T) {
	cache, err := NewPreviewCache(4, nil)
	require.NoError(t, err)
	boom := errors.New("boom")

	_, _, err = cache.GetOrCompute(context.Background(), 7, func() (*Result, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, cache.Len())
}

func TestRedisPreviewStore_SharesAcrossCaches(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRedisPreviewStore(rdb, "test:", time.Minute)
	ctx := context.Background()

	snap := testSnapshot(t)
	req := rangeRequest(1, 30)
	key, err := NewPreviewKey(config.DefaultScheduler(), snap, req)
	require.NoError(t, err)
	res, err := newTestEngine().Apply(snap, req)
	require.NoError(t, err)

	first, err := NewPreviewCache(4, store)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, key, res))
	assert.True(t, mr.Exists("test:preview:"+key.String()))
	assert.Equal(t, time.Minute, mr.TTL("test:preview:"+key.String()))

	second, err := NewPreviewCache(4, store)
	require.NoError(t, err)
	got, ok := second.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, res.AffectedDates, got.AffectedDates)
	assert.Equal(t, res.Summary, got.Summary)
	require.Len(t, got.Operations, len(res.Operations))
	assert.Equal(t, res.Operations[2].Plan.StartTime, got.Operations[2].Plan.StartTime)

	_, err = store.Get(ctx, PreviewKey(1))
	assert.ErrorIs(t, err, ErrPreviewMiss)
}

func TestRedisPreviewStore_EnginesWithDifferentRatesDoNotShare(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRedisPreviewStore(rdb, "test:", time.Minute)
	ctx := context.Background()

	slowCfg := config.DefaultScheduler()
	slowCfg.DefaultMinutesPerPage = 12
	slow := NewEngine(scheduler.NewGenerator(scheduler.NewEstimator(slowCfg), slowCfg))
	fast := newTestEngine()

	snap := testSnapshot(t)
	req := Request{
		Adjustments: []domain.AdjustmentInput{{PlanContentID: "A", ChangeType: domain.AdjustFull}},
		Window:      Window{IncludeToday: true},
		Today:       d("2025-03-03"),
	}

	slowKey, err := slow.PreviewKey(snap, req)
	require.NoError(t, err)
	fastKey, err := fast.PreviewKey(snap, req)
	require.NoError(t, err)
	assert.NotEqual(t, slowKey, fastKey)

	slowCache, err := NewPreviewCache(4, store)
	require.NoError(t, err)
	slowRes, cached, err := slowCache.GetOrCompute(ctx, slowKey, func() (*Result, error) { return slow.Apply(snap, req) })
	require.NoError(t, err)
	assert.False(t, cached)

	fastCache, err := NewPreviewCache(4, store)
	require.NoError(t, err)
	fastRes, cached, err := fastCache.GetOrCompute(ctx, fastKey, func() (*Result, error) { return fast.Apply(snap, req) })
	require.NoError(t, err)
	assert.False(t, cached, "a result computed at other rates must not be reused")
	assert.Greater(t, slowRes.EstimatedHours, fastRes.EstimatedHours)
}
