package reschedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync/atomic"

	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/hashstructure/v2"
	"golang.org/x/sync/singleflight"
)

// PreviewKey identifies one preview computation.
type PreviewKey uint64

func (k PreviewKey) String() string {
	return strconv.FormatUint(uint64(k), 16)
}

type adjustmentKey struct {
	PlanContentID  string
	ChangeType     string
	HasRange       bool
	NewStartRange  int
	NewEndRange    int
	NewContentType string
	NewContentID   string
}

type windowKey struct {
	Placement    string
	Reschedule   string
	IncludeToday bool
}

type previewKeyInput struct {
	GroupID     string
	Version     int
	Today       string
	Window      windowKey
	Adjustments []adjustmentKey
	// State covers every persisted row the engine reads, so a change that
	// does not bump the group version still changes the key.
	State string
	// Scheduler holds the rates and cadence the engine computed with.
	Scheduler []config.SchedulerConfig
}

// NewPreviewKey hashes everything that affects the engine's output: the
// scheduler settings, the group and its version, the sorted adjustments,
// the window, today, and the snapshot contents.
func NewPreviewKey(cfg config.SchedulerConfig, snap Snapshot, req Request) (PreviewKey, error) {
	return previewKey([]config.SchedulerConfig{cfg}, snap, req)
}

func previewKey(cfgs []config.SchedulerConfig, snap Snapshot, req Request) (PreviewKey, error) {
	adjs := make([]adjustmentKey, 0, len(req.Adjustments))
	for _, a := range req.Adjustments {
		k := adjustmentKey{
			PlanContentID:  a.PlanContentID,
			ChangeType:     string(a.ChangeType),
			NewContentType: string(a.NewContentType),
			NewContentID:   a.NewContentID,
		}
		if a.NewStartRange != nil && a.NewEndRange != nil {
			k.HasRange = true
			k.NewStartRange = *a.NewStartRange
			k.NewEndRange = *a.NewEndRange
		}
		adjs = append(adjs, k)
	}
	// Adjustments to the same content keep their relative order.
	sort.SliceStable(adjs, func(i, j int) bool {
		return adjs[i].PlanContentID < adjs[j].PlanContentID
	})

	state, err := json.Marshal(snap)
	if err != nil {
		return 0, fmt.Errorf("encoding snapshot: %w", err)
	}

	in := previewKeyInput{
		GroupID: snap.Group.ID,
		Version: snap.Group.Version,
		Today:   domain.DateKey(req.Today),
		Window: windowKey{
			Placement:    rangeKey(req.Window.Placement),
			Reschedule:   rangeKey(req.Window.Reschedule),
			IncludeToday: req.Window.IncludeToday,
		},
		Adjustments: adjs,
		State:       string(state),
		Scheduler:   cfgs,
	}
	h, err := hashstructure.Hash(in, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, fmt.Errorf("hashing preview key: %w", err)
	}
	return PreviewKey(h), nil
}

func rangeKey(r *DateRange) string {
	if r == nil {
		return ""
	}
	return domain.DateKey(r.Start) + ".." + domain.DateKey(r.End)
}

// ErrPreviewMiss is returned by a PreviewStore that has no entry.
var ErrPreviewMiss = errors.New("preview not cached")

// PreviewStore is an optional shared second tier behind the in-process LRU.
type PreviewStore interface {
	Get(ctx context.Context, key PreviewKey) (*Result, error)
	Set(ctx context.Context, key PreviewKey, r *Result) error
}

// PreviewCache memoizes preview results in a bounded LRU. Results handed
// out are shared and must be treated as read-only.
type PreviewCache struct {
	lru    *lru.Cache[PreviewKey, *Result]
	store  PreviewStore
	flight singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// NewPreviewCache creates a cache holding at most size entries. store may
// be nil.
func NewPreviewCache(size int, store PreviewStore) (*PreviewCache, error) {
	c, err := lru.New[PreviewKey, *Result](size)
	if err != nil {
		return nil, fmt.Errorf("creating preview lru: %w", err)
	}
	return &PreviewCache{lru: c, store: store}, nil
}

// Get returns a cached preview, consulting the shared store on a local miss.
func (c *PreviewCache) Get(ctx context.Context, key PreviewKey) (*Result, bool) {
	if r, ok := c.lru.Get(key); ok {
		c.hits.Add(1)
		return r, true
	}
	if c.store != nil {
		if r, err := c.store.Get(ctx, key); err == nil && r != nil {
			c.lru.Add(key, r)
			c.hits.Add(1)
			return r, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Put inserts or refreshes a preview. A failing shared store does not
// invalidate the local entry; its error is returned for logging.
func (c *PreviewCache) Put(ctx context.Context, key PreviewKey, r *Result) error {
	c.lru.Add(key, r)
	if c.store != nil {
		if err := c.store.Set(ctx, key, r); err != nil {
			return fmt.Errorf("storing preview %s: %w", key, err)
		}
	}
	return nil
}

// GetOrCompute returns the cached preview or computes it once, even under
// concurrent callers for the same key. Errors are never cached. The bool
// reports a cache hit.
func (c *PreviewCache) GetOrCompute(ctx context.Context, key PreviewKey, compute func() (*Result, error)) (*Result, bool, error) {
	if r, ok := c.Get(ctx, key); ok {
		return r, true, nil
	}
	v, err, _ := c.flight.Do(key.String(), func() (any, error) {
		if r, ok := c.lru.Get(key); ok {
			return r, nil
		}
		r, err := compute()
		if err != nil {
			return nil, err
		}
		_ = c.Put(ctx, key, r)
		return r, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*Result), false, nil
}

// Len returns the number of locally cached previews.
func (c *PreviewCache) Len() int {
	return c.lru.Len()
}

// Purge drops every locally cached preview.
func (c *PreviewCache) Purge() {
	c.lru.Purge()
}

// Stats returns hit and miss counts since creation.
func (c *PreviewCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
