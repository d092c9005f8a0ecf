package scheduler

import (
	"math"
	"sync"

	"github.com/alexanderramin/studyplan/internal/config"
	"github.com/alexanderramin/studyplan/internal/domain"
)

// DurationIndex looks up duration metadata by content reference.
type DurationIndex map[domain.ContentRef]domain.ContentDurationInfo

// NewDurationIndex indexes infos by content reference. Later entries win.
func NewDurationIndex(infos []domain.ContentDurationInfo) DurationIndex {
	idx := make(DurationIndex, len(infos))
	for _, info := range infos {
		idx[info.Ref()] = info
	}
	return idx
}

// Lookup returns the info for ref, or nil when none is known.
func (d DurationIndex) Lookup(ref domain.ContentRef) *domain.ContentDurationInfo {
	info, ok := d[ref]
	if !ok {
		return nil
	}
	return &info
}

type estimateKey struct {
	ref     domain.ContentRef
	start   int
	end     int
	dayType domain.DayType
}

// Estimator converts a content range into minutes. Results are memoized
// per (content, range, day type); it is safe for concurrent use.
type Estimator struct {
	cfg config.SchedulerConfig

	mu   sync.Mutex
	memo map[estimateKey]int
}

func NewEstimator(cfg config.SchedulerConfig) *Estimator {
	return &Estimator{cfg: cfg, memo: make(map[estimateKey]int)}
}

// Config returns the settings the estimator sizes content with.
func (e *Estimator) Config() config.SchedulerConfig {
	return e.cfg
}

// Estimate returns the minutes needed for the full range of c.
func (e *Estimator) Estimate(c domain.PlanContent, info *domain.ContentDurationInfo, dayType domain.DayType) int {
	return e.EstimateRange(c.Ref(), c.StartRange, c.EndRange, info, dayType)
}

// EstimateRange returns the minutes needed for units [start, end] of ref.
// Unknown metadata degrades to configured defaults; it never fails.
func (e *Estimator) EstimateRange(ref domain.ContentRef, start, end int, info *domain.ContentDurationInfo, dayType domain.DayType) int {
	key := estimateKey{ref: ref, start: start, end: end, dayType: dayType}

	e.mu.Lock()
	if v, ok := e.memo[key]; ok {
		e.mu.Unlock()
		return v
	}
	e.mu.Unlock()

	base := e.base(ref.Type, start, end, info)
	v := base
	if dayType == domain.DayReview {
		v = roundHalfUp(float64(base) * e.cfg.ReviewRatio)
	}

	e.mu.Lock()
	e.memo[key] = v
	e.mu.Unlock()
	return v
}

// Invalidate drops every memoized estimate for the given content id.
func (e *Estimator) Invalidate(contentID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k := range e.memo {
		if k.ref.ID == contentID {
			delete(e.memo, k)
		}
	}
}

// Reset drops all memoized estimates.
func (e *Estimator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memo = make(map[estimateKey]int)
}

// Len reports the number of memoized entries.
func (e *Estimator) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.memo)
}

func (e *Estimator) base(t domain.ContentType, start, end int, info *domain.ContentDurationInfo) int {
	units := end - start + 1
	if units <= 0 {
		return 0
	}
	switch t {
	case domain.ContentLecture:
		return e.lectureMinutes(start, end, info)
	case domain.ContentCustom:
		return customMinutes(units, info)
	default:
		difficulty := ""
		if info != nil {
			difficulty = info.Difficulty
		}
		return units * e.cfg.MinutesPerPage(difficulty)
	}
}

func (e *Estimator) lectureMinutes(start, end int, info *domain.ContentDurationInfo) int {
	def := e.cfg.DefaultEpisodeMinutes
	if info == nil || len(info.Episodes) == 0 {
		return (end - start + 1) * def
	}
	known := make(map[int]int, len(info.Episodes))
	for _, ep := range info.Episodes {
		if ep.DurationMin != nil && *ep.DurationMin >= 0 {
			known[ep.Number] = *ep.DurationMin
		}
	}
	total := 0
	for n := start; n <= end; n++ {
		if d, ok := known[n]; ok {
			total += d
		} else {
			total += def
		}
	}
	return total
}

func customMinutes(units int, info *domain.ContentDurationInfo) int {
	if info == nil || info.TotalMinutes == nil {
		return units
	}
	if info.TotalUnits > 0 {
		return roundHalfUp(float64(*info.TotalMinutes) * float64(units) / float64(info.TotalUnits))
	}
	return *info.TotalMinutes
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
