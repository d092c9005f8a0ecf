package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/alexanderramin/studyplan/internal/db"
	"github.com/alexanderramin/studyplan/internal/domain"
	"github.com/alexanderramin/studyplan/internal/repository"
	"github.com/alexanderramin/studyplan/internal/reschedule"
	"go.uber.org/zap"
)

// RescheduleDeps wires the reschedule use cases.
type RescheduleDeps struct {
	UoW      db.UnitOfWork
	Engine   *reschedule.Engine
	Cache    *reschedule.PreviewCache
	Notifier Notifier
	Logger   *zap.Logger
	// BatchLimit bounds how many groups of one batch compute at once.
	BatchLimit int
	Now        func() time.Time
}

type rescheduleService struct {
	uow       db.UnitOfWork
	engine    *reschedule.Engine
	cache     *reschedule.PreviewCache
	batch     *reschedule.BatchAdjuster
	committer *repository.RescheduleCommitter
	notifier  Notifier
	logger    *zap.Logger
	observer  UseCaseObserver
	now       func() time.Time
	locks     groupLocks
}

func NewRescheduleService(deps RescheduleDeps, observers ...UseCaseObserver) RescheduleService {
	s := &rescheduleService{
		uow:       deps.UoW,
		engine:    deps.Engine,
		cache:     deps.Cache,
		batch:     reschedule.NewBatchAdjuster(deps.Engine, deps.BatchLimit),
		committer: repository.NewRescheduleCommitter(deps.UoW),
		notifier:  deps.Notifier,
		logger:    deps.Logger,
		observer:  useCaseObserverOrNoop(observers),
		now:       deps.Now,
	}
	if s.notifier == nil {
		s.notifier = NoopNotifier{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Preview computes, or returns the memoized, diff for the request without
// writing anything.
func (s *rescheduleService) Preview(ctx context.Context, req app.RescheduleRequest) (resp *app.PreviewResponse, err error) {
	fields := map[string]any{"group_id": req.GroupID, "adjustments": len(req.Adjustments)}
	defer observe(ctx, s.observer, "reschedule-preview", fields, &err)()

	snap, ereq, err := s.prepare(ctx, req)
	if err != nil {
		return nil, toRescheduleError(err)
	}
	res, cached, err := s.compute(ctx, snap, ereq)
	if err != nil {
		return nil, toRescheduleError(err)
	}
	fields["cached"] = cached
	fields["operations"] = len(res.Operations)
	return &app.PreviewResponse{Result: res, Cached: cached}, nil
}

// Apply recomputes the diff against the current state and commits it. The
// commit only lands if the group has not changed since it was read.
func (s *rescheduleService) Apply(ctx context.Context, req app.RescheduleRequest) (resp *app.ApplyResponse, err error) {
	fields := map[string]any{"group_id": req.GroupID, "adjustments": len(req.Adjustments)}
	defer observe(ctx, s.observer, "reschedule-apply", fields, &err)()

	unlock := s.locks.lock(req.GroupID)
	defer unlock()

	snap, ereq, err := s.prepare(ctx, req)
	if err != nil {
		return nil, toRescheduleError(err)
	}
	res, _, err := s.compute(ctx, snap, ereq)
	if err != nil {
		return nil, toRescheduleError(err)
	}
	resp, err = s.commit(ctx, snap.Group.Version, res, req.Reason)
	if err != nil {
		return nil, toRescheduleError(err)
	}
	fields["operations"] = len(res.Operations)
	fields["no_change"] = resp.NoChange
	return resp, nil
}

// ApplyBatch computes independent per-group reschedules concurrently and
// commits each one on its own. One failing group does not affect the rest.
func (s *rescheduleService) ApplyBatch(ctx context.Context, reqs []app.RescheduleRequest) []app.JobOutcome {
	outcomes := make([]app.JobOutcome, len(reqs))
	var (
		items    []reschedule.BatchItem
		itemIdx  []int
		versions []int
	)
	for i, req := range reqs {
		outcomes[i].GroupID = req.GroupID
		snap, ereq, err := s.prepare(ctx, req)
		if err != nil {
			outcomes[i].Err = toRescheduleError(err).Error()
			continue
		}
		items = append(items, reschedule.BatchItem{Snapshot: snap, Request: ereq})
		itemIdx = append(itemIdx, i)
		versions = append(versions, snap.Group.Version)
	}

	for j, out := range s.batch.Run(ctx, items) {
		i := itemIdx[j]
		if out.Err != nil {
			logComputationError(s.logger, out.GroupID, out.Err)
			outcomes[i].Err = toRescheduleError(out.Err).Error()
			continue
		}
		resp, err := s.commitLocked(ctx, versions[j], out.Result, reqs[i].Reason)
		if err != nil {
			outcomes[i].Err = toRescheduleError(err).Error()
			continue
		}
		if resp.Log != nil {
			outcomes[i].LogID = resp.Log.ID
		}
	}
	return outcomes
}

func (s *rescheduleService) commitLocked(ctx context.Context, version int, res *reschedule.Result, reason string) (*app.ApplyResponse, error) {
	unlock := s.locks.lock(res.GroupID)
	defer unlock()
	return s.commit(ctx, version, res, reason)
}

func (s *rescheduleService) commit(ctx context.Context, version int, res *reschedule.Result, reason string) (*app.ApplyResponse, error) {
	if res.Empty() {
		return &app.ApplyResponse{Result: res, Version: version, NoChange: true}, nil
	}
	log, err := s.committer.Commit(ctx, res.GroupID, version, res, reason)
	if err != nil {
		return nil, err
	}
	s.notifier.DatesChanged(ctx, res.GroupID, res.AffectedDates)
	return &app.ApplyResponse{Result: res, Log: log, Version: version + 1}, nil
}

// prepare loads a consistent snapshot and turns the request into engine input.
func (s *rescheduleService) prepare(ctx context.Context, req app.RescheduleRequest) (reschedule.Snapshot, reschedule.Request, error) {
	var snap reschedule.Snapshot
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		snap, err = repository.LoadSnapshot(ctx, tx, req.GroupID)
		return err
	})
	if err != nil {
		return snap, reschedule.Request{}, fmt.Errorf("loading group %s: %w", req.GroupID, err)
	}

	today := s.now()
	if req.Today != nil {
		today = *req.Today
	}
	return snap, reschedule.Request{
		Adjustments: resolveAdjustments(req.Adjustments, snap.Contents),
		Window:      req.Window,
		Today:       domain.Day(today),
	}, nil
}

func (s *rescheduleService) compute(ctx context.Context, snap reschedule.Snapshot, req reschedule.Request) (*reschedule.Result, bool, error) {
	apply := func() (*reschedule.Result, error) {
		return s.engine.Apply(snap, req)
	}
	if s.cache == nil {
		res, err := apply()
		if err != nil {
			logComputationError(s.logger, snap.Group.ID, err)
		}
		return res, false, err
	}
	key, err := s.engine.PreviewKey(snap, req)
	if err != nil {
		err = &reschedule.ComputationError{Op: "preview key", Err: err}
		logComputationError(s.logger, snap.Group.ID, err)
		return nil, false, err
	}
	res, cached, err := s.cache.GetOrCompute(ctx, key, apply)
	if err != nil {
		logComputationError(s.logger, snap.Group.ID, err)
	}
	return res, cached, err
}

// resolveAdjustments lets callers name a content by its content id when
// that id is unique within the group. Unknown ids pass through so the
// engine reports them.
func resolveAdjustments(adjs []domain.AdjustmentInput, contents []domain.PlanContent) []domain.AdjustmentInput {
	ids := make(map[string]bool, len(contents))
	byContentID := make(map[string][]string)
	for _, c := range contents {
		ids[c.ID] = true
		byContentID[c.ContentID] = append(byContentID[c.ContentID], c.ID)
	}
	out := make([]domain.AdjustmentInput, len(adjs))
	for i, a := range adjs {
		if !ids[a.PlanContentID] {
			if matches := byContentID[a.PlanContentID]; len(matches) == 1 {
				a.PlanContentID = matches[0]
			}
		}
		out[i] = a
	}
	return out
}

// groupLocks serializes commits per group inside one process.
type groupLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *groupLocks) lock(groupID string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sync.Mutex)
	}
	m, ok := l.m[groupID]
	if !ok {
		m = &sync.Mutex{}
		l.m[groupID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
