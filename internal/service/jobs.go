package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/studyplan/internal/app"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrQueueFull   = errors.New("job queue is full")
	ErrQueueClosed = errors.New("job queue is closed")
	ErrJobNotFound = errors.New("job not found")
)

type job struct {
	id     string
	req    app.BatchRequest
	status app.JobStatus
	done   chan struct{}
}

// InProcessJobQueue runs batch reschedules on a fixed pool of workers fed
// by a buffered channel. Enqueue never blocks; a full buffer is an error.
type InProcessJobQueue struct {
	applier RescheduleService
	logger  *zap.Logger
	workers int

	jobs chan *job
	wg   sync.WaitGroup

	mu      sync.RWMutex
	byID    map[string]*job
	closed  bool
	stopped bool
}

func NewJobQueue(applier RescheduleService, workers, size int, logger *zap.Logger) *InProcessJobQueue {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InProcessJobQueue{
		applier: applier,
		logger:  logger.Named("jobs"),
		workers: workers,
		jobs:    make(chan *job, size),
		byID:    make(map[string]*job),
	}
}

// Start launches the workers. They stop when ctx is done or Close is called.
// Jobs still queued when ctx is done are failed rather than left waiting.
func (q *InProcessJobQueue) Start(ctx context.Context) {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					q.abandon(ctx.Err())
					return
				case j, ok := <-q.jobs:
					if !ok {
						return
					}
					q.run(ctx, j)
				}
			}
		}()
	}
}

// Close stops accepting jobs and waits for queued ones to finish. Jobs no
// worker picked up, because Start was never called or its ctx ended, are
// marked failed.
func (q *InProcessJobQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
	q.abandon(ErrQueueClosed)
}

// abandon stops further enqueues and fails every job left in the buffer
// with cause.
func (q *InProcessJobQueue) abandon(cause error) {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
	for {
		select {
		case j, ok := <-q.jobs:
			if !ok {
				return
			}
			q.fail(j, cause)
		default:
			return
		}
	}
}

func (q *InProcessJobQueue) fail(j *job, cause error) {
	defer close(j.done)
	outcomes := make([]app.JobOutcome, len(j.req.Items))
	for i, item := range j.req.Items {
		outcomes[i] = app.JobOutcome{GroupID: item.GroupID, Err: "not run: " + cause.Error()}
	}
	q.setState(j, app.JobFailed, outcomes)
	q.logger.Warn("job abandoned", zap.String("job_id", j.id), zap.Error(cause))
}

func (q *InProcessJobQueue) Enqueue(_ context.Context, req app.BatchRequest) (app.JobHandle, error) {
	if len(req.Items) == 0 {
		return app.JobHandle{}, fmt.Errorf("empty batch")
	}
	j := &job{
		id:   uuid.New().String(),
		req:  req,
		done: make(chan struct{}),
	}
	j.status = app.JobStatus{ID: j.id, State: app.JobQueued, EnqueuedAt: time.Now().UTC()}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || q.stopped {
		return app.JobHandle{}, ErrQueueClosed
	}
	select {
	case q.jobs <- j:
	default:
		return app.JobHandle{}, ErrQueueFull
	}
	q.byID[j.id] = j
	q.logger.Info("job enqueued", zap.String("job_id", j.id), zap.Int("items", len(req.Items)))
	return app.JobHandle{ID: j.id, EnqueuedAt: j.status.EnqueuedAt}, nil
}

func (q *InProcessJobQueue) Status(_ context.Context, id string) (*app.JobStatus, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	j, ok := q.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrJobNotFound)
	}
	st := j.status
	st.Outcomes = append([]app.JobOutcome(nil), j.status.Outcomes...)
	return &st, nil
}

// Wait blocks until the job finishes or ctx is done.
func (q *InProcessJobQueue) Wait(ctx context.Context, id string) (*app.JobStatus, error) {
	q.mu.RLock()
	j, ok := q.byID[id]
	q.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrJobNotFound)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-j.done:
	}
	return q.Status(ctx, id)
}

func (q *InProcessJobQueue) run(ctx context.Context, j *job) {
	defer close(j.done)
	q.setState(j, app.JobRunning, nil)

	outcomes := q.applier.ApplyBatch(ctx, j.req.Items)
	state := app.JobSucceeded
	for _, o := range outcomes {
		if o.Err != "" {
			state = app.JobFailed
			q.logger.Warn("batch item failed",
				zap.String("job_id", j.id),
				zap.String("group_id", o.GroupID),
				zap.String("error", o.Err))
		}
	}
	q.setState(j, state, outcomes)
	q.logger.Info("job finished", zap.String("job_id", j.id), zap.String("state", string(state)))
}

func (q *InProcessJobQueue) setState(j *job, state app.JobState, outcomes []app.JobOutcome) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j.status.State = state
	if outcomes != nil {
		j.status.Outcomes = outcomes
		now := time.Now().UTC()
		j.status.FinishedAt = &now
	}
}
