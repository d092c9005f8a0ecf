package reschedule

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchItem is one group's reschedule within a batch.
type BatchItem struct {
	Snapshot Snapshot
	Request  Request
}

// BatchOutcome is the result for one item. Items fail independently.
type BatchOutcome struct {
	GroupID string
	Result  *Result
	Err     error
}

// BatchAdjuster applies independent per-group reschedules concurrently.
type BatchAdjuster struct {
	engine *Engine
	limit  int
}

// NewBatchAdjuster runs at most limit items at once; limit <= 0 means one.
func NewBatchAdjuster(engine *Engine, limit int) *BatchAdjuster {
	if limit <= 0 {
		limit = 1
	}
	return &BatchAdjuster{engine: engine, limit: limit}
}

// Run returns one outcome per item in input order. A failing item does
// not stop the others; cancellation of ctx stops items not yet started.
func (b *BatchAdjuster) Run(ctx context.Context, items []BatchItem) []BatchOutcome {
	out := make([]BatchOutcome, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)

	for i, item := range items {
		out[i].GroupID = item.Snapshot.Group.ID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			out[i].Result, out[i].Err = b.engine.Apply(item.Snapshot, item.Request)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
