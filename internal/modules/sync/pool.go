package sync

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/videolabel-backend/internal/platform/dbctx"
	"github.com/yungbote/videolabel-backend/internal/platform/envutil"
)

// DefaultWorkers is the bounded pool size used when SYNC_WORKERS is unset.
const DefaultWorkers = 12

func WorkersFromEnv() int {
	n := envutil.Int("SYNC_WORKERS", DefaultWorkers)
	if n < 1 {
		return 1
	}
	return n
}

// verifyAll runs every operation's Verify on the bounded pool. Verification
// is read-only, so operations race freely; failures are collected under a
// mutex and returned sorted by key for stable reporting. Only a context
// error stops the sweep early.
func verifyAll(ctx context.Context, workers int, ops []Operation) ([]Failure, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	var failures []Failure
	for _, op := range ops {
		op := op
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := op.Verify(dbctx.Context{Ctx: gctx}); err != nil {
				mu.Lock()
				failures = append(failures, Failure{Key: op.Key(), Reason: err.Error()})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(failures, func(i, j int) bool { return failures[i].Key < failures[j].Key })
	return failures, nil
}

type applyResult struct {
	key     string
	outcome Outcome
	err     error
}

// applyAll runs the given per-operation apply function on the bounded pool
// and collects every result. Apply failures do not cancel sibling
// operations; each entity's transaction stands alone.
func applyAll(ctx context.Context, workers int, ops []Operation, apply func(context.Context, Operation) (Outcome, error)) ([]applyResult, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	results := make([]applyResult, 0, len(ops))
	for _, op := range ops {
		op := op
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := apply(gctx, op)
			mu.Lock()
			results = append(results, applyResult{key: op.Key(), outcome: outcome, err: err})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
