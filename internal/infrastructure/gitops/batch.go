package gitops

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Operation is one independent unit of git work in a batch.
type Operation struct {
	Name string
	Run  func(ctx context.Context) error
}

// Result records the outcome of a single batch operation.
type Result struct {
	Name     string
	Err      error
	Duration time.Duration
}

// RunBatch executes the operations with at most limit running concurrently.
// Every operation runs to completion even when others fail; the context is
// cancelled only when the caller's context is. Results keep the input order.
func RunBatch(ctx context.Context, limit int, ops []Operation, onDone func(Result)) []Result {
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(ops))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, op := range ops {
		g.Go(func() error {
			start := time.Now()
			err := op.Run(ctx)
			res := Result{Name: op.Name, Err: err, Duration: time.Since(start)}
			results[i] = res
			if onDone != nil {
				onDone(res)
			}
			// Errors are reported per operation, not through the group, so
			// one failed fetch does not cancel the rest of the batch.
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// Failed filters a batch result list down to the failures.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}
