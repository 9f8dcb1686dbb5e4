// Package concurrent runs bounded groups of goroutines over errgroup.
package concurrent

import (
	"context"
	"iter"

	"golang.org/x/sync/errgroup"
)

// ForEach runs fn for every item with at most limit goroutines in flight.
// The first error cancels ctx for the remaining calls and is returned once
// every started call has finished. A limit below one means no limit.
func ForEach[T any](ctx context.Context, items iter.Seq[T], limit int, fn func(context.Context, T) error) error {
	group, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		group.SetLimit(limit)
	}

	for item := range items {
		if ctx.Err() != nil {
			break
		}
		group.Go(func() error {
			// Go may block on the limit past an earlier failure.
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, item)
		})
	}
	return group.Wait()
}

// Map applies fn to each element of in with bounded parallelism and returns
// the results in input order. On error the partial results are discarded.
func Map[T, R any](ctx context.Context, in []T, limit int, fn func(context.Context, T) (R, error)) ([]R, error) {
	out := make([]R, len(in))
	err := ForEach(ctx, indices(len(in)), limit, func(ctx context.Context, i int) error {
		r, err := fn(ctx, in[i])
		if err != nil {
			return err
		}
		out[i] = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func indices(n int) iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}
