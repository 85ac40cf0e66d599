// Package pipeline fans work out over a bounded number of goroutines.
package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Run calls fn for every item using at most workers goroutines and returns
// one error slot per item, nil on success. A cancelled ctx stops items that
// have not started; their slots hold ctx.Err().
func Run[T any](ctx context.Context, items []T, workers int, fn func(ctx context.Context, item T) error) []error {
	errs := make([]error, len(items))
	if len(items) == 0 || fn == nil {
		return errs
	}
	if workers <= 0 {
		workers = max(1, runtime.NumCPU())
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}

// Failed returns the non-nil errors of a Run result.
func Failed(errs []error) []error {
	var out []error
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
