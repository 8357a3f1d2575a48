package agg

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// CollectNested runs collect for every parent concurrently and flattens the
// children in parent input order. It fails fast on the first failing parent.
func CollectNested[P, T any](ctx context.Context, parents []P, collect func(context.Context, P) ([]T, error)) ([]T, error) {
	if len(parents) == 0 {
		return []T{}, nil
	}

	results := make([][]T, len(parents))
	g, gctx := errgroup.WithContext(ctx)
	for i, parent := range parents {
		g.Go(func() error {
			children, err := collect(gctx, parent)
			if err != nil {
				return err
			}
			results[i] = children
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return flatten(results), nil
}
