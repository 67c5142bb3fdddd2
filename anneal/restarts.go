package anneal

import (
	"cmp"
	"context"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// Restarts runs n independent searches with at most limit of them in
// parallel and returns the results ordered from best to worst. Searches must
// not share mutable state.
func Restarts[S any](ctx context.Context, n, limit int, f func(ctx context.Context, i int) (Result[S], error)) ([]Result[S], error) {
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	rs := make([]Result[S], n)
	for i := range rs {
		g.Go(func() (err error) {
			rs[i], err = f(ctx, i)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(rs, func(a, b Result[S]) int { return cmp.Compare(a.Distance, b.Distance) })
	return rs, nil
}
