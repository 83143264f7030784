package binding

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunAll runs every model concurrently and waits for all of them. It returns
// the first error. Passing the same Model twice makes one of the runs fail
// with ErrRunInProgress.
func RunAll(ctx context.Context, models ...*Model) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, m := range models {
		g.Go(func() error {
			return m.Run(ctx).Err()
		})
	}
	return g.Wait()
}
