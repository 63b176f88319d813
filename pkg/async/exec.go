package async

import (
	"context"
	"errors"
	"sync"
)

// ExecFuture represents the result of an asynchronous computation that only returns an error.
type ExecFuture struct {
	err  error
	once sync.Once
	done chan struct{}
}

// Await waits for the asynchronous function to complete and returns its error.
func (f *ExecFuture) Await() error {
	<-f.done
	return f.err
}

// Exec executes fn asynchronously with param and returns a future for its error.
// If ctx is already cancelled, fn is not called and the future settles with ctx.Err().
func Exec[T any](ctx context.Context, param T, fn func(context.Context, T) error) *ExecFuture {
	f := &ExecFuture{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		// Early exit prevents goroutine work when context is pre-canceled
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}

		err := fn(ctx, param)

		f.once.Do(func() {
			f.err = err
		})
	}()

	return f
}

// AwaitAll waits for every future to settle and returns all of their errors
// joined with errors.Join, in future order. Returns nil if all succeeded.
func AwaitAll(futures ...*ExecFuture) error {
	var errs []error
	for _, future := range futures {
		if err := future.Await(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
