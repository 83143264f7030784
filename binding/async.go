package binding

import "context"

// Callback receives the outcome of an asynchronous operation. err is nil on
// success.
type Callback[T any] func(err error, result T)

// Future is the awaitable side of an asynchronous operation. It resolves
// exactly once.
type Future[T any] struct {
	done   chan struct{}
	result T
	err    error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) resolve(result T, err error) {
	f.result = result
	f.err = err
	close(f.done)
}

// Done is closed once the operation has completed.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the operation completes or ctx is done. A cancelled ctx
// stops the wait only; the operation itself keeps running to completion.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the operation completes.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.result, f.err
}

// Err blocks until the operation completes and returns its error.
func (f *Future[T]) Err() error {
	<-f.done
	return f.err
}

// dispatch is the single asynchronous execution path. fn runs on its own
// goroutine; the future resolves with its outcome and then cb, if any, is
// invoked with the same payload.
func dispatch[T any](cb Callback[T], fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		result, err := fn()
		f.resolve(result, err)
		if cb != nil {
			cb(err, result)
		}
	}()
	return f
}

// rejected returns a future that has already failed with err. The callback
// is still delivered asynchronously so both calling conventions observe the
// same ordering.
func rejected[T any](cb Callback[T], err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.resolve(zero, err)
	if cb != nil {
		go cb(err, zero)
	}
	return f
}
