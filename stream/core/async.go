package core

import (
	"context"
	"errors"
	"reflect"
)

// ErrNoFutures is returned by Race for a stream without futures.
var ErrNoFutures = errors.New("no futures to race")

// ErrFutureClosed is returned when a future's channel is closed without
// delivering a Result.
var ErrFutureClosed = errors.New("future closed without a result")

// Result represents the outcome of a deferred computation: either a value
// or an error.
type Result[T any] struct {
	value T
	err   error
}

// Ok creates a successful Result containing the given value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Err creates an error Result.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// IsValue returns true if this Result contains a successful value.
func (r Result[T]) IsValue() bool { return r.err == nil }

// IsError returns true if this Result contains an error.
func (r Result[T]) IsError() bool { return r.err != nil }

// Value returns the contained value. Only meaningful when IsValue() is true.
func (r Result[T]) Value() T { return r.value }

// Error returns the error of an error Result, nil otherwise.
func (r Result[T]) Error() error { return r.err }

// Unwrap returns the value and error together.
func (r Result[T]) Unwrap() (T, error) { return r.value, r.err }

// Future is a deferred value: a channel that delivers exactly one Result.
type Future[T any] <-chan Result[T]

// Async starts fn in its own goroutine and returns its Future. A panic in
// fn is delivered as an ErrPanic.
func Async[T any](ctx context.Context, fn func(context.Context) (T, error)) Future[T] {
	out := make(chan Result[T], 1)
	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				out <- Err[T](NewPanicError(r))
			}
		}()
		v, err := fn(ctx)
		if err != nil {
			out <- Err[T](err)
			return
		}
		out <- Ok(v)
	}()
	return out
}

// Resolved returns a Future that already holds r.
func Resolved[T any](r Result[T]) Future[T] {
	out := make(chan Result[T], 1)
	out <- r
	close(out)
	return out
}

// Race collects the futures of s eagerly and returns the outcome of the
// first one to settle, whether value or error.
func Race[T any](ctx context.Context, s *Stream[Future[T]]) (T, error) {
	var zero T
	futures := s.ToSlice()
	if len(futures) == 0 {
		return zero, ErrNoFutures
	}
	cases := selectCases(ctx, futures)
	chosen, recv, ok := reflect.Select(cases)
	if chosen == len(futures) {
		return zero, ctx.Err()
	}
	if !ok {
		return zero, ErrFutureClosed
	}
	return recv.Interface().(Result[T]).Unwrap()
}

// Rest collects the futures of s eagerly, waits for all of them and returns
// a Stream of their values in the order of the futures. It fails with the
// first error to settle without waiting for the others.
func Rest[T any](ctx context.Context, s *Stream[Future[T]]) (*Stream[T], error) {
	futures := s.ToSlice()
	values := make([]T, len(futures))
	cases := selectCases(ctx, futures)
	// index maps a live select case to its future.
	index := make([]int, len(futures))
	for i := range index {
		index[i] = i
	}

	for pending := len(futures); pending > 0; pending-- {
		chosen, recv, ok := reflect.Select(cases)
		if chosen == len(cases)-1 {
			return nil, ctx.Err()
		}
		if !ok {
			return nil, ErrFutureClosed
		}
		res := recv.Interface().(Result[T])
		if res.IsError() {
			return nil, res.Error()
		}
		values[index[chosen]] = res.Value()
		cases = append(cases[:chosen], cases[chosen+1:]...)
		index = append(index[:chosen], index[chosen+1:]...)
	}
	return FromSlice(values), nil
}

// selectCases builds one receive case per future plus a final case for
// context cancellation.
func selectCases[T any](ctx context.Context, futures []Future[T]) []reflect.SelectCase {
	cases := make([]reflect.SelectCase, 0, len(futures)+1)
	for _, f := range futures {
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(f)})
	}
	return append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
}
