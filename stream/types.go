// Package stream provides lazy, pull-based, single-pass sequence pipelines
// for Go.
//
// This package is the primary user-facing API. Most users should only
// need to import this package. The stream/core subpackage contains the
// engine itself; the other subpackages adapt external sources and sinks
// (files, directories, CSV, JSON, SQL, GORM, Redis, HTTP, Kafka, S3) and
// observers (logging, metrics).
package stream

import (
	"context"

	"github.com/lguimbarda/min-stream/stream/core"
)

// Type aliases for core abstractions.
// These allow users to work with the engine without importing core directly.
type (
	// Sequence is the minimal pull producer every Stream is built on.
	Sequence[T any] = core.Sequence[T]

	// Stream is a lazy, single-pass sequence with a deferred action pipeline.
	Stream[T any] = core.Stream[T]

	// Pair holds two values; the element type of zips, entries and maps.
	Pair[A, B any] = core.Pair[A, B]

	// Hub demultiplexes one Stream into keyed partitions.
	Hub[K comparable, T any] = core.Hub[K, T]

	// PartitionOption configures a Hub.
	PartitionOption[K comparable] = core.PartitionOption[K]

	// Hooks holds observation callbacks for Observe.
	Hooks[T any] = core.Hooks[T]

	// Snapshot is a reusable, materialized copy of a stream.
	Snapshot[T any] = core.Snapshot[T]

	// Result is either a value or an error.
	Result[T any] = core.Result[T]

	// Future delivers exactly one Result.
	Future[T any] = core.Future[T]

	// Integer is the set of types Range counts over.
	Integer = core.Integer

	// MisuseError reports an operation called in a way the engine cannot honor.
	MisuseError = core.MisuseError

	// ErrPanic wraps a recovered panic value.
	ErrPanic = core.ErrPanic
)

// Misuse conditions, delivered by panic inside a *MisuseError.
var (
	ErrReentrantDrive = core.ErrReentrantDrive
	ErrNotPair        = core.ErrNotPair
	ErrZeroStep       = core.ErrZeroStep
	ErrInvalidSize    = core.ErrInvalidSize
)

// Async errors.
var (
	ErrNoFutures    = core.ErrNoFutures
	ErrFutureClosed = core.ErrFutureClosed
)

// Catch runs fn and returns any panic raised inside it as an error.
func Catch(fn func()) error {
	return core.Catch(fn)
}

// Result and Future constructors.

// Ok creates a successful Result containing the given value.
func Ok[T any](value T) Result[T] {
	return core.Ok(value)
}

// Err creates an error Result.
func Err[T any](err error) Result[T] {
	return core.Err[T](err)
}

// Async runs fn in its own goroutine and returns its Future.
func Async[T any](ctx context.Context, fn func(context.Context) (T, error)) Future[T] {
	return core.Async(ctx, fn)
}

// Resolved returns a Future that already holds r.
func Resolved[T any](r Result[T]) Future[T] {
	return core.Resolved(r)
}

// Race returns the outcome of the first future of s to settle.
func Race[T any](ctx context.Context, s *Stream[Future[T]]) (T, error) {
	return core.Race(ctx, s)
}

// Rest waits for every future of s and streams their values in order.
func Rest[T any](ctx context.Context, s *Stream[Future[T]]) (*Stream[T], error) {
	return core.Rest(ctx, s)
}
