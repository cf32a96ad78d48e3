package stream

import (
	"cmp"
	"io"
	"iter"
	"regexp"

	"github.com/lguimbarda/min-stream/stream/core"
)

// From creates a Stream that pulls from the given sequences in order.
func From[T any](sources ...Sequence[T]) *Stream[T] {
	return core.From(sources...)
}

// FromSlice creates a Stream over the elements of items.
// The slice is not copied.
func FromSlice[T any](items []T) *Stream[T] {
	return core.FromSlice(items)
}

// Of creates a Stream over its arguments.
func Of[T any](items ...T) *Stream[T] {
	return core.Of(items...)
}

// Empty creates an exhausted Stream.
func Empty[T any]() *Stream[T] {
	return core.Empty[T]()
}

// Once creates a Stream holding a single value.
func Once[T any](value T) *Stream[T] {
	return core.Of(value)
}

// Range counts from start toward end (exclusive) by step. The sign of step
// is normalized toward end; a zero step panics with ErrZeroStep.
func Range[N Integer](start, end, step N) *Stream[N] {
	return core.Range(start, end, step)
}

// FromFunc creates a Stream from a generator that reports false when done.
func FromFunc[T any](fn func() (T, bool)) *Stream[T] {
	return core.FromFunc(fn)
}

// FromFuncOn creates a Stream from a generator that reads from upstream.
// Upstream is closed when the generator is done or the Stream is closed.
func FromFuncOn[T any](upstream io.Closer, fn func() (T, bool)) *Stream[T] {
	return core.FromFuncOn(upstream, fn)
}

// Generate creates an infinite Stream of fn's results.
func Generate[T any](fn func() T) *Stream[T] {
	return core.Generate(fn)
}

// Repeat creates a Stream of value repeated n times, forever if n < 0.
func Repeat[T any](value T, n int) *Stream[T] {
	return core.Repeat(value, n)
}

// FromIter creates a Stream from a range-over-func iterator. The iterator
// runs as a pull coroutine that is released when the Stream is exhausted,
// stopped by Take or TakeWhile, or closed. First, FirstWhere, Some and
// Includes leave it parked; Close the Stream when done with it.
func FromIter[T any](seq iter.Seq[T]) *Stream[T] {
	return core.FromSeq(seq)
}

// FromIter2 creates a Stream of pairs from a two-value iterator.
func FromIter2[K, V any](seq iter.Seq2[K, V]) *Stream[Pair[K, V]] {
	return core.FromSeq2(seq)
}

// FromChannel creates a Stream that receives from ch until it is closed.
func FromChannel[T any](ch <-chan T) *Stream[T] {
	return core.FromChannel(ch)
}

// FromMap creates a Stream of the entries of m in ascending key order.
func FromMap[K cmp.Ordered, V any](m map[K]V) *Stream[Pair[K, V]] {
	return core.Entries(m)
}

// Keys creates a Stream of the keys of m in ascending order.
func Keys[K cmp.Ordered, V any](m map[K]V) *Stream[K] {
	return core.Keys(m)
}

// Values creates a Stream of the values of m in ascending key order.
func Values[K cmp.Ordered, V any](m map[K]V) *Stream[V] {
	return core.Values(m)
}

// Matches creates a Stream of the submatches of each match of re in text.
func Matches(re *regexp.Regexp, text string) *Stream[[]string] {
	return core.Matches(re, text)
}

// Concat creates a Stream that drains each stream in turn.
func Concat[T any](streams ...*Stream[T]) *Stream[T] {
	return core.Concat(streams...)
}

// Defer creates a Stream whose source is built by factory on the first pull.
func Defer[T any](factory func() *Stream[T]) *Stream[T] {
	return core.Defer(factory)
}

// Unfold creates a Stream by repeatedly applying fn to a state, starting
// from seed. The stream ends when fn reports false.
func Unfold[T, S any](seed S, fn func(S) (T, S, bool)) *Stream[T] {
	state := seed
	return core.FromFunc(func() (T, bool) {
		v, next, ok := fn(state)
		if !ok {
			var zero T
			return zero, false
		}
		state = next
		return v, true
	})
}

// Iterate creates an infinite Stream of seed, fn(seed), fn(fn(seed)), ...
func Iterate[T any](seed T, fn func(T) T) *Stream[T] {
	cur, started := seed, false
	return core.Generate(func() T {
		if started {
			cur = fn(cur)
		}
		started = true
		return cur
	})
}

// IterateN is Iterate limited to n elements.
func IterateN[T any](seed T, fn func(T) T, n int) *Stream[T] {
	return Iterate(seed, fn).Take(n)
}
