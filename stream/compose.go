package stream

import (
	"cmp"

	"github.com/lguimbarda/min-stream/stream/core"
)

// Cross-type operations. Each takes ownership of its input stream.

// Map creates a Stream of fn applied to each element of s.
func Map[T, U any](s *Stream[T], fn func(T) U) *Stream[U] {
	return core.Map(s, fn)
}

// FlatMap replaces each element with the elements of the sequence fn
// returns for it.
func FlatMap[T, U any](s *Stream[T], fn func(T) Sequence[U]) *Stream[U] {
	return core.FlatMap(s, fn)
}

// FlatMapSlice is FlatMap for mappers returning slices.
func FlatMapSlice[T, U any](s *Stream[T], fn func(T) []U) *Stream[U] {
	return core.FlatMapSlice(s, fn)
}

// FlattenSlices concatenates the slices of s.
func FlattenSlices[T any](s *Stream[[]T]) *Stream[T] {
	return core.FlattenSlices(s)
}

// Flatten expands iterable elements one level and passes scalars through.
func Flatten(s *Stream[any]) *Stream[any] {
	return core.Flatten(s)
}

// FlattenDeep flattens depth levels, or completely if depth is negative.
func FlattenDeep(s *Stream[any], depth int) *Stream[any] {
	return core.FlattenDeep(s, depth)
}

// Enumerate pairs each element with its position.
func Enumerate[T any](s *Stream[T]) *Stream[Pair[int, T]] {
	return core.Enumerate(s)
}

// Zip pairs the elements of a and b, truncating to the shorter.
func Zip[A, B any](a Sequence[A], b Sequence[B]) *Stream[Pair[A, B]] {
	return core.Zip(a, b)
}

// Unzip splits a Stream of pairs into its first and second elements.
func Unzip[A, B any](s *Stream[Pair[A, B]]) (*Stream[A], *Stream[B]) {
	return core.Unzip(s)
}

// UnzipAny splits a Stream of untyped pairs.
func UnzipAny(s *Stream[any]) (*Stream[any], *Stream[any]) {
	return core.UnzipAny(s)
}

// Partitioning.

// Partition creates a Hub keyed by sorter, which also receives the
// element's upstream index.
func Partition[K comparable, T any](s *Stream[T], sorter func(T, int) K, opts ...PartitionOption[K]) *Hub[K, T] {
	return core.Partition(s, sorter, opts...)
}

// PartitionBy creates a Hub keyed by key.
func PartitionBy[K comparable, T any](s *Stream[T], key func(T) K, opts ...PartitionOption[K]) *Hub[K, T] {
	return core.PartitionBy(s, key, opts...)
}

// WithDiscoverHook calls fn for each newly discovered key.
func WithDiscoverHook[K comparable](fn func(K)) PartitionOption[K] {
	return core.WithDiscoverHook(fn)
}

// WithInitialBuffer sets the initial capacity of each partition buffer.
func WithInitialBuffer[K comparable](n int) PartitionOption[K] {
	return core.WithInitialBuffer[K](n)
}

// Observation.

// Observe wraps s so hooks see its elements as they are pulled.
func Observe[T any](s *Stream[T], hooks ...Hooks[T]) *Stream[T] {
	return core.Observe(s, hooks...)
}

// NewSafeHooks wraps each hook with panic recovery.
func NewSafeHooks[T any](hooks Hooks[T], panicHandler func(any)) Hooks[T] {
	return core.NewSafeHooks(hooks, panicHandler)
}

// Eager operations.

// SortBy sorts the remaining elements by an ordered key.
func SortBy[T any, K cmp.Ordered](s *Stream[T], key func(T) K) *Stream[T] {
	return core.SortBy(s, key)
}

// Distinct drops repeated elements, keeping first occurrences.
func Distinct[T comparable](s *Stream[T]) *Stream[T] {
	return core.Distinct(s)
}

// DistinctBy drops elements whose key was already seen.
func DistinctBy[T any, K comparable](s *Stream[T], key func(T) K) *Stream[T] {
	return core.DistinctBy(s, key)
}

// Terminal operations.

// Fold combines the elements with fn starting from initial.
func Fold[T, R any](s *Stream[T], initial R, fn func(acc R, v T) R) R {
	return core.Fold(s, initial, fn)
}

// Includes reports whether v occurs in s.
func Includes[T comparable](s *Stream[T], v T) bool {
	return core.Includes(s, v)
}

// IncludesAll reports whether every one of vs occurs in s.
func IncludesAll[T comparable](s *Stream[T], vs ...T) bool {
	return core.IncludesAll(s, vs...)
}

// Intersects reports whether any of vs occurs in s.
func Intersects[T comparable](s *Stream[T], vs ...T) bool {
	return core.Intersects(s, vs...)
}

// ToSet drains s into a set, adding to dst when it is not nil.
func ToSet[T comparable](s *Stream[T], dst map[T]struct{}) map[T]struct{} {
	return core.ToSet(s, dst)
}

// ToMap drains a Stream of pairs into a map, adding to dst when it is not nil.
func ToMap[K comparable, V any](s *Stream[Pair[K, V]], dst map[K]V) map[K]V {
	return core.ToMap(s, dst)
}

// ToMapBy drains s into a map keyed by key.
func ToMapBy[T any, K comparable](s *Stream[T], key func(T) K, dst map[K]T) map[K]T {
	return core.ToMapBy(s, key, dst)
}
