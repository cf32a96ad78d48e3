package aggregate

import (
	"github.com/lguimbarda/min-stream/stream/core"
)

// Split divides s into the elements matching predicate and the rest. Both
// streams are lazy and can be consumed in any order; they share the
// upstream cursor through a partition hub.
func Split[T any](s *core.Stream[T], predicate func(T) bool) (matched, rest *core.Stream[T]) {
	hub := core.PartitionBy(s, predicate)
	return core.Defer(func() *core.Stream[T] { return hub.Get(true) }),
		core.Defer(func() *core.Stream[T] { return hub.Get(false) })
}

// GroupBy drains s and returns its elements grouped by key, together with
// the keys in the order they were first seen.
func GroupBy[T any, K comparable](s *core.Stream[T], key func(T) K) (map[K][]T, []K) {
	hub := core.PartitionBy(s, key)
	groups := make(map[K][]T)
	for p := range hub.Partitions().All() {
		groups[p.First] = p.Second.ToSlice()
	}
	return groups, hub.Keys()
}

// CountBy drains s and counts its elements per key.
func CountBy[T any, K comparable](s *core.Stream[T], key func(T) K) map[K]int {
	counts := make(map[K]int)
	for s.Next() {
		counts[key(s.Value())]++
	}
	return counts
}
