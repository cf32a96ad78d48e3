package core

import (
	"cmp"
	"math/rand/v2"
	"slices"
)

// The operations in this file are eager: they drain the rest of the stream
// through its current pipeline and restream the materialized elements. They
// are the intentional exceptions to laziness, for operations that need every
// element (sorting, reversing) or random access (backward stepping).

// restream replaces the stream's sources and pipeline with items.
func (s *Stream[T]) restream(items []T) *Stream[T] {
	if s.done && len(items) == 0 {
		return s
	}
	s.sources = []Sequence[T]{newSliceCursor(items)}
	s.actions = nil
	s.done, s.stopAfter = false, false
	s.clearBuffer()
	return s
}

// Collect drains the stream into memory and restreams the result. It makes
// it safe to mutate the underlying source while iterating.
func (s *Stream[T]) Collect() *Stream[T] {
	return s.restream(s.ToSlice())
}

// Sort sorts the remaining elements with cmp. The sort is stable.
func (s *Stream[T]) Sort(cmp func(a, b T) int) *Stream[T] {
	items := s.ToSlice()
	slices.SortStableFunc(items, cmp)
	return s.restream(items)
}

// Reverse restreams the remaining elements in reverse order.
func (s *Stream[T]) Reverse() *Stream[T] {
	items := s.ToSlice()
	slices.Reverse(items)
	return s.restream(items)
}

// Shuffle restreams the remaining elements in random order.
func (s *Stream[T]) Shuffle() *Stream[T] {
	items := s.ToSlice()
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return s.restream(items)
}

// stepBackward keeps the last element and every size-th one before it.
func (s *Stream[T]) stepBackward(size int) *Stream[T] {
	items := s.ToSlice()
	picked := make([]T, 0, len(items)/size+1)
	for i := len(items) - 1; i >= 0; i -= size {
		picked = append(picked, items[i])
	}
	return s.restream(picked)
}

// SortBy sorts the remaining elements by an ordered key. The sort is stable.
func SortBy[T any, K cmp.Ordered](s *Stream[T], key func(T) K) *Stream[T] {
	return s.Sort(func(a, b T) int { return cmp.Compare(key(a), key(b)) })
}

// Distinct restreams the remaining elements without duplicates, keeping the
// first occurrence of each.
func Distinct[T comparable](s *Stream[T]) *Stream[T] {
	return DistinctBy(s, func(v T) T { return v })
}

// DistinctBy is like Distinct but compares elements by key.
func DistinctBy[T any, K comparable](s *Stream[T], key func(T) K) *Stream[T] {
	seen := make(map[K]struct{})
	var items []T
	for s.Next() {
		v := s.Value()
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		items = append(items, v)
	}
	return s.restream(items)
}

// Snapshot is a materialized, reusable copy of a stream's elements. Unlike
// a Stream it can be iterated any number of times.
type Snapshot[T any] struct {
	items []T
}

// Snapshot drains the stream into a reusable Snapshot.
func (s *Stream[T]) Snapshot() *Snapshot[T] {
	return &Snapshot[T]{items: s.ToSlice()}
}

// Stream returns a fresh Stream over the snapshot.
func (sn *Snapshot[T]) Stream() *Stream[T] {
	return FromSlice(sn.items)
}

// Len returns the number of elements in the snapshot.
func (sn *Snapshot[T]) Len() int { return len(sn.items) }

// Items returns a copy of the snapshot's elements.
func (sn *Snapshot[T]) Items() []T { return slices.Clone(sn.items) }
