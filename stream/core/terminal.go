package core

import "math/rand/v2"

// Terminal operations drive the stream with a Next loop and reduce the
// surfaced elements to a result. Empty input is never an error: operations
// that need an element report its absence with a boolean or a default.

// ToSlice drains the stream into a new slice. The result is never nil.
func (s *Stream[T]) ToSlice() []T {
	return s.AppendTo(make([]T, 0))
}

// AppendTo drains the stream, appending to dst.
func (s *Stream[T]) AppendTo(dst []T) []T {
	for s.Next() {
		dst = append(dst, s.Value())
	}
	return dst
}

// Reduce combines the elements with fn, using the first element as the
// initial accumulator. It reports false for an empty stream.
func (s *Stream[T]) Reduce(fn func(acc, v T) T) (T, bool) {
	if !s.Next() {
		var zero T
		return zero, false
	}
	acc := s.Value()
	for s.Next() {
		acc = fn(acc, s.Value())
	}
	return acc, true
}

// Fold combines the elements with fn starting from initial. It returns
// initial for an empty stream.
func Fold[T, R any](s *Stream[T], initial R, fn func(acc R, v T) R) R {
	acc := initial
	for s.Next() {
		acc = fn(acc, s.Value())
	}
	return acc
}

// First returns the next element. It stops pulling after it.
func (s *Stream[T]) First() (T, bool) {
	return s.FirstWhere(nil)
}

// FirstWhere returns the first element matching pred; a nil pred matches
// everything.
func (s *Stream[T]) FirstWhere(pred func(T) bool) (T, bool) {
	for s.Next() {
		if v := s.Value(); pred == nil || pred(v) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// FirstOr returns the first element matching pred, or def.
func (s *Stream[T]) FirstOr(pred func(T) bool, def T) T {
	if v, ok := s.FirstWhere(pred); ok {
		return v
	}
	return def
}

// Last drains the stream and returns its final element.
func (s *Stream[T]) Last() (T, bool) {
	return s.LastWhere(nil)
}

// LastWhere drains the stream and returns the final element matching pred.
func (s *Stream[T]) LastWhere(pred func(T) bool) (T, bool) {
	var last T
	found := false
	for s.Next() {
		if v := s.Value(); pred == nil || pred(v) {
			last, found = v, true
		}
	}
	return last, found
}

// LastOr returns the final element matching pred, or def.
func (s *Stream[T]) LastOr(pred func(T) bool, def T) T {
	if v, ok := s.LastWhere(pred); ok {
		return v
	}
	return def
}

// Random drains the stream and returns one element chosen uniformly.
func (s *Stream[T]) Random() (T, bool) {
	return s.RandomWhere(nil)
}

// RandomWhere drains the stream and returns one of the elements matching
// pred, chosen uniformly by reservoir sampling.
func (s *Stream[T]) RandomWhere(pred func(T) bool) (T, bool) {
	if pred != nil {
		s.Filter(pred)
	}
	var picked T
	if !s.HasNext() {
		return picked, false
	}
	n := 0
	for s.Next() {
		n++
		if rand.IntN(n) == 0 {
			picked = s.Value()
		}
	}
	return picked, true
}

// RandomOr returns a random element matching pred, or def.
func (s *Stream[T]) RandomOr(pred func(T) bool, def T) T {
	if v, ok := s.RandomWhere(pred); ok {
		return v
	}
	return def
}

// Some reports whether any element matches pred, stopping at the first.
func (s *Stream[T]) Some(pred func(T) bool) bool {
	_, ok := s.FirstWhere(pred)
	return ok
}

// Every reports whether all elements match pred, stopping at the first
// that does not. It is true for an empty stream.
func (s *Stream[T]) Every(pred func(T) bool) bool {
	for s.Next() {
		if !pred(s.Value()) {
			return false
		}
	}
	return true
}

// Includes reports whether v occurs in s, stopping at the first occurrence.
func Includes[T comparable](s *Stream[T], v T) bool {
	return s.Some(func(e T) bool { return e == v })
}

// IncludesAll reports whether every one of vs occurs in s. It stops as soon
// as the last missing value is seen.
func IncludesAll[T comparable](s *Stream[T], vs ...T) bool {
	missing := make(map[T]struct{}, len(vs))
	for _, v := range vs {
		missing[v] = struct{}{}
	}
	for len(missing) > 0 && s.Next() {
		delete(missing, s.Value())
	}
	return len(missing) == 0
}

// Intersects reports whether any of vs occurs in s.
func Intersects[T comparable](s *Stream[T], vs ...T) bool {
	if len(vs) == 0 {
		return false
	}
	wanted := make(map[T]struct{}, len(vs))
	for _, v := range vs {
		wanted[v] = struct{}{}
	}
	return s.Some(func(e T) bool {
		_, ok := wanted[e]
		return ok
	})
}

// ToSet drains s into a set. Elements are added to dst when it is not nil.
func ToSet[T comparable](s *Stream[T], dst map[T]struct{}) map[T]struct{} {
	if dst == nil {
		dst = make(map[T]struct{})
	}
	for s.Next() {
		dst[s.Value()] = struct{}{}
	}
	return dst
}

// ToMap drains a Stream of pairs into a map; later keys overwrite earlier
// ones. Entries are added to dst when it is not nil.
func ToMap[K comparable, V any](s *Stream[Pair[K, V]], dst map[K]V) map[K]V {
	if dst == nil {
		dst = make(map[K]V)
	}
	for s.Next() {
		p := s.Value()
		dst[p.First] = p.Second
	}
	return dst
}

// ToMapBy drains s into a map keyed by key.
func ToMapBy[T any, K comparable](s *Stream[T], key func(T) K, dst map[K]T) map[K]T {
	return ToMap(Map(s, func(v T) Pair[K, T] { return Pair[K, T]{First: key(v), Second: v} }), dst)
}
