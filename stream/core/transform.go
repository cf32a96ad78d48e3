package core

import (
	"errors"
	"iter"
	"reflect"
)

// mapSeq converts each element of src with fn.
type mapSeq[T, U any] struct {
	src  Sequence[T]
	fn   func(T) U
	cur  U
	done bool
}

func (m *mapSeq[T, U]) Next() bool {
	if m.done {
		return false
	}
	if !m.src.Next() {
		var zero U
		m.cur, m.src, m.fn, m.done = zero, nil, nil, true
		return false
	}
	m.cur = m.fn(m.src.Value())
	return true
}

func (m *mapSeq[T, U]) Value() U   { return m.cur }
func (m *mapSeq[T, U]) Done() bool { return m.done }

// Close stops the mapping and closes its source.
func (m *mapSeq[T, U]) Close() error {
	src := m.src
	var zero U
	m.cur, m.src, m.fn, m.done = zero, nil, nil, true
	return closeSource(src)
}

// Map creates a Stream of fn applied to each element of s. It takes
// ownership of s.
func Map[T, U any](s *Stream[T], fn func(T) U) *Stream[U] {
	return From[U](&mapSeq[T, U]{src: s, fn: fn})
}

// Enumerate pairs each element of s with its zero-based position.
func Enumerate[T any](s *Stream[T]) *Stream[Pair[int, T]] {
	i := -1
	return Map(s, func(v T) Pair[int, T] {
		i++
		return Pair[int, T]{First: i, Second: v}
	})
}

type flatState uint8

const (
	needOuter flatState = iota
	haveInner
	flatDone
)

// flatMapSeq drains one inner sequence before pulling the next outer
// element. The inner sequence only lives between two outer pulls.
type flatMapSeq[T, U any] struct {
	outer Sequence[T]
	fn    func(T) Sequence[U]
	inner Sequence[U]
	state flatState
	cur   U
}

func (f *flatMapSeq[T, U]) Next() bool {
	for {
		switch f.state {
		case needOuter:
			if !f.outer.Next() {
				var zero U
				f.state, f.cur = flatDone, zero
				f.outer, f.fn = nil, nil
				return false
			}
			if f.inner = f.fn(f.outer.Value()); f.inner != nil {
				f.state = haveInner
			}
		case haveInner:
			if f.inner.Next() {
				f.cur = f.inner.Value()
				return true
			}
			f.inner, f.state = nil, needOuter
		default:
			return false
		}
	}
}

func (f *flatMapSeq[T, U]) Value() U   { return f.cur }
func (f *flatMapSeq[T, U]) Done() bool { return f.state == flatDone }

// Close closes the inner sequence in progress and the outer source.
func (f *flatMapSeq[T, U]) Close() error {
	inner, outer := f.inner, f.outer
	var zero U
	f.state, f.cur = flatDone, zero
	f.inner, f.outer, f.fn = nil, nil, nil
	return errors.Join(closeSource(inner), closeSource(outer))
}

// FlatMap replaces each element of s with the elements of the sequence fn
// returns for it. A nil sequence contributes nothing.
func FlatMap[T, U any](s *Stream[T], fn func(T) Sequence[U]) *Stream[U] {
	return From[U](&flatMapSeq[T, U]{outer: s, fn: fn})
}

// FlatMapSlice is FlatMap for mappers that return slices.
func FlatMapSlice[T, U any](s *Stream[T], fn func(T) []U) *Stream[U] {
	return FlatMap(s, func(v T) Sequence[U] { return newSliceCursor(fn(v)) })
}

// FlattenSlices concatenates the slices of s.
func FlattenSlices[T any](s *Stream[[]T]) *Stream[T] {
	return FlatMap(s, func(v []T) Sequence[T] { return newSliceCursor(v) })
}

// Flatten expands every element of s that is iterable and passes every
// other element through unchanged, so a mix of scalars and nested
// collections flattens one level. Iterable means a Sequence[any],
// iter.Seq[any], or any slice or array; strings are scalars.
func Flatten(s *Stream[any]) *Stream[any] {
	return FlatMap(s, iterableOf)
}

// FlattenDeep applies Flatten depth times. A negative depth flattens until
// no iterable element is left.
func FlattenDeep(s *Stream[any], depth int) *Stream[any] {
	if depth < 0 {
		return FlatMap(s, deepIterableOf)
	}
	for range depth {
		s = Flatten(s)
	}
	return s
}

func iterableOf(v any) Sequence[any] {
	switch t := v.(type) {
	case Sequence[any]:
		return t
	case iter.Seq[any]:
		return newSeqCursor(t)
	case []any:
		return newSliceCursor(t)
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return &reflectCursor{v: rv}
	}
	return newSliceCursor([]any{v})
}

func deepIterableOf(v any) Sequence[any] {
	if !isIterable(v) {
		return newSliceCursor([]any{v})
	}
	return &flatMapSeq[any, any]{outer: iterableOf(v), fn: deepIterableOf}
}

func isIterable(v any) bool {
	switch v.(type) {
	case Sequence[any], iter.Seq[any], []any:
		return true
	}
	k := reflect.ValueOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}

// zipSeq pairs the elements of two sequences, stopping at the shorter.
type zipSeq[A, B any] struct {
	a    Sequence[A]
	b    Sequence[B]
	cur  Pair[A, B]
	done bool
}

func (z *zipSeq[A, B]) Next() bool {
	if z.done {
		return false
	}
	if !z.a.Next() || !z.b.Next() {
		z.Close()
		return false
	}
	z.cur = Pair[A, B]{First: z.a.Value(), Second: z.b.Value()}
	return true
}

func (z *zipSeq[A, B]) Value() Pair[A, B] { return z.cur }
func (z *zipSeq[A, B]) Done() bool        { return z.done }

// Close closes both sides. The longer side is closed as soon as the
// shorter one runs out.
func (z *zipSeq[A, B]) Close() error {
	a, b := z.a, z.b
	z.cur, z.a, z.b, z.done = Pair[A, B]{}, nil, nil, true
	return errors.Join(closeSource(a), closeSource(b))
}

// Zip pairs the elements of a and b positionally, truncating to the shorter.
func Zip[A, B any](a Sequence[A], b Sequence[B]) *Stream[Pair[A, B]] {
	return From[Pair[A, B]](&zipSeq[A, B]{a: a, b: b})
}
