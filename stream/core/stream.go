package core

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"
)

// Stream is a lazy, single-pass sequence: one or more Sequences pulled in
// order, a pipeline of deferred actions applied to every raw value, and a
// single-slot lookahead buffer.
//
// Chaining methods that keep the element type (Filter, Map, Take, ...) only
// append to the pipeline and return the receiver; nothing is pulled until a
// terminal operation or an explicit Next/HasNext. Operations that change the
// element type are package functions (Map, FlatMap, Partition, ...) that
// take ownership of the receiver; the original Stream must not be consumed
// independently afterwards.
//
// A Stream implements Sequence, so it can be the source of another Stream.
// It is not safe for concurrent use.
type Stream[T any] struct {
	sources []Sequence[T]
	actions []action[T]

	buffer   T
	buffered bool

	cur       T
	done      bool
	stopAfter bool
}

// From creates a Stream that pulls from the given sequences in order.
func From[T any](sources ...Sequence[T]) *Stream[T] {
	return &Stream[T]{sources: sources}
}

// Concat creates a Stream that drains each stream in turn.
func Concat[T any](streams ...*Stream[T]) *Stream[T] {
	s := From[T]()
	for _, other := range streams {
		s.sources = append(s.sources, other)
	}
	return s
}

// raw pulls the next unprocessed value from the source chain.
func (s *Stream[T]) raw() (T, bool) {
	for len(s.sources) > 0 {
		src := s.sources[0]
		if src.Next() {
			return src.Value(), true
		}
		s.sources[0] = nil
		s.sources = s.sources[1:]
	}
	var zero T
	return zero, false
}

// pull drives the pipeline until one value survives it or the stream ends.
func (s *Stream[T]) pull() (T, bool) {
	var zero T
	for !s.done {
		if s.stopAfter {
			break
		}
		v, ok := s.raw()
		if !ok {
			break
		}
		switch v, vd := s.run(v); vd {
		case emit:
			return v, true
		case halt:
			s.finish()
			return zero, false
		}
	}
	s.finish()
	return zero, false
}

// finish marks the stream exhausted for good and releases its sources.
// Sources that implement io.Closer are closed, which reaches through
// derived streams down to the adapters they were built on.
func (s *Stream[T]) finish() error {
	if s.done {
		return nil
	}
	sources := s.sources
	var zero T
	s.done = true
	s.sources, s.actions = nil, nil
	s.cur = zero
	s.clearBuffer()

	var errs []error
	for _, src := range sources {
		if err := closeSource(src); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close ends the stream without draining it. Every source not yet drained
// is closed, including the sources of the streams this one was derived
// from. Closing an exhausted stream is a no-op.
func (s *Stream[T]) Close() error {
	return s.finish()
}

// closeSource closes src if it holds resources.
func closeSource(src any) error {
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Stream[T]) clearBuffer() {
	var zero T
	s.buffer, s.buffered = zero, false
}

// Next advances the stream and reports whether Value holds a new element.
// A value previously fetched by HasNext is returned before pulling again.
func (s *Stream[T]) Next() bool {
	if s.buffered {
		s.cur = s.buffer
		s.clearBuffer()
		return true
	}
	v, ok := s.pull()
	if ok {
		s.cur = v
	}
	return ok
}

// Value returns the element produced by the last successful Next.
func (s *Stream[T]) Value() T { return s.cur }

// Done reports whether the stream is exhausted.
func (s *Stream[T]) Done() bool { return s.done }

// HasNext reports whether another element is available, pulling at most one
// element into the lookahead buffer. Repeated calls do not pull again.
func (s *Stream[T]) HasNext() bool {
	if s.buffered {
		return true
	}
	v, ok := s.pull()
	if ok {
		s.buffer, s.buffered = v, true
	}
	return ok
}

// register appends an action, applying it retroactively to a buffered value.
func (s *Stream[T]) register(a action[T]) *Stream[T] {
	if s.done {
		return s
	}
	if s.applyBuffered(&a) {
		s.actions = append(s.actions, a)
	}
	return s
}

// Filter keeps only the elements for which pred returns true.
func (s *Stream[T]) Filter(pred func(T) bool) *Stream[T] {
	return s.register(action[T]{kind: actFilter, pred: pred})
}

// Map replaces each element with fn's result. Use the package-level Map to
// change the element type.
func (s *Stream[T]) Map(fn func(T) T) *Stream[T] {
	return s.register(action[T]{kind: actMap, fn: fn})
}

// Take limits the stream to the next n elements. Take with n <= 0 exhausts
// the stream immediately without pulling its source.
func (s *Stream[T]) Take(n int) *Stream[T] {
	if n <= 0 {
		s.finish()
		return s
	}
	return s.register(action[T]{kind: actTake, remaining: n})
}

// TakeWhile passes elements until pred first returns false, then exhausts
// the stream. The failing element is not emitted.
func (s *Stream[T]) TakeWhile(pred func(T) bool) *Stream[T] {
	return s.register(action[T]{kind: actTakeWhile, pred: pred})
}

// Drop discards the next n elements.
func (s *Stream[T]) Drop(n int) *Stream[T] {
	if n <= 0 {
		return s
	}
	return s.register(action[T]{kind: actDrop, remaining: n})
}

// DropWhile discards elements while pred returns true. Once pred returns
// false it is never consulted again.
func (s *Stream[T]) DropWhile(pred func(T) bool) *Stream[T] {
	return s.register(action[T]{kind: actDropWhile, pred: pred})
}

// Step keeps the first element and then every size-th one. A negative size
// walks the stream backwards from its last element; this materializes the
// rest of the stream first. Step(0) panics with ErrZeroStep.
func (s *Stream[T]) Step(size int) *Stream[T] {
	switch {
	case size == 0:
		panic(misuse("step", ErrZeroStep))
	case size == 1:
		return s
	case size < 0:
		return s.stepBackward(-size)
	}
	return s.register(action[T]{kind: actStep, counter: 1, size: size})
}

// Add appends further sources. The whole pipeline applies to their
// elements as well. Adding to an exhausted stream has no effect.
func (s *Stream[T]) Add(sources ...Sequence[T]) *Stream[T] {
	if s.done {
		return s
	}
	s.sources = append(s.sources, sources...)
	return s
}

// Merge appends the elements of other streams, taking ownership of them.
func (s *Stream[T]) Merge(others ...*Stream[T]) *Stream[T] {
	for _, o := range others {
		s.Add(o)
	}
	return s
}

// All returns an iterator over the remaining elements, so a Stream can be
// used with range.
func (s *Stream[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for s.Next() {
			if !yield(s.Value()) {
				return
			}
		}
	}
}

// Indexed returns an iterator over the remaining elements and their
// position, counted from the first element the iterator yields.
func (s *Stream[T]) Indexed() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; s.Next(); i++ {
			if !yield(i, s.Value()) {
				return
			}
		}
	}
}

// ForEach calls fn for every remaining element.
func (s *Stream[T]) ForEach(fn func(T)) {
	for s.Next() {
		fn(s.Value())
	}
}

// Count consumes the stream and returns how many elements it produced.
func (s *Stream[T]) Count() int {
	n := 0
	for s.Next() {
		n++
	}
	return n
}

// ToString joins the formatted elements with sep.
func (s *Stream[T]) ToString(sep string) string {
	var sb strings.Builder
	for i := 0; s.Next(); i++ {
		if i > 0 {
			sb.WriteString(sep)
		}
		fmt.Fprint(&sb, s.Value())
	}
	return sb.String()
}
