package aggregate

import (
	"github.com/lguimbarda/min-stream/stream/core"
)

// Numeric is a constraint for numeric types that support arithmetic operations.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// scanSeq emits the running accumulator after each element.
type scanSeq[T, R any] struct {
	src  core.Sequence[T]
	acc  R
	fn   func(R, T) R
	done bool
}

func (s *scanSeq[T, R]) Next() bool {
	if s.done {
		return false
	}
	if !s.src.Next() {
		s.src, s.fn, s.done = nil, nil, true
		return false
	}
	s.acc = s.fn(s.acc, s.src.Value())
	return true
}

func (s *scanSeq[T, R]) Value() R   { return s.acc }
func (s *scanSeq[T, R]) Done() bool { return s.done }

func (s *scanSeq[T, R]) Close() error {
	src := s.src
	s.src, s.fn, s.done = nil, nil, true
	if src == nil {
		return nil
	}
	return closeSource(src)
}

// Scan emits each intermediate accumulated value. Like core.Fold, but lazy
// and emitting after each element. The initial value is not emitted.
func Scan[T, R any](s *core.Stream[T], initial R, scanner func(acc R, item T) R) *core.Stream[R] {
	return core.From[R](&scanSeq[T, R]{src: s, acc: initial, fn: scanner})
}

// Sum adds up the elements of s. It returns zero for an empty stream.
func Sum[T Numeric](s *core.Stream[T]) T {
	return core.Fold(s, T(0), func(acc, v T) T { return acc + v })
}

// Average returns the arithmetic mean of the elements of s, or 0 for an
// empty stream.
func Average[T Numeric](s *core.Stream[T]) float64 {
	var sum float64
	n := 0
	for s.Next() {
		sum += float64(s.Value())
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Min returns the smallest element according to less, and false for an
// empty stream. Among equal elements the first wins.
func Min[T any](s *core.Stream[T], less func(a, b T) bool) (T, bool) {
	return s.Reduce(func(acc, v T) T {
		if less(v, acc) {
			return v
		}
		return acc
	})
}

// Max returns the largest element according to less, and false for an
// empty stream. Among equal elements the first wins.
func Max[T any](s *core.Stream[T], less func(a, b T) bool) (T, bool) {
	return s.Reduce(func(acc, v T) T {
		if less(acc, v) {
			return v
		}
		return acc
	})
}
