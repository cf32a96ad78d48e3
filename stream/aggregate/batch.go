// Package aggregate provides count-based groupings and numeric reductions
// built on the stream engine. Batch, Window and Scan stay lazy; the
// reductions and GroupBy drain their input.
package aggregate

import (
	"io"

	"github.com/lguimbarda/min-stream/stream/core"
)

func invalidSize(op string) *core.MisuseError {
	return &core.MisuseError{Op: op, Err: core.ErrInvalidSize}
}

// closeSource closes src if it holds resources.
func closeSource[T any](src core.Sequence[T]) error {
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// batchSeq pulls up to size elements per step.
type batchSeq[T any] struct {
	src  core.Sequence[T]
	size int
	cur  []T
	done bool
}

func (b *batchSeq[T]) Next() bool {
	if b.done {
		return false
	}
	batch := make([]T, 0, b.size)
	for len(batch) < b.size && b.src.Next() {
		batch = append(batch, b.src.Value())
	}
	if len(batch) == 0 {
		b.cur, b.src, b.done = nil, nil, true
		return false
	}
	b.cur = batch
	return true
}

func (b *batchSeq[T]) Value() []T { return b.cur }
func (b *batchSeq[T]) Done() bool { return b.done }

func (b *batchSeq[T]) Close() error {
	src := b.src
	b.cur, b.src, b.done = nil, nil, true
	if src == nil {
		return nil
	}
	return closeSource(src)
}

// Batch groups the elements of s into slices of size elements. The final
// batch holds whatever is left and may be shorter. It takes ownership of s.
// If size <= 0, panics with a *core.MisuseError wrapping core.ErrInvalidSize.
func Batch[T any](s *core.Stream[T], size int) *core.Stream[[]T] {
	if size <= 0 {
		panic(invalidSize("batch"))
	}
	return core.From[[]T](&batchSeq[T]{src: s, size: size})
}

// Chunk is an alias for Batch.
func Chunk[T any](s *core.Stream[T], size int) *core.Stream[[]T] {
	return Batch(s, size)
}

// windowSeq emits full windows of size elements, sliding by step.
type windowSeq[T any] struct {
	src        core.Sequence[T]
	size, step int
	window     []T
	skip       int
	cur        []T
	done       bool
}

func (w *windowSeq[T]) Next() bool {
	if w.done {
		return false
	}
	for w.src.Next() {
		// step > size: skip the items between windows
		if w.skip > 0 {
			w.skip--
			continue
		}
		w.window = append(w.window, w.src.Value())
		if len(w.window) < w.size {
			continue
		}

		w.cur = append([]T(nil), w.window...)
		if w.step >= w.size {
			w.window = w.window[:0]
			w.skip = w.step - w.size
		} else {
			w.window = append(w.window[:0], w.window[w.step:]...)
		}
		return true
	}
	w.cur, w.window, w.src, w.done = nil, nil, nil, true
	return false
}

func (w *windowSeq[T]) Value() []T { return w.cur }
func (w *windowSeq[T]) Done() bool { return w.done }

func (w *windowSeq[T]) Close() error {
	src := w.src
	w.cur, w.window, w.src, w.done = nil, nil, nil, true
	if src == nil {
		return nil
	}
	return closeSource(src)
}

// Window emits sliding windows of size elements, advancing by step
// elements between windows. For example, Window(s, 3, 1) over [1,2,3,4,5]
// produces [[1,2,3], [2,3,4], [3,4,5]]. Trailing elements that do not fill
// a window are dropped. It takes ownership of s.
// If size <= 0 or step <= 0, panics.
func Window[T any](s *core.Stream[T], size, step int) *core.Stream[[]T] {
	if size <= 0 || step <= 0 {
		panic(invalidSize("window"))
	}
	return core.From[[]T](&windowSeq[T]{src: s, size: size, step: step, window: make([]T, 0, size)})
}
