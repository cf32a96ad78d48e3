// Package core defines the lazy, pull-based sequence engine behind the
// stream package: the Sequence contract, the built-in cursors, the Stream
// type with its deferred action pipeline, flattening, partitioning and the
// terminal operations.
//
// Execution is strictly synchronous and single-goroutine. Nothing is pulled
// from a source until a terminal operation (or an explicit Next/HasNext)
// demands it, and every Stream is single-pass: once exhausted it stays
// exhausted.
//
// NOTE: this package should have no dependencies outside the standard
// library, including other stream packages.
package core

import (
	"cmp"
	"io"
	"iter"
	"maps"
	"reflect"
	"regexp"
	"slices"
)

// Sequence is the minimal pull producer every Stream is built on.
//
// Next advances exactly one step and reports whether a new value is
// available through Value. Once Next has returned false, Done reports true
// and further calls to Next are no-ops that keep returning false.
type Sequence[T any] interface {
	Next() bool
	Value() T
	Done() bool
}

// Integer is the set of types a Range can count over.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Pair holds two values. It is the element type of zipped streams, map
// entries and anything that is later unzipped or collected into a map.
type Pair[A, B any] struct {
	First  A
	Second B
}

// PairOf builds a Pair.
func PairOf[A, B any](a A, b B) Pair[A, B] {
	return Pair[A, B]{First: a, Second: b}
}

// sliceCursor walks a slice from the front.
type sliceCursor[T any] struct {
	items []T
	pos   int
	cur   T
	done  bool
}

func newSliceCursor[T any](items []T) *sliceCursor[T] {
	return &sliceCursor[T]{items: items}
}

func (c *sliceCursor[T]) Next() bool {
	if c.done {
		return false
	}
	if c.pos >= len(c.items) {
		var zero T
		c.cur, c.items, c.done = zero, nil, true
		return false
	}
	c.cur = c.items[c.pos]
	c.pos++
	return true
}

func (c *sliceCursor[T]) Value() T   { return c.cur }
func (c *sliceCursor[T]) Done() bool { return c.done }

// rangeCursor produces an arithmetic progression. The step is kept as an
// unsigned magnitude plus a direction so unsigned types can count down.
type rangeCursor[N Integer] struct {
	cur, end N
	mag      N
	desc     bool
	started  bool
	done     bool
}

func newRangeCursor[N Integer](start, end, step N) *rangeCursor[N] {
	if step == 0 {
		panic(misuse("range", ErrZeroStep))
	}
	mag := step
	if step < 0 {
		mag = -step
	}
	return &rangeCursor[N]{cur: start, end: end, mag: mag, desc: end < start}
}

func (c *rangeCursor[N]) Next() bool {
	if c.done {
		return false
	}
	if !c.started {
		c.started = true
		if c.cur == c.end {
			c.done = true
			return false
		}
		return true
	}
	if c.desc {
		next := c.cur - c.mag
		// next >= cur catches wrap-around
		if next >= c.cur || next <= c.end {
			c.done = true
			return false
		}
		c.cur = next
		return true
	}
	next := c.cur + c.mag
	if next <= c.cur || next >= c.end {
		c.done = true
		return false
	}
	c.cur = next
	return true
}

func (c *rangeCursor[N]) Value() N   { return c.cur }
func (c *rangeCursor[N]) Done() bool { return c.done }

// funcCursor pulls from a generator function until it reports false. The
// upstream the generator reads from, if any, is closed when it stops.
type funcCursor[T any] struct {
	gen      func() (T, bool)
	upstream io.Closer
	cur      T
	done     bool
}

func (c *funcCursor[T]) Next() bool {
	if c.done {
		return false
	}
	v, ok := c.gen()
	if !ok {
		c.Close()
		return false
	}
	c.cur = v
	return true
}

func (c *funcCursor[T]) Value() T   { return c.cur }
func (c *funcCursor[T]) Done() bool { return c.done }

func (c *funcCursor[T]) Close() error {
	upstream := c.upstream
	var zero T
	c.cur, c.gen, c.upstream, c.done = zero, nil, nil, true
	if upstream == nil {
		return nil
	}
	return upstream.Close()
}

// seqCursor adapts a push iterator with iter.Pull. The pull coroutine is
// released when the iterator is exhausted or Close is called.
type seqCursor[T any] struct {
	next func() (T, bool)
	stop func()
	cur  T
	done bool
}

func newSeqCursor[T any](seq iter.Seq[T]) *seqCursor[T] {
	next, stop := iter.Pull(seq)
	return &seqCursor[T]{next: next, stop: stop}
}

func (c *seqCursor[T]) Next() bool {
	if c.done {
		return false
	}
	v, ok := c.next()
	if !ok {
		c.Close()
		return false
	}
	c.cur = v
	return true
}

func (c *seqCursor[T]) Value() T   { return c.cur }
func (c *seqCursor[T]) Done() bool { return c.done }

// Close stops the underlying pull iterator.
func (c *seqCursor[T]) Close() error {
	if c.stop != nil {
		c.stop()
		c.stop, c.next = nil, nil
	}
	var zero T
	c.cur, c.done = zero, true
	return nil
}

// chanCursor receives from a channel until it is closed. Next blocks while
// the channel is empty.
type chanCursor[T any] struct {
	ch   <-chan T
	cur  T
	done bool
}

func (c *chanCursor[T]) Next() bool {
	if c.done {
		return false
	}
	v, ok := <-c.ch
	if !ok {
		var zero T
		c.cur, c.ch, c.done = zero, nil, true
		return false
	}
	c.cur = v
	return true
}

func (c *chanCursor[T]) Value() T   { return c.cur }
func (c *chanCursor[T]) Done() bool { return c.done }

// entryCursor snapshots the sorted keys of a map and reads values lazily.
// Keys deleted before they are reached are skipped.
type entryCursor[K cmp.Ordered, V any] struct {
	m    map[K]V
	keys []K
	pos  int
	cur  Pair[K, V]
	done bool
}

func newEntryCursor[K cmp.Ordered, V any](m map[K]V) *entryCursor[K, V] {
	return &entryCursor[K, V]{m: m, keys: slices.Sorted(maps.Keys(m))}
}

func (c *entryCursor[K, V]) Next() bool {
	for !c.done {
		if c.pos >= len(c.keys) {
			c.cur, c.m, c.keys, c.done = Pair[K, V]{}, nil, nil, true
			break
		}
		k := c.keys[c.pos]
		c.pos++
		if v, ok := c.m[k]; ok {
			c.cur = Pair[K, V]{First: k, Second: v}
			return true
		}
	}
	return false
}

func (c *entryCursor[K, V]) Value() Pair[K, V] { return c.cur }
func (c *entryCursor[K, V]) Done() bool        { return c.done }

// matchCursor yields the submatches of every non-overlapping match of a
// regular expression. Match positions are computed on the first pull.
type matchCursor struct {
	re      *regexp.Regexp
	text    string
	locs    [][]int
	pos     int
	started bool
	cur     []string
	done    bool
}

func (c *matchCursor) Next() bool {
	if c.done {
		return false
	}
	if !c.started {
		c.started = true
		c.locs = c.re.FindAllStringSubmatchIndex(c.text, -1)
	}
	if c.pos >= len(c.locs) {
		c.cur, c.locs, c.done = nil, nil, true
		return false
	}
	loc := c.locs[c.pos]
	c.pos++
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if start := loc[2*i]; start >= 0 {
			groups[i] = c.text[start:loc[2*i+1]]
		}
	}
	c.cur = groups
	return true
}

func (c *matchCursor) Value() []string { return c.cur }
func (c *matchCursor) Done() bool      { return c.done }

// reflectCursor walks an arbitrary slice or array held in an interface.
type reflectCursor struct {
	v    reflect.Value
	pos  int
	cur  any
	done bool
}

func (c *reflectCursor) Next() bool {
	if c.done {
		return false
	}
	if c.pos >= c.v.Len() {
		c.cur, c.v, c.done = nil, reflect.Value{}, true
		return false
	}
	c.cur = c.v.Index(c.pos).Interface()
	c.pos++
	return true
}

func (c *reflectCursor) Value() any { return c.cur }
func (c *reflectCursor) Done() bool { return c.done }

// deferCursor builds its source on the first pull.
type deferCursor[T any] struct {
	factory func() *Stream[T]
	src     *Stream[T]
	cur     T
	done    bool
}

func (c *deferCursor[T]) Next() bool {
	if c.done {
		return false
	}
	if c.src == nil {
		c.src, c.factory = c.factory(), nil
	}
	if !c.src.Next() {
		var zero T
		c.cur, c.src, c.done = zero, nil, true
		return false
	}
	c.cur = c.src.Value()
	return true
}

func (c *deferCursor[T]) Value() T   { return c.cur }
func (c *deferCursor[T]) Done() bool { return c.done }

// Close closes the built source. A source never built is never built.
func (c *deferCursor[T]) Close() error {
	src := c.src
	var zero T
	c.cur, c.src, c.factory, c.done = zero, nil, nil, true
	if src == nil {
		return nil
	}
	return src.Close()
}

// Source constructors.

// FromSlice creates a Stream over the elements of items. The slice is not
// copied; mutating it before the elements are pulled is visible.
func FromSlice[T any](items []T) *Stream[T] {
	return From[T](newSliceCursor(items))
}

// Of creates a Stream over its arguments.
func Of[T any](items ...T) *Stream[T] {
	return FromSlice(items)
}

// Empty creates an exhausted Stream.
func Empty[T any]() *Stream[T] {
	s := From[T]()
	s.finish()
	return s
}

// Range creates a Stream counting from start towards end (exclusive) by
// step. The sign of step is normalized to the direction from start to end.
// A zero step panics with a *MisuseError wrapping ErrZeroStep.
func Range[N Integer](start, end, step N) *Stream[N] {
	return From[N](newRangeCursor(start, end, step))
}

// FromFunc creates a Stream that calls gen for each element until gen
// reports false.
func FromFunc[T any](gen func() (T, bool)) *Stream[T] {
	return From[T](&funcCursor[T]{gen: gen})
}

// FromFuncOn is FromFunc for a generator that pulls from upstream. Upstream
// is closed when gen reports false or the returned Stream is closed, so an
// early stop downstream still releases it.
func FromFuncOn[T any](upstream io.Closer, gen func() (T, bool)) *Stream[T] {
	return From[T](&funcCursor[T]{gen: gen, upstream: upstream})
}

// Generate creates an infinite Stream of fn's results.
func Generate[T any](fn func() T) *Stream[T] {
	return FromFunc(func() (T, bool) { return fn(), true })
}

// Repeat creates a Stream yielding v n times, or forever if n is negative.
func Repeat[T any](v T, n int) *Stream[T] {
	return FromFunc(func() (T, bool) {
		if n == 0 {
			var zero T
			return zero, false
		}
		if n > 0 {
			n--
		}
		return v, true
	})
}

// FromSeq creates a Stream over a push iterator. The iterator runs in a
// pull coroutine that is released when the stream is exhausted, ends early
// through Take or TakeWhile, or is closed. Terminals that stop without
// ending the stream (First, FirstWhere, Some, Includes) leave it parked;
// Close the stream when done with it.
func FromSeq[T any](seq iter.Seq[T]) *Stream[T] {
	return From[T](newSeqCursor(seq))
}

// FromSeq2 creates a Stream of pairs over a two-value push iterator.
func FromSeq2[K, V any](seq iter.Seq2[K, V]) *Stream[Pair[K, V]] {
	return FromSeq(func(yield func(Pair[K, V]) bool) {
		for k, v := range seq {
			if !yield(Pair[K, V]{First: k, Second: v}) {
				return
			}
		}
	})
}

// FromChannel creates a Stream that receives from ch until it is closed.
func FromChannel[T any](ch <-chan T) *Stream[T] {
	return From[T](&chanCursor[T]{ch: ch})
}

// Entries creates a Stream of the key/value pairs of m in ascending key order.
func Entries[K cmp.Ordered, V any](m map[K]V) *Stream[Pair[K, V]] {
	return From[Pair[K, V]](newEntryCursor(m))
}

// Keys creates a Stream of the keys of m in ascending order.
func Keys[K cmp.Ordered, V any](m map[K]V) *Stream[K] {
	return Map(Entries(m), func(p Pair[K, V]) K { return p.First })
}

// Values creates a Stream of the values of m in ascending key order.
func Values[K cmp.Ordered, V any](m map[K]V) *Stream[V] {
	return Map(Entries(m), func(p Pair[K, V]) V { return p.Second })
}

// Matches creates a Stream of the submatches of each non-overlapping match
// of re in text. Element 0 is the whole match; groups that did not take part
// in the match are empty strings.
func Matches(re *regexp.Regexp, text string) *Stream[[]string] {
	return From[[]string](&matchCursor{re: re, text: text})
}

// Defer creates a Stream whose source is built by factory on the first
// pull.
func Defer[T any](factory func() *Stream[T]) *Stream[T] {
	return From[T](&deferCursor[T]{factory: factory})
}
