package core

// Hub demultiplexes one upstream Stream into keyed partitions that are
// consumed independently. All partitions share the upstream cursor: pulling
// from a partition whose buffer is empty drives the hub, which pulls
// upstream elements and routes each to the buffer of its key until one
// arrives for the partition that asked. Every upstream element is routed to
// exactly one partition, once, in upstream order.
//
// Only one drive may be in progress at a time. A sorter or upstream callback
// that consumes another partition of the same hub panics with a
// *MisuseError wrapping ErrReentrantDrive.
type Hub[K comparable, T any] struct {
	src    *Stream[T]
	sorter func(T, int) K
	index  int

	parts map[K]*partition[K, T]
	order []K // discovery order

	done     bool
	driving  bool
	awaiting hubAwait
	target   K

	onDiscover func(K)
	initialCap int
}

// hubAwait is the stop condition of the drive in progress.
type hubAwait uint8

const (
	awaitKey hubAwait = iota // an element routed to target
	awaitNew                 // any newly discovered key
)

// PartitionOption configures a Hub.
type PartitionOption[K comparable] func(*partitionConfig[K])

type partitionConfig[K comparable] struct {
	onDiscover func(K)
	initialCap int
}

// WithDiscoverHook registers fn to be called, while the hub is driving,
// each time a key is seen for the first time. fn must not consume the hub.
func WithDiscoverHook[K comparable](fn func(K)) PartitionOption[K] {
	return func(c *partitionConfig[K]) {
		prev := c.onDiscover
		if prev == nil {
			c.onDiscover = fn
			return
		}
		c.onDiscover = func(k K) {
			prev(k)
			fn(k)
		}
	}
}

// WithInitialBuffer sets the initial capacity of each partition buffer.
func WithInitialBuffer[K comparable](n int) PartitionOption[K] {
	return func(c *partitionConfig[K]) {
		c.initialCap = n
	}
}

// Partition creates a Hub over s keyed by sorter, which receives each
// element and its zero-based upstream index. It takes ownership of s.
func Partition[K comparable, T any](s *Stream[T], sorter func(T, int) K, opts ...PartitionOption[K]) *Hub[K, T] {
	var cfg partitionConfig[K]
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Hub[K, T]{
		src:        s,
		sorter:     sorter,
		parts:      make(map[K]*partition[K, T]),
		onDiscover: cfg.onDiscover,
		initialCap: cfg.initialCap,
	}
}

// PartitionBy is Partition with a sorter that ignores the index.
func PartitionBy[K comparable, T any](s *Stream[T], key func(T) K, opts ...PartitionOption[K]) *Hub[K, T] {
	return Partition(s, func(v T, _ int) K { return key(v) }, opts...)
}

// Get returns the Stream of the elements routed to key. If key has not been
// seen yet, Get drives the hub, buffering elements of other keys, until key
// appears or the upstream is exhausted. Repeated calls return the same
// Stream.
func (h *Hub[K, T]) Get(key K) *Stream[T] {
	p := h.slot(key)
	if !p.discovered && !h.done {
		h.drive(awaitKey, key)
	}
	return p.view
}

// Partitions returns a Stream of (key, partition) pairs in discovery order.
// Keys discovered before or during its iteration, including through Get,
// are all surfaced; each pull that runs past the known keys drives the hub
// until one new key is discovered.
func (h *Hub[K, T]) Partitions() *Stream[Pair[K, *Stream[T]]] {
	return From[Pair[K, *Stream[T]]](&hubKeysSeq[K, T]{hub: h})
}

// Keys returns the keys discovered so far in discovery order.
func (h *Hub[K, T]) Keys() []K {
	return append([]K(nil), h.order...)
}

// Exhausted reports whether the upstream has been fully consumed.
func (h *Hub[K, T]) Exhausted() bool { return h.done }

// Close stops routing and closes the upstream. Elements already routed stay
// readable from their partitions. Closing from a sorter or upstream callback
// panics with a *MisuseError wrapping ErrReentrantDrive.
func (h *Hub[K, T]) Close() error {
	if h.driving {
		panic(misuse("partition", ErrReentrantDrive))
	}
	if h.done {
		return nil
	}
	src := h.src
	h.done, h.src = true, nil
	return src.Close()
}

// slot returns the partition for key, creating it without discovering it.
func (h *Hub[K, T]) slot(key K) *partition[K, T] {
	p, ok := h.parts[key]
	if !ok {
		p = &partition[K, T]{hub: h, key: key}
		if h.initialCap > 0 {
			p.queue = make([]T, 0, h.initialCap)
		}
		p.view = From[T](p)
		h.parts[key] = p
	}
	return p
}

// drive pulls upstream until the await condition is met or the upstream is
// exhausted.
func (h *Hub[K, T]) drive(mode hubAwait, target K) {
	if h.driving {
		panic(misuse("partition", ErrReentrantDrive))
	}
	h.driving, h.awaiting, h.target = true, mode, target
	defer func() {
		var zero K
		h.driving, h.target = false, zero
	}()

	for !h.done {
		if !h.src.Next() {
			h.done = true
			h.src = nil
			return
		}
		if h.route(h.src.Value()) {
			return
		}
	}
}

// route files one upstream element under its key and reports whether the
// drive in progress may stop.
func (h *Hub[K, T]) route(v T) bool {
	key := h.sorter(v, h.index)
	h.index++

	p := h.slot(key)
	p.queue = append(p.queue, v)
	isNew := !p.discovered
	if isNew {
		p.discovered = true
		h.order = append(h.order, key)
		if h.onDiscover != nil {
			h.onDiscover(key)
		}
	}

	switch h.awaiting {
	case awaitNew:
		return isNew
	default:
		return key == h.target
	}
}

// partition is the Sequence behind one key's Stream: a FIFO of routed but
// unconsumed elements, refilled by driving the hub.
type partition[K comparable, T any] struct {
	hub        *Hub[K, T]
	key        K
	queue      []T
	head       int
	discovered bool
	view       *Stream[T]
	cur        T
	done       bool
}

func (p *partition[K, T]) Next() bool {
	if p.done {
		return false
	}
	if p.head >= len(p.queue) && !p.hub.done {
		p.hub.drive(awaitKey, p.key)
	}
	if p.head >= len(p.queue) {
		var zero T
		p.cur, p.queue, p.head, p.done = zero, nil, 0, true
		return false
	}
	var zero T
	p.cur = p.queue[p.head]
	p.queue[p.head] = zero
	p.head++
	if p.head == len(p.queue) {
		p.queue, p.head = p.queue[:0], 0
	}
	return true
}

func (p *partition[K, T]) Value() T   { return p.cur }
func (p *partition[K, T]) Done() bool { return p.done }

// hubKeysSeq walks the discovery order, driving the hub for new keys.
type hubKeysSeq[K comparable, T any] struct {
	hub  *Hub[K, T]
	pos  int
	cur  Pair[K, *Stream[T]]
	done bool
}

func (s *hubKeysSeq[K, T]) Next() bool {
	if s.done {
		return false
	}
	h := s.hub
	if s.pos >= len(h.order) && !h.done {
		var zero K
		h.drive(awaitNew, zero)
	}
	if s.pos >= len(h.order) {
		s.cur, s.done = Pair[K, *Stream[T]]{}, true
		return false
	}
	key := h.order[s.pos]
	s.pos++
	s.cur = Pair[K, *Stream[T]]{First: key, Second: h.parts[key].view}
	return true
}

func (s *hubKeysSeq[K, T]) Value() Pair[K, *Stream[T]] { return s.cur }
func (s *hubKeysSeq[K, T]) Done() bool                 { return s.done }

// unzipItem is one half of an upstream pair, tagged by its position.
type unzipItem[A, B any] struct {
	first  A
	second B
}

// Unzip splits a Stream of pairs into a Stream of first elements and a
// Stream of second elements. Each pair is treated as two consecutive
// elements that are partitioned by their alternating position, so the two
// halves can be consumed in any order without losing elements.
func Unzip[A, B any](s *Stream[Pair[A, B]]) (*Stream[A], *Stream[B]) {
	halves := FlatMapSlice(s, func(p Pair[A, B]) []unzipItem[A, B] {
		return []unzipItem[A, B]{{first: p.First}, {second: p.Second}}
	})
	hub := Partition(halves, func(_ unzipItem[A, B], i int) int { return i % 2 })
	firsts := Map(hub.slot(0).view, func(it unzipItem[A, B]) A { return it.first })
	seconds := Map(hub.slot(1).view, func(it unzipItem[A, B]) B { return it.second })
	return firsts, seconds
}

// UnzipAny is Unzip for untyped elements. Each element must be a
// Pair[any, any], a [2]any, or a []any of length 2; any other element
// panics with a *MisuseError wrapping ErrNotPair when it is reached.
func UnzipAny(s *Stream[any]) (*Stream[any], *Stream[any]) {
	return Unzip(Map(s, asPair))
}

func asPair(v any) Pair[any, any] {
	switch p := v.(type) {
	case Pair[any, any]:
		return p
	case [2]any:
		return Pair[any, any]{First: p[0], Second: p[1]}
	case []any:
		if len(p) == 2 {
			return Pair[any, any]{First: p[0], Second: p[1]}
		}
	}
	panic(misuse("unzip", ErrNotPair))
}
