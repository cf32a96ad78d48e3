package core

// Hooks holds typed observation callbacks for a stream.
// All fields are optional - nil means no observation for that event.
// Hooks run synchronously inside Next, so they should be fast and must not
// consume the observed stream.
//
// OnComplete fires once per started stream: when the source runs dry, or
// when a downstream Take or TakeWhile (or an explicit Close) ends the
// stream early. n counts the elements surfaced up to that point.
type Hooks[T any] struct {
	OnStart    func()      // First pull
	OnValue    func(T)     // Element surfaced
	OnComplete func(n int) // Stream ended after n elements
}

// observedSeq forwards a source and invokes hook sets in FIFO order.
type observedSeq[T any] struct {
	src      Sequence[T]
	hookSets []Hooks[T]
	started  bool
	n        int
	cur      T
	done     bool
}

func (o *observedSeq[T]) Next() bool {
	if o.done {
		return false
	}
	if !o.started {
		o.started = true
		for _, h := range o.hookSets {
			if h.OnStart != nil {
				h.OnStart()
			}
		}
	}
	if !o.src.Next() {
		o.complete()
		return false
	}
	o.n++
	o.cur = o.src.Value()
	for _, h := range o.hookSets {
		if h.OnValue != nil {
			h.OnValue(o.cur)
		}
	}
	return true
}

func (o *observedSeq[T]) Value() T   { return o.cur }
func (o *observedSeq[T]) Done() bool { return o.done }

// Close closes the source and reports completion if the stream had started.
func (o *observedSeq[T]) Close() error {
	if o.done {
		return nil
	}
	src := o.src
	o.complete()
	return closeSource(src)
}

func (o *observedSeq[T]) complete() {
	var zero T
	o.cur, o.src, o.done = zero, nil, true
	if !o.started {
		return
	}
	for _, h := range o.hookSets {
		if h.OnComplete != nil {
			h.OnComplete(o.n)
		}
	}
}

// Observe wraps s so the given hooks see its elements as they are pulled.
// Hook sets are invoked in the order given. It takes ownership of s.
func Observe[T any](s *Stream[T], hooks ...Hooks[T]) *Stream[T] {
	if o, ok := soleObserver(s); ok {
		o.hookSets = append(o.hookSets, hooks...)
		return s
	}
	return From[T](&observedSeq[T]{src: s, hookSets: hooks})
}

// soleObserver finds an untouched observer wrapper so repeated Observe calls
// compose into one hook list instead of nesting.
func soleObserver[T any](s *Stream[T]) (*observedSeq[T], bool) {
	if len(s.sources) != 1 || len(s.actions) != 0 || s.buffered {
		return nil, false
	}
	o, ok := s.sources[0].(*observedSeq[T])
	if !ok || o.started {
		return nil, false
	}
	return o, true
}

// NewSafeHooks wraps each hook with panic recovery. If panicHandler is nil,
// panics are silently recovered.
func NewSafeHooks[T any](hooks Hooks[T], panicHandler func(any)) Hooks[T] {
	if panicHandler == nil {
		panicHandler = func(any) {} // Silent recovery
	}
	guard := func() {
		if r := recover(); r != nil {
			panicHandler(r)
		}
	}

	var safe Hooks[T]
	if hooks.OnStart != nil {
		originalStart := hooks.OnStart
		safe.OnStart = func() {
			defer guard()
			originalStart()
		}
	}
	if hooks.OnValue != nil {
		originalValue := hooks.OnValue
		safe.OnValue = func(v T) {
			defer guard()
			originalValue(v)
		}
	}
	if hooks.OnComplete != nil {
		originalComplete := hooks.OnComplete
		safe.OnComplete = func(n int) {
			defer guard()
			originalComplete(n)
		}
	}
	return safe
}
