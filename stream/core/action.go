package core

// actionKind tags the variant held by an action.
type actionKind uint8

const (
	actFilter actionKind = iota
	actMap
	actTake
	actTakeWhile
	actDrop
	actDropWhile
	actStep
)

func (k actionKind) String() string {
	switch k {
	case actFilter:
		return "filter"
	case actMap:
		return "map"
	case actTake:
		return "take"
	case actTakeWhile:
		return "takeWhile"
	case actDrop:
		return "drop"
	case actDropWhile:
		return "dropWhile"
	case actStep:
		return "step"
	default:
		return "unknown"
	}
}

// action is one deferred per-element operation. Only the fields belonging
// to kind are meaningful. The counters are mutated in place by the drive
// loop, so actions live in the pipeline slice by value and are addressed
// through their index.
type action[T any] struct {
	kind actionKind
	pred func(T) bool
	fn   func(T) T

	remaining int  // take, drop
	passed    bool // dropWhile: predicate failed once, stop checking
	counter   int  // step: ticks until the next emitted element
	size      int  // step: counter reset value
}

// verdict is what one action decided about one element.
type verdict uint8

const (
	emit verdict = iota // pass the element on
	skip                // discard it and pull again
	halt                // discard it and exhaust the stream
)

// apply runs a single action against v. A take that reaches zero still
// emits v but sets s.stopAfter so the following pull finds the stream
// exhausted.
func (s *Stream[T]) apply(a *action[T], v T) (T, verdict) {
	switch a.kind {
	case actFilter:
		if !a.pred(v) {
			return v, skip
		}
	case actMap:
		v = a.fn(v)
	case actTake:
		a.remaining--
		if a.remaining <= 0 {
			s.stopAfter = true
		}
	case actTakeWhile:
		if !a.pred(v) {
			return v, halt
		}
	case actDrop:
		if a.remaining > 0 {
			a.remaining--
			return v, skip
		}
	case actDropWhile:
		if !a.passed {
			if a.pred(v) {
				return v, skip
			}
			a.passed = true
		}
	case actStep:
		a.counter--
		if a.counter > 0 {
			return v, skip
		}
		a.counter = a.size
	}
	return v, emit
}

// run pushes one raw value through the whole pipeline in registration order.
func (s *Stream[T]) run(v T) (T, verdict) {
	for i := range s.actions {
		var vd verdict
		if v, vd = s.apply(&s.actions[i], v); vd != emit {
			return v, vd
		}
	}
	return v, emit
}

// applyBuffered applies a newly registered action to the value already held
// in the lookahead slot, so a lookahead never hides the effect of a filter,
// map or limit registered after it. The action's counters are updated as if
// the buffered value had been pulled after registration.
//
// It reports whether the action should still be appended to the pipeline.
func (s *Stream[T]) applyBuffered(a *action[T]) bool {
	if !s.buffered {
		return true
	}
	v, vd := s.apply(a, s.buffer)
	switch vd {
	case emit:
		s.buffer = v
	case skip:
		s.clearBuffer()
	case halt:
		s.finish()
		return false
	}
	return true
}
