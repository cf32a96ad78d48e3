// Package observe provides observation hooks for streams: in-process
// counters, structured logging with zerolog, OpenTelemetry metrics and
// Prometheus collectors. Every adapter is built on core.Hooks, so several
// can watch the same stream and they see elements only as they are pulled.
package observe

import (
	"sync/atomic"
	"time"

	"github.com/lguimbarda/min-stream/stream/core"
)

// Counter holds live counts that can be read concurrently while the
// observed stream is pulled on another goroutine.
type Counter struct {
	items       atomic.Int64
	completions atomic.Int64
	startTime   atomic.Int64 // Unix nano
	lastItem    atomic.Int64 // Unix nano
}

// Items returns the number of elements pulled so far.
func (c *Counter) Items() int64 { return c.items.Load() }

// Completions returns how many observed streams have ended, whether drained
// or stopped early.
func (c *Counter) Completions() int64 { return c.completions.Load() }

// StartTime returns when the first observed stream was first pulled.
func (c *Counter) StartTime() time.Time {
	return unixNano(c.startTime.Load())
}

// LastItemTime returns when the last element was pulled.
func (c *Counter) LastItemTime() time.Time {
	return unixNano(c.lastItem.Load())
}

func unixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// CounterHooks returns hooks that update c.
func CounterHooks[T any](c *Counter) core.Hooks[T] {
	return core.Hooks[T]{
		OnStart: func() {
			c.startTime.CompareAndSwap(0, time.Now().UnixNano())
		},
		OnValue: func(T) {
			c.items.Add(1)
			c.lastItem.Store(time.Now().UnixNano())
		},
		OnComplete: func(int) {
			c.completions.Add(1)
		},
	}
}

// Count wraps s so that c counts its elements.
func Count[T any](s *core.Stream[T], c *Counter) *core.Stream[T] {
	return core.Observe(s, CounterHooks[T](c))
}
