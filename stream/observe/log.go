package observe

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/lguimbarda/min-stream/stream/core"
)

// Log field names.
const (
	FieldStream    = "stream"
	FieldCount     = "count"
	FieldIndex     = "index"
	FieldValue     = "value"
	FieldPartition = "partition"
)

// LogHooks returns hooks that log the life of a stream named name. Start
// and completion are logged at debug level and every element at trace
// level, so element logging costs nothing unless trace is enabled.
func LogHooks[T any](logger zerolog.Logger, name string) core.Hooks[T] {
	l := logger.With().Str(FieldStream, name).Logger()
	var start time.Time
	index := 0
	return core.Hooks[T]{
		OnStart: func() {
			start = time.Now()
			l.Debug().Msg("stream started")
		},
		OnValue: func(v T) {
			if e := l.Trace(); e.Enabled() {
				e.Int(FieldIndex, index).Interface(FieldValue, v).Msg("element")
			}
			index++
		},
		OnComplete: func(n int) {
			l.Debug().Int(FieldCount, n).Dur("elapsed", time.Since(start)).Msg("stream completed")
		},
	}
}

// Log wraps s so that its life is logged to logger.
func Log[T any](s *core.Stream[T], logger zerolog.Logger, name string) *core.Stream[T] {
	return core.Observe(s, LogHooks[T](logger, name))
}

// LogDiscover is a partition option that logs each new partition key at
// info level.
func LogDiscover[K comparable](logger zerolog.Logger, name string) core.PartitionOption[K] {
	l := logger.With().Str(FieldStream, name).Logger()
	return core.WithDiscoverHook(func(key K) {
		l.Info().Interface(FieldPartition, key).Msg("partition discovered")
	})
}
