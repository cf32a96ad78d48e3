package observe

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lguimbarda/min-stream/stream/core"
)

// OpenTelemetry instrument names.
const (
	MetricItems       = "stream.items"
	MetricCompletions = "stream.completions"
	MetricLength      = "stream.length"
)

// OtelHooks returns hooks that record a stream's elements and completions
// on instruments created from meter. Measurements carry a stream attribute
// set to name.
func OtelHooks[T any](meter metric.Meter, name string) (core.Hooks[T], error) {
	items, err := meter.Int64Counter(MetricItems,
		metric.WithDescription("elements pulled through a stream"),
		metric.WithUnit("{element}"))
	if err != nil {
		return core.Hooks[T]{}, fmt.Errorf("observe: create %s: %w", MetricItems, err)
	}
	completions, err := meter.Int64Counter(MetricCompletions,
		metric.WithDescription("streams that ended, drained or stopped early"))
	if err != nil {
		return core.Hooks[T]{}, fmt.Errorf("observe: create %s: %w", MetricCompletions, err)
	}
	length, err := meter.Int64Histogram(MetricLength,
		metric.WithDescription("elements surfaced by an ended stream"),
		metric.WithUnit("{element}"))
	if err != nil {
		return core.Hooks[T]{}, fmt.Errorf("observe: create %s: %w", MetricLength, err)
	}

	ctx := context.Background()
	attrs := metric.WithAttributeSet(attribute.NewSet(attribute.String(FieldStream, name)))
	return core.Hooks[T]{
		OnValue: func(T) {
			items.Add(ctx, 1, attrs)
		},
		OnComplete: func(n int) {
			completions.Add(ctx, 1, attrs)
			length.Record(ctx, int64(n), attrs)
		},
	}, nil
}

// Otel wraps s so that its elements are recorded on meter.
func Otel[T any](s *core.Stream[T], meter metric.Meter, name string) (*core.Stream[T], error) {
	hooks, err := OtelHooks[T](meter, name)
	if err != nil {
		return nil, err
	}
	return core.Observe(s, hooks), nil
}
