package benchmarks

import (
	"testing"

	"github.com/ahmetb/go-linq/v3"
	"github.com/destel/rill"
	"github.com/samber/lo"

	"github.com/lguimbarda/min-stream/stream"
	"github.com/lguimbarda/min-stream/stream/aggregate"
)

// =============================================================================
// Reduce Benchmarks
// =============================================================================

func BenchmarkReduce_MinStream(b *testing.B) {
	runSized(b, func(b *testing.B, data []int) {
		for i := 0; i < b.N; i++ {
			_, _ = stream.FromSlice(data).Reduce(add)
		}
	})
}

func BenchmarkReduce_MinStreamSum(b *testing.B) {
	runSized(b, func(b *testing.B, data []int) {
		for i := 0; i < b.N; i++ {
			_ = aggregate.Sum(stream.FromSlice(data))
		}
	})
}

func BenchmarkReduce_Rill(b *testing.B) {
	runSized(b, func(b *testing.B, data []int) {
		for i := 0; i < b.N; i++ {
			_, _, _ = rill.Reduce(rill.FromSlice(data, nil), 1, func(a, b int) (int, error) {
				return add(a, b), nil
			})
		}
	})
}

func BenchmarkReduce_Lo(b *testing.B) {
	runSized(b, func(b *testing.B, data []int) {
		for i := 0; i < b.N; i++ {
			_ = lo.Reduce(data, func(acc int, x int, _ int) int { return add(acc, x) }, 0)
		}
	})
}

func BenchmarkReduce_GoLinq(b *testing.B) {
	runSized(b, func(b *testing.B, data []int) {
		for i := 0; i < b.N; i++ {
			_ = linq.From(data).AggregateT(add)
		}
	})
}

// =============================================================================
// Fold Benchmarks (string -> int)
// =============================================================================

func BenchmarkFold_MinStream(b *testing.B) {
	data := generateStrings(LargeSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = stream.Fold(stream.FromSlice(data), 0, func(acc int, s string) int { return acc + stringLen(s) })
	}
}

func BenchmarkFold_Lo(b *testing.B) {
	data := generateStrings(LargeSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = lo.Reduce(data, func(acc int, s string, _ int) int { return acc + stringLen(s) }, 0)
	}
}

func BenchmarkFold_RawLoop(b *testing.B) {
	data := generateStrings(LargeSize)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		total := 0
		for _, s := range data {
			total += stringLen(s)
		}
		_ = total
	}
}
