package core

import "testing"

// =============================================================================
// Pipeline Benchmarks
// =============================================================================
//
// These benchmarks measure the per-element cost of the pull loop:
// - Bare iteration over a slice cursor
// - A short action pipeline
// - Cross-type wrapping (Map, FlatMap)
// - Partition routing

const benchSize = 10_000

func benchInput() []int {
	return Range(0, benchSize, 1).ToSlice()
}

func BenchmarkIterate(b *testing.B) {
	input := benchInput()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FromSlice(input).Count()
	}
}

func BenchmarkPipeline(b *testing.B) {
	input := benchInput()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FromSlice(input).
			Filter(isEven).
			Map(func(x int) int { return x * 3 }).
			Drop(10).
			Step(2).
			Count()
	}
}

func BenchmarkMapAcrossTypes(b *testing.B) {
	input := benchInput()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Map(FromSlice(input), func(x int) int64 { return int64(x) }).Count()
	}
}

func BenchmarkFlatMap(b *testing.B) {
	input := benchInput()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		FlatMapSlice(FromSlice(input), func(x int) []int { return []int{x, x} }).Count()
	}
}

func BenchmarkPartition(b *testing.B) {
	input := benchInput()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		hub := Partition(FromSlice(input), func(v, _ int) int { return v % 4 })
		for p := range hub.Partitions().All() {
			p.Second.Count()
		}
	}
}
