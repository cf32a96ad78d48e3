// Package benchmarks compares min-stream against popular Go collection and
// stream processing libraries.
package benchmarks

import (
	"strconv"
	"testing"
)

// Test data sizes
const (
	SmallSize  = 100
	MediumSize = 1_000
	LargeSize  = 10_000
)

var sizes = []struct {
	name string
	n    int
}{
	{"Small", SmallSize},
	{"Medium", MediumSize},
	{"Large", LargeSize},
}

// runSized runs fn as a sub-benchmark for every data size.
func runSized(b *testing.B, fn func(b *testing.B, data []int)) {
	for _, size := range sizes {
		data := generateInts(size.n)
		b.Run(size.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			fn(b, data)
		})
	}
}

// generateInts creates a slice of integers for benchmarking.
func generateInts(n int) []int {
	data := make([]int, n)
	for i := range data {
		data[i] = i
	}
	return data
}

// generateStrings creates a slice of strings for benchmarking.
func generateStrings(n int) []string {
	data := make([]string, n)
	for i := range data {
		data[i] = strconv.Itoa(i)
	}
	return data
}

func square(x int) int {
	return x * x
}

func isEven(x int) bool {
	return x%2 == 0
}

func add(a, b int) int {
	return a + b
}

func stringLen(s string) int {
	return len(s)
}
