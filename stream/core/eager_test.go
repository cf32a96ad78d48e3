package core

import (
	"cmp"
	"slices"
	"strings"
	"testing"
)

func TestEagerOperations(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Stream[int]
		expected []int
	}{
		{"sort", func() *Stream[int] { return Of(3, 1, 2).Sort(cmp.Compare[int]) }, []int{1, 2, 3}},
		{"sort after filter", func() *Stream[int] { return Of(6, 3, 4, 2).Filter(isEven).Sort(cmp.Compare[int]) }, []int{2, 4, 6}},
		{"reverse", func() *Stream[int] { return Of(1, 2, 3).Reverse() }, []int{3, 2, 1}},
		{"reverse empty", func() *Stream[int] { return Empty[int]().Reverse() }, []int{}},
		{"distinct", func() *Stream[int] { return Distinct(Of(1, 2, 1, 3, 2)) }, []int{1, 2, 3}},
		{"actions after sort", func() *Stream[int] { return Of(5, 1, 4).Sort(cmp.Compare[int]).Take(2) }, []int{1, 4}},
		{"step backward of one", func() *Stream[int] { return Of(7).Step(-3) }, []int{7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.build().ToSlice(); !slices.Equal(got, tt.expected) {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSortByIsStable(t *testing.T) {
	words := Of("bb", "a", "cc", "d", "ee")
	got := SortBy(words, func(s string) int { return len(s) }).ToSlice()
	want := []string{"a", "d", "bb", "cc", "ee"}
	if !slices.Equal(got, want) {
		t.Errorf("SortBy = %v, want %v", got, want)
	}
}

func TestDistinctBy(t *testing.T) {
	got := DistinctBy(Of("Go", "go", "Rust", "GO"), strings.ToLower).ToSlice()
	if !slices.Equal(got, []string{"Go", "Rust"}) {
		t.Errorf("DistinctBy = %v", got)
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	input := Range(0, 50, 1).ToSlice()
	got := FromSlice(input).Shuffle().ToSlice()
	slices.Sort(got)
	if !slices.Equal(got, input) {
		t.Errorf("Shuffle lost or duplicated elements")
	}
}

func TestCollectDetachesSource(t *testing.T) {
	items := []int{1, 2, 3}
	s := FromSlice(items).Collect()
	items[0] = 99
	if got := s.ToSlice(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Collect = %v, want the values before mutation", got)
	}
}

func TestSnapshot(t *testing.T) {
	sn := Of(1, 2, 3).Map(func(x int) int { return x * 2 }).Snapshot()
	if sn.Len() != 3 {
		t.Fatalf("Len = %d", sn.Len())
	}
	for i := 0; i < 2; i++ {
		if got := sn.Stream().ToSlice(); !slices.Equal(got, []int{2, 4, 6}) {
			t.Errorf("pass %d = %v", i, got)
		}
	}
	items := sn.Items()
	items[0] = -1
	if sn.Items()[0] != 2 {
		t.Errorf("Items exposed internal storage")
	}
}
