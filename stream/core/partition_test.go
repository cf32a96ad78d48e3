package core

import (
	"errors"
	"slices"
	"testing"
)

func parity(v, _ int) int { return v % 2 }

func TestPartitionGet(t *testing.T) {
	tests := []struct {
		name  string
		order []int
	}{
		{"even first", []int{0, 1}},
		{"odd first", []int{1, 0}},
	}
	want := map[int][]int{0: {0, 2, 4}, 1: {1, 3, 5}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := Partition(Range(0, 6, 1), parity)
			for _, key := range tt.order {
				if got := hub.Get(key).ToSlice(); !slices.Equal(got, want[key]) {
					t.Errorf("Get(%d) = %v, want %v", key, got, want[key])
				}
			}
		})
	}
}

func TestPartitionInterleaved(t *testing.T) {
	hub := Partition(Range(0, 6, 1), parity)
	even, odd := hub.Get(0), hub.Get(1)

	var got []int
	for i := 0; i < 3; i++ {
		if !even.Next() || !odd.Next() {
			t.Fatalf("partition ended early at round %d", i)
		}
		got = append(got, even.Value(), odd.Value())
	}
	if !slices.Equal(got, []int{0, 1, 2, 3, 4, 5}) {
		t.Errorf("interleaved = %v", got)
	}
	if even.Next() || odd.Next() {
		t.Errorf("partitions not exhausted")
	}
}

func TestPartitionGetReturnsSameStream(t *testing.T) {
	hub := Partition(Of(1, 2, 3), parity)
	a := hub.Get(1)
	if !a.Next() || a.Value() != 1 {
		t.Fatalf("first odd = %d", a.Value())
	}
	if b := hub.Get(1); b != a {
		t.Fatalf("Get returned a different stream for the same key")
	}
	if got := hub.Get(1).ToSlice(); !slices.Equal(got, []int{3}) {
		t.Errorf("rest of odd partition = %v, want [3]", got)
	}
}

func TestPartitionsDiscoveryOrder(t *testing.T) {
	words := Of("apple", "avocado", "banana", "cherry", "blueberry")
	hub := PartitionBy(words, func(w string) byte { return w[0] })

	keys := []byte{}
	groups := map[byte][]string{}
	for p := range hub.Partitions().All() {
		keys = append(keys, p.First)
		groups[p.First] = p.Second.ToSlice()
	}

	if !slices.Equal(keys, []byte("abc")) {
		t.Errorf("keys = %q, want %q", keys, "abc")
	}
	if !slices.Equal(groups['b'], []string{"banana", "blueberry"}) {
		t.Errorf("b group = %v", groups['b'])
	}
	if !hub.Exhausted() {
		t.Errorf("hub not exhausted after all partitions drained")
	}
}

func TestPartitionsAfterGet(t *testing.T) {
	words := Of("apple", "avocado", "banana", "cherry", "blueberry")
	hub := PartitionBy(words, func(w string) byte { return w[0] })

	if got := hub.Get('c').ToSlice(); !slices.Equal(got, []string{"cherry"}) {
		t.Fatalf("Get('c') = %v", got)
	}
	keys := Map(hub.Partitions(), func(p Pair[byte, *Stream[string]]) byte { return p.First }).ToSlice()
	if !slices.Equal(keys, []byte("abc")) {
		t.Errorf("keys = %q, want discovery order %q", keys, "abc")
	}
	if got := hub.Get('b').ToSlice(); !slices.Equal(got, []string{"banana", "blueberry"}) {
		t.Errorf("Get('b') = %v", got)
	}
}

func TestPartitionIsLazy(t *testing.T) {
	src := counting(1, 2, 3)
	hub := Partition(From[int](src), parity)
	parts := hub.Partitions()
	if src.pulls != 0 {
		t.Fatalf("creating a hub pulled %d elements", src.pulls)
	}
	if !parts.Next() || parts.Value().First != 1 {
		t.Fatalf("first partition key = %v", parts.Value().First)
	}
	if src.pulls != 1 {
		t.Errorf("discovering the first key pulled %d elements, want 1", src.pulls)
	}
}

func TestPartitionMissingKey(t *testing.T) {
	hub := Partition(Of(1, 3, 5), parity)
	if got := hub.Get(0).ToSlice(); len(got) != 0 {
		t.Errorf("Get of an absent key = %v", got)
	}
	if !hub.Exhausted() {
		t.Errorf("hub not exhausted after searching for an absent key")
	}
	if keys := hub.Keys(); !slices.Equal(keys, []int{1}) {
		t.Errorf("Keys = %v, want [1]", keys)
	}
	if got := hub.Get(1).ToSlice(); !slices.Equal(got, []int{1, 3, 5}) {
		t.Errorf("Get(1) = %v", got)
	}
}

func TestPartitionSorterIndex(t *testing.T) {
	hub := Partition(Of("a", "b", "c", "d", "e"), func(_ string, i int) int { return i / 2 })
	want := [][]string{{"a", "b"}, {"c", "d"}, {"e"}}
	for k, w := range want {
		if got := hub.Get(k).ToSlice(); !slices.Equal(got, w) {
			t.Errorf("Get(%d) = %v, want %v", k, got, w)
		}
	}
}

func TestPartitionOptions(t *testing.T) {
	var first, second []int
	hub := Partition(Range(0, 9, 1), func(v, _ int) int { return v % 3 },
		WithDiscoverHook(func(k int) { first = append(first, k) }),
		WithDiscoverHook(func(k int) { second = append(second, k) }),
		WithInitialBuffer[int](8),
	)
	hub.Get(2).ToSlice()

	if !slices.Equal(first, []int{0, 1, 2}) || !slices.Equal(second, first) {
		t.Errorf("discover hooks saw %v and %v", first, second)
	}
	if c := cap(hub.parts[0].queue); c < 8 {
		t.Errorf("buffer capacity = %d, want at least 8", c)
	}
}

func TestPartitionReentrantDrive(t *testing.T) {
	var hub *Hub[int, int]
	hub = Partition(Range(0, 4, 1), func(v, _ int) int {
		if v == 1 {
			hub.Get(1).ToSlice()
		}
		return v % 2
	})

	err := Catch(func() { hub.Get(1).ToSlice() })
	if !errors.Is(err, ErrReentrantDrive) {
		t.Fatalf("expected ErrReentrantDrive, got %v", err)
	}
	var me *MisuseError
	if !errors.As(err, &me) || me.Op != "partition" {
		t.Errorf("expected *MisuseError for op partition, got %#v", err)
	}
	if hub.driving {
		t.Errorf("hub still marked as driving after the panic")
	}
}

func TestUnzip(t *testing.T) {
	pairs := Zip[int, string](Of(1, 2, 3), Of("a", "b", "c"))
	firsts, seconds := Unzip(pairs)

	if got := seconds.ToSlice(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("seconds = %v", got)
	}
	if got := firsts.ToSlice(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("firsts = %v", got)
	}
}

func TestUnzipIsLazy(t *testing.T) {
	src := counting(PairOf(1, "x"), PairOf(2, "y"))
	firsts, seconds := Unzip(From[Pair[int, string]](src))
	if src.pulls != 0 {
		t.Fatalf("Unzip pulled %d elements before use", src.pulls)
	}
	if !firsts.Next() || firsts.Value() != 1 {
		t.Fatalf("first = %d", firsts.Value())
	}
	if src.pulls != 1 {
		t.Errorf("one first element pulled %d pairs, want 1", src.pulls)
	}
	if got := seconds.ToSlice(); !slices.Equal(got, []string{"x", "y"}) {
		t.Errorf("seconds = %v", got)
	}
}

func TestUnzipAny(t *testing.T) {
	input := Of[any]([]any{1, "a"}, [2]any{2, "b"}, PairOf[any, any](3, "c"))
	firsts, seconds := UnzipAny(input)
	if got := firsts.ToSlice(); !slices.Equal(got, []any{1, 2, 3}) {
		t.Errorf("firsts = %v", got)
	}
	if got := seconds.ToSlice(); !slices.Equal(got, []any{"a", "b", "c"}) {
		t.Errorf("seconds = %v", got)
	}

	firsts, _ = UnzipAny(Of[any](1))
	err := Catch(func() { firsts.ToSlice() })
	if !errors.Is(err, ErrNotPair) {
		t.Errorf("expected ErrNotPair, got %v", err)
	}
}
