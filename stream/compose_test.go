package stream_test

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/lguimbarda/min-stream/stream"
)

// The tests in this file check the engine's guarantees through the public
// API only.

func TestLazyUntilTerminal(t *testing.T) {
	pulled := 0
	s := stream.FromFunc(func() (int, bool) {
		pulled++
		return pulled, pulled <= 100
	})
	s.Filter(func(x int) bool { return x%2 == 0 }).Map(func(x int) int { return x * x }).Take(3)
	if pulled != 0 {
		t.Fatalf("pipeline construction pulled %d elements", pulled)
	}
	if got := s.ToSlice(); !slices.Equal(got, []int{4, 16, 36}) {
		t.Errorf("got %v", got)
	}
	if pulled != 6 {
		t.Errorf("pulled %d elements, want 6", pulled)
	}
}

func TestSinglePass(t *testing.T) {
	s := stream.Of(1, 2, 3)
	if got := s.ToSlice(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Fatalf("first pass = %v", got)
	}
	if got := s.ToSlice(); len(got) != 0 {
		t.Errorf("second pass = %v, want empty", got)
	}
	if !s.Done() || s.HasNext() {
		t.Errorf("exhausted stream came back to life")
	}
}

func TestPartitionPreservesEveryElement(t *testing.T) {
	input := stream.Range(0, 100, 1).ToSlice()
	hub := stream.PartitionBy(stream.FromSlice(input), func(v int) int { return v % 7 })

	var all []int
	for p := range hub.Partitions().All() {
		part := p.Second.ToSlice()
		if !slices.IsSorted(part) {
			t.Errorf("partition %d reordered: %v", p.First, part)
		}
		all = append(all, part...)
	}
	slices.Sort(all)
	if !slices.Equal(all, input) {
		t.Errorf("partitions lost or duplicated elements")
	}
}

func TestFlattenMixed(t *testing.T) {
	nested := stream.Of[any]("a", []any{"b", []string{"c"}}, stream.Of[any]("d"))
	got := stream.FlattenDeep(nested, -1).ToString("")
	if got != "abcd" {
		t.Errorf("FlattenDeep = %q", got)
	}
}

func TestUnzipRoundTrip(t *testing.T) {
	names := []string{"ann", "bob"}
	ages := []int{31, 42}
	n, a := stream.Unzip(stream.Zip[string, int](stream.FromSlice(names), stream.FromSlice(ages)))
	gotAges, gotNames := a.ToSlice(), n.ToSlice()
	if !slices.Equal(gotNames, names) || !slices.Equal(gotAges, ages) {
		t.Errorf("Unzip = %v %v", gotNames, gotAges)
	}
}

func TestMisuseIsCatchable(t *testing.T) {
	err := stream.Catch(func() { stream.Range(1, 5, 0) })
	var me *stream.MisuseError
	if !errors.As(err, &me) || !errors.Is(err, stream.ErrZeroStep) {
		t.Errorf("Catch = %v", err)
	}
}

func TestRaceAndRest(t *testing.T) {
	ctx := context.Background()
	upper := func(s string) stream.Future[string] {
		return stream.Async(ctx, func(context.Context) (string, error) { return strings.ToUpper(s), nil })
	}

	futures := stream.Map(stream.Of("a", "b", "c"), upper)
	rest, err := stream.Rest(ctx, futures)
	if err != nil {
		t.Fatalf("Rest: %v", err)
	}
	if got := rest.ToString(""); got != "ABC" {
		t.Errorf("Rest = %q", got)
	}

	winner, err := stream.Race(ctx, stream.Map(stream.Of("x", "y"), upper))
	if err != nil || (winner != "X" && winner != "Y") {
		t.Errorf("Race = %q, %v", winner, err)
	}
}

func TestObserveThroughFacade(t *testing.T) {
	var n int
	s := stream.Observe(stream.Of(1, 2, 3), stream.Hooks[int]{OnComplete: func(c int) { n = c }})
	s.Count()
	if n != 3 {
		t.Errorf("OnComplete saw %d", n)
	}
}
