package core

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

func never[T any]() Future[T] { return make(chan Result[T]) }

func TestResult(t *testing.T) {
	ok := Ok(5)
	if !ok.IsValue() || ok.IsError() || ok.Value() != 5 || ok.Error() != nil {
		t.Errorf("Ok(5) = %+v", ok)
	}
	boom := errors.New("boom")
	bad := Err[int](boom)
	if bad.IsValue() || !bad.IsError() || !errors.Is(bad.Error(), boom) {
		t.Errorf("Err(boom) = %+v", bad)
	}
	if v, err := bad.Unwrap(); v != 0 || err != boom {
		t.Errorf("Unwrap = %d, %v", v, err)
	}
}

func TestAsync(t *testing.T) {
	ctx := context.Background()
	f := Async(ctx, func(context.Context) (string, error) { return "done", nil })
	if v, err := (<-f).Unwrap(); err != nil || v != "done" {
		t.Errorf("Async = %q, %v", v, err)
	}

	f = Async(ctx, func(context.Context) (string, error) { panic("kaboom") })
	var pe ErrPanic
	if err := (<-f).Error(); !errors.As(err, &pe) || pe.Value != "kaboom" {
		t.Errorf("expected ErrPanic, got %v", err)
	}
}

func TestRace(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	tests := []struct {
		name    string
		futures []Future[int]
		want    int
		wantErr error
	}{
		{"first settled value wins", []Future[int]{never[int](), Resolved(Ok(2))}, 2, nil},
		{"first settled error wins", []Future[int]{never[int](), Resolved(Err[int](boom))}, 0, boom},
		{"no futures", nil, 0, ErrNoFutures},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Race(ctx, FromSlice(tt.futures))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Race = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRaceCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := Race(ctx, Of(never[int](), never[int]()))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestRest(t *testing.T) {
	ctx := context.Background()

	slow := make(chan Result[int], 1)
	go func() {
		time.Sleep(5 * time.Millisecond)
		slow <- Ok(1)
	}()
	s, err := Rest(ctx, Of[Future[int]](slow, Resolved(Ok(2)), Resolved(Ok(3))))
	if err != nil {
		t.Fatalf("Rest: %v", err)
	}
	if got := s.ToSlice(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Rest = %v, want values in future order", got)
	}

	boom := errors.New("boom")
	if _, err := Rest(ctx, Of(never[int](), Resolved(Err[int](boom)))); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}

	s, err = Rest(ctx, Empty[Future[int]]())
	if err != nil || s.Count() != 0 {
		t.Errorf("Rest of nothing = %v", err)
	}
}

func TestFutureClosedWithoutResult(t *testing.T) {
	ch := make(chan Result[int])
	close(ch)
	if _, err := Race(context.Background(), Of[Future[int]](ch)); !errors.Is(err, ErrFutureClosed) {
		t.Errorf("expected ErrFutureClosed, got %v", err)
	}
}
