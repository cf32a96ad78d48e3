package stream_test

import (
	"testing"

	"github.com/lguimbarda/min-stream/stream"
)

type chapter struct {
	Title  string `stream:"title"`
	Number int    `stream:"number"`
	Draft  bool
}

func TestToObject(t *testing.T) {
	tests := []struct {
		name     string
		pairs    []stream.Pair[string, any]
		expected chapter
	}{
		{
			name: "tagged fields",
			pairs: []stream.Pair[string, any]{
				{First: "title", Second: "Prologue"},
				{First: "number", Second: 1},
			},
			expected: chapter{Title: "Prologue", Number: 1},
		},
		{
			name: "weak conversion and untagged field",
			pairs: []stream.Pair[string, any]{
				{First: "number", Second: "12"},
				{First: "draft", Second: "true"},
			},
			expected: chapter{Number: 12, Draft: true},
		},
		{
			name: "later keys win",
			pairs: []stream.Pair[string, any]{
				{First: "title", Second: "old"},
				{First: "title", Second: "new"},
			},
			expected: chapter{Title: "new"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got chapter
			if err := stream.ToObject(stream.FromSlice(tt.pairs), &got); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestToObjectMap(t *testing.T) {
	got := map[string]int{}
	err := stream.ToObjectBy(stream.Of(3, 10), func(v int) string {
		if v < 5 {
			return "small"
		}
		return "large"
	}, &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["small"] != 3 || got["large"] != 10 {
		t.Errorf("got %v", got)
	}
}

func TestToObjectErrors(t *testing.T) {
	var notPointer chapter
	if err := stream.ToObject(stream.Of(stream.Pair[string, int]{First: "number", Second: 1}), notPointer); err == nil {
		t.Errorf("expected an error for a non-pointer result")
	}

	var c chapter
	bad := stream.Of(stream.Pair[string, any]{First: "number", Second: "not a number"})
	if err := stream.ToObject(bad, &c); err == nil {
		t.Errorf("expected a decode error")
	}
}
