package stream

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/lguimbarda/min-stream/stream/core"
)

// ToObject drains a Stream of string-keyed pairs and decodes the resulting
// entries into dst, which must be a pointer to a struct or a map. Struct
// fields are matched by their `stream` tag, or case-insensitively by name.
// Later keys overwrite earlier ones. Values are converted weakly, so "42"
// decodes into an int field.
func ToObject[V any](s *Stream[Pair[string, V]], dst any) error {
	entries := make(map[string]any)
	for s.Next() {
		p := s.Value()
		entries[p.First] = p.Second
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           dst,
		TagName:          "stream",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("stream: to object: %w", err)
	}
	if err := dec.Decode(entries); err != nil {
		return fmt.Errorf("stream: to object: %w", err)
	}
	return nil
}

// ToObjectBy decodes the elements of s into dst, keyed by key.
func ToObjectBy[T any](s *Stream[T], key func(T) string, dst any) error {
	return ToObject(core.Map(s, func(v T) Pair[string, T] {
		return Pair[string, T]{First: key(v), Second: v}
	}), dst)
}
