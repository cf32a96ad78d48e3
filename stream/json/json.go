// Package json provides stream adapters for JSON encoding and decoding.
// Decoders read one value per pull from newline-delimited JSON or from the
// elements of a top-level array. A decode error ends the stream and is
// reported by the decoder's Err method.
package json

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/lguimbarda/min-stream/stream/core"
)

// ErrNotArray is reported when DecodeArray input does not start with '['.
var ErrNotArray = errors.New("json: expected array")

// Decoder yields values of type T decoded from a reader.
type Decoder[T any] struct {
	dec     *json.Decoder
	array   bool
	started bool
	cur     T
	err     error
	done    bool
}

// Option configures a Decoder.
type Option func(*json.Decoder)

// WithDisallowUnknownFields rejects objects with fields that T does not
// have.
func WithDisallowUnknownFields() Option {
	return func(d *json.Decoder) {
		d.DisallowUnknownFields()
	}
}

// WithUseNumber decodes numbers into json.Number instead of float64 when
// the target is an interface.
func WithUseNumber() Option {
	return func(d *json.Decoder) {
		d.UseNumber()
	}
}

func newDecoder[T any](r io.Reader, array bool, opts []Option) *Decoder[T] {
	dec := json.NewDecoder(r)
	for _, opt := range opts {
		opt(dec)
	}
	return &Decoder[T]{dec: dec, array: array}
}

// NewDecoder creates a Decoder over a sequence of whitespace separated JSON
// values, such as newline-delimited JSON.
func NewDecoder[T any](r io.Reader, opts ...Option) *Decoder[T] {
	return newDecoder[T](r, false, opts)
}

// NewArrayDecoder creates a Decoder over the elements of a JSON array.
func NewArrayDecoder[T any](r io.Reader, opts ...Option) *Decoder[T] {
	return newDecoder[T](r, true, opts)
}

func (d *Decoder[T]) Next() bool {
	if d.done {
		return false
	}
	if d.array && !d.started {
		d.started = true
		tok, err := d.dec.Token()
		if err != nil {
			return d.fail(err)
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			return d.fail(ErrNotArray)
		}
	}
	if d.array && !d.dec.More() {
		if _, err := d.dec.Token(); err != nil {
			return d.fail(err)
		}
		return d.fail(nil)
	}

	var value T
	if err := d.dec.Decode(&value); err != nil {
		if errors.Is(err, io.EOF) && !d.array {
			err = nil
		}
		return d.fail(err)
	}
	d.cur = value
	return true
}

func (d *Decoder[T]) fail(err error) bool {
	var zero T
	d.cur, d.err, d.done = zero, err, true
	return false
}

func (d *Decoder[T]) Value() T   { return d.cur }
func (d *Decoder[T]) Done() bool { return d.done }

// Err returns the decode or read error that ended the stream, if any.
func (d *Decoder[T]) Err() error { return d.err }

// Stream wraps the decoder in a Stream.
func (d *Decoder[T]) Stream() *core.Stream[T] {
	return core.From[T](d)
}

// DecodeStream creates a Stream of the newline-delimited JSON values of r.
func DecodeStream[T any](r io.Reader, opts ...Option) *core.Stream[T] {
	return NewDecoder[T](r, opts...).Stream()
}

// DecodeArray creates a Stream of the elements of the JSON array in r.
func DecodeArray[T any](r io.Reader, opts ...Option) *core.Stream[T] {
	return NewArrayDecoder[T](r, opts...).Stream()
}

// Decode creates a Stream of the values decoded from each JSON document of
// s. Documents that fail to decode are skipped; the returned function
// reports the first such error.
func Decode[T any](s *core.Stream[string]) (*core.Stream[T], func() error) {
	var first error
	decoded := core.FromFuncOn(s, func() (T, bool) {
		for s.Next() {
			var value T
			if err := json.Unmarshal([]byte(s.Value()), &value); err != nil {
				if first == nil {
					first = err
				}
				continue
			}
			return value, true
		}
		var zero T
		return zero, false
	})
	return decoded, func() error { return first }
}

// Encode drains s into w as newline-delimited JSON and returns the number
// of values written.
func Encode[T any](w io.Writer, s *core.Stream[T]) (int, error) {
	enc := json.NewEncoder(w)
	n := 0
	for s.Next() {
		if err := enc.Encode(s.Value()); err != nil {
			return n, fmt.Errorf("json: encode element %d: %w", n, err)
		}
		n++
	}
	return n, nil
}

// EncodeArray drains s into w as a single JSON array.
func EncodeArray[T any](w io.Writer, s *core.Stream[T]) (int, error) {
	if _, err := io.WriteString(w, "["); err != nil {
		return 0, err
	}
	n := 0
	for s.Next() {
		data, err := json.Marshal(s.Value())
		if err != nil {
			return n, fmt.Errorf("json: encode element %d: %w", n, err)
		}
		if n > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return n, err
			}
		}
		if _, err := w.Write(data); err != nil {
			return n, err
		}
		n++
	}
	_, err := io.WriteString(w, "]")
	return n, err
}

// Marshal creates a Stream of the JSON encoding of each element of s.
func Marshal[T any](s *core.Stream[T]) (*core.Stream[[]byte], func() error) {
	var first error
	encoded := core.FromFuncOn(s, func() ([]byte, bool) {
		for s.Next() {
			data, err := json.Marshal(s.Value())
			if err != nil {
				if first == nil {
					first = err
				}
				continue
			}
			return data, true
		}
		return nil, false
	})
	return encoded, func() error { return first }
}
