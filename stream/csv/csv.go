// Package csv provides stream adapters for CSV encoding and decoding.
// Records are read lazily one per pull; a parse or read error ends the
// stream and is reported by the cursor's Err method.
package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/lguimbarda/min-stream/stream/core"
)

// ReaderOption configures a CSV reader.
type ReaderOption func(*csv.Reader)

// WithComma sets the field delimiter (default is ',').
func WithComma(comma rune) ReaderOption {
	return func(r *csv.Reader) {
		r.Comma = comma
	}
}

// WithComment sets the comment character. Lines beginning with this
// character are ignored.
func WithComment(comment rune) ReaderOption {
	return func(r *csv.Reader) {
		r.Comment = comment
	}
}

// WithFieldsPerRecord sets the expected number of fields per record.
// If positive, each record must have exactly that many fields.
// If 0, the number is set to the first record's field count.
// If negative, no check is made and records may have variable fields.
func WithFieldsPerRecord(n int) ReaderOption {
	return func(r *csv.Reader) {
		r.FieldsPerRecord = n
	}
}

// WithLazyQuotes allows lazy quotes in quoted fields.
func WithLazyQuotes(lazy bool) ReaderOption {
	return func(r *csv.Reader) {
		r.LazyQuotes = lazy
	}
}

// WithTrimLeadingSpace trims leading whitespace from fields.
func WithTrimLeadingSpace(trim bool) ReaderOption {
	return func(r *csv.Reader) {
		r.TrimLeadingSpace = trim
	}
}

// ErrHeaderRead is returned by Header once records have been pulled.
var ErrHeaderRead = errors.New("csv: header requested after records were read")

// RecordCursor yields the records of a CSV input. Each record is a fresh
// slice.
type RecordCursor struct {
	reader  *csv.Reader
	closer  io.Closer
	started bool
	cur     []string
	err     error
	done    bool
}

// NewRecordCursor creates a cursor reading CSV records from r.
func NewRecordCursor(r io.Reader, opts ...ReaderOption) *RecordCursor {
	reader := csv.NewReader(r)
	for _, opt := range opts {
		opt(reader)
	}
	return &RecordCursor{reader: reader}
}

// OpenRecords opens the CSV file at path. The file is closed once the
// cursor is done.
func OpenRecords(path string, opts ...ReaderOption) (*RecordCursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c := NewRecordCursor(f, opts...)
	c.closer = f
	return c, nil
}

// Header consumes the first record and returns it. It must be called before
// the cursor is pulled.
func (c *RecordCursor) Header() ([]string, error) {
	if c.started {
		return nil, ErrHeaderRead
	}
	if !c.Next() {
		if c.err != nil {
			return nil, c.err
		}
		return nil, io.EOF
	}
	return c.cur, nil
}

func (c *RecordCursor) Next() bool {
	if c.done {
		return false
	}
	c.started = true
	record, err := c.reader.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			c.err = err
		}
		c.finish()
		return false
	}
	c.cur = record
	return true
}

func (c *RecordCursor) Value() []string { return c.cur }
func (c *RecordCursor) Done() bool      { return c.done }

// Err returns the first parse or read error, if any.
func (c *RecordCursor) Err() error { return c.err }

// Close releases the underlying file, if the cursor owns one.
func (c *RecordCursor) Close() error {
	c.finish()
	return c.err
}

func (c *RecordCursor) finish() {
	if c.done {
		return
	}
	c.cur, c.done = nil, true
	if c.closer != nil {
		if err := c.closer.Close(); err != nil && c.err == nil {
			c.err = err
		}
		c.closer = nil
	}
}

// Stream wraps the cursor in a Stream.
func (c *RecordCursor) Stream() *core.Stream[[]string] {
	return core.From[[]string](c)
}

// Maps reads the header row and returns a Stream of the remaining records
// keyed by column name. Missing trailing fields are absent from the map.
func (c *RecordCursor) Maps() (*core.Stream[map[string]string], error) {
	header, err := c.Header()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}
	header = append([]string(nil), header...)
	return core.Map(c.Stream(), func(record []string) map[string]string {
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		return row
	}), nil
}

// ReadRecordsFrom creates a Stream of the CSV records of r.
// Use NewRecordCursor to observe parse errors.
func ReadRecordsFrom(r io.Reader, opts ...ReaderOption) *core.Stream[[]string] {
	return NewRecordCursor(r, opts...).Stream()
}

// ReadRecords creates a Stream of the CSV records of the file at path.
func ReadRecords(path string, opts ...ReaderOption) (*core.Stream[[]string], error) {
	c, err := OpenRecords(path, opts...)
	if err != nil {
		return nil, err
	}
	return c.Stream(), nil
}

// SkipHeader drops the first record of s.
func SkipHeader(s *core.Stream[[]string]) *core.Stream[[]string] {
	return s.Drop(1)
}

// WriterOption configures a CSV writer.
type WriterOption func(*csv.Writer)

// WithWriterComma sets the field delimiter for writing (default is ',').
func WithWriterComma(comma rune) WriterOption {
	return func(w *csv.Writer) {
		w.Comma = comma
	}
}

// WithUseCRLF sets whether to use \r\n as the line terminator.
func WithUseCRLF(useCRLF bool) WriterOption {
	return func(w *csv.Writer) {
		w.UseCRLF = useCRLF
	}
}

func newWriter(w io.Writer, opts []WriterOption) *csv.Writer {
	writer := csv.NewWriter(w)
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

// WriteTo drains s into w as CSV and returns the number of records written.
func WriteTo(w io.Writer, s *core.Stream[[]string], opts ...WriterOption) (int, error) {
	writer := newWriter(w, opts)
	n := 0
	for s.Next() {
		if err := writer.Write(s.Value()); err != nil {
			return n, err
		}
		n++
	}
	writer.Flush()
	return n, writer.Error()
}

// WriteRecords drains s into the file at path, which is created or
// truncated.
func WriteRecords(path string, s *core.Stream[[]string], opts ...WriterOption) (n int, err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteTo(file, s, opts...)
}

// Encode creates a Stream of the CSV encoding of each record of s, one
// terminated line per element. Records that cannot be encoded are skipped;
// the returned function reports the first such error.
func Encode(s *core.Stream[[]string], opts ...WriterOption) (*core.Stream[[]byte], func() error) {
	var buf bytes.Buffer
	var first error
	writer := newWriter(&buf, opts)
	encoded := core.FromFuncOn(s, func() ([]byte, bool) {
		for s.Next() {
			buf.Reset()
			if err := writer.Write(s.Value()); err != nil {
				if first == nil {
					first = err
				}
				continue
			}
			writer.Flush()
			return bytes.Clone(buf.Bytes()), true
		}
		return nil, false
	})
	return encoded, func() error { return first }
}
