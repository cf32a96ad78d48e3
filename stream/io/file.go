// Package io provides stream adapters for file I/O operations.
// Cursors read lazily: nothing is read until the stream is pulled, and a
// cursor that owns its file closes it when it is exhausted or when the
// stream is abandoned early. Read errors end the stream and are reported
// by the cursor's Err method.
package io

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/lguimbarda/min-stream/stream/core"
)

// DefaultMaxLineSize is the longest line a LineCursor accepts by default.
const DefaultMaxLineSize = bufio.MaxScanTokenSize

// Option configures a cursor.
type Option func(*config)

type config struct {
	maxLine int
}

// WithMaxLineSize sets the longest line a LineCursor accepts. Longer lines
// end the stream with bufio.ErrTooLong.
func WithMaxLineSize(n int) Option {
	return func(c *config) {
		c.maxLine = n
	}
}

func newConfig(opts []Option) config {
	cfg := config{maxLine: DefaultMaxLineSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// LineCursor yields the lines of a reader without their line terminators.
type LineCursor struct {
	scanner *bufio.Scanner
	closer  io.Closer
	cur     string
	err     error
	done    bool
}

// NewLineCursor creates a LineCursor over r. If r is an io.Closer it is
// not closed; use OpenLines to let the cursor own a file.
func NewLineCursor(r io.Reader, opts ...Option) *LineCursor {
	cfg := newConfig(opts)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(cfg.maxLine, 64*1024)), cfg.maxLine)
	return &LineCursor{scanner: sc}
}

// OpenLines opens the file at path and returns a cursor over its lines that
// closes the file once it is done.
func OpenLines(path string, opts ...Option) (*LineCursor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	c := NewLineCursor(f, opts...)
	c.closer = f
	return c, nil
}

func (c *LineCursor) Next() bool {
	if c.done {
		return false
	}
	if c.scanner.Scan() {
		c.cur = c.scanner.Text()
		return true
	}
	c.err = c.scanner.Err()
	c.finish()
	return false
}

func (c *LineCursor) Value() string { return c.cur }
func (c *LineCursor) Done() bool    { return c.done }

// Err returns the first read error, if any.
func (c *LineCursor) Err() error { return c.err }

// Close releases the underlying file, if the cursor owns one.
func (c *LineCursor) Close() error {
	c.finish()
	return c.err
}

func (c *LineCursor) finish() {
	if c.done {
		return
	}
	c.cur, c.done = "", true
	if c.closer != nil {
		if err := c.closer.Close(); err != nil && c.err == nil {
			c.err = err
		}
		c.closer = nil
	}
}

// Stream wraps the cursor in a Stream.
func (c *LineCursor) Stream() *core.Stream[string] {
	return core.From[string](c)
}

// ReadLinesFrom creates a Stream of the lines of r.
// Use NewLineCursor to observe read errors.
func ReadLinesFrom(r io.Reader, opts ...Option) *core.Stream[string] {
	return NewLineCursor(r, opts...).Stream()
}

// ReadLines creates a Stream of the lines of the file at path.
func ReadLines(path string, opts ...Option) (*core.Stream[string], error) {
	c, err := OpenLines(path, opts...)
	if err != nil {
		return nil, err
	}
	return c.Stream(), nil
}

// ChunkCursor yields successive chunks of a reader. Each chunk is a fresh
// slice.
type ChunkCursor struct {
	r    io.Reader
	buf  []byte
	cur  []byte
	err  error
	done bool
}

// NewChunkCursor creates a cursor reading r in chunks of up to size bytes.
func NewChunkCursor(r io.Reader, size int) *ChunkCursor {
	if size <= 0 {
		panic(&core.MisuseError{Op: "chunks", Err: core.ErrInvalidSize})
	}
	return &ChunkCursor{r: r, buf: make([]byte, size)}
}

func (c *ChunkCursor) Next() bool {
	if c.done {
		return false
	}
	for {
		n, err := c.r.Read(c.buf)
		if n > 0 {
			c.cur = append([]byte(nil), c.buf[:n]...)
			if err != nil && !errors.Is(err, io.EOF) {
				c.err = err
			}
			return true
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.err = err
			}
			c.cur, c.buf, c.done = nil, nil, true
			return false
		}
	}
}

func (c *ChunkCursor) Value() []byte { return c.cur }
func (c *ChunkCursor) Done() bool    { return c.done }

// Err returns the first read error, if any.
func (c *ChunkCursor) Err() error { return c.err }

// ReadBytes creates a Stream of chunks of up to size bytes read from r.
func ReadBytes(r io.Reader, size int) *core.Stream[[]byte] {
	return core.From[[]byte](NewChunkCursor(r, size))
}

// WriteTo drains s into w, one element per line, and returns the number of
// lines written.
func WriteTo(w io.Writer, s *core.Stream[string]) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	for s.Next() {
		if _, err := bw.WriteString(s.Value() + "\n"); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// WriteLines drains s into the file at path, which is created or truncated.
func WriteLines(path string, s *core.Stream[string]) (int, error) {
	return WriteLinesWithOptions(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644, s)
}

// AppendLines drains s to the end of the file at path, creating it if needed.
func AppendLines(path string, s *core.Stream[string]) (int, error) {
	return WriteLinesWithOptions(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644, s)
}

// WriteLinesWithOptions drains s into a file opened with custom options.
func WriteLinesWithOptions(path string, flag int, perm os.FileMode, s *core.Stream[string]) (n int, err error) {
	file, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteTo(file, s)
}
