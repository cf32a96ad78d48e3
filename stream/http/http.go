// Package http provides stream adapters over HTTP response bodies.
// Requests are sent on the first pull, and the body is closed when the
// stream ends.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/lguimbarda/min-stream/stream/core"
	streamio "github.com/lguimbarda/min-stream/stream/io"
	streamjson "github.com/lguimbarda/min-stream/stream/json"
)

// ErrStatus is matched by a StatusError.
var ErrStatus = errors.New("http: unexpected status")

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: %s %s: status %d", e.Method, e.URL, e.StatusCode)
}

func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Response contains HTTP response data.
type Response struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Body yields the elements of a response body as split by a sequence
// factory. The request is sent on the first call to Next.
type Body[T any] struct {
	client *http.Client
	req    *http.Request
	split  func(io.Reader) core.Sequence[T]

	resp *http.Response
	seq  core.Sequence[T]
	cur  T
	err  error
	done bool
}

// NewBody creates a Body cursor for req. A nil client means
// http.DefaultClient.
func NewBody[T any](client *http.Client, req *http.Request, split func(io.Reader) core.Sequence[T]) *Body[T] {
	if client == nil {
		client = http.DefaultClient
	}
	return &Body[T]{client: client, req: req, split: split}
}

func (b *Body[T]) send() error {
	resp, err := b.client.Do(b.req)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return &StatusError{Method: b.req.Method, URL: b.req.URL.String(), StatusCode: resp.StatusCode}
	}
	b.resp = resp
	b.seq = b.split(resp.Body)
	return nil
}

func (b *Body[T]) Next() bool {
	if b.done {
		return false
	}
	if b.resp == nil {
		if err := b.send(); err != nil {
			b.err = err
			b.finish()
			return false
		}
	}
	if b.seq.Next() {
		b.cur = b.seq.Value()
		return true
	}
	if e, ok := b.seq.(interface{ Err() error }); ok {
		b.err = e.Err()
	}
	b.finish()
	return false
}

func (b *Body[T]) Value() T   { return b.cur }
func (b *Body[T]) Done() bool { return b.done }

// Err returns the request, status or decode error that ended the body.
func (b *Body[T]) Err() error { return b.err }

// StatusCode returns the response status, or 0 before the request is sent.
func (b *Body[T]) StatusCode() int {
	if b.resp == nil {
		return 0
	}
	return b.resp.StatusCode
}

// Close releases the response body.
func (b *Body[T]) Close() error {
	b.finish()
	return b.err
}

func (b *Body[T]) finish() {
	if b.done {
		return
	}
	var zero T
	b.cur, b.done = zero, true
	if b.resp != nil {
		_ = b.resp.Body.Close()
	}
}

// Stream wraps the cursor in a Stream.
func (b *Body[T]) Stream() *core.Stream[T] {
	return core.From[T](b)
}

func get[T any](ctx context.Context, client *http.Client, url string, split func(io.Reader) core.Sequence[T]) (*Body[T], error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return NewBody(client, req, split), nil
}

// GetLines creates a cursor over the lines of a GET response.
func GetLines(ctx context.Context, client *http.Client, url string, opts ...streamio.Option) (*Body[string], error) {
	return get(ctx, client, url, func(r io.Reader) core.Sequence[string] {
		return streamio.NewLineCursor(r, opts...)
	})
}

// GetBytes creates a cursor over fixed-size chunks of a GET response.
func GetBytes(ctx context.Context, client *http.Client, url string, chunkSize int) (*Body[[]byte], error) {
	return get(ctx, client, url, func(r io.Reader) core.Sequence[[]byte] {
		return streamio.NewChunkCursor(r, chunkSize)
	})
}

// GetNDJSON creates a cursor over the newline-delimited JSON values of a GET
// response.
func GetNDJSON[T any](ctx context.Context, client *http.Client, url string, opts ...streamjson.Option) (*Body[T], error) {
	return get(ctx, client, url, func(r io.Reader) core.Sequence[T] {
		return streamjson.NewDecoder[T](r, opts...)
	})
}

// GetJSONArray creates a cursor over the elements of a JSON array returned
// by a GET request.
func GetJSONArray[T any](ctx context.Context, client *http.Client, url string, opts ...streamjson.Option) (*Body[T], error) {
	return get(ctx, client, url, func(r io.Reader) core.Sequence[T] {
		return streamjson.NewArrayDecoder[T](r, opts...)
	})
}

// GetEach lazily sends a GET request for each URL and yields the full
// responses. Failed requests are skipped; the returned function reports the
// first failure.
func GetEach(ctx context.Context, client *http.Client, urls *core.Stream[string]) (*core.Stream[Response], func() error) {
	if client == nil {
		client = http.DefaultClient
	}
	var first error
	fetch := func(url string) (Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return Response{}, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return Response{}, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return Response{}, fmt.Errorf("http: read %s: %w", url, err)
		}
		return Response{URL: url, StatusCode: resp.StatusCode, Headers: resp.Header, Body: body}, nil
	}
	responses := core.FromFuncOn(urls, func() (Response, bool) {
		for urls.Next() {
			resp, err := fetch(urls.Value())
			if err != nil {
				if first == nil {
					first = err
				}
				continue
			}
			return resp, true
		}
		return Response{}, false
	})
	return responses, func() error { return first }
}
