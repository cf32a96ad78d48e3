// Package kafka provides stream adapters over Kafka topics using
// segmentio/kafka-go. A Cursor fetches one message per pull; a stream
// abandoned early fetches nothing more.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/lguimbarda/min-stream/stream/aggregate"
	"github.com/lguimbarda/min-stream/stream/core"
)

// DefaultBatchSize is the number of messages per WriteMessages call.
const DefaultBatchSize = 100

// MessageReader is the part of *kafkago.Reader a Cursor uses.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// MessageWriter is the part of *kafkago.Writer the sinks use.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Option configures a Cursor.
type Option func(*Cursor)

// WithAutoCommit commits each message once the next one is requested, and
// the last one when the cursor finishes. Without it, callers commit
// messages themselves.
func WithAutoCommit() Option {
	return func(c *Cursor) {
		c.autoCommit = true
	}
}

// WithIdleTimeout ends the cursor cleanly when no message arrives within d.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Cursor) {
		c.idle = d
	}
}

// Cursor yields the messages of a reader.
type Cursor struct {
	ctx        context.Context
	r          MessageReader
	autoCommit bool
	idle       time.Duration

	pending *kafkago.Message
	cur     kafkago.Message
	err     error
	done    bool
}

// NewCursor creates a cursor over r. The context bounds every fetch and
// commit.
func NewCursor(ctx context.Context, r MessageReader, opts ...Option) *Cursor {
	c := &Cursor{ctx: ctx, r: r}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cursor) commitPending() error {
	if !c.autoCommit || c.pending == nil {
		return nil
	}
	msg := *c.pending
	c.pending = nil
	if err := c.r.CommitMessages(c.ctx, msg); err != nil {
		return fmt.Errorf("kafka: commit %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
	}
	return nil
}

func (c *Cursor) fetch() (kafkago.Message, error) {
	if c.idle <= 0 {
		return c.r.FetchMessage(c.ctx)
	}
	ctx, cancel := context.WithTimeout(c.ctx, c.idle)
	defer cancel()
	msg, err := c.r.FetchMessage(ctx)
	if errors.Is(err, context.DeadlineExceeded) && c.ctx.Err() == nil {
		return msg, io.EOF
	}
	return msg, err
}

func (c *Cursor) Next() bool {
	if c.done {
		return false
	}
	if err := c.commitPending(); err != nil {
		c.err = err
		c.finish()
		return false
	}
	msg, err := c.fetch()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			c.err = fmt.Errorf("kafka: fetch: %w", err)
		}
		c.finish()
		return false
	}
	c.cur = msg
	c.pending = &msg
	return true
}

func (c *Cursor) Value() kafkago.Message { return c.cur }
func (c *Cursor) Done() bool             { return c.done }

// Err returns the fetch or commit error that ended the cursor, if any.
func (c *Cursor) Err() error { return c.err }

// Close commits the last message under auto-commit and stops the cursor.
// The reader itself is left open.
func (c *Cursor) Close() error {
	c.finish()
	return c.err
}

func (c *Cursor) finish() {
	if c.done {
		return
	}
	if err := c.commitPending(); err != nil && c.err == nil {
		c.err = err
	}
	c.cur, c.pending, c.done = kafkago.Message{}, nil, true
}

// Stream wraps the cursor in a Stream.
func (c *Cursor) Stream() *core.Stream[kafkago.Message] {
	return core.From[kafkago.Message](c)
}

// Values is a Stream of the message payloads.
func (c *Cursor) Values() *core.Stream[[]byte] {
	return core.Map(c.Stream(), func(m kafkago.Message) []byte { return m.Value })
}

// Decode is a Stream of the message payloads decoded as JSON into T.
// Messages that fail to decode are skipped; the returned function reports
// the first failure.
func Decode[T any](c *Cursor) (*core.Stream[T], func() error) {
	var first error
	msgs := c.Stream()
	decoded := core.FromFuncOn(msgs, func() (T, bool) {
		for msgs.Next() {
			m := msgs.Value()
			var v T
			if err := json.Unmarshal(m.Value, &v); err != nil {
				if first == nil {
					first = fmt.Errorf("kafka: decode %s/%d@%d: %w", m.Topic, m.Partition, m.Offset, err)
				}
				continue
			}
			return v, true
		}
		var zero T
		return zero, false
	})
	return decoded, func() error { return first }
}

// ReaderConfig holds the settings NewReader needs.
type ReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewReader creates a consumer-group reader starting from the first offset.
func NewReader(cfg ReaderConfig) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}

// Write drains s into w, batchSize messages per call, and returns the
// number of messages written. A batchSize below one means DefaultBatchSize.
func Write(ctx context.Context, w MessageWriter, s *core.Stream[kafkago.Message], batchSize int) (int, error) {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	n := 0
	for batch := range aggregate.Batch(s, batchSize).All() {
		if err := w.WriteMessages(ctx, batch...); err != nil {
			return n, fmt.Errorf("kafka: write: %w", err)
		}
		n += len(batch)
	}
	return n, nil
}

// WriteJSON drains s into w as JSON-encoded messages keyed by key.
func WriteJSON[T any](ctx context.Context, w MessageWriter, s *core.Stream[T], key func(T) string, batchSize int) (int, error) {
	var encodeErr error
	msgs := core.FromFuncOn(s, func() (kafkago.Message, bool) {
		if encodeErr != nil || !s.Next() {
			return kafkago.Message{}, false
		}
		v := s.Value()
		data, err := json.Marshal(v)
		if err != nil {
			encodeErr = fmt.Errorf("kafka: encode: %w", err)
			return kafkago.Message{}, false
		}
		return kafkago.Message{Key: []byte(key(v)), Value: data}, true
	})
	n, err := Write(ctx, w, msgs, batchSize)
	if err != nil {
		return n, err
	}
	return n, encodeErr
}
