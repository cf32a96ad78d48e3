// Package redis provides stream adapters over Redis keyspace and collection
// scans. Scans are incremental: each pull may issue at most one SCAN-family
// round trip, and a stream abandoned early issues no further commands.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lguimbarda/min-stream/stream/aggregate"
	"github.com/lguimbarda/min-stream/stream/core"
)

// DefaultCount is the COUNT hint sent with every scan page.
const DefaultCount = 100

// Iterator is the incremental scan API of *redis.ScanIterator.
type Iterator interface {
	Next(ctx context.Context) bool
	Val() string
	Err() error
}

// Cursor yields the values of a scan iterator. The context bounds every
// round trip the cursor makes.
type Cursor struct {
	ctx  context.Context
	it   Iterator
	cur  string
	err  error
	done bool
}

// NewCursor creates a cursor over it.
func NewCursor(ctx context.Context, it Iterator) *Cursor {
	return &Cursor{ctx: ctx, it: it}
}

func (c *Cursor) Next() bool {
	if c.done {
		return false
	}
	if c.it.Next(c.ctx) {
		c.cur = c.it.Val()
		return true
	}
	if err := c.it.Err(); err != nil {
		c.err = fmt.Errorf("redis: scan: %w", err)
	}
	c.cur, c.it, c.done = "", nil, true
	return false
}

func (c *Cursor) Value() string { return c.cur }
func (c *Cursor) Done() bool    { return c.done }

// Err returns the error that ended the scan, if any.
func (c *Cursor) Err() error { return c.err }

// Stream wraps the cursor in a Stream.
func (c *Cursor) Stream() *core.Stream[string] {
	return core.From[string](c)
}

// Pairs is a Stream of the cursor's values taken two at a time, as HSCAN
// and ZSCAN return them. A dangling odd value is dropped.
func (c *Cursor) Pairs() *core.Stream[core.Pair[string, string]] {
	batches := aggregate.Batch(c.Stream(), 2).Filter(func(b []string) bool { return len(b) == 2 })
	return core.Map(batches, func(b []string) core.Pair[string, string] {
		return core.PairOf(b[0], b[1])
	})
}

// Scan creates a cursor over the keys matching pattern. An empty pattern
// matches every key.
func Scan(ctx context.Context, rdb redis.Cmdable, pattern string) *Cursor {
	return NewCursor(ctx, rdb.Scan(ctx, 0, pattern, DefaultCount).Iterator())
}

// ScanType is Scan restricted to keys of one type, such as "hash".
func ScanType(ctx context.Context, rdb redis.Cmdable, pattern, keyType string) *Cursor {
	return NewCursor(ctx, rdb.ScanType(ctx, 0, pattern, DefaultCount, keyType).Iterator())
}

// SScan creates a cursor over the members of the set at key.
func SScan(ctx context.Context, rdb redis.Cmdable, key, pattern string) *Cursor {
	return NewCursor(ctx, rdb.SScan(ctx, key, 0, pattern, DefaultCount).Iterator())
}

// HScan creates a Stream of the field/value pairs of the hash at key. Use
// HScanCursor to observe errors.
func HScan(ctx context.Context, rdb redis.Cmdable, key, pattern string) *core.Stream[core.Pair[string, string]] {
	return HScanCursor(ctx, rdb, key, pattern).Pairs()
}

// HScanCursor creates a cursor over the hash at key yielding fields and
// values alternately.
func HScanCursor(ctx context.Context, rdb redis.Cmdable, key, pattern string) *Cursor {
	return NewCursor(ctx, rdb.HScan(ctx, key, 0, pattern, DefaultCount).Iterator())
}

// ZScanCursor creates a cursor over the sorted set at key yielding members
// and scores alternately.
func ZScanCursor(ctx context.Context, rdb redis.Cmdable, key, pattern string) *Cursor {
	return NewCursor(ctx, rdb.ZScan(ctx, key, 0, pattern, DefaultCount).Iterator())
}

// ListCursor pages through a list with LRANGE.
type ListCursor struct {
	ctx      context.Context
	rdb      redis.Cmdable
	key      string
	pageSize int64
	page     []string
	offset   int64
	cur      string
	err      error
	done     bool
}

// List creates a cursor over the list at key, fetching pageSize elements per
// round trip. Elements pushed to the tail during the walk are seen.
func List(ctx context.Context, rdb redis.Cmdable, key string, pageSize int64) *ListCursor {
	if pageSize <= 0 {
		panic(&core.MisuseError{Op: "redis list", Err: core.ErrInvalidSize})
	}
	return &ListCursor{ctx: ctx, rdb: rdb, key: key, pageSize: pageSize}
}

func (c *ListCursor) Next() bool {
	if c.done {
		return false
	}
	if len(c.page) == 0 {
		page, err := c.rdb.LRange(c.ctx, c.key, c.offset, c.offset+c.pageSize-1).Result()
		if err != nil || len(page) == 0 {
			if err != nil {
				c.err = fmt.Errorf("redis: lrange %s: %w", c.key, err)
			}
			c.cur, c.page, c.done = "", nil, true
			return false
		}
		c.page = page
		c.offset += int64(len(page))
	}
	c.cur, c.page = c.page[0], c.page[1:]
	return true
}

func (c *ListCursor) Value() string { return c.cur }
func (c *ListCursor) Done() bool    { return c.done }

// Err returns the error that ended the walk, if any.
func (c *ListCursor) Err() error { return c.err }

// Stream wraps the cursor in a Stream.
func (c *ListCursor) Stream() *core.Stream[string] {
	return core.From[string](c)
}

// Push drains s onto the tail of the list at key, batchSize elements per
// RPUSH, and returns the number of elements pushed.
func Push(ctx context.Context, rdb redis.Cmdable, key string, s *core.Stream[string], batchSize int) (int, error) {
	n := 0
	for batch := range aggregate.Batch(s, batchSize).All() {
		values := make([]any, len(batch))
		for i, v := range batch {
			values[i] = v
		}
		if err := rdb.RPush(ctx, key, values...).Err(); err != nil {
			return n, fmt.Errorf("redis: rpush %s: %w", key, err)
		}
		n += len(batch)
	}
	return n, nil
}

// HSet drains s of field/value pairs into the hash at key with one
// pipelined round trip per batchSize pairs.
func HSet(ctx context.Context, rdb redis.Cmdable, key string, s *core.Stream[core.Pair[string, string]], batchSize int) (int, error) {
	n := 0
	for batch := range aggregate.Batch(s, batchSize).All() {
		_, err := rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, p := range batch {
				pipe.HSet(ctx, key, p.First, p.Second)
			}
			return nil
		})
		if err != nil {
			return n, fmt.Errorf("redis: hset %s: %w", key, err)
		}
		n += len(batch)
	}
	return n, nil
}
