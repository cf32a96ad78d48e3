// Package s3 provides stream adapters over Amazon S3 (or S3-compatible)
// buckets. Listings fetch one page per exhausted page, and object bodies are
// opened on the first pull and closed when the stream ends.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lguimbarda/min-stream/stream/core"
	streamio "github.com/lguimbarda/min-stream/stream/io"
)

// Config holds the settings NewClient needs.
type Config struct {
	Region         string
	Endpoint       string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// NewClient creates an S3 client. Static credentials are used when both keys
// are set; otherwise the default AWS credential chain applies. A custom
// endpoint implies path-style addressing.
func NewClient(ctx context.Context, cfg Config) (*awss3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}
	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
	}), nil
}

// GetObjectAPI is the part of *awss3.Client an ObjectBody uses.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
}

// PutObjectAPI is the part of *awss3.Client PutLines uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Object describes a listed object.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// ObjectCursor yields the objects under a prefix, one listing page at a
// time.
type ObjectCursor struct {
	ctx   context.Context
	pages *awss3.ListObjectsV2Paginator

	page []Object
	pos  int
	cur  Object
	err  error
	done bool
}

// List creates a cursor over the objects of bucket whose keys start with
// prefix. Nothing is requested until the first pull.
func List(ctx context.Context, client awss3.ListObjectsV2APIClient, bucket, prefix string) *ObjectCursor {
	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	return &ObjectCursor{ctx: ctx, pages: awss3.NewListObjectsV2Paginator(client, input)}
}

func (c *ObjectCursor) Next() bool {
	if c.done {
		return false
	}
	for c.pos >= len(c.page) {
		if !c.pages.HasMorePages() {
			c.finish()
			return false
		}
		out, err := c.pages.NextPage(c.ctx)
		if err != nil {
			c.err = fmt.Errorf("s3: list: %w", err)
			c.finish()
			return false
		}
		c.page, c.pos = c.page[:0], 0
		for _, obj := range out.Contents {
			c.page = append(c.page, Object{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
				ETag:         aws.ToString(obj.ETag),
			})
		}
	}
	c.cur = c.page[c.pos]
	c.pos++
	return true
}

func (c *ObjectCursor) Value() Object { return c.cur }
func (c *ObjectCursor) Done() bool    { return c.done }

// Err returns the listing error that ended the cursor, if any.
func (c *ObjectCursor) Err() error { return c.err }

func (c *ObjectCursor) finish() {
	c.page, c.cur, c.done = nil, Object{}, true
}

// Stream wraps the cursor in a Stream.
func (c *ObjectCursor) Stream() *core.Stream[Object] {
	return core.From[Object](c)
}

// Keys is a Stream of the listed keys.
func (c *ObjectCursor) Keys() *core.Stream[string] {
	return core.Map(c.Stream(), func(o Object) string { return o.Key })
}

// ObjectBody yields the elements of an object body as split by a sequence
// factory. The object is fetched on the first call to Next.
type ObjectBody[T any] struct {
	ctx    context.Context
	client GetObjectAPI
	input  *awss3.GetObjectInput
	split  func(io.Reader) core.Sequence[T]

	body io.ReadCloser
	seq  core.Sequence[T]
	cur  T
	err  error
	done bool
}

// Get creates a lazy cursor over the object at bucket/key.
func Get[T any](ctx context.Context, client GetObjectAPI, bucket, key string, split func(io.Reader) core.Sequence[T]) *ObjectBody[T] {
	return &ObjectBody[T]{
		ctx:    ctx,
		client: client,
		input:  &awss3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)},
		split:  split,
	}
}

// GetLines creates a lazy cursor over the lines of the object at bucket/key.
func GetLines(ctx context.Context, client GetObjectAPI, bucket, key string, opts ...streamio.Option) *ObjectBody[string] {
	return Get(ctx, client, bucket, key, func(r io.Reader) core.Sequence[string] {
		return streamio.NewLineCursor(r, opts...)
	})
}

func (b *ObjectBody[T]) open() error {
	out, err := b.client.GetObject(b.ctx, b.input)
	if err != nil {
		return fmt.Errorf("s3: get %s/%s: %w", aws.ToString(b.input.Bucket), aws.ToString(b.input.Key), err)
	}
	b.body = out.Body
	b.seq = b.split(out.Body)
	return nil
}

func (b *ObjectBody[T]) Next() bool {
	if b.done {
		return false
	}
	if b.body == nil {
		if err := b.open(); err != nil {
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

func (b *ObjectBody[T]) Value() T   { return b.cur }
func (b *ObjectBody[T]) Done() bool { return b.done }

// Err returns the fetch or read error that ended the body.
func (b *ObjectBody[T]) Err() error { return b.err }

// Close releases the object body.
func (b *ObjectBody[T]) Close() error {
	b.finish()
	return b.err
}

func (b *ObjectBody[T]) finish() {
	if b.done {
		return
	}
	var zero T
	b.cur, b.done = zero, true
	if b.body != nil {
		_ = b.body.Close()
	}
}

// Stream wraps the cursor in a Stream.
func (b *ObjectBody[T]) Stream() *core.Stream[T] {
	return core.From[T](b)
}

// PutLines drains s into a newline-terminated object at bucket/key and
// returns the number of lines written.
func PutLines(ctx context.Context, client PutObjectAPI, bucket, key string, s *core.Stream[string]) (int, error) {
	var buf bytes.Buffer
	n := 0
	for line := range s.All() {
		buf.WriteString(line)
		buf.WriteByte('\n')
		n++
	}
	_, err := client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(int64(buf.Len())),
	})
	if err != nil {
		return 0, fmt.Errorf("s3: put %s/%s: %w", bucket, key, err)
	}
	return n, nil
}
