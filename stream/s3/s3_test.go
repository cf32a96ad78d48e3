package s3

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// fakeList serves keys in pages of pageSize, using the page index as the
// continuation token.
type fakeList struct {
	keys     []string
	pageSize int
	calls    int
	err      error
}

func (f *fakeList) ListObjectsV2(ctx context.Context, in *awss3.ListObjectsV2Input, _ ...func(*awss3.Options)) (*awss3.ListObjectsV2Output, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var matching []string
	for _, k := range f.keys {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			matching = append(matching, k)
		}
	}
	start := 0
	if in.ContinuationToken != nil {
		start, _ = strconv.Atoi(*in.ContinuationToken)
	}
	end := min(start+f.pageSize, len(matching))
	out := &awss3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(matching))}
	for _, k := range matching[start:end] {
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(k),
			Size: aws.Int64(int64(len(k))),
			ETag: aws.String(`"` + k + `"`),
		})
	}
	if end < len(matching) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

type fakeStore struct {
	objects map[string]string
	gets    int
	bodies  []*trackedBody
	puts    map[string]string
}

func (f *fakeStore) GetObject(ctx context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	f.gets++
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	body := &trackedBody{Reader: strings.NewReader(data)}
	f.bodies = append(f.bodies, body)
	return &awss3.GetObjectOutput{Body: body}, nil
}

func (f *fakeStore) PutObject(ctx context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	if f.puts == nil {
		f.puts = map[string]string{}
	}
	f.puts[aws.ToString(in.Key)] = string(data)
	return &awss3.PutObjectOutput{}, nil
}

var bucketKeys = []string{
	"transcripts/001.txt",
	"transcripts/002.txt",
	"transcripts/003.txt",
	"transcripts/004.txt",
	"transcripts/005.txt",
	"notes/todo.txt",
}

func TestList(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		take      int
		want      []string
		wantCalls int
	}{
		{"all pages", "transcripts/", 10, bucketKeys[:5], 3},
		{"first page only", "transcripts/", 2, bucketKeys[:2], 1},
		{"second page", "transcripts/", 3, bucketKeys[:3], 2},
		{"no match", "missing/", 10, nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeList{keys: bucketKeys, pageSize: 2}
			c := List(context.Background(), client, "dialog", tt.prefix)
			if client.calls != 0 {
				t.Fatal("listing requested before the first pull")
			}
			got := c.Keys().Take(tt.take).ToSlice()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if client.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", client.calls, tt.wantCalls)
			}
			if err := c.Err(); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestListObjectFields(t *testing.T) {
	client := &fakeList{keys: []string{"a.txt"}, pageSize: 10}
	objs := List(context.Background(), client, "dialog", "").Stream().ToSlice()
	want := []Object{{Key: "a.txt", Size: 5, ETag: `"a.txt"`}}
	if !reflect.DeepEqual(objs, want) {
		t.Errorf("got %+v, want %+v", objs, want)
	}
}

func TestListError(t *testing.T) {
	boom := errors.New("access denied")
	c := List(context.Background(), &fakeList{err: boom}, "dialog", "")
	if n := c.Stream().Count(); n != 0 {
		t.Errorf("count = %d", n)
	}
	if !errors.Is(c.Err(), boom) {
		t.Errorf("expected the list error, got %v", c.Err())
	}
}

func TestGetLines(t *testing.T) {
	store := &fakeStore{objects: map[string]string{"moby.txt": "Call me Ishmael.\nSome years ago.\nNever mind how long.\n"}}

	body := GetLines(context.Background(), store, "dialog", "moby.txt")
	if store.gets != 0 {
		t.Fatal("object fetched before the first pull")
	}
	got := body.Stream().Take(2).ToSlice()
	if want := []string{"Call me Ishmael.", "Some years ago."}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if len(store.bodies) != 1 || !store.bodies[0].closed {
		t.Error("object body not closed after Take was satisfied")
	}
}

func TestGetMissing(t *testing.T) {
	store := &fakeStore{objects: map[string]string{}}
	body := GetLines(context.Background(), store, "dialog", "missing.txt")
	if body.Next() {
		t.Fatal("expected no lines")
	}
	var nsk *types.NoSuchKey
	if !errors.As(body.Err(), &nsk) {
		t.Errorf("expected NoSuchKey, got %v", body.Err())
	}
}

func TestPutLines(t *testing.T) {
	store := &fakeStore{objects: map[string]string{"in.txt": "b\na\nc\n"}}

	lines := GetLines(context.Background(), store, "dialog", "in.txt").Stream().
		Filter(func(s string) bool { return s != "a" })
	n, err := PutLines(context.Background(), store, "dialog", "out.txt", lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d, want 2", n)
	}
	if got := store.puts["out.txt"]; got != "b\nc\n" {
		t.Errorf("out.txt = %q", got)
	}
}
