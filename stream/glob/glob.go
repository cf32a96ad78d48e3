// Package glob provides stream adapters for file path matching and directory
// traversal. Walks are lazy: a directory is listed only when the walk first
// enters it, so a walk that is abandoned early never reads the rest of the
// tree.
package glob

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/lguimbarda/min-stream/stream/core"
)

// Entry is one file or directory found by a walk.
type Entry struct {
	// Path is slash-separated and relative to the file system the walk runs
	// over, the same form fs.FS expects.
	Path  string
	Name  string
	Depth int // 1 for the children of the walk root
	IsDir bool

	d fs.DirEntry
}

// Info returns the file information of the entry.
func (e Entry) Info() (fs.FileInfo, error) {
	return e.d.Info()
}

// Option configures a Walker.
type Option func(*config)

type config struct {
	maxDepth int
	hidden   bool
	dirs     bool
	files    bool
}

// WithMaxDepth limits how deep the walk descends. Depth 1 lists only the
// children of the root. A value <= 0 means no limit.
func WithMaxDepth(n int) Option {
	return func(c *config) {
		c.maxDepth = n
	}
}

// WithHidden includes entries whose name starts with a dot. Hidden
// directories are not descended into unless this is set.
func WithHidden(include bool) Option {
	return func(c *config) {
		c.hidden = include
	}
}

// WithDirs controls whether directories are emitted. They are by default.
func WithDirs(include bool) Option {
	return func(c *config) {
		c.dirs = include
	}
}

// WithFiles controls whether non-directories are emitted. They are by default.
func WithFiles(include bool) Option {
	return func(c *config) {
		c.files = include
	}
}

// frame is one directory on the walk stack. Its listing is read on first
// use.
type frame struct {
	dir     string
	depth   int
	entries []fs.DirEntry
	loaded  bool
	pos     int
}

// Walker is a lazy pre-order directory walk. Entries of a directory are
// visited in lexical order. A directory that cannot be read is skipped and
// its error is reported by Err; the walk goes on.
type Walker struct {
	fsys  fs.FS
	cfg   config
	stack []*frame
	cur   Entry
	errs  []error
	done  bool
}

// Walk creates a Walker over the tree rooted at root in fsys. The root
// itself is not emitted.
func Walk(fsys fs.FS, root string, opts ...Option) *Walker {
	cfg := config{dirs: true, files: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Walker{
		fsys:  fsys,
		cfg:   cfg,
		stack: []*frame{{dir: root, depth: 1}},
	}
}

// WalkDir creates a Walker over a directory of the operating system.
func WalkDir(dir string, opts ...Option) *Walker {
	return Walk(os.DirFS(dir), ".", opts...)
}

func (w *Walker) Next() bool {
	if w.done {
		return false
	}
	for len(w.stack) > 0 {
		top := w.stack[len(w.stack)-1]
		if !top.loaded {
			top.loaded = true
			entries, err := fs.ReadDir(w.fsys, top.dir)
			if err != nil {
				w.errs = append(w.errs, err)
			}
			top.entries = entries
		}
		if top.pos >= len(top.entries) {
			w.stack[len(w.stack)-1] = nil
			w.stack = w.stack[:len(w.stack)-1]
			continue
		}

		d := top.entries[top.pos]
		top.pos++
		name := d.Name()
		if !w.cfg.hidden && strings.HasPrefix(name, ".") {
			continue
		}

		e := Entry{Path: path.Join(top.dir, name), Name: name, Depth: top.depth, IsDir: d.IsDir(), d: d}
		if e.IsDir && (w.cfg.maxDepth <= 0 || top.depth < w.cfg.maxDepth) {
			w.stack = append(w.stack, &frame{dir: e.Path, depth: top.depth + 1})
		}
		if (e.IsDir && w.cfg.dirs) || (!e.IsDir && w.cfg.files) {
			w.cur = e
			return true
		}
	}
	w.cur, w.done = Entry{}, true
	return false
}

func (w *Walker) Value() Entry { return w.cur }
func (w *Walker) Done() bool   { return w.done }

// Err returns the errors of the directories that could not be read.
func (w *Walker) Err() error { return errors.Join(w.errs...) }

// Stream wraps the walker in a Stream.
func (w *Walker) Stream() *core.Stream[Entry] {
	return core.From[Entry](w)
}

// Paths is a Stream of the paths of the walk.
func (w *Walker) Paths() *core.Stream[string] {
	return core.Map(w.Stream(), func(e Entry) string { return e.Path })
}

// ListDir creates a Stream of the immediate children of dir in fsys.
func ListDir(fsys fs.FS, dir string) *core.Stream[Entry] {
	return Walk(fsys, dir, WithMaxDepth(1), WithHidden(true)).Stream()
}

// Match creates a Stream of the names in fsys matching pattern, using
// fs.Glob syntax. The only possible error is path.ErrBadPattern.
func Match(fsys fs.FS, pattern string) (*core.Stream[string], error) {
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	return core.FromSlice(matches), nil
}

// MatchGlob returns a predicate matching entries whose name matches
// pattern, for use with Stream.Filter.
func MatchGlob(pattern string) (func(Entry) bool, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, err
	}
	return func(e Entry) bool {
		ok, _ := path.Match(pattern, e.Name)
		return ok
	}, nil
}

// MatchName returns a predicate matching entries whose name matches re.
func MatchName(re *regexp.Regexp) func(Entry) bool {
	return func(e Entry) bool { return re.MatchString(e.Name) }
}

// Submatches returns the submatches of re in the entry's name, or nil.
func Submatches(re *regexp.Regexp, e Entry) []string {
	return re.FindStringSubmatch(e.Name)
}
