package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultGlob matches every JSON file below the root.
const DefaultGlob = "**/*.json"

// DirSource reads documents from files under a directory. Names are
// slash-separated paths relative to the directory.
type DirSource struct {
	root    string
	fsys    fs.FS
	pattern string
}

// NewDirSource returns a source over dir. An empty pattern means DefaultGlob.
func NewDirSource(dir, pattern string) (*DirSource, error) {
	if pattern == "" {
		pattern = DefaultGlob
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("taxonomy directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("taxonomy directory %s is not a directory", dir)
	}
	return &DirSource{root: dir, fsys: os.DirFS(dir), pattern: pattern}, nil
}

// Root returns the directory the source reads from.
func (s *DirSource) Root() string { return s.root }

// Pattern returns the glob documents must match.
func (s *DirSource) Pattern() string { return s.pattern }

// Match reports whether a relative, slash-separated name is a document.
func (s *DirSource) Match(name string) bool {
	ok, err := doublestar.Match(s.pattern, name)
	return err == nil && ok
}

// List returns the names of all matching files.
func (s *DirSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	names, err := doublestar.Glob(s.fsys, s.pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.root, err)
	}
	sort.Strings(names)
	return names, nil
}

// Fetch reads one document.
func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !fs.ValidPath(name) || !s.Match(name) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	data, err := fs.ReadFile(s.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
