// Package file implements a local filesystem-backed object store.
//
// The input trees for song and log data nest their JSON files under
// arbitrary subdirectories (log data by year/month, song data by id
// prefixes), so the store walks the whole tree instead of globbing a fixed
// depth. Input layout affects read order only, never correctness.
package file

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"lakeetl/internal/datasource"
)

// Store lists *.json files under a local root directory.
type Store struct {
	root string
}

// NewStore returns a Store bound to the provided directory root.
func NewStore(root string) *Store { return &Store{root: root} }

// List walks the root recursively and returns one Object per regular file
// with a .json extension, sorted by path for stable iteration order.
//
// A missing root yields an empty list rather than an error: an absent input
// location is the MissingInput case and degrades to empty relations.
func (s *Store) List(ctx context.Context) ([]datasource.Object, error) {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.root, err)
	}
	sort.Strings(paths)

	out := make([]datasource.Object, len(paths))
	for i, p := range paths {
		out[i] = &localObject{path: p}
	}
	return out, nil
}

// localObject is a single file on disk.
type localObject struct{ path string }

func (o *localObject) Name() string { return o.path }

// Open opens the file for reading.
//
// Behavior:
//   - If the context is already canceled or its deadline exceeded at the time
//     of the call, Open returns the context error immediately without touching
//     the filesystem.
//   - Any filesystem error is wrapped with the path for context, while still
//     permitting errors.Is/As checks by callers (e.g., errors.Is(err, os.ErrNotExist)).
func (o *localObject) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(o.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.path, err)
	}
	return f, nil
}
