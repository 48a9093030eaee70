// Package scratch provides scoped temporary directories.
//
// A Dir owns exactly one path on disk from New until Close. Callers defer
// Close right after a successful New so the tree is removed on every exit
// path.
package scratch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// Dir is a directory that is removed recursively by Close.
type Dir struct {
	path string
}

// New creates a directory at path. If path is taken, underscores are
// appended until an unused name is found.
func New(path string) (*Dir, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty scratch path", execreduce.ErrIO)
	}

	candidate := filepath.Clean(path)
	for {
		_, err := os.Lstat(candidate)
		if err == nil {
			candidate += "_"
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: stat %s: %w", execreduce.ErrIO, candidate, err)
		}

		// Mkdir is atomic, so losing a race to another creator just moves us
		// on to the next name.
		err = os.Mkdir(candidate, 0o755)
		if errors.Is(err, fs.ErrExist) {
			candidate += "_"
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: create scratch dir %s: %w", execreduce.ErrIO, candidate, err)
		}

		return &Dir{path: candidate}, nil
	}
}

// Sub creates a scoped directory named name inside d.
func (d *Dir) Sub(name string) (*Dir, error) {
	return New(filepath.Join(d.path, name))
}

func (d *Dir) Path() string {
	return d.path
}

// Join returns a path inside d. Nothing is created.
func (d *Dir) Join(elem ...string) string {
	return filepath.Join(append([]string{d.path}, elem...)...)
}

// Close removes the directory and everything below it. It is safe to call
// more than once.
func (d *Dir) Close() error {
	if d == nil || d.path == "" {
		return nil
	}

	path := d.path
	d.path = ""
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("%w: remove scratch dir %s: %w", execreduce.ErrIO, path, err)
	}

	return nil
}
