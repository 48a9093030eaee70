// Package chunk splits record files into numbered chunk files and merges
// them back together.
package chunk

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// Path returns the path of chunk i inside dir.
func Path(dir string, i int) string {
	return filepath.Join(dir, strconv.Itoa(i))
}

func openInput(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", execreduce.ErrIO, path, err)
	}
	return f, nil
}

func createOutput(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", execreduce.ErrIO, path, err)
	}
	return f, nil
}

// writeChunk writes kvs to dir/i, replacing any previous contents.
func writeChunk(dir string, i int, kvs []execreduce.KeyValue) error {
	return WriteFile(Path(dir, i), kvs)
}

// WriteFile writes kvs to path as TSV, replacing any previous contents.
func WriteFile(path string, kvs []execreduce.KeyValue) error {
	f, err := createOutput(path)
	if err != nil {
		return err
	}

	w := execreduce.NewWriter(f)
	for _, kv := range kvs {
		if err := w.Write(kv); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", execreduce.ErrIO, path, err)
	}
	return nil
}

// ReadFile loads every record of path into memory.
func ReadFile(path string) ([]execreduce.KeyValue, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	kvs, err := execreduce.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return kvs, nil
}
