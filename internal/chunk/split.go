package chunk

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// SplitBySize reads records from input and writes them to outDir as chunks
// 0..n-1. A chunk is flushed as soon as the accumulated size of its records
// reaches sizeLimit, so every chunk but the last is at least sizeLimit
// bytes. A record is never split across chunks. Returns the number of chunks.
func SplitBySize(input, outDir string, sizeLimit int64) (int, error) {
	if sizeLimit <= 0 {
		return 0, fmt.Errorf("invalid chunk size limit %d", sizeLimit)
	}

	f, err := openInput(input)
	if err != nil {
		return 0, fmt.Errorf("split %s by size: %w", input, err)
	}
	defer f.Close()

	r := execreduce.NewReader(f)

	var (
		pending []execreduce.KeyValue
		size    int64
		count   int
	)

	for {
		kv, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("split %s by size: %w", input, err)
		}

		size += kv.Size()
		pending = append(pending, kv)

		if size >= sizeLimit {
			if err := writeChunk(outDir, count, pending); err != nil {
				return count, err
			}
			count++
			pending = pending[:0]
			size = 0
		}
	}

	if len(pending) > 0 {
		if err := writeChunk(outDir, count, pending); err != nil {
			return count, err
		}
		count++
	}

	glog.V(1).Infof("[SPLIT] %s -> %d chunks (limit %d bytes)", input, count, sizeLimit)
	return count, nil
}

// SplitByKey reads key-sorted records from input and starts a new chunk in
// outDir whenever the key changes. Every chunk therefore holds exactly one
// key. Returns the number of chunks.
func SplitByKey(input, outDir string) (int, error) {
	f, err := openInput(input)
	if err != nil {
		return 0, fmt.Errorf("split %s by key: %w", input, err)
	}
	defer f.Close()

	r := execreduce.NewReader(f)

	var (
		out     *os.File
		w       *execreduce.Writer
		prevKey string
		count   int
	)

	closeCurrent := func() error {
		if out == nil {
			return nil
		}
		ferr := w.Flush()
		cerr := out.Close()
		out = nil
		if ferr != nil {
			return ferr
		}
		if cerr != nil {
			return fmt.Errorf("%w: close chunk: %w", execreduce.ErrIO, cerr)
		}
		return nil
	}
	defer closeCurrent()

	for {
		kv, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return count, fmt.Errorf("split %s by key: %w", input, err)
		}

		if out == nil || kv.Key != prevKey {
			if err := closeCurrent(); err != nil {
				return count, err
			}
			out, err = createOutput(Path(outDir, count))
			if err != nil {
				return count, err
			}
			w = execreduce.NewWriter(out)
			prevKey = kv.Key
			count++
		}

		if err := w.Write(kv); err != nil {
			return count, err
		}
	}

	if err := closeCurrent(); err != nil {
		return count, err
	}

	glog.V(1).Infof("[SPLIT] %s -> %d key chunks", input, count)
	return count, nil
}
