// Package extsort sorts record files that do not fit in memory.
package extsort

import (
	"container/heap"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/golang/glog"

	"pkg.jsn.cam/execreduce/internal/chunk"
	"pkg.jsn.cam/execreduce/internal/scratch"
	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// ExternalSortByKey sorts the records of input by key (byte-wise ascending)
// and writes them to output. At most chunkSizeLimit bytes of records are
// held in memory at once; sorted runs are spilled to a scoped directory
// under workDir, which is removed before returning.
//
// The sort is stable: records with equal keys keep their input order.
func ExternalSortByKey(input, output, workDir string, chunkSizeLimit int64) error {
	runs, err := scratch.New(filepath.Join(workDir, "sorted_chunks"))
	if err != nil {
		return fmt.Errorf("external sort: %w", err)
	}
	defer runs.Close()

	count, err := chunk.SplitBySize(input, runs.Path(), chunkSizeLimit)
	if err != nil {
		return fmt.Errorf("external sort: %w", err)
	}

	for i := range count {
		if err := sortRun(chunk.Path(runs.Path(), i)); err != nil {
			return fmt.Errorf("external sort: run %d: %w", i, err)
		}
	}

	glog.V(1).Infof("[SORT] %s: merging %d sorted runs", input, count)

	if err := mergeRuns(runs.Path(), count, output, mergeBufferSize(chunkSizeLimit, count)); err != nil {
		return fmt.Errorf("external sort: %w", err)
	}

	return nil
}

func compareKeys(a, b execreduce.KeyValue) int {
	return strings.Compare(a.Key, b.Key)
}

// sortRun rewrites one chunk file with its records sorted by key.
func sortRun(path string) error {
	kvs, err := chunk.ReadFile(path)
	if err != nil {
		return err
	}

	slices.SortStableFunc(kvs, compareKeys)

	return chunk.WriteFile(path, kvs)
}

// cursor is the head record of one sorted run.
type cursor struct {
	kv     execreduce.KeyValue
	origin int
}

// runHeap is a min-heap of run heads ordered by key, then by run index.
type runHeap []cursor

func (h runHeap) Len() int { return len(h) }
func (h runHeap) Less(i, j int) bool {
	if c := compareKeys(h[i].kv, h[j].kv); c != 0 {
		return c < 0
	}
	return h[i].origin < h[j].origin
}
func (h runHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *runHeap) Push(x any)   { *h = append(*h, x.(cursor)) }
func (h *runHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}

// Bounds of the per-run read buffer during the merge.
const (
	minMergeBuffer = 512
	maxMergeBuffer = execreduce.DefaultBufferSize
)

// mergeBufferSize splits the memory budget of one sort run across the read
// buffers of count runs.
func mergeBufferSize(chunkSizeLimit int64, count int) int {
	if count <= 0 {
		return maxMergeBuffer
	}
	return int(min(max(chunkSizeLimit/int64(count), minMergeBuffer), maxMergeBuffer))
}

// mergeRuns performs a k-way merge of the sorted runs 0..count-1 in dir,
// reading each run through a buffer of bufSize bytes.
func mergeRuns(dir string, count int, output string, bufSize int) error {
	files := make([]*os.File, 0, count)
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	readers := make([]*execreduce.Reader, count)
	h := make(runHeap, 0, count)

	for i := range count {
		path := chunk.Path(dir, i)
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("%w: open run %s: %w", execreduce.ErrIO, path, err)
		}
		files = append(files, f)
		readers[i] = execreduce.NewReaderSize(f, bufSize)

		kv, err := readers[i].Read()
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read run %d: %w", i, err)
		}
		h = append(h, cursor{kv: kv, origin: i})
	}
	heap.Init(&h)

	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", execreduce.ErrIO, output, err)
	}

	w := execreduce.NewWriter(out)
	for h.Len() > 0 {
		c := h[0]
		if err := w.Write(c.kv); err != nil {
			out.Close()
			return err
		}

		next, err := readers[c.origin].Read()
		switch {
		case errors.Is(err, io.EOF):
			heap.Pop(&h)
		case err != nil:
			out.Close()
			return fmt.Errorf("read run %d: %w", c.origin, err)
		default:
			h[0].kv = next
			heap.Fix(&h, 0)
		}
	}

	if err := w.Flush(); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", execreduce.ErrIO, output, err)
	}

	return nil
}
