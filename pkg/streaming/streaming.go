// Package streaming is the worker side of the execreduce process contract:
// read TSV records from stdin, write TSV records to stdout.
//
// A worker binary built on this package can be handed to the driver as its
// executable:
//
//	func main() {
//		if err := streaming.RunReducer(os.Stdin, os.Stdout, myReducer{}); err != nil {
//			fmt.Fprintln(os.Stderr, err)
//			os.Exit(1)
//		}
//	}
package streaming

import (
	"errors"
	"fmt"
	"io"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// collector writes emitted records and remembers the first write error,
// since an Emitter cannot return one.
type collector struct {
	w       *execreduce.Writer
	err     error
	emitted int
}

func (c *collector) emit(kv execreduce.KeyValue) {
	if c.err != nil {
		return
	}
	c.err = c.w.Write(kv)
	c.emitted++
}

// RunMapper calls m.Map for every record of r and writes what it emits to w.
func RunMapper(r io.Reader, w io.Writer, m execreduce.Mapper) error {
	in := execreduce.NewReader(r)
	out := &collector{w: execreduce.NewWriter(w)}

	for {
		kv, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if err := m.Map(kv, out.emit); err != nil {
			return fmt.Errorf("map error: %w", err)
		}
		if out.err != nil {
			return out.err
		}
	}

	return out.w.Flush()
}

// RunReducer groups consecutive records of r sharing a key and calls
// red.Reduce once per group. Input produced by the driver's reduce phase
// holds a single key per chunk; several runs are accepted all the same.
func RunReducer(r io.Reader, w io.Writer, red execreduce.Reducer) error {
	in := execreduce.NewReader(r)
	out := &collector{w: execreduce.NewWriter(w)}

	var (
		key    string
		values []string
		open   bool
	)

	flush := func() error {
		if !open {
			return nil
		}
		if err := red.Reduce(key, values, out.emit); err != nil {
			return fmt.Errorf("reduce error for key %s: %w", key, err)
		}
		values = nil
		return out.err
	}

	for {
		kv, err := in.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		if open && kv.Key != key {
			if err := flush(); err != nil {
				return err
			}
		}
		key = kv.Key
		open = true
		values = append(values, kv.Value)
	}

	if err := flush(); err != nil {
		return err
	}

	return out.w.Flush()
}
