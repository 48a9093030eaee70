// Package worker runs an external executable over every chunk of a phase.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/schollz/progressbar/v3"

	"pkg.jsn.cam/execreduce/internal/chunk"
	"pkg.jsn.cam/execreduce/internal/ledger"
	"pkg.jsn.cam/execreduce/internal/pool"
	"pkg.jsn.cam/execreduce/internal/process"
	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// Options configures one RunForAllChunks call.
type Options struct {
	Phase string // "map" or "reduce", used for logging and the ledger
	RunID string
	// Tag prefixes log lines. Defaults to LogTag(Phase, RunID).
	Tag        string
	Executable string
	Args       []string // extra worker arguments, none by default
	InputDir   string
	OutputDir  string
	Count      int
	// Concurrency is the number of worker slots; zero means one per CPU.
	Concurrency int
	// Ledger receives one result per chunk. A memory ledger is used when nil.
	Ledger ledger.Ledger
	// Progress receives a progress bar when non-nil.
	Progress io.Writer
}

// Result holds the per-chunk outcomes of a run, ordered by chunk index.
type Result struct {
	Chunks  []ledger.ChunkResult
	Summary ledger.Summary
}

// RunForAllChunks runs the executable once per chunk, with stdin wired to
// InputDir/i and stdout to OutputDir/i, on at most Concurrency slots.
//
// Every chunk is attempted even when others fail. Once all of them are done
// a *execreduce.WorkerFailureError is returned if any chunk did not exit 0.
// Output chunks already written are left in place.
//
// Cancelling ctx kills running workers and skips the ones not yet launched;
// the call still waits for every slot to drain before returning ctx.Err().
func RunForAllChunks(ctx context.Context, opts Options) (*Result, error) {
	led := opts.Ledger
	if led == nil {
		led = ledger.NewMemory()
		defer led.Close()
	}

	tag := opts.Tag
	if tag == "" {
		tag = LogTag(opts.Phase, opts.RunID)
	}
	p := pool.New(opts.Concurrency)
	bar := newProgressBar(opts)

	glog.Infof("%s Running %s on %d chunks (%d slots)", tag, opts.Executable, opts.Count, p.Slots())

	var (
		ledgerMu  sync.Mutex
		ledgerErr error
	)

	for i := range opts.Count {
		p.Submit(func() bool {
			r := runChunk(ctx, opts, i)

			if r.OK() {
				glog.V(1).Infof("%s Chunk %d done in %v", tag, i, r.Duration)
			} else {
				glog.Warningf("%s Chunk %d failed: exit=%d %s", tag, i, r.ExitCode, r.Error)
			}

			if err := led.Record(r); err != nil {
				ledgerMu.Lock()
				if ledgerErr == nil {
					ledgerErr = err
				}
				ledgerMu.Unlock()
			}

			bar.Add(1)
			return r.OK()
		})
	}

	ok := p.Wait()
	bar.Finish()

	if ledgerErr != nil {
		return nil, fmt.Errorf("record chunk result: %w", ledgerErr)
	}

	chunks, err := led.Results(opts.Phase)
	if err != nil {
		return nil, fmt.Errorf("read chunk results: %w", err)
	}
	res := &Result{Chunks: chunks, Summary: ledger.Summarize(chunks)}

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("interrupted after %d of %d chunks: %w",
			res.Summary.Total-len(res.Summary.Failed), opts.Count, err)
	}

	if !ok {
		return res, &execreduce.WorkerFailureError{Failed: res.Summary.Failed, Total: opts.Count}
	}

	glog.Infof("%s All %d chunks succeeded", tag, opts.Count)
	return res, nil
}

// LogTag returns the log prefix of a phase run, "[MAP:1b4e28ba]", using the
// first 8 characters of the run ID.
func LogTag(phase, runID string) string {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return fmt.Sprintf("[%s:%s]", strings.ToUpper(phase), runID)
}

// runChunk launches one worker and waits for it. It never returns an error:
// every failure is folded into the result.
func runChunk(ctx context.Context, opts Options, i int) ledger.ChunkResult {
	in := chunk.Path(opts.InputDir, i)
	out := chunk.Path(opts.OutputDir, i)

	r := ledger.ChunkResult{
		Phase:      opts.Phase,
		RunID:      opts.RunID,
		Index:      i,
		ExitCode:   -1,
		StartedAt:  time.Now(),
		InputBytes: fileSize(in),
	}
	defer func() {
		r.Duration = time.Since(r.StartedAt)
		r.OutputBytes = fileSize(out)
	}()

	if err := ctx.Err(); err != nil {
		r.Error = err.Error()
		return r
	}

	h := process.New(opts.Executable)
	defer h.Close()

	h.SetArguments(opts.Args)
	h.SetInput(in)
	h.SetOutput(out)

	if err := h.Run(); err != nil {
		r.Error = err.Error()
		return r
	}

	type exit struct {
		code int
		err  error
	}
	done := make(chan exit, 1)
	go func() {
		code, err := h.Wait()
		done <- exit{code, err}
	}()

	var e exit
	select {
	case e = <-done:
	case <-ctx.Done():
		h.Close()
		e = <-done
		if e.err == nil {
			e.err = ctx.Err()
		}
	}

	r.ExitCode = e.code
	if e.err != nil {
		r.Error = e.err.Error()
	}
	return r
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			glog.V(2).Infof("stat %s: %v", path, err)
		}
		return 0
	}
	return info.Size()
}

func newProgressBar(opts Options) *progressbar.ProgressBar {
	if opts.Progress == nil {
		return progressbar.DefaultSilent(int64(opts.Count))
	}

	return progressbar.NewOptions(opts.Count,
		progressbar.OptionSetWriter(opts.Progress),
		progressbar.OptionSetDescription(opts.Phase),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(opts.Progress)
		}),
	)
}
