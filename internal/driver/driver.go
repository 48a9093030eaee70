// Package driver runs the map and reduce phases of an execreduce job.
//
// A phase owns a scratch root (mr_tmp, or mr_tmp_, mr_tmp__... when taken)
// below Config.ScratchDir. Every intermediate file and the chunk ledger
// live there, and the root is removed when the phase returns, whatever
// the outcome:
//
//	mr_tmp/
//	  ledger.db       chunk ledger (bbolt backend)
//	  sorted_input    reduce only
//	  sorted_chunks/  reduce only, while sorting
//	  input_chunks/
//	  output_chunks/
package driver

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/google/uuid"

	"pkg.jsn.cam/execreduce/internal/chunk"
	"pkg.jsn.cam/execreduce/internal/extsort"
	"pkg.jsn.cam/execreduce/internal/ledger"
	"pkg.jsn.cam/execreduce/internal/scratch"
	"pkg.jsn.cam/execreduce/internal/worker"
	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// DefaultBlockSize is the input chunk size used when Config.BlockSize is 0.
const DefaultBlockSize = 64 << 20

const (
	PhaseMap    = "map"
	PhaseReduce = "reduce"
)

const (
	scratchName   = "mr_tmp"
	ledgerFile    = "ledger.db"
	sortedFile    = "sorted_input"
	inputChunks   = "input_chunks"
	outputChunks  = "output_chunks"
	defaultParent = "."
)

// Config describes one phase. Zero values select the defaults.
type Config struct {
	Input      string
	Output     string
	Executable string
	Args       []string

	// BlockSize bounds the input chunks of the map phase and the in-memory
	// runs of the reduce phase's sort. Defaults to DefaultBlockSize.
	BlockSize int64
	// Concurrency is the number of workers run at once. Defaults to the
	// number of CPUs.
	Concurrency int
	// ScratchDir is the parent of the scratch root. Defaults to ".".
	ScratchDir string
	// Ledger names the chunk ledger backend: "bbolt" (default) or "memory".
	Ledger string
	// Progress, when set, is where the chunk progress bar is drawn.
	Progress io.Writer
}

// Validate reports configuration errors as execreduce.ErrUsage.
func (c Config) Validate() error {
	switch {
	case c.Input == "":
		return fmt.Errorf("%w: no input file", execreduce.ErrUsage)
	case c.Output == "":
		return fmt.Errorf("%w: no output file", execreduce.ErrUsage)
	case c.Executable == "":
		return fmt.Errorf("%w: no worker executable", execreduce.ErrUsage)
	case c.BlockSize < 0:
		return fmt.Errorf("%w: block size must be positive, got %d", execreduce.ErrUsage, c.BlockSize)
	case c.Concurrency < 0:
		return fmt.Errorf("%w: concurrency must be positive, got %d", execreduce.ErrUsage, c.Concurrency)
	}

	switch c.Ledger {
	case "", ledger.BackendBolt, ledger.BackendMemory:
	default:
		return fmt.Errorf("%w: unknown ledger backend %q", execreduce.ErrUsage, c.Ledger)
	}

	return nil
}

func (c Config) withDefaults() Config {
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.Concurrency == 0 {
		c.Concurrency = runtime.NumCPU()
	}
	if c.ScratchDir == "" {
		c.ScratchDir = defaultParent
	}
	if c.Ledger == "" {
		c.Ledger = ledger.BackendBolt
	}
	return c
}

// Report describes a finished (or failed) phase.
type Report struct {
	Phase       string
	RunID       string
	Chunks      int
	Failed      []int
	InputBytes  int64
	OutputBytes int64
	Duration    time.Duration
}

// DoMap splits the input into chunks of at most BlockSize bytes, runs the
// executable on every chunk and concatenates the outputs in chunk order.
func DoMap(ctx context.Context, cfg Config) (rep *Report, err error) {
	p, err := begin(PhaseMap, cfg)
	if err != nil {
		return nil, err
	}
	defer p.end(&err)

	in, err := p.root.Sub(inputChunks)
	if err != nil {
		return nil, err
	}

	count, err := chunk.SplitBySize(p.cfg.Input, in.Path(), p.cfg.BlockSize)
	if err != nil {
		return nil, err
	}
	glog.Infof("%s Split %s into %d chunks of at most %s", p.tag, p.cfg.Input, count,
		humanize.IBytes(uint64(p.cfg.BlockSize)))

	return p.execute(ctx, in.Path(), count)
}

// DoReduce sorts the input by key, splits it into one chunk per distinct
// key, runs the executable on every chunk and concatenates the outputs in
// key order.
func DoReduce(ctx context.Context, cfg Config) (rep *Report, err error) {
	p, err := begin(PhaseReduce, cfg)
	if err != nil {
		return nil, err
	}
	defer p.end(&err)

	sorted := p.root.Join(sortedFile)
	if err := extsort.ExternalSortByKey(p.cfg.Input, sorted, p.root.Path(), p.cfg.BlockSize); err != nil {
		return nil, err
	}
	glog.Infof("%s Sorted %s", p.tag, p.cfg.Input)

	in, err := p.root.Sub(inputChunks)
	if err != nil {
		return nil, err
	}

	count, err := chunk.SplitByKey(sorted, in.Path())
	if err != nil {
		return nil, err
	}
	glog.Infof("%s Split sorted input into %d key groups", p.tag, count)

	return p.execute(ctx, in.Path(), count)
}

// phase holds what a running DoMap or DoReduce needs to clean up.
type phase struct {
	name  string
	runID string
	tag   string
	cfg   Config
	root  *scratch.Dir
	led   ledger.Ledger
	start time.Time
}

func begin(name string, cfg Config) (*phase, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}

	p := &phase{
		name:  name,
		runID: uuid.NewString(),
		cfg:   cfg.withDefaults(),
		start: time.Now(),
	}
	p.tag = worker.LogTag(name, p.runID)

	root, err := scratch.New(filepath.Join(p.cfg.ScratchDir, scratchName))
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", name, err)
	}
	p.root = root

	led, err := ledger.Open(p.cfg.Ledger, root.Join(ledgerFile))
	if err != nil {
		root.Close()
		return nil, fmt.Errorf("%s failed: open chunk ledger: %w", name, err)
	}
	p.led = led

	glog.Infof("%s Started: %s %s -> %s (scratch %s)", p.tag, p.cfg.Executable, p.cfg.Input, p.cfg.Output, root.Path())
	return p, nil
}

// end closes the ledger and removes the scratch root. The first error wins
// and is wrapped with the phase name.
func (p *phase) end(errp *error) {
	if err := p.led.Close(); err != nil && *errp == nil {
		*errp = fmt.Errorf("close chunk ledger: %w", err)
	}
	if err := p.root.Close(); err != nil && *errp == nil {
		*errp = err
	}

	if *errp != nil {
		glog.V(1).Infof("%s Failed after %v: %v", p.tag, time.Since(p.start).Round(time.Millisecond), *errp)
		*errp = fmt.Errorf("%s failed: %w", p.name, *errp)
		return
	}
	glog.Infof("%s Finished in %v", p.tag, time.Since(p.start).Round(time.Millisecond))
}

// execute runs the workers over count chunks in inDir and, when all of them
// succeed, merges their outputs into the configured output file.
func (p *phase) execute(ctx context.Context, inDir string, count int) (*Report, error) {
	out, err := p.root.Sub(outputChunks)
	if err != nil {
		return nil, err
	}

	opts := worker.Options{
		Phase:       p.name,
		RunID:       p.runID,
		Tag:         p.tag,
		Executable:  p.cfg.Executable,
		Args:        p.cfg.Args,
		InputDir:    inDir,
		OutputDir:   out.Path(),
		Count:       count,
		Concurrency: p.cfg.Concurrency,
		Ledger:      p.led,
		Progress:    p.cfg.Progress,
	}

	res, runErr := worker.RunForAllChunks(ctx, opts)

	rep := &Report{
		Phase: p.name,
		RunID: p.runID,
	}
	if res != nil {
		rep.Chunks = res.Summary.Total
		rep.Failed = res.Summary.Failed
		rep.InputBytes = res.Summary.InputBytes
		rep.OutputBytes = res.Summary.OutputBytes
	}
	defer func() { rep.Duration = time.Since(p.start) }()

	if runErr != nil {
		return rep, runErr
	}

	if err := chunk.MergeChunks(out.Path(), p.cfg.Output, count); err != nil {
		return rep, err
	}
	glog.Infof("%s Merged %d chunks (%s) into %s", p.tag, count,
		humanize.IBytes(uint64(rep.OutputBytes)), p.cfg.Output)

	return rep, nil
}
