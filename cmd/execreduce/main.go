// Command execreduce runs one map or reduce phase of a MapReduce job on this
// machine, with an external program as the mapper or reducer.
//
//	execreduce map ./wordcount-map corpus.tsv mapped.tsv -p 8 -s 32MiB
//	execreduce reduce ./wordcount-reduce mapped.tsv counts.tsv
//
// The worker executable reads one chunk of TSV records on stdin and writes
// TSV records to stdout. A nonzero exit status fails the phase.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"golang.org/x/mod/semver"

	"pkg.jsn.cam/execreduce/internal/driver"
	"pkg.jsn.cam/execreduce/internal/ledger"
	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

const usageText = `Usage:
  execreduce <map|reduce> <executable> <input-file> <output-file> [flags]
  execreduce version

Flags may appear anywhere on the command line.

Flags:
`

// byteSize is a flag.Value accepting "1048576", "512k" or "64MiB".
type byteSize int64

func (b *byteSize) String() string {
	return humanize.IBytes(uint64(*b))
}

func (b *byteSize) Set(s string) error {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return err
	}
	if n == 0 || n > 1<<62 {
		return fmt.Errorf("size %q out of range", s)
	}
	*b = byteSize(n)
	return nil
}

type options struct {
	phase    string
	cfg      driver.Config
	progress bool
}

func newFlagSet(opts *options, blockSize *byteSize) *flag.FlagSet {
	fs := flag.NewFlagSet("execreduce", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.IntVar(&opts.cfg.Concurrency, "p", runtime.NumCPU(), "maximum number of concurrent workers")
	fs.Var(blockSize, "s", "block size, e.g. 64MiB or 500000")
	fs.StringVar(&opts.cfg.ScratchDir, "tmpdir", ".", "directory in which the scratch root is created")
	fs.StringVar(&opts.cfg.Ledger, "ledger", ledger.BackendBolt, "chunk ledger backend: bbolt or memory")
	fs.BoolVar(&opts.progress, "progress", false, "draw a progress bar on stderr")

	flag.CommandLine.VisitAll(func(f *flag.Flag) {
		if fs.Lookup(f.Name) == nil {
			fs.Var(f.Value, f.Name, f.Usage)
		}
	})
	return fs
}

func usage(w io.Writer) {
	var (
		opts      options
		blockSize = byteSize(driver.DefaultBlockSize)
	)
	fs := newFlagSet(&opts, &blockSize)
	fs.SetOutput(w)

	fmt.Fprint(w, usageText)
	fs.PrintDefaults()
}

// parseArgs parses the command line. Flags and positionals may be
// interleaved; glog flags registered on flag.CommandLine are accepted too.
func parseArgs(args []string) (*options, error) {
	var (
		opts      options
		blockSize = byteSize(driver.DefaultBlockSize)
	)
	fs := newFlagSet(&opts, &blockSize)

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, fmt.Errorf("%w: %w", execreduce.ErrUsage, err)
		}
		args = fs.Args()
		if len(args) == 0 {
			break
		}
		positional = append(positional, args[0])
		args = args[1:]
	}

	if len(positional) == 0 {
		return nil, fmt.Errorf("%w: missing command", execreduce.ErrUsage)
	}

	opts.phase = positional[0]
	switch opts.phase {
	case "version":
		if len(positional) != 1 {
			return nil, fmt.Errorf("%w: version takes no arguments", execreduce.ErrUsage)
		}
		return &opts, nil
	case driver.PhaseMap, driver.PhaseReduce:
	default:
		return nil, fmt.Errorf("%w: unknown command %q", execreduce.ErrUsage, opts.phase)
	}

	if len(positional) != 4 {
		return nil, fmt.Errorf("%w: %s needs <executable> <input-file> <output-file>, got %d arguments",
			execreduce.ErrUsage, opts.phase, len(positional)-1)
	}
	opts.cfg.Executable = positional[1]
	opts.cfg.Input = positional[2]
	opts.cfg.Output = positional[3]
	opts.cfg.BlockSize = int64(blockSize)

	if opts.cfg.Concurrency <= 0 {
		return nil, fmt.Errorf("%w: -p must be greater than 0, got %d", execreduce.ErrUsage, opts.cfg.Concurrency)
	}
	if err := opts.cfg.Validate(); err != nil {
		return nil, err
	}

	return &opts, nil
}

func printVersion(w io.Writer) error {
	if !semver.IsValid(execreduce.Version) {
		return fmt.Errorf("invalid build version %q", execreduce.Version)
	}
	fmt.Fprintf(w, "execreduce %s (ledger schema %s, %s)\n", execreduce.Version, ledger.SchemaVersion, runtime.Version())
	return nil
}

func printReport(w io.Writer, rep *driver.Report) {
	fmt.Fprintf(w, "%s: %d chunks, %s in, %s out, %v (run %s)\n",
		rep.Phase,
		rep.Chunks,
		humanize.IBytes(uint64(rep.InputBytes)),
		humanize.IBytes(uint64(rep.OutputBytes)),
		rep.Duration.Round(time.Millisecond),
		rep.RunID)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "execreduce: %v\n\n", err)
		}
		usage(stderr)
		return 1
	}

	if opts.phase == "version" {
		if err := printVersion(stdout); err != nil {
			fmt.Fprintf(stderr, "execreduce: %v\n", err)
			return 1
		}
		return 0
	}

	if opts.progress {
		opts.cfg.Progress = stderr
	}

	do := driver.DoMap
	if opts.phase == driver.PhaseReduce {
		do = driver.DoReduce
	}

	rep, err := do(ctx, opts.cfg)
	if err != nil {
		fmt.Fprintf(stderr, "execreduce: %v\n", err)
		return 1
	}

	printReport(stderr, rep)
	return 0
}

func main() {
	flag.Set("logtostderr", "true")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	glog.Flush()
	os.Exit(code)
}
