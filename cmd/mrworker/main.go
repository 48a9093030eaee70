// Command mrworker is a worker executable for execreduce built on the bundled
// executors. The task is "<executor>-<map|reduce>", taken from MRWORKER_TASK
// or, when that is unset, from the program name, so a symlink named
// wordcount-map runs the word count mapper:
//
//	ln -s mrworker wordcount-map
//	execreduce map ./wordcount-map input.tsv mapped.tsv
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
	"pkg.jsn.cam/execreduce/pkg/executors"
	"pkg.jsn.cam/execreduce/pkg/streaming"
)

const taskEnv = "MRWORKER_TASK"

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type task struct {
	executor execreduce.Executor
	name     string
	phase    string
}

// parseTask resolves a task name such as "wordcount-map". Only the last
// dash separates the phase, and a file extension (".exe") is ignored.
func parseTask(name string) (task, error) {
	name = strings.TrimSuffix(name, filepath.Ext(name))

	i := strings.LastIndexByte(name, '-')
	if i < 0 {
		return task{}, fmt.Errorf("%w: task %q is not <executor>-<map|reduce>", execreduce.ErrUsage, name)
	}

	t := task{name: name[:i], phase: name[i+1:]}
	if t.phase != "map" && t.phase != "reduce" {
		return task{}, fmt.Errorf("%w: unknown phase %q in task %q", execreduce.ErrUsage, t.phase, name)
	}

	worker, err := executors.GetExecutor(t.name)
	if err != nil {
		return task{}, err
	}
	t.executor = worker
	return t, nil
}

func taskName(args []string) string {
	if name := os.Getenv(taskEnv); name != "" {
		return name
	}
	if len(args) == 0 {
		return ""
	}
	return filepath.Base(args[0])
}

func run(name string, stdin io.Reader, stdout, stderr io.Writer) int {
	t, err := parseTask(name)
	if err != nil {
		fmt.Fprintf(stderr, "mrworker: %v\n", err)
		fmt.Fprintf(stderr, "available executors: %s\n", strings.Join(executors.ListExecutors(), ", "))
		return exitUsage
	}

	if t.phase == "map" {
		err = streaming.RunMapper(stdin, stdout, t.executor)
	} else {
		err = streaming.RunReducer(stdin, stdout, t.executor)
	}
	if err != nil {
		fmt.Fprintf(stderr, "mrworker: %s-%s: %v\n", t.name, t.phase, err)
		return exitFailure
	}
	return exitOK
}

func main() {
	os.Exit(run(taskName(os.Args), os.Stdin, os.Stdout, os.Stderr))
}
