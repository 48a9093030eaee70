// Package process launches worker executables with their standard streams
// redirected to files.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// Handle is one worker process. Configure it with the setters, then call
// Run once and Wait once. Close releases the handle and kills the process
// if it is still running.
type Handle interface {
	SetArguments(args []string) error
	SetInput(path string) error
	SetOutput(path string) error
	Run() error
	// Wait blocks until the process exits and returns its exit status,
	// -1 if it was terminated by a signal.
	Wait() (int, error)
	Close() error
}

// New returns the Handle implementation for the build platform.
func New(path string) Handle {
	return newHandle(path)
}

type state uint8

const (
	stateIdle state = iota
	stateRunning
	stateWaiting
	stateDone
)

// cmdHandle holds the platform independent part of a Handle: argument and
// redirection bookkeeping around an exec.Cmd. Platforms supply kill.
type cmdHandle struct {
	mu     sync.Mutex
	path   string
	args   []string
	input  string
	output string
	cmd    *exec.Cmd
	state  state
	kill   func(p *os.Process) error
}

func (h *cmdHandle) configure(fn func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != stateIdle {
		return execreduce.ErrAlreadyStarted
	}
	fn()
	return nil
}

func (h *cmdHandle) SetArguments(args []string) error {
	return h.configure(func() { h.args = append([]string(nil), args...) })
}

func (h *cmdHandle) SetInput(path string) error {
	return h.configure(func() { h.input = path })
}

func (h *cmdHandle) SetOutput(path string) error {
	return h.configure(func() { h.output = path })
}

func (h *cmdHandle) Run() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state != stateIdle {
		return fmt.Errorf("run %s: %w", h.path, execreduce.ErrAlreadyStarted)
	}

	cmd := exec.Command(h.path, h.args...)
	cmd.Stderr = os.Stderr

	var files []*os.File
	defer func() {
		// The child holds its own descriptors once started.
		for _, f := range files {
			f.Close()
		}
	}()

	if h.input != "" {
		f, err := os.Open(h.input)
		if err != nil {
			return fmt.Errorf("%w: open worker input %s: %w", execreduce.ErrIO, h.input, err)
		}
		files = append(files, f)
		cmd.Stdin = f
	}

	if h.output != "" {
		f, err := os.OpenFile(h.output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return fmt.Errorf("%w: open worker output %s: %w", execreduce.ErrIO, h.output, err)
		}
		files = append(files, f)
		cmd.Stdout = f
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %s: %w", execreduce.ErrProcessSpawn, h.path, err)
	}

	h.cmd = cmd
	h.state = stateRunning
	return nil
}

func (h *cmdHandle) Wait() (int, error) {
	h.mu.Lock()
	if h.state != stateRunning {
		h.mu.Unlock()
		if h.state == stateIdle {
			return -1, execreduce.ErrNotStarted
		}
		return -1, errors.New("process already waited or closed")
	}
	h.state = stateWaiting
	cmd := h.cmd
	h.mu.Unlock()

	err := cmd.Wait()

	h.mu.Lock()
	h.state = stateDone
	h.mu.Unlock()

	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// ExitCode is -1 when the process was killed by a signal.
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("wait %s: %w", h.path, err)
}

func (h *cmdHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.state {
	case stateRunning:
		// Nobody is waiting: kill and reap in the background so Close
		// never blocks on the child.
		err := h.kill(h.cmd.Process)
		cmd := h.cmd
		h.state = stateDone
		go cmd.Wait()
		return err
	case stateWaiting:
		// Wait owns reaping; os.Process guards against signalling a
		// reaped pid.
		err := h.cmd.Process.Kill()
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return err
	default:
		h.state = stateDone
		return nil
	}
}
