package execreduce

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions
var (
	// File and record errors
	ErrIO     = errors.New("i/o error")
	ErrDecode = errors.New("malformed record")
	ErrEncode = errors.New("record contains tab or newline")

	// Worker process errors
	ErrProcessSpawn   = errors.New("worker spawn failed")
	ErrWorkerFailure  = errors.New("worker failure")
	ErrAlreadyStarted = errors.New("process already started")
	ErrNotStarted     = errors.New("process not started")

	// Invocation errors
	ErrUsage           = errors.New("usage error")
	ErrUnknownExecutor = errors.New("unknown executor")

	// Version/compatibility errors
	ErrIncompatibleVersion = errors.New("incompatible version")
)

// DecodeError reports a record line that does not hold exactly two
// TAB-separated fields.
type DecodeError struct {
	Line int
	Text string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: expected exactly one tab in %q", e.Line, e.Text)
}

func (e *DecodeError) Unwrap() error {
	return ErrDecode
}

// WorkerFailureError is returned once every chunk of a phase has been
// attempted and at least one of them did not exit with status 0.
type WorkerFailureError struct {
	Failed []int
	Total  int
}

func (e *WorkerFailureError) Error() string {
	const shown = 10

	idx := make([]string, 0, shown)
	for i, n := range e.Failed {
		if i == shown {
			idx = append(idx, "...")
			break
		}
		idx = append(idx, fmt.Sprint(n))
	}

	return fmt.Sprintf("%d of %d worker chunks failed (chunks %s)",
		len(e.Failed), e.Total, strings.Join(idx, ", "))
}

func (e *WorkerFailureError) Unwrap() error {
	return ErrWorkerFailure
}
