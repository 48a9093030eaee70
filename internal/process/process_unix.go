//go:build unix

package process

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func newHandle(path string) Handle {
	return &cmdHandle{path: path, kill: sigkill}
}

func sigkill(p *os.Process) error {
	err := unix.Kill(p.Pid, unix.SIGKILL)
	if errors.Is(err, unix.ESRCH) {
		// Already exited, not yet reaped.
		return nil
	}
	return err
}
