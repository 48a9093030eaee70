//go:build !unix

package process

import (
	"errors"
	"os"
)

func newHandle(path string) Handle {
	return &cmdHandle{path: path, kill: killProcess}
}

func killProcess(p *os.Process) error {
	err := p.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
