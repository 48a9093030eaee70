// Package pool runs tasks on a fixed number of concurrent slots.
package pool

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Task runs to completion and reports whether it succeeded.
type Task func() bool

// Pool runs at most Slots tasks at a time. A failing task never stops the
// others; failures are only aggregated for Wait.
type Pool struct {
	group errgroup.Group
	slots int

	mu        sync.Mutex
	ok        bool
	submitted int
	completed int
}

// New creates a pool with the given number of slots. Zero or a negative
// count means one slot per CPU.
func New(slots int) *Pool {
	if slots <= 0 {
		slots = runtime.NumCPU()
	}

	p := &Pool{slots: slots, ok: true}
	p.group.SetLimit(slots)
	return p
}

func (p *Pool) Slots() int {
	return p.slots
}

// Submit schedules task on a free slot, blocking while every slot is busy.
func (p *Pool) Submit(task Task) {
	p.mu.Lock()
	p.submitted++
	p.mu.Unlock()

	p.group.Go(func() error {
		ok := task()

		p.mu.Lock()
		p.ok = p.ok && ok
		p.completed++
		p.mu.Unlock()

		return nil
	})
}

// Wait blocks until every submitted task has completed and reports whether
// all of them succeeded.
func (p *Pool) Wait() bool {
	p.group.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ok
}

// Stats returns the number of submitted and completed tasks.
func (p *Pool) Stats() (submitted, completed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitted, p.completed
}
