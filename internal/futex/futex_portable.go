//go:build !linux

package futex

import (
	"sync"
	"sync/atomic"
)

// New returns a Waiter emulating futex semantics with a sync.Cond. addr
// must only ever be mutated with atomic operations by the caller; this
// implementation reads it under its own mutex to avoid the classic
// missed-wakeup race between checking the predicate and starting to wait.
func New(addr *int32) Waiter {
	w := &condWaiter{addr: addr}
	w.cond = sync.NewCond(&w.mu)
	return w
}

type condWaiter struct {
	addr *int32
	mu   sync.Mutex
	cond *sync.Cond
}

func (w *condWaiter) Wait(expect int32) {
	w.mu.Lock()
	for atomic.LoadInt32(w.addr) == expect {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

func (w *condWaiter) Wake() {
	w.mu.Lock()
	w.cond.Broadcast()
	w.mu.Unlock()
}
