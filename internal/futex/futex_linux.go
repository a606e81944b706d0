//go:build linux

package futex

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// New returns a Waiter backed by the Linux futex(2) syscall on addr. addr
// must remain valid and must only ever be mutated with atomic operations —
// the kernel and this package both read it outside of Go's memory model.
func New(addr *int32) Waiter {
	return &linuxWaiter{addr: addr}
}

type linuxWaiter struct {
	addr *int32
}

// Linux futex(2) operation codes. Not exposed by golang.org/x/sys/unix,
// which only carries the syscall number (unix.SYS_FUTEX).
const (
	futexWait = 0
	futexWake = 1
)

// Wait issues FUTEX_WAIT: the kernel atomically compares *addr to expect
// and, if they still match, parks the calling thread until FUTEX_WAKE.
// EAGAIN (value already changed) and EINTR (spurious signal) both just
// mean "go re-check the caller's predicate", which every call site does.
//
//go:nosplit
func (w *linuxWaiter) Wait(expect int32) {
	_, _, errno := unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(w.addr)),
		uintptr(futexWait),
		uintptr(uint32(expect)),
		0, 0, 0,
	)
	switch errno {
	case 0, unix.EAGAIN, unix.EINTR:
		return
	default:
		// Any other errno (e.g. ENOSYS on a kernel without futex support)
		// degrades to an immediate return; the retry loop around every
		// Wait call site simply spins once more instead of blocking.
		return
	}
}

// Wake issues FUTEX_WAKE for up to MaxInt32 waiters — a broadcast, since
// this package's callers only ever wake on state transitions they want
// every blocked goroutine to observe.
//
//go:nosplit
func (w *linuxWaiter) Wake() {
	unix.Syscall6(
		unix.SYS_FUTEX,
		uintptr(unsafe.Pointer(w.addr)),
		uintptr(futexWake),
		uintptr(0x7fffffff),
		0, 0, 0,
	)
}
