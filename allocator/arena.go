package allocator

import (
	"fmt"
	"sync"
)

// ArenaAllocator suballocates every request from one fixed backing slice
// acquired up front, bump-pointer style. It exists for callers that build
// many small rings together and want one large allocation instead of one
// call to the runtime allocator per ring — the same motivation behind
// this codebase's own externally-managed bitmap-queue arenas, which carve
// many fixed-size entries out of a single pool for cache locality and to
// amortize allocation overhead across queue instances.
//
// ArenaAllocator.Free is a deliberate no-op: bump allocators cannot
// reclaim individual regions, only the whole arena at once (via Reset).
// A Ring only ever calls Free once, while empty, so this is safe: the
// bytes simply sit unused until Reset or the arena itself is discarded.
type ArenaAllocator struct {
	mu     sync.Mutex
	buf    []byte
	offset int
}

// NewArenaAllocator allocates a single size-byte backing region from the
// Go heap and returns an ArenaAllocator that suballocates from it.
func NewArenaAllocator(size int) *ArenaAllocator {
	return &ArenaAllocator{buf: make([]byte, size)}
}

// Allocate returns the next aligned sub-slice of the arena, or
// ErrOutOfMemory once the arena is exhausted.
func (a *ArenaAllocator) Allocate(size, align int) ([]byte, error) {
	if align <= 0 {
		align = 1
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	start := alignAddr(a.buf[a.offset:], align) + a.offset
	end := start + size
	if end > len(a.buf) {
		return nil, fmt.Errorf("%w: arena exhausted (%d of %d bytes used, %d requested)",
			ErrOutOfMemory, a.offset, len(a.buf), size)
	}
	a.offset = end
	return a.buf[start:end:end], nil
}

// Free is a no-op; see the type-level doc comment.
func (a *ArenaAllocator) Free(buf []byte) {
	_ = buf
}

// Reset reclaims the whole arena at once. It is the caller's
// responsibility to ensure nothing allocated from the arena is still in
// use — exactly the same discipline Ring.Free already requires of a
// single ring's storage, extended to every ring sharing this arena.
func (a *ArenaAllocator) Reset() {
	a.mu.Lock()
	a.offset = 0
	a.mu.Unlock()
}

// Used returns the number of bytes currently handed out.
func (a *ArenaAllocator) Used() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.offset
}

// Cap returns the arena's total size in bytes.
func (a *ArenaAllocator) Cap() int {
	return len(a.buf)
}
