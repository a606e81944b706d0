// Package ring implements a bounded, lock-free, wait-capable
// single-producer/single-consumer queue over a pre-allocated circular
// buffer. Exactly one goroutine may ever call the push-side methods and
// exactly one may ever call the pop-side methods on a given ring; nothing
// in this package enforces that beyond documentation, matching the
// reference design's own SPSC discipline.
//
// This generalizes the fixed-payload SPSC rings this codebase used to
// ship one hand-specialized copy of per payload size (24, 32, 56 bytes)
// into a single generic implementation, pluggable over any allocator and
// any pointer-free element type, with an explicit blocking protocol
// instead of ad hoc busy-spinning.
package ring

import (
	"fmt"
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/codewanderer42820/spscring/allocator"
	"github.com/codewanderer42820/spscring/internal/assert"
	"github.com/codewanderer42820/spscring/internal/cacheline"
	"github.com/codewanderer42820/spscring/internal/futex"
	"github.com/codewanderer42820/spscring/internal/typeinfo"
)

// terminalFlag is the high bit of the size word: when set, the producer
// has declared the stream closed via EndPopWaiting and no further pushes
// will be observed by waiting consumers. Packing it into size instead of
// using a second atomic keeps the hot path a single word, at the cost of
// size() needing to mask it off.
const terminalFlag int32 = -1 << 31

// base holds every field and non-waiting operation shared by all four
// exported ring types (SPSC, PushWaitSPSC, PopWaitSPSC, BothWaitSPSC).
// It is never used directly — always through one of those embedding
// types — so that a type without a given wait capability simply has no
// method promoting the operation, rather than a runtime check rejecting
// it. Its own methods are exported so embedding promotes them; only the
// four wrapper types in policy.go are part of this package's public API
// surface.
type base[T any] struct {
	// pushIndex is written only by the producer. Every load elsewhere is
	// an acquire so the reader's subsequent construction/inspection of
	// the slot happens-after the producer's publish.
	pushIndex atomic.Int32
	// atomic.Int32 is a single int32 field with no other state; the
	// padding below assumes that layout to keep pushIndex, popIndex and
	// size on independent cache lines. See sizeAddr for the same
	// assumption applied to a raw pointer.
	_pushPad [cacheline.Size - 4]byte

	// popIndex is written only by the consumer.
	popIndex atomic.Int32
	_popPad  [cacheline.Size - 4]byte

	// size doubles as the wait/notify rendezvous word; see waitops.go.
	size     atomic.Int32
	_sizePad [cacheline.Size - 4]byte

	capacity int32 // fixed at Allocate; 0 means unallocated
	indexEnd int32 // pushIndex/popIndex wrap to 0 upon reaching this

	elemSize    uintptr
	hasPointers bool // true if T can hold anything the GC must trace

	// wakeConsumerOnPush/wakeProducerOnPop select whether increaseSize
	// and decreaseSize issue an edge-triggered futex wake at all. They
	// are set once at Allocate time from the constant policy of the
	// embedding wrapper type, standing in for the reference design's
	// compile-time sPopAwait/sPushAwait.
	wakeConsumerOnPush bool
	wakeProducerOnPop  bool

	alloc   allocator.Allocator
	storage []byte
	waiter  futex.Waiter
}

// ErrCapacityTooLarge names the condition of a capacity that leaves fewer
// than two index wraps available in the int32 index space. Allocate does
// not return it: that case is a contract violation and panics through
// assert.Require. Every ring family this codebase has shipped uses
// power-of-two masking and never hits this case; the generic index-wrap
// scheme here trades that away for arbitrary capacities, at the cost of
// this one extra validation.
var ErrCapacityTooLarge = fmt.Errorf("ring: capacity too large")

// allocate is the shared implementation behind every wrapper type's
// exported Allocate method; each wrapper supplies its own fixed
// wakeConsumerOnPush/wakeProducerOnPop constants.
func (b *base[T]) allocate(alloc allocator.Allocator, capacity int, wakeConsumerOnPush, wakeProducerOnPop bool) error {
	assert.Require(!b.IsAllocated(), "Allocate called on an already-allocated ring")
	assert.Require(capacity >= 1, "capacity must be >= 1, got %d", capacity)
	assert.Require(capacity <= math.MaxInt32, "capacity %d exceeds the int32 index range", capacity)

	// The original C++ design fatally asserts when fewer than two index
	// wraps are available (Assert(cMaxNumWrapArounds >= 2, ...) in
	// SPSC.hpp); we follow that precedent rather than the distilled
	// spec's looser "(else fail)" wording — see DESIGN.md Open Question 4.
	k := int32(math.MaxInt32) / int32(capacity)
	assert.Require(k >= 2, "capacity %d leaves fewer than 2 index wraps available", capacity)

	var zero T
	elemSize := unsafe.Sizeof(zero)
	align := int(unsafe.Alignof(zero))
	if align < cacheline.Size {
		align = cacheline.Size
	}

	buf, err := alloc.Allocate(capacity*int(elemSize), align)
	if err != nil {
		return err
	}
	assert.Require(buf != nil, "allocator returned a nil buffer without an error")

	b.alloc = alloc
	b.storage = buf
	b.capacity = int32(capacity)
	b.indexEnd = int32(capacity) * k
	b.elemSize = elemSize
	b.hasPointers = typeinfo.HasPointers[T]()
	b.wakeConsumerOnPush = wakeConsumerOnPush
	b.wakeProducerOnPop = wakeProducerOnPop
	b.waiter = futex.New(b.sizeAddr())
	b.pushIndex.Store(0)
	b.popIndex.Store(0)
	b.size.Store(0)
	return nil
}

// Free returns this ring's storage to the allocator it was built with.
// The ring must be allocated and empty; violating either is a contract
// violation (see internal/assert), not a recoverable error, because a
// non-empty free would silently drop live elements with no way to run
// their finalization.
func (b *base[T]) Free() {
	assert.Require(b.IsAllocated(), "Free called on an unallocated ring")
	assert.Require(b.Empty(), "Free called on a non-empty ring (size=%d)", b.Size())
	b.alloc.Free(b.storage)
	b.storage = nil
	b.capacity = 0
	b.indexEnd = 0
	b.alloc = nil
	b.waiter = nil
}

// IsAllocated reports whether Allocate has succeeded and Free has not
// since been called.
func (b *base[T]) IsAllocated() bool { return b.storage != nil }

// Size returns the current element count. It never reflects the
// terminal (shutdown) flag.
func (b *base[T]) Size() int32 { return b.size.Load() &^ terminalFlag }

// Empty reports whether Size() == 0.
func (b *base[T]) Empty() bool { return b.Size() == 0 }

// TryPush attempts to enqueue v. It returns false without any side
// effect if the ring is full. Producer-only.
func (b *base[T]) TryPush(v T) bool {
	pushIdx := b.pushIndex.Load()
	popIdx := b.popIndex.Load()

	delta := pushIdx - popIdx
	if delta == b.capacity || delta == b.capacity-b.indexEnd {
		return false
	}

	*(*T)(b.slotPtr(pushIdx)) = v

	newPush := pushIdx + 1
	if newPush == b.indexEnd {
		newPush = 0
	}
	b.pushIndex.Store(newPush)
	b.increaseSize(1)
	return true
}

// TryPop attempts to dequeue the oldest element. It returns the zero
// value and false if the ring is empty. Consumer-only.
func (b *base[T]) TryPop() (T, bool) {
	var zero T

	pushIdx := b.pushIndex.Load()
	popIdx := b.popIndex.Load()
	if pushIdx == popIdx {
		return zero, false
	}

	ptr := (*T)(b.slotPtr(popIdx))
	v := *ptr
	if b.hasPointers {
		*ptr = zero
	}

	newPop := popIdx + 1
	if newPop == b.indexEnd {
		newPop = 0
	}
	b.popIndex.Store(newPop)
	b.decreaseSize(1)
	return v, true
}

// PushMany moves as many leading elements of items into the ring as fit
// and returns the unconsumed suffix (a subslice of items, never a copy).
// Producer-only.
func (b *base[T]) PushMany(items []T) []T {
	pushIdx := b.pushIndex.Load()
	popIdx := b.popIndex.Load()

	live := pushIdx - popIdx
	if live < 0 {
		live += b.indexEnd
	}
	maxSlots := b.capacity - live

	n := int32(len(items))
	if n > maxSlots {
		n = maxSlots
	}
	if n == 0 {
		return items
	}

	slotIdx := pushIdx % b.capacity
	distanceBeyondEnd := slotIdx + n - b.capacity
	if distanceBeyondEnd <= 0 {
		b.copyIn(slotIdx, items[:n])
	} else {
		first := n - distanceBeyondEnd
		b.copyIn(slotIdx, items[:first])
		b.copyIn(0, items[first:n])
	}

	newPush := pushIdx + n
	if newPush >= b.indexEnd {
		newPush -= b.indexEnd
	}
	b.pushIndex.Store(newPush)
	b.increaseSize(n)
	return items[n:]
}

// PopMany fills dst (up to its full length) with the oldest available
// elements and returns how many it wrote. It returns 0 without touching
// dst when the ring is empty. Consumer-only.
func (b *base[T]) PopMany(dst []T) int {
	pushIdx := b.pushIndex.Load()
	popIdx := b.popIndex.Load()

	maxAvail := pushIdx - popIdx
	if maxAvail < 0 {
		maxAvail += b.indexEnd
	}

	n := int32(len(dst))
	if n > maxAvail {
		n = maxAvail
	}
	if n == 0 {
		return 0
	}

	slotIdx := popIdx % b.capacity
	distanceBeyondEnd := slotIdx + n - b.capacity
	if distanceBeyondEnd <= 0 {
		b.copyOut(slotIdx, dst[:n])
	} else {
		first := n - distanceBeyondEnd
		b.copyOut(slotIdx, dst[:first])
		b.copyOut(0, dst[first:n])
	}

	newPop := popIdx + n
	if newPop >= b.indexEnd {
		newPop -= b.indexEnd
	}
	b.popIndex.Store(newPop)
	b.decreaseSize(n)
	return int(n)
}

// slotPtr returns a pointer to the slot at unwrapped index idx.
//
//go:nosplit
func (b *base[T]) slotPtr(idx int32) unsafe.Pointer {
	slot := idx % b.capacity
	return unsafe.Pointer(&b.storage[uintptr(slot)*b.elemSize])
}

// copyIn moves len(items) elements into contiguous storage starting at
// slotIdx. Callers guarantee the run does not cross the buffer end.
func (b *base[T]) copyIn(slotIdx int32, items []T) {
	if len(items) == 0 {
		return
	}
	dst := unsafe.Slice((*T)(b.slotPtr(slotIdx)), len(items))
	copy(dst, items)
}

// copyOut moves len(dst) elements out of contiguous storage starting at
// slotIdx, then clears the vacated slots if T can hold GC-traced
// references (see the Allocator/T pointer-safety note in DESIGN.md's
// Open Question 3).
func (b *base[T]) copyOut(slotIdx int32, dst []T) {
	if len(dst) == 0 {
		return
	}
	src := unsafe.Slice((*T)(b.slotPtr(slotIdx)), len(dst))
	copy(dst, src)
	if b.hasPointers {
		var zero T
		for i := range src {
			src[i] = zero
		}
	}
}

// increaseSize bumps size by n and, if the pop side may wait, wakes it
// exactly on the empty→non-empty edge — matching the reference design's
// "notify only on 0→1" rule, so wake syscalls stay proportional to
// contention rather than to throughput.
func (b *base[T]) increaseSize(n int32) {
	prior := b.size.Add(n) - n
	if b.wakeConsumerOnPush && prior == 0 {
		b.waiter.Wake()
	}
}

// decreaseSize is the mirror of increaseSize for the push-waiting side:
// wake exactly on the full→non-full edge.
func (b *base[T]) decreaseSize(n int32) {
	prior := b.size.Add(-n) + n
	if b.wakeProducerOnPop && (prior&^terminalFlag) == b.capacity {
		b.waiter.Wake()
	}
}

// fetchOrSize atomically ORs mask into size and returns the prior value.
func (b *base[T]) fetchOrSize(mask int32) int32 {
	for {
		old := b.size.Load()
		if old&mask == mask {
			return old
		}
		if b.size.CompareAndSwap(old, old|mask) {
			return old
		}
	}
}

// fetchAndSize atomically ANDs mask into size.
func (b *base[T]) fetchAndSize(mask int32) {
	for {
		old := b.size.Load()
		next := old & mask
		if next == old || b.size.CompareAndSwap(old, next) {
			return
		}
	}
}

// sizeAddr returns a raw pointer to size's backing int32 word, for the
// futex waiter. atomic.Int32 is documented as a struct wrapping a single
// int32 with no other observable state, so this reinterpretation is
// sound as long as that layout holds; the wait-path tests in
// ring_wait_test.go would immediately misbehave if it stopped holding.
//
//go:nosplit
func (b *base[T]) sizeAddr() *int32 {
	return (*int32)(unsafe.Pointer(&b.size))
}
