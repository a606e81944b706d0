package ring

import "github.com/codewanderer42820/spscring/allocator"

// SPSC is a bounded circular queue with no blocking API: TryPush/TryPop
// and PushMany/PopMany are the only way in and out, and all return
// immediately. Allocate is defined here; every other method (Free,
// IsAllocated, Size, Empty, TryPush, TryPop, PushMany, PopMany) is
// promoted from the embedded base and needs no override.
type SPSC[T any] struct {
	base[T]
}

// NewSPSC returns an unallocated SPSC; call Allocate before use.
func NewSPSC[T any]() *SPSC[T] { return &SPSC[T]{} }

// Allocate reserves capacity elements of storage from alloc. See
// base.allocate for the full precondition and failure contract.
func (r *SPSC[T]) Allocate(alloc allocator.Allocator, capacity int) error {
	return r.base.allocate(alloc, capacity, false, false)
}

// PushWaitSPSC is a bounded circular queue whose producer may block
// until space is available; its consumer only ever polls with TryPop.
type PushWaitSPSC[T any] struct {
	base[T]
}

// NewPushWaitSPSC returns an unallocated PushWaitSPSC.
func NewPushWaitSPSC[T any]() *PushWaitSPSC[T] { return &PushWaitSPSC[T]{} }

// Allocate reserves capacity elements of storage from alloc.
func (r *PushWaitSPSC[T]) Allocate(alloc allocator.Allocator, capacity int) error {
	// The producer may wait, so the consumer's pops must wake it on the
	// full→non-full edge; nothing here ever waits for the consumer, so
	// pushes never need to wake anyone.
	return r.base.allocate(alloc, capacity, false, true)
}

// PopWaitSPSC is a bounded circular queue whose consumer may block until
// an element is available; its producer only ever polls with TryPush.
type PopWaitSPSC[T any] struct {
	base[T]
}

// NewPopWaitSPSC returns an unallocated PopWaitSPSC.
func NewPopWaitSPSC[T any]() *PopWaitSPSC[T] { return &PopWaitSPSC[T]{} }

// Allocate reserves capacity elements of storage from alloc.
func (r *PopWaitSPSC[T]) Allocate(alloc allocator.Allocator, capacity int) error {
	return r.base.allocate(alloc, capacity, true, false)
}

// BothWaitSPSC is a bounded circular queue whose producer and consumer
// may each block, the producer on a full ring and the consumer on an
// empty one.
type BothWaitSPSC[T any] struct {
	base[T]
}

// NewBothWaitSPSC returns an unallocated BothWaitSPSC.
func NewBothWaitSPSC[T any]() *BothWaitSPSC[T] { return &BothWaitSPSC[T]{} }

// Allocate reserves capacity elements of storage from alloc.
func (r *BothWaitSPSC[T]) Allocate(alloc allocator.Allocator, capacity int) error {
	return r.base.allocate(alloc, capacity, true, true)
}
