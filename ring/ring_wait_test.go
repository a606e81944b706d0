package ring

import (
	"testing"
	"time"

	"github.com/codewanderer42820/spscring/allocator"
)

// TestPopWaitBlocksUntilItem validates blocking consumption behavior: a
// consumer parked in PopWait must be released as soon as a push happens,
// not merely eventually.
func TestPopWaitBlocksUntilItem(t *testing.T) {
	r := NewPopWaitSPSC[int]()
	if err := r.Allocate(allocator.HeapAllocator{}, 4); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	done := make(chan int, 1)
	go func() {
		v, ok := r.PopWait()
		if !ok {
			done <- -1
			return
		}
		done <- v
	}()

	time.Sleep(10 * time.Millisecond) // give the consumer time to park
	if !r.TryPush(42) {
		t.Fatal("TryPush failed")
	}

	select {
	case got := <-done:
		if got != 42 {
			t.Fatalf("PopWait returned %d, want 42", got)
		}
	case <-time.After(time.Second):
		t.Fatal("PopWait did not complete within timeout")
	}
}

// TestPushWaitBlocksUntilSpace validates the mirror case: a producer
// parked in PushWait on a full ring must be released as soon as the
// consumer frees a slot.
func TestPushWaitBlocksUntilSpace(t *testing.T) {
	r := NewPushWaitSPSC[int]()
	if err := r.Allocate(allocator.HeapAllocator{}, 2); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	r.TryPush(1)
	r.TryPush(2) // ring now full

	done := make(chan struct{})
	go func() {
		r.PushWait(3)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond) // give the producer time to park
	if _, ok := r.TryPop(); !ok {
		t.Fatal("TryPop failed")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("PushWait did not complete within timeout")
	}

	got, ok := r.TryPop()
	if !ok || got != 2 {
		t.Fatalf("TryPop = (%d, %v), want (2, true)", got, ok)
	}
	got, ok = r.TryPop()
	if !ok || got != 3 {
		t.Fatalf("TryPop = (%d, %v), want (3, true)", got, ok)
	}
}

// TestPopWaitUnblocksOnEndPopWaiting validates that a consumer parked on
// an empty ring is released as soon as the producer declares the stream
// closed, without ever seeing another element.
func TestPopWaitUnblocksOnEndPopWaiting(t *testing.T) {
	r := NewPopWaitSPSC[int]()
	if err := r.Allocate(allocator.HeapAllocator{}, 4); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	done := make(chan bool, 1)
	go func() {
		_, ok := r.PopWait()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	r.EndPopWaiting()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("PopWait returned ok=true on an empty, closed ring")
		}
	case <-time.After(time.Second):
		t.Fatal("PopWait did not unblock after EndPopWaiting")
	}
}

// TestPopWaitDrainsBeforeClosing validates that elements pushed before
// EndPopWaiting are still delivered, and only the pop past the last one
// observes the closed stream.
func TestPopWaitDrainsBeforeClosing(t *testing.T) {
	r := NewPopWaitSPSC[int]()
	if err := r.Allocate(allocator.HeapAllocator{}, 4); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	r.TryPush(1)
	r.TryPush(2)
	r.EndPopWaiting()

	for _, want := range []int{1, 2} {
		got, ok := r.PopWait()
		if !ok || got != want {
			t.Fatalf("PopWait = (%d, %v), want (%d, true)", got, ok, want)
		}
	}

	if _, ok := r.PopWait(); ok {
		t.Fatal("PopWait on a drained, closed ring should return ok=false")
	}
}

// TestResetPopWaitingRearms validates that a closed ring can be reopened
// for another round of blocking consumption.
func TestResetPopWaitingRearms(t *testing.T) {
	r := NewPopWaitSPSC[int]()
	if err := r.Allocate(allocator.HeapAllocator{}, 4); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	r.EndPopWaiting()
	if _, ok := r.PopWait(); ok {
		t.Fatal("PopWait should observe the closed stream")
	}

	r.ResetPopWaiting()

	done := make(chan int, 1)
	go func() {
		v, _ := r.PopWait()
		done <- v
	}()
	time.Sleep(10 * time.Millisecond)
	r.TryPush(7)

	select {
	case got := <-done:
		if got != 7 {
			t.Fatalf("PopWait returned %d after reset, want 7", got)
		}
	case <-time.After(time.Second):
		t.Fatal("PopWait did not complete after ResetPopWaiting")
	}
}

// TestBothWaitProducerConsumer runs a producer and consumer goroutine
// pair over a small BothWaitSPSC ring and checks every element arrives,
// in order, exactly once.
func TestBothWaitProducerConsumer(t *testing.T) {
	const count = 5000
	r := NewBothWaitSPSC[int]()
	if err := r.Allocate(allocator.HeapAllocator{}, 16); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	go func() {
		for i := 0; i < count; i++ {
			r.PushWait(i)
		}
		r.EndPopWaiting()
	}()

	got := make([]int, 0, count)
	for {
		v, ok := r.PopWait()
		if !ok {
			break
		}
		got = append(got, v)
	}

	if len(got) != count {
		t.Fatalf("consumed %d elements, want %d", len(got), count)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, want %d (order violated)", i, v, i)
		}
	}
}

// TestPushManyWaitDeliversEverything validates that PushManyWait blocks
// as needed but eventually enqueues every element, even when the batch
// is larger than the ring's capacity.
func TestPushManyWaitDeliversEverything(t *testing.T) {
	r := NewBothWaitSPSC[int]()
	if err := r.Allocate(allocator.HeapAllocator{}, 4); err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}

	done := make(chan struct{})
	go func() {
		r.PushManyWait(items)
		r.EndPopWaiting()
		close(done)
	}()

	dst := make([]int, 8)
	got := make([]int, 0, 100)
	for {
		n := r.PopManyWait(dst)
		if n == 0 {
			break
		}
		got = append(got, dst[:n]...)
	}
	<-done

	if len(got) != len(items) {
		t.Fatalf("consumed %d elements, want %d", len(got), len(items))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, want %d", i, v, i)
		}
	}
}
