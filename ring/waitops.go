package ring

// pushWait, pushManyWait, popWait, popManyWait, endPopWaiting and
// resetPopWaiting live on base but are unexported: a plain SPSC must not
// gain them just because base implements them, so only the wrapper
// types below that were built with the matching wake flag re-export
// them. This is the compile-time enforcement the four separate exported
// types in policy.go exist for.

// pushWait blocks until v is enqueued. It only makes sense to call on a
// ring allocated with wakeProducerOnPop set, since otherwise nothing
// will ever wake it once the ring is full.
func (b *base[T]) pushWait(v T) {
	for !b.TryPush(v) {
		b.waiter.Wait(b.capacity)
	}
}

// pushManyWait blocks, pushing as many elements of items as the ring
// will hold at a time, until every element has been enqueued.
func (b *base[T]) pushManyWait(items []T) {
	for {
		items = b.PushMany(items)
		if len(items) == 0 {
			return
		}
		b.waiter.Wait(b.capacity)
	}
}

// popWait blocks until an element is available or the stream has been
// permanently closed via endPopWaiting, in which case it returns the
// zero value and false. The wake word is checked with acquire ordering
// (via size.Load, which sync/atomic already gives happens-before
// semantics for) so a consumer observing the terminal flag has also
// observed every push that happened before the close — see DESIGN.md's
// resolved Open Question on PopWait/PopManyWait ordering.
func (b *base[T]) popWait() (T, bool) {
	for {
		if v, ok := b.TryPop(); ok {
			return v, true
		}
		b.waiter.Wait(0)
		if b.size.Load() == terminalFlag {
			var zero T
			return zero, false
		}
	}
}

// popManyWait blocks until at least one element is available to fill
// dst or the stream has closed, in which case it returns 0.
func (b *base[T]) popManyWait(dst []T) int {
	for {
		if n := b.PopMany(dst); n > 0 {
			return n
		}
		b.waiter.Wait(0)
		if b.size.Load() == terminalFlag {
			return 0
		}
	}
}

// endPopWaiting sets the terminal flag, permanently unblocking any
// current or future popWait/popManyWait call once the ring drains. It
// wakes the consumer immediately if the ring happens to be empty right
// now; otherwise the consumer will observe the flag the next time it
// empties the ring and calls popWait again.
func (b *base[T]) endPopWaiting() {
	prior := b.fetchOrSize(terminalFlag)
	if prior == 0 {
		b.waiter.Wake()
	}
}

// resetPopWaiting clears the terminal flag, re-arming a closed ring for
// another round of blocking pops. The caller is responsible for not
// racing this against an in-flight popWait/popManyWait on the old
// generation.
func (b *base[T]) resetPopWaiting() {
	b.fetchAndSize(^terminalFlag)
}

// PushWait blocks until v is enqueued. Producer-only.
func (r *PushWaitSPSC[T]) PushWait(v T) { r.base.pushWait(v) }

// PushManyWait blocks until every element of items has been enqueued.
// Producer-only.
func (r *PushWaitSPSC[T]) PushManyWait(items []T) { r.base.pushManyWait(items) }

// PushWait blocks until v is enqueued. Producer-only.
func (r *BothWaitSPSC[T]) PushWait(v T) { r.base.pushWait(v) }

// PushManyWait blocks until every element of items has been enqueued.
// Producer-only.
func (r *BothWaitSPSC[T]) PushManyWait(items []T) { r.base.pushManyWait(items) }

// PopWait blocks until an element is available or the stream closes.
// Consumer-only.
func (r *PopWaitSPSC[T]) PopWait() (T, bool) { return r.base.popWait() }

// PopManyWait blocks until dst can be at least partially filled or the
// stream closes. Consumer-only.
func (r *PopWaitSPSC[T]) PopManyWait(dst []T) int { return r.base.popManyWait(dst) }

// EndPopWaiting permanently unblocks PopWait/PopManyWait once the ring
// drains. Producer-only: only the producer knows no more pushes are
// coming.
func (r *PopWaitSPSC[T]) EndPopWaiting() { r.base.endPopWaiting() }

// ResetPopWaiting re-arms a closed ring for another round of blocking
// pops.
func (r *PopWaitSPSC[T]) ResetPopWaiting() { r.base.resetPopWaiting() }

// PopWait blocks until an element is available or the stream closes.
// Consumer-only.
func (r *BothWaitSPSC[T]) PopWait() (T, bool) { return r.base.popWait() }

// PopManyWait blocks until dst can be at least partially filled or the
// stream closes. Consumer-only.
func (r *BothWaitSPSC[T]) PopManyWait(dst []T) int { return r.base.popManyWait(dst) }

// EndPopWaiting permanently unblocks PopWait/PopManyWait once the ring
// drains.
func (r *BothWaitSPSC[T]) EndPopWaiting() { r.base.endPopWaiting() }

// ResetPopWaiting re-arms a closed ring for another round of blocking
// pops.
func (r *BothWaitSPSC[T]) ResetPopWaiting() { r.base.resetPopWaiting() }
