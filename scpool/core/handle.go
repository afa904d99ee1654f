package core

import (
	"sync/atomic"
	"time"
)

// Handle is one checkout of one resource. Release must be called
// exactly once; the zero use after release is a programmer error and
// reports ErrDoubleRelease without touching pool accounting.
type Handle[T any] struct {
	pool     *Pool[T]
	slot     *slot[T]
	released int32
}

// Resource returns the checked-out resource. Using it after Release
// is undefined.
func (h *Handle[T]) Resource() T {
	return h.slot.resource
}

// Release returns the resource to the pool. With ValidateOnRelease set
// a failing resource is destroyed instead of pooled. If callers are
// queued the resource is handed to the longest-waiting one directly.
func (h *Handle[T]) Release() error {
	if !atomic.CompareAndSwapInt32(&h.released, 0, 1) {
		return ErrDoubleRelease
	}
	return h.pool.put(h.slot)
}

func (p *Pool[T]) put(s *slot[T]) error {
	if p.opts.ValidateOnRelease && !p.validate(s.resource) {
		p.invalidate(s)
		return nil
	}
	now := time.Now()
	p.mu.Lock()
	s.useCount++
	if p.closed {
		// draining: destroy in-use slots as they come back
		delete(p.slots, s.id)
		s.state = SlotInvalid
		atomic.AddInt64(&p.inUseN, -1)
		p.mu.Unlock()
		p.destroy(s)
		return nil
	}
	s.lastReleasedAt = now
	// snapshot before the handoff; the slot's next owner may be
	// mutating it the moment mu is dropped
	id, uc := s.id, s.useCount
	p.parkIdleLocked(s, now)
	p.mu.Unlock()
	p.observeEvent(ObserveActionRelease, id, uc)
	return nil
}
