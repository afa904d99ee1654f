package core

import "sync/atomic"

// Stat is a point-in-time snapshot of the pool. It is assembled from
// lock-free counters so taking one never blocks acquire or release;
// the gauges may be momentarily inconsistent with each other.
type Stat struct {
	Idle     int64
	InUse    int64
	Creating int64
	Waiters  int64

	Created            uint64
	Destroyed          uint64
	ValidationFailures uint64
	AcquireTimeouts    uint64
}

func (p *Pool[T]) Stats() Stat {
	return Stat{
		Idle:     atomic.LoadInt64(&p.idleN),
		InUse:    atomic.LoadInt64(&p.inUseN),
		Creating: atomic.LoadInt64(&p.creating),
		Waiters:  atomic.LoadInt64(&p.waitersN),

		Created:            atomic.LoadUint64(&p.created),
		Destroyed:          atomic.LoadUint64(&p.destroyed),
		ValidationFailures: atomic.LoadUint64(&p.validationFails),
		AcquireTimeouts:    atomic.LoadUint64(&p.acquireTimeouts),
	}
}
