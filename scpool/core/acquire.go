package core

import (
	"context"
	"sync/atomic"
	"time"
)

// Acquire checks a resource out of the pool using the configured
// AcquireTimeout. See AcquireTimeout for the waiting rules.
func (p *Pool[T]) Acquire(ctx context.Context) (*Handle[T], error) {
	return p.AcquireTimeout(ctx, p.opts.AcquireTimeout)
}

// AcquireTimeout checks a resource out of the pool, waiting at most
// timeout. Zero fails fast with ErrAcquireTimeout when nothing is
// immediately available, NoTimeout waits until the context is
// cancelled. Reuse prefers the most recently released resource; when
// the pool is saturated callers queue and are served strictly in
// arrival order.
func (p *Pool[T]) AcquireTimeout(ctx context.Context, timeout time.Duration) (*Handle[T], error) {
	failFast := timeout == 0
	var timeoutCh <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timeoutCh = t.C
	}

	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrClosed
		}

		// warm idle slot first
		if s, ok := p.popIdleLocked(); ok {
			p.mu.Unlock()
			if p.opts.ValidateOnAcquire && !p.validate(s.resource) {
				p.invalidate(s)
				continue
			}
			return p.checkout(s), nil
		}

		// grow, unless earlier arrivals are already queued
		if len(p.waiters) == 0 && p.liveLocked() < p.opts.MaxSize {
			p.addCreating(1)
			p.mu.Unlock()
			s, err := p.createSlot(ctx)
			if err != nil {
				return nil, err
			}
			return p.checkout(s), nil
		}

		if failFast {
			p.mu.Unlock()
			atomic.AddUint64(&p.acquireTimeouts, 1)
			return nil, ErrAcquireTimeout
		}

		w := &waiter[T]{ch: make(chan grant[T], 1)}
		p.waiters = append(p.waiters, w)
		atomic.AddInt64(&p.waitersN, 1)
		p.mu.Unlock()

		select {
		case g := <-w.ch:
			switch {
			case g.permit:
				s, err := p.createSlot(ctx)
				if err != nil {
					return nil, err
				}
				return p.checkout(s), nil
			case g.s != nil:
				if p.opts.ValidateOnAcquire && !p.validate(g.s.resource) {
					// the handoff was this waiter's turn; trade the
					// dead slot for a create reservation in one
					// critical section so later arrivals cannot be
					// served first
					p.mu.Lock()
					delete(p.slots, g.s.id)
					g.s.state = SlotInvalid
					atomic.AddInt64(&p.inUseN, -1)
					closed := p.closed
					if !closed {
						p.addCreating(1)
					}
					p.mu.Unlock()
					p.teardown(g.s)
					if closed {
						return nil, ErrClosed
					}
					s, err := p.createSlot(ctx)
					if err != nil {
						return nil, err
					}
					return p.checkout(s), nil
				}
				return p.checkout(g.s), nil
			default:
				return nil, ErrClosed
			}
		case <-ctx.Done():
			p.abandon(w)
			return nil, ctx.Err()
		case <-timeoutCh:
			p.abandon(w)
			atomic.AddUint64(&p.acquireTimeouts, 1)
			return nil, ErrAcquireTimeout
		}
	}
}

func (p *Pool[T]) checkout(s *slot[T]) *Handle[T] {
	p.observe(ObserveActionAcquire, s)
	return &Handle[T]{pool: p, slot: s}
}

// abandon removes a timed-out or cancelled waiter from the queue. If a
// grant already raced into the waiter's channel it is recovered here:
// a slot goes back to the pool (or on to the next waiter), a permit's
// capacity reservation is returned. Nothing leaks.
func (p *Pool[T]) abandon(w *waiter[T]) {
	p.mu.Lock()
	for i, qw := range p.waiters {
		if qw == w {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			atomic.AddInt64(&p.waitersN, -1)
			p.mu.Unlock()
			return
		}
	}
	p.mu.Unlock()

	// Already dequeued: the grant send completed under mu before we
	// looked, so the channel is ready now.
	g := <-w.ch
	switch {
	case g.permit:
		p.mu.Lock()
		p.addCreating(-1)
		p.wakeCapacityLocked()
		p.mu.Unlock()
	case g.s != nil:
		now := time.Now()
		p.mu.Lock()
		if p.closed {
			delete(p.slots, g.s.id)
			g.s.state = SlotInvalid
			atomic.AddInt64(&p.inUseN, -1)
			p.mu.Unlock()
			p.destroy(g.s)
			return
		}
		p.parkIdleLocked(g.s, now)
		p.mu.Unlock()
	}
}
