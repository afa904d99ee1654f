package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sjy-dv/scpool/scpool/core/sysid"
	"github.com/sjy-dv/scpool/scpool/pkg/log"
	"github.com/sjy-dv/scpool/scpool/registry"
)

// Pool is a bounded, reusable pool of factory-built resources with
// timeout-bounded acquisition, FIFO waiter fairness, idle eviction and
// health-aware recycling. All methods are safe for concurrent use.
type Pool[T any] struct {
	opts    Options
	factory Factory[T]

	mu       sync.Mutex
	slots    map[string]*slot[T] // every live slot by id
	idle     registry.Accessor   // release-time ordered ids of idle slots
	waiters  []*waiter[T]        // FIFO
	creating int64               // in-flight factory creations, atomic mirror for Stats
	closed   bool

	// gauges, written under mu, read lock-free by Stats
	idleN    int64
	inUseN   int64
	waitersN int64

	// cumulative counters, atomics only
	created         uint64
	destroyed       uint64
	validationFails uint64
	acquireTimeouts uint64

	observer    *Observer
	observingCh chan *Event
	stopCh      chan struct{}
}

// grant is what wakes a queued waiter: a slot handed off from a
// release, a permit to create (capacity already reserved on the
// waiter's behalf), or the zero grant meaning the pool closed.
type grant[T any] struct {
	s      *slot[T]
	permit bool
}

type waiter[T any] struct {
	ch chan grant[T] // buffered 1, receives exactly one grant
}

// Open validates opts, fills the pool to MinSize and starts the reaper.
// A factory failure during the initial fill closes the pool and returns
// the wrapped create error.
func Open[T any](opts Options, factory Factory[T]) (*Pool[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	p := &Pool[T]{
		opts:    opts,
		factory: factory,
		slots:   make(map[string]*slot[T]),
		idle:    registry.NewAccessor(),
		stopCh:  make(chan struct{}),
	}
	if opts.WatchQueueSize > 0 {
		p.observer = NewObserver(opts.WatchQueueSize)
		p.observingCh = make(chan *Event)
		go p.observer.sendEvent(p.observingCh, p.stopCh)
	}
	for i := uint32(0); i < opts.MinSize; i++ {
		p.mu.Lock()
		p.addCreating(1)
		p.mu.Unlock()
		s, err := p.createSlot(context.Background())
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("open:%w", err)
		}
		p.mu.Lock()
		p.parkIdleLocked(s, time.Now())
		p.mu.Unlock()
	}
	go p.reap()
	return p, nil
}

// Close stops the pool. Subsequent acquires fail with ErrClosed, queued
// waiters are failed, idle resources are destroyed immediately and
// in-use resources are destroyed as they are released. Close is
// idempotent and never force-revokes a resource mid-use.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	ws := p.waiters
	p.waiters = nil
	atomic.AddInt64(&p.waitersN, -int64(len(ws)))
	var doomed []*slot[T]
	for id, s := range p.slots {
		if s.state != SlotIdle {
			continue
		}
		p.idle.Del(id)
		delete(p.slots, id)
		s.state = SlotInvalid
		atomic.AddInt64(&p.idleN, -1)
		doomed = append(doomed, s)
	}
	p.mu.Unlock()

	close(p.stopCh)
	for _, w := range ws {
		w.ch <- grant[T]{}
	}
	for _, s := range doomed {
		p.destroy(s)
	}
}

// Len returns the number of idle resources, like the free-list length
// of a channel pool.
func (p *Pool[T]) Len() int {
	return int(atomic.LoadInt64(&p.idleN))
}

// liveLocked is the capacity the pool currently accounts for. Caller
// must hold mu. The invariant idle + in-use + creating <= MaxSize is
// enforced against this value.
func (p *Pool[T]) liveLocked() uint32 {
	return uint32(len(p.slots)) + uint32(p.creating)
}

// addCreating adjusts the in-flight creation counter. Callers hold mu;
// the atomic write lets Stats read without it.
func (p *Pool[T]) addCreating(d int64) {
	atomic.AddInt64(&p.creating, d)
}

// parkIdleLocked returns a slot (currently counted in-use) to the pool:
// straight to the head waiter when one is queued, otherwise into the
// idle index. Handing off under mu while the slot is outside the idle
// index is what keeps the handoff from racing the reaper.
func (p *Pool[T]) parkIdleLocked(s *slot[T], now time.Time) {
	if len(p.waiters) > 0 {
		w := p.waiters[0]
		p.waiters = p.waiters[1:]
		atomic.AddInt64(&p.waitersN, -1)
		s.state = SlotInUse
		w.ch <- grant[T]{s: s}
		return
	}
	s.state = SlotIdle
	s.lastReleasedAt = now
	p.idle.Save(s.id, now.UnixNano())
	atomic.AddInt64(&p.inUseN, -1)
	atomic.AddInt64(&p.idleN, 1)
}

// popIdleLocked takes the most recently released idle slot; warm
// resources are preferred for reuse.
func (p *Pool[T]) popIdleLocked() (*slot[T], bool) {
	id, ok := p.idle.Newest()
	if !ok {
		return nil, false
	}
	p.idle.Del(id)
	s := p.slots[id]
	s.state = SlotInUse
	atomic.AddInt64(&p.idleN, -1)
	atomic.AddInt64(&p.inUseN, 1)
	return s, true
}

// evictIdleLocked drops an idle slot out of the registry. The caller
// destroys it after releasing mu.
func (p *Pool[T]) evictIdleLocked(s *slot[T]) {
	p.idle.Del(s.id)
	delete(p.slots, s.id)
	s.state = SlotInvalid
	atomic.AddInt64(&p.idleN, -1)
}

// wakeCapacityLocked hands the head waiter a create permit when
// capacity freed up without an idle slot to go with it. The reservation
// is made here so later arrivals cannot steal the permit.
func (p *Pool[T]) wakeCapacityLocked() {
	if p.closed || len(p.waiters) == 0 {
		return
	}
	if p.liveLocked() >= p.opts.MaxSize {
		return
	}
	w := p.waiters[0]
	p.waiters = p.waiters[1:]
	atomic.AddInt64(&p.waitersN, -1)
	p.addCreating(1)
	w.ch <- grant[T]{permit: true}
}

// createSlot runs the factory outside mu. The caller must have
// reserved capacity by incrementing creating; the reservation is
// consumed here exactly once on every path.
func (p *Pool[T]) createSlot(ctx context.Context) (*slot[T], error) {
	res, err := p.factory.Create(ctx)
	if err != nil {
		p.mu.Lock()
		p.addCreating(-1)
		p.wakeCapacityLocked()
		p.mu.Unlock()
		log.Warn("pool: create resource: ", err)
		return nil, fmt.Errorf("%w: %v", ErrCreate, err)
	}
	now := time.Now()
	s := &slot[T]{
		id:             sysid.NextID(),
		resource:       res,
		state:          SlotInUse,
		createdAt:      now,
		lastReleasedAt: now,
	}
	p.mu.Lock()
	p.addCreating(-1)
	if p.closed {
		p.mu.Unlock()
		if derr := p.factory.Destroy(res); derr != nil {
			log.Warn("pool: destroy resource: ", derr)
		}
		atomic.AddUint64(&p.destroyed, 1)
		return nil, ErrClosed
	}
	p.slots[s.id] = s
	atomic.AddInt64(&p.inUseN, 1)
	p.mu.Unlock()
	atomic.AddUint64(&p.created, 1)
	p.observe(ObserveActionCreate, s)
	return s, nil
}

// destroy tears a removed slot down. Capacity waiters are woken before
// the factory call so a slow Destroy never serializes acquirers.
func (p *Pool[T]) destroy(s *slot[T]) {
	p.mu.Lock()
	p.wakeCapacityLocked()
	p.mu.Unlock()
	p.teardown(s)
}

// teardown runs the factory destroy without touching the waiter queue.
// The caller decides what happens to the freed capacity.
func (p *Pool[T]) teardown(s *slot[T]) {
	if err := p.factory.Destroy(s.resource); err != nil {
		log.Warn("pool: destroy slot ", s.id, ": ", err)
	}
	atomic.AddUint64(&p.destroyed, 1)
	p.observe(ObserveActionDestroy, s)
}

// invalidate removes and destroys a slot currently checked out to the
// calling goroutine.
func (p *Pool[T]) invalidate(s *slot[T]) {
	p.mu.Lock()
	delete(p.slots, s.id)
	s.state = SlotInvalid
	atomic.AddInt64(&p.inUseN, -1)
	p.mu.Unlock()
	p.destroy(s)
}

// validate bounds a factory health check with ValidationTimeout. The
// check runs off the caller's context on purpose: a cancelled acquirer
// must not get a healthy resource destroyed on its way out.
func (p *Pool[T]) validate(res T) bool {
	ctx := context.Background()
	if p.opts.ValidationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.ValidationTimeout)
		defer cancel()
	}
	ok := p.factory.Validate(ctx, res)
	if ctx.Err() != nil {
		ok = false
	}
	if !ok {
		atomic.AddUint64(&p.validationFails, 1)
	}
	return ok
}

func (p *Pool[T]) observe(action ObserveActionType, s *slot[T]) {
	p.observeEvent(action, s.id, s.useCount)
}

// observeEvent takes the slot fields by value so callers can snapshot
// them under mu before the slot changes hands.
func (p *Pool[T]) observeEvent(action ObserveActionType, id string, useCount uint64) {
	if p.observer == nil {
		return
	}
	p.observer.putEvent(&Event{
		Action:   action,
		SlotID:   id,
		UseCount: useCount,
		At:       time.Now(),
	})
}

// Watch returns the lifecycle event stream. The pool must have been
// opened with WatchQueueSize > 0.
func (p *Pool[T]) Watch() (<-chan *Event, error) {
	if p.observer == nil {
		return nil, ErrWatchDisabled
	}
	return p.observingCh, nil
}
