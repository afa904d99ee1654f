package core

import (
	"context"
	"time"

	"github.com/sjy-dv/scpool/scpool/pkg/delay"
	"github.com/sjy-dv/scpool/scpool/pkg/log"
)

// reap sweeps the idle set on a fixed interval until the pool closes.
// In-use slots are never touched.
func (p *Pool[T]) reap() {
	ticker := time.NewTicker(p.opts.reapInterval())
	defer ticker.Stop()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.reapOnce(time.Now())
		}
	}
}

// reapOnce evicts idle-timeout and max-lifetime slots oldest-first,
// stopping at the MinSize floor. At the floor a lifetime-expired slot
// is only retired once a replacement exists (create before destroy),
// so the pool never dips for the sake of an eviction. Afterwards the
// population is replenished towards MinSize.
func (p *Pool[T]) reapOnce(now time.Time) {
	var expired []*slot[T]
	var doomed []*slot[T]
	var replace []*slot[T]

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.idle.FindReleasedAsc(func(id string, _ int64) bool {
		s := p.slots[id]
		idleOut := p.opts.IdleTimeout > 0 && now.Sub(s.lastReleasedAt) > p.opts.IdleTimeout
		lifeOut := p.opts.MaxLifetime > 0 && now.Sub(s.createdAt) > p.opts.MaxLifetime
		if idleOut || lifeOut {
			expired = append(expired, s)
		}
		return true
	})
	for _, s := range expired {
		if p.liveLocked()-1 >= p.opts.MinSize {
			p.evictIdleLocked(s)
			doomed = append(doomed, s)
			continue
		}
		if p.opts.MaxLifetime > 0 && now.Sub(s.createdAt) > p.opts.MaxLifetime {
			replace = append(replace, s)
		}
	}
	p.mu.Unlock()

	for _, s := range doomed {
		log.Debug("pool: evict slot ", s.id)
		p.observe(ObserveActionEvict, s)
		p.destroy(s)
	}
	for _, s := range replace {
		p.replaceSlot(s)
	}
	p.replenish()
}

// replaceSlot retires a lifetime-expired slot sitting at the MinSize
// floor without letting the population dip: the replacement is created
// first, the old slot destroyed after.
func (p *Pool[T]) replaceSlot(old *slot[T]) {
	p.mu.Lock()
	if p.closed || old.state != SlotIdle || p.liveLocked() >= p.opts.MaxSize {
		p.mu.Unlock()
		return
	}
	p.addCreating(1)
	p.mu.Unlock()

	ns, err := p.createSlot(context.Background())
	if err != nil {
		// keep the old slot alive until the next sweep
		return
	}

	p.mu.Lock()
	if old.state == SlotIdle {
		p.evictIdleLocked(old)
		p.parkIdleLocked(ns, time.Now())
		p.mu.Unlock()
		log.Debug("pool: replace slot ", old.id, " with ", ns.id)
		p.observe(ObserveActionEvict, old)
		p.destroy(old)
		return
	}
	// old got acquired in the meantime; just keep the newcomer
	p.parkIdleLocked(ns, time.Now())
	p.mu.Unlock()
}

// replenish grows the pool back towards MinSize, pacing factory
// failures with an exponential delay and leaving the rest to the next
// sweep after a few misses.
func (p *Pool[T]) replenish() {
	d := delay.NewTempDelay(0, 0)
	fails := 0
	for {
		p.mu.Lock()
		if p.closed || p.liveLocked() >= p.opts.MinSize {
			p.mu.Unlock()
			return
		}
		p.addCreating(1)
		p.mu.Unlock()

		s, err := p.createSlot(context.Background())
		if err != nil {
			fails++
			if fails >= 3 {
				return
			}
			time.Sleep(d.GetDelay())
			continue
		}
		p.mu.Lock()
		p.parkIdleLocked(s, time.Now())
		p.mu.Unlock()
	}
}
