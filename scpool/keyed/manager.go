// Package keyed fronts one pool per key, the shape used for per-host
// connection pooling. Sub-pools are created on first acquire, kept in
// an LRU so cold keys fall away, and swept on a schedule.
package keyed

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/robfig/cron/v3"

	"github.com/sjy-dv/scpool/scpool/core"
	"github.com/sjy-dv/scpool/scpool/pkg/limiter"
)

type Options struct {
	// MaxPools caps live sub-pools. The least recently used sub-pool
	// is closed when a new key would exceed it.
	MaxPools int
	// MaxCheckouts caps checkouts across every key. Zero disables the
	// aggregate cap.
	MaxCheckouts uint32
	// CheckoutWait bounds the wait for an aggregate checkout unit.
	CheckoutWait time.Duration
	// SweepSpec schedules the empty-pool sweep, cron syntax.
	SweepSpec string
	// Pool configures each sub-pool.
	Pool core.Options
}

var DefaultOptions = Options{
	MaxPools:  64,
	SweepSpec: "@every 1m",
	Pool:      core.DefaultOptions,
}

// Manager owns the sub-pools. A sub-pool evicted or swept while one of
// its resources is checked out drains cleanly: closing a pool destroys
// in-use resources only as they are released.
type Manager[T any] struct {
	opts       Options
	newFactory func(key string) core.Factory[T]

	mu     sync.Mutex
	pools  *lru.Cache[string, *core.Pool[T]]
	lim    limiter.Limiter
	cron   *cron.Cron
	closed bool
}

func NewManager[T any](opts Options, newFactory func(key string) core.Factory[T]) (*Manager[T], error) {
	if newFactory == nil {
		return nil, fmt.Errorf("%w: nil factory builder", core.ErrBadOptions)
	}
	if opts.MaxPools <= 0 {
		opts.MaxPools = DefaultOptions.MaxPools
	}
	if opts.SweepSpec == "" {
		opts.SweepSpec = DefaultOptions.SweepSpec
	}
	if err := opts.Pool.Validate(); err != nil {
		return nil, err
	}
	m := &Manager[T]{
		opts:       opts,
		newFactory: newFactory,
	}
	// evicted pools close on their own goroutine; the callback fires
	// under m.mu and Close runs factory destroys
	cache, err := lru.NewWithEvict[string, *core.Pool[T]](opts.MaxPools, func(_ string, pl *core.Pool[T]) {
		go pl.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("keyed:%w", err)
	}
	m.pools = cache
	if opts.MaxCheckouts > 0 {
		m.lim = limiter.NewTimeoutLimiter(opts.MaxCheckouts, opts.CheckoutWait)
	}
	m.cron = cron.New()
	if _, err := m.cron.AddFunc(opts.SweepSpec, m.sweep); err != nil {
		return nil, fmt.Errorf("%w: sweep spec %q", core.ErrBadOptions, opts.SweepSpec)
	}
	m.cron.Start()
	return m, nil
}

// Acquire checks a resource out of key's sub-pool, opening the
// sub-pool on first use.
func (m *Manager[T]) Acquire(ctx context.Context, key string) (*Handle[T], error) {
	if m.lim != nil && !m.lim.Allow() {
		return nil, core.ErrAcquireTimeout
	}
	pl, err := m.poolFor(key)
	if err != nil {
		m.revert()
		return nil, err
	}
	h, err := pl.Acquire(ctx)
	if err != nil {
		m.revert()
		return nil, err
	}
	return &Handle[T]{h: h, m: m}, nil
}

func (m *Manager[T]) poolFor(key string) (*core.Pool[T], error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, core.ErrClosed
	}
	if pl, ok := m.pools.Get(key); ok {
		m.mu.Unlock()
		return pl, nil
	}
	m.mu.Unlock()

	// Open dials MinSize resources; run it off the lock so one key's
	// slow backend never stalls the other keys.
	pl, err := core.Open(m.opts.Pool, m.newFactory(key))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		pl.Close()
		return nil, core.ErrClosed
	}
	if cur, ok := m.pools.Get(key); ok {
		// lost the race to a concurrent opener for the same key
		m.mu.Unlock()
		pl.Close()
		return cur, nil
	}
	m.pools.Add(key, pl)
	m.mu.Unlock()
	return pl, nil
}

func (m *Manager[T]) revert() {
	if m.lim != nil {
		m.lim.Revert()
	}
}

// sweep drops sub-pools that have gone completely quiet so a burst of
// one-off keys does not pin pools forever.
func (m *Manager[T]) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	for _, key := range m.pools.Keys() {
		pl, ok := m.pools.Peek(key)
		if !ok {
			continue
		}
		st := pl.Stats()
		if st.Idle == 0 && st.InUse == 0 && st.Creating == 0 && st.Waiters == 0 {
			m.pools.Remove(key)
		}
	}
}

// Stats snapshots every sub-pool by key.
func (m *Manager[T]) Stats() map[string]core.Stat {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]core.Stat, m.pools.Len())
	for _, key := range m.pools.Keys() {
		if pl, ok := m.pools.Peek(key); ok {
			out[key] = pl.Stats()
		}
	}
	return out
}

// Close stops the sweep and closes every sub-pool. The sub-pool closes
// run off the lock so a slow factory Destroy cannot wedge the manager.
// Idempotent.
func (m *Manager[T]) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	var pls []*core.Pool[T]
	for _, key := range m.pools.Keys() {
		if pl, ok := m.pools.Peek(key); ok {
			pls = append(pls, pl)
		}
	}
	m.mu.Unlock()

	<-m.cron.Stop().Done()

	for _, pl := range pls {
		pl.Close()
	}
	m.mu.Lock()
	m.pools.Purge()
	m.mu.Unlock()
}
