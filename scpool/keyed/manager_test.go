package keyed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjy-dv/scpool/scpool/core"
)

type keyRes struct {
	key string
	bad bool
}

type keyFactory struct {
	key string

	mu        *sync.Mutex
	live      map[string]int
	destroyed map[string]int
}

func (f *keyFactory) Create(ctx context.Context) (*keyRes, error) {
	f.mu.Lock()
	f.live[f.key]++
	f.mu.Unlock()
	return &keyRes{key: f.key}, nil
}

func (f *keyFactory) Destroy(r *keyRes) error {
	f.mu.Lock()
	f.live[r.key]--
	f.destroyed[r.key]++
	f.mu.Unlock()
	return nil
}

func (f *keyFactory) Validate(_ context.Context, r *keyRes) bool { return !r.bad }

type keyTracker struct {
	mu        sync.Mutex
	live      map[string]int
	destroyed map[string]int
}

func newKeyTracker() *keyTracker {
	return &keyTracker{live: make(map[string]int), destroyed: make(map[string]int)}
}

func (kt *keyTracker) builder() func(key string) core.Factory[*keyRes] {
	return func(key string) core.Factory[*keyRes] {
		return &keyFactory{key: key, mu: &kt.mu, live: kt.live, destroyed: kt.destroyed}
	}
}

func (kt *keyTracker) stat(key string) (live, destroyed int) {
	kt.mu.Lock()
	defer kt.mu.Unlock()
	return kt.live[key], kt.destroyed[key]
}

type gateFactory struct {
	gate chan struct{}
}

func (f *gateFactory) Create(ctx context.Context) (*keyRes, error) {
	<-f.gate
	return &keyRes{}, nil
}

func (f *gateFactory) Destroy(*keyRes) error { return nil }

func (f *gateFactory) Validate(context.Context, *keyRes) bool { return true }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func quietManagerOptions() Options {
	opts := DefaultOptions
	opts.Pool.IdleTimeout = 0
	opts.Pool.ReapInterval = time.Hour
	opts.SweepSpec = "@every 1h"
	return opts
}

func TestManagerKeyIsolation(t *testing.T) {
	kt := newKeyTracker()
	m, err := NewManager[*keyRes](quietManagerOptions(), kt.builder())
	require.NoError(t, err)
	defer m.Close()

	ha, err := m.Acquire(context.Background(), "alpha")
	require.NoError(t, err)
	hb, err := m.Acquire(context.Background(), "beta")
	require.NoError(t, err)

	assert.Equal(t, "alpha", ha.Resource().key)
	assert.Equal(t, "beta", hb.Resource().key)
	require.NoError(t, ha.Release())
	require.NoError(t, hb.Release())

	stats := m.Stats()
	assert.Len(t, stats, 2)
	assert.EqualValues(t, 1, stats["alpha"].Idle)
	assert.EqualValues(t, 1, stats["beta"].Idle)
}

func TestManagerEvictsLRUPool(t *testing.T) {
	kt := newKeyTracker()
	opts := quietManagerOptions()
	opts.MaxPools = 1
	m, err := NewManager[*keyRes](opts, kt.builder())
	require.NoError(t, err)
	defer m.Close()

	h, err := m.Acquire(context.Background(), "alpha")
	require.NoError(t, err)
	require.NoError(t, h.Release())

	// second key pushes alpha's pool out; its idle resource goes with
	// it once the evicted pool's close goroutine has run
	h, err = m.Acquire(context.Background(), "beta")
	require.NoError(t, err)
	require.NoError(t, h.Release())

	waitFor(t, func() bool {
		live, destroyed := kt.stat("alpha")
		return live == 0 && destroyed == 1
	})
	assert.Len(t, m.Stats(), 1)
}

func TestManagerAggregateCheckoutCap(t *testing.T) {
	kt := newKeyTracker()
	opts := quietManagerOptions()
	opts.MaxCheckouts = 1
	opts.CheckoutWait = 20 * time.Millisecond
	m, err := NewManager[*keyRes](opts, kt.builder())
	require.NoError(t, err)
	defer m.Close()

	h, err := m.Acquire(context.Background(), "alpha")
	require.NoError(t, err)

	// a different key still counts against the aggregate cap
	_, err = m.Acquire(context.Background(), "beta")
	assert.ErrorIs(t, err, core.ErrAcquireTimeout)

	require.NoError(t, h.Release())
	h2, err := m.Acquire(context.Background(), "beta")
	require.NoError(t, err)
	require.NoError(t, h2.Release())
}

func TestManagerSweepDropsEmptyPools(t *testing.T) {
	kt := newKeyTracker()
	opts := quietManagerOptions()
	opts.Pool.ValidateOnRelease = true
	m, err := NewManager[*keyRes](opts, kt.builder())
	require.NoError(t, err)
	defer m.Close()

	h, err := m.Acquire(context.Background(), "alpha")
	require.NoError(t, err)
	require.NoError(t, h.Release())

	// beta's only resource fails release validation, leaving its
	// sub-pool completely empty
	hb, err := m.Acquire(context.Background(), "beta")
	require.NoError(t, err)
	hb.Resource().bad = true
	require.NoError(t, hb.Release())
	require.Len(t, m.Stats(), 2)

	m.sweep()

	stats := m.Stats()
	assert.Len(t, stats, 1, "empty pools fall away on sweep")
	assert.Contains(t, stats, "alpha")
}

func TestSlowOpenDoesNotBlockOtherKeys(t *testing.T) {
	slowGate := make(chan struct{})
	fastGate := make(chan struct{})
	close(fastGate)

	opts := quietManagerOptions()
	opts.Pool.MinSize = 1 // Open dials eagerly, so a blocked factory blocks Open
	m, err := NewManager[*keyRes](opts, func(key string) core.Factory[*keyRes] {
		if key == "slow" {
			return &gateFactory{gate: slowGate}
		}
		return &gateFactory{gate: fastGate}
	})
	require.NoError(t, err)
	defer m.Close()

	slowDone := make(chan error, 1)
	go func() {
		h, err := m.Acquire(context.Background(), "slow")
		if err == nil {
			err = h.Release()
		}
		slowDone <- err
	}()
	// let the slow opener get stuck inside its factory
	time.Sleep(20 * time.Millisecond)

	start := time.Now()
	h, err := m.Acquire(context.Background(), "fast")
	require.NoError(t, err)
	require.NoError(t, h.Release())
	assert.Less(t, time.Since(start), time.Second, "fast key stalled behind the slow key's open")

	close(slowGate)
	require.NoError(t, <-slowDone)
}

func TestManagerDoubleRelease(t *testing.T) {
	kt := newKeyTracker()
	m, err := NewManager[*keyRes](quietManagerOptions(), kt.builder())
	require.NoError(t, err)
	defer m.Close()

	h, err := m.Acquire(context.Background(), "alpha")
	require.NoError(t, err)
	require.NoError(t, h.Release())
	assert.ErrorIs(t, h.Release(), core.ErrDoubleRelease)
}

func TestManagerCloseDrainsAllPools(t *testing.T) {
	kt := newKeyTracker()
	m, err := NewManager[*keyRes](quietManagerOptions(), kt.builder())
	require.NoError(t, err)

	for _, key := range []string{"alpha", "beta", "gamma"} {
		h, err := m.Acquire(context.Background(), key)
		require.NoError(t, err)
		require.NoError(t, h.Release())
	}
	m.Close()
	m.Close() // idempotent

	for _, key := range []string{"alpha", "beta", "gamma"} {
		live, destroyed := kt.stat(key)
		assert.Equal(t, 0, live, "key %s leaked", key)
		assert.Equal(t, 1, destroyed)
	}

	_, err = m.Acquire(context.Background(), "alpha")
	assert.ErrorIs(t, err, core.ErrClosed)
}
