package core

import (
	"fmt"
	"time"
)

// NoTimeout makes Acquire block until a resource is available or the
// caller's context is cancelled.
const NoTimeout time.Duration = -1

type Options struct {
	// MinSize is the population the reaper replenishes towards. The
	// pool is filled to MinSize eagerly at Open.
	MinSize uint32
	// MaxSize bounds idle + in-use + in-flight creations. Must be > 0.
	MaxSize uint32
	// AcquireTimeout bounds Acquire. Zero fails fast when the pool is
	// saturated, NoTimeout blocks until a resource frees up.
	AcquireTimeout time.Duration
	// IdleTimeout makes a slot eligible for eviction after sitting idle
	// this long. Zero disables idle eviction.
	IdleTimeout time.Duration
	// MaxLifetime evicts a slot this long after creation regardless of
	// use. Zero means unbounded.
	MaxLifetime time.Duration
	// ValidateOnAcquire runs Factory.Validate before handing out an
	// idle resource; failures destroy the slot and retry silently.
	ValidateOnAcquire bool
	// ValidateOnRelease runs Factory.Validate before parking a returned
	// resource; failures destroy the slot instead of pooling it.
	ValidateOnRelease bool
	// ValidationTimeout bounds a single Validate call. A validator that
	// overruns it counts as a failure.
	ValidationTimeout time.Duration
	// ReapInterval is the reaper sweep period. Zero derives
	// IdleTimeout/2, falling back to 30s.
	ReapInterval time.Duration
	// WatchQueueSize enables the lifecycle event observer when > 0.
	WatchQueueSize uint64
}

var DefaultOptions = Options{
	MinSize:           0,
	MaxSize:           16,
	AcquireTimeout:    5 * time.Second,
	IdleTimeout:       time.Minute,
	MaxLifetime:       0,
	ValidateOnAcquire: false,
	ValidateOnRelease: false,
	ValidationTimeout: time.Second,
	ReapInterval:      0,
	WatchQueueSize:    0,
}

// Validate reports the first configuration violation, wrapped in
// ErrBadOptions. Open refuses to start on any violation.
func (o Options) Validate() error {
	if o.MaxSize == 0 {
		return fmt.Errorf("%w: max size must be larger than 0", ErrBadOptions)
	}
	if o.MinSize > o.MaxSize {
		return fmt.Errorf("%w: min size %d exceeds max size %d", ErrBadOptions, o.MinSize, o.MaxSize)
	}
	if o.AcquireTimeout < 0 && o.AcquireTimeout != NoTimeout {
		return fmt.Errorf("%w: negative acquire timeout", ErrBadOptions)
	}
	if o.IdleTimeout < 0 {
		return fmt.Errorf("%w: negative idle timeout", ErrBadOptions)
	}
	if o.MaxLifetime < 0 {
		return fmt.Errorf("%w: negative max lifetime", ErrBadOptions)
	}
	if o.ValidationTimeout < 0 {
		return fmt.Errorf("%w: negative validation timeout", ErrBadOptions)
	}
	if o.ReapInterval < 0 {
		return fmt.Errorf("%w: negative reap interval", ErrBadOptions)
	}
	return nil
}

func (o Options) reapInterval() time.Duration {
	if o.ReapInterval > 0 {
		return o.ReapInterval
	}
	if o.IdleTimeout > 0 {
		return o.IdleTimeout / 2
	}
	return 30 * time.Second
}
