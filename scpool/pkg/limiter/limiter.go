// Package limiter provides small checkout guards used to cap concurrent
// holders of a shared resource.
package limiter

import "time"

// Limiter is a counting guard. Allow takes one unit if available and
// Revert gives it back. Every successful Allow must be paired with
// exactly one Revert.
type Limiter interface {
	Allow() bool
	Revert()
}

type defaultLimiter struct {
	c chan struct{}
}

// NewLimiter returns a non-blocking limiter with n units.
func NewLimiter(n uint32) Limiter {
	return &defaultLimiter{
		c: make(chan struct{}, n),
	}
}

func (l *defaultLimiter) Allow() bool {
	select {
	case l.c <- struct{}{}:
		return true
	default:
		return false
	}
}

func (l *defaultLimiter) Revert() {
	<-l.c
}

type timeoutLimiter struct {
	c       chan struct{}
	timeout time.Duration
}

// NewTimeoutLimiter returns a limiter with n units whose Allow waits up
// to timeout for a unit before giving up. A timeout of zero makes Allow
// non-blocking.
func NewTimeoutLimiter(n uint32, timeout time.Duration) Limiter {
	return &timeoutLimiter{
		c:       make(chan struct{}, n),
		timeout: timeout,
	}
}

func (l *timeoutLimiter) Allow() bool {
	if l.timeout <= 0 {
		select {
		case l.c <- struct{}{}:
			return true
		default:
			return false
		}
	}
	t := time.NewTimer(l.timeout)
	defer t.Stop()
	select {
	case l.c <- struct{}{}:
		return true
	case <-t.C:
		return false
	}
}

func (l *timeoutLimiter) Revert() {
	<-l.c
}
