package core

import (
	"errors"
)

var (
	// ErrClosed is returned by every operation on a closed pool.
	ErrClosed = errors.New("pool: closed")
	// ErrAcquireTimeout is returned when the pool's own acquire timeout
	// elapses before a resource becomes available. Caller-side context
	// cancellation surfaces the context error instead.
	ErrAcquireTimeout = errors.New("pool: acquire timed out")
	// ErrDoubleRelease is returned when a handle is released twice.
	ErrDoubleRelease = errors.New("pool: handle already released")
	// ErrBadOptions wraps every option validation failure.
	ErrBadOptions = errors.New("pool: invalid options")
	// ErrCreate wraps factory create failures surfaced to the acquirer
	// that triggered the growth.
	ErrCreate = errors.New("pool: create failed")
	// ErrWatchDisabled is returned by Watch when the pool was opened
	// with WatchQueueSize zero.
	ErrWatchDisabled = errors.New("pool: watch not enabled")
)
