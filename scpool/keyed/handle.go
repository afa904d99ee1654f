package keyed

import (
	"sync/atomic"

	"github.com/sjy-dv/scpool/scpool/core"
)

// Handle wraps a sub-pool checkout so the aggregate checkout unit is
// given back exactly once on release.
type Handle[T any] struct {
	h        *core.Handle[T]
	m        *Manager[T]
	released int32
}

func (h *Handle[T]) Resource() T {
	return h.h.Resource()
}

func (h *Handle[T]) Release() error {
	if !atomic.CompareAndSwapInt32(&h.released, 0, 1) {
		return core.ErrDoubleRelease
	}
	err := h.h.Release()
	h.m.revert()
	return err
}
