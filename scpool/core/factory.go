package core

import "context"

// Factory is the pool's sole extension point. The pool never inspects
// a resource; opening a socket, allocating a buffer or tearing either
// down is entirely the factory's business.
type Factory[T any] interface {
	// Create produces a new resource. Failures are surfaced to the
	// acquirer that triggered the growth and never poison the pool.
	Create(ctx context.Context) (T, error)
	// Destroy releases a resource, best effort. It is never called
	// while the pool lock is held.
	Destroy(res T) error
	// Validate reports whether the resource is still usable. The pool
	// bounds the call with Options.ValidationTimeout; overrunning the
	// context counts as invalid.
	Validate(ctx context.Context, res T) bool
}

// FactoryFuncs adapts plain functions to Factory. CreateFunc is
// required; a nil DestroyFunc is a no-op and a nil ValidateFunc reports
// every resource healthy.
type FactoryFuncs[T any] struct {
	CreateFunc   func(ctx context.Context) (T, error)
	DestroyFunc  func(res T) error
	ValidateFunc func(ctx context.Context, res T) bool
}

func (f FactoryFuncs[T]) Create(ctx context.Context) (T, error) {
	return f.CreateFunc(ctx)
}

func (f FactoryFuncs[T]) Destroy(res T) error {
	if f.DestroyFunc == nil {
		return nil
	}
	return f.DestroyFunc(res)
}

func (f FactoryFuncs[T]) Validate(ctx context.Context, res T) bool {
	if f.ValidateFunc == nil {
		return true
	}
	return f.ValidateFunc(ctx, res)
}
