// Package lazy provides a thread-safe holder for a value that is computed
// exactly once, on first use. The broker's process-wide singletons (the
// policy handle set, the trusted-context bootstrap) are published through
// these holders: an unsynchronized fast-path read, a per-instance lock for
// the one-time compute, and a lock-free read path afterwards.
package lazy

import (
	"sync"
	"sync/atomic"
)

// Value holds a T computed once by a supplier. A failed compute is cached
// and returned on every subsequent Get; suppliers are never retried.
type Value[T any] struct {
	done     atomic.Bool
	mu       sync.Mutex
	supplier func() (T, error)
	value    T
	err      error
}

// Of returns an uninitialized holder that will use supplier on first Get.
func Of[T any](supplier func() (T, error)) *Value[T] {
	return &Value[T]{supplier: supplier}
}

// Get returns the held value, computing it if this is the first call.
// The supplier reference is dropped after the compute so its captured
// state becomes collectable.
func (l *Value[T]) Get() (T, error) {
	if l.done.Load() {
		return l.value, l.err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.done.Load() {
		l.value, l.err = l.supplier()
		l.supplier = nil
		l.done.Store(true)
	}
	return l.value, l.err
}

// Initialized reports whether the value has been computed.
func (l *Value[T]) Initialized() bool {
	return l.done.Load()
}
