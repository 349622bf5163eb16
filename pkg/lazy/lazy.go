// Package lazy provides values that are built on first use and then reused.
package lazy

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Value holds a lazily constructed value such as an authenticated client.
//
// Get is safe for concurrent use. At most one construction runs at a time;
// concurrent callers wait for it and share its result. A failed construction
// is not memoized, the next Get tries again.
type Value[T any] struct {
	build func(ctx context.Context) (T, error)

	group singleflight.Group
	mu    sync.RWMutex
	done  bool
	value T
}

// New returns a Value constructed by build on first use
func New[T any](build func(ctx context.Context) (T, error)) *Value[T] {
	return &Value[T]{build: build}
}

// Ready returns a Value that is already constructed
func Ready[T any](value T) *Value[T] {
	return &Value[T]{done: true, value: value}
}

// Get returns the value, constructing it if needed
func (v *Value[T]) Get(ctx context.Context) (T, error) {
	if value, ok := v.load(); ok {
		return value, nil
	}

	result, err, _ := v.group.Do("build", func() (any, error) {
		if value, ok := v.load(); ok {
			return value, nil
		}

		value, err := v.build(ctx)
		if err != nil {
			return nil, err
		}

		v.mu.Lock()
		v.value, v.done = value, true
		v.mu.Unlock()

		return value, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	value, _ := result.(T)
	return value, nil
}

// Built reports whether the value has been constructed
func (v *Value[T]) Built() bool {
	_, ok := v.load()
	return ok
}

func (v *Value[T]) load() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.value, v.done
}
