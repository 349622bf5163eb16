package cloudresource

import (
	"context"
	"fmt"
)

// RawBackend defines the backend-facing reads a converting manager is built on.
// Records of type R are backend native and never leave the manager unconverted.
type RawBackend[R any] interface {
	// RawGetByID returns the record with the given identifier, false when absent
	RawGetByID(ctx context.Context, id string) (R, bool, error)

	// RawGetByName returns the records with the given name
	RawGetByName(ctx context.Context, name string) ([]R, error)

	// RawGetAll returns all records of the managed kind
	RawGetAll(ctx context.Context) ([]R, error)
}

// Converter turns a backend record into a domain model
type Converter[R any, T Item] func(raw R) (T, error)

// Converting implements the read operations of Manager on top of a RawBackend
// and a Converter. Backend managers embed it.
type Converting[T Item, R any] struct {
	Backend RawBackend[R]
	Convert Converter[R, T]
}

// GetByID converts the record with the given identifier
func (c Converting[T, R]) GetByID(ctx context.Context, id string) (T, bool, error) {
	var zero T

	raw, ok, err := c.Backend.RawGetByID(ctx, id)
	if err != nil || !ok {
		return zero, false, err
	}

	item, err := c.Convert(raw)
	if err != nil {
		return zero, false, fmt.Errorf("error converting record %q: %w", id, err)
	}
	if item.GetIdentifier() != id {
		return zero, false, fmt.Errorf("%w: asked for %s %q, got %q", ErrInconsistentBackend, item.Kind(), id, item.GetIdentifier())
	}

	return item, true, nil
}

// GetByName converts the records with the given name
func (c Converting[T, R]) GetByName(ctx context.Context, name string) ([]T, error) {
	raws, err := c.Backend.RawGetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	items, err := c.convertAll(raws)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if item.GetName() != name {
			return nil, fmt.Errorf("%w: name filter %q returned %s named %q", ErrInconsistentBackend, name, item.Kind(), item.GetName())
		}
	}

	return items, nil
}

// GetAll converts every record, collapsing equal items
func (c Converting[T, R]) GetAll(ctx context.Context) ([]T, error) {
	raws, err := c.Backend.RawGetAll(ctx)
	if err != nil {
		return nil, err
	}

	items, err := c.convertAll(raws)
	if err != nil {
		return nil, err
	}

	return Dedupe(items), nil
}

func (c Converting[T, R]) convertAll(raws []R) ([]T, error) {
	items := make([]T, 0, len(raws))
	for _, raw := range raws {
		item, err := c.Convert(raw)
		if err != nil {
			return nil, fmt.Errorf("error converting record: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}
