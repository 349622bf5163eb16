package cloudresource

import (
	"context"
	"fmt"
)

// Erase wraps a typed manager so it can be used where the kind is only known
// at run time. Create rejects models of another kind.
func Erase[T Item](m Manager[T]) Manager[Item] {
	return erased[T]{typed: m}
}

// Unerase returns the typed manager behind an erased one
func Unerase[T Item](m Manager[Item]) (Manager[T], bool) {
	e, ok := m.(erased[T])
	if !ok {
		return nil, false
	}
	return e.typed, true
}

type erased[T Item] struct {
	typed Manager[T]
}

func (e erased[T]) ItemType() Kind {
	return e.typed.ItemType()
}

func (e erased[T]) Connector() Connector {
	return e.typed.Connector()
}

func (e erased[T]) GetByID(ctx context.Context, id string) (Item, bool, error) {
	item, ok, err := e.typed.GetByID(ctx, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	return item, true, nil
}

func (e erased[T]) GetByName(ctx context.Context, name string) ([]Item, error) {
	items, err := e.typed.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return upcast(items), nil
}

func (e erased[T]) GetAll(ctx context.Context) ([]Item, error) {
	items, err := e.typed.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return upcast(items), nil
}

func (e erased[T]) Create(ctx context.Context, model Item) (Item, error) {
	typed, ok := model.(T)
	if !ok {
		return nil, fmt.Errorf("%w: %s manager cannot create %T", ErrInvalidInput, e.typed.ItemType(), model)
	}
	created, err := e.typed.Create(ctx, typed)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (e erased[T]) Delete(ctx context.Context, target DeleteTarget) error {
	return e.typed.Delete(ctx, target)
}

func upcast[T Item](items []T) []Item {
	out := make([]Item, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
