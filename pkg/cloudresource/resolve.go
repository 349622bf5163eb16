package cloudresource

import (
	"context"
	"errors"
	"fmt"
)

// Resolve converts a name or identifier into the canonical identifier of an
// item managed by m. An identifier match wins over a name match.
func Resolve[T Item](ctx context.Context, nameOrID string, m Manager[T]) (string, error) {
	if nameOrID == "" {
		return "", fmt.Errorf("%w: an identifier or name of a %s must be provided", ErrInvalidInput, m.ItemType())
	}

	if _, ok, err := m.GetByID(ctx, nameOrID); err != nil {
		return "", err
	} else if ok {
		return nameOrID, nil
	}

	items, err := m.GetByName(ctx, nameOrID)
	if err != nil {
		return "", err
	}

	switch len(items) {
	case 0:
		return "", &NotFoundError{Kind: m.ItemType(), Value: nameOrID}
	case 1:
		return items[0].GetIdentifier(), nil
	default:
		return "", &AmbiguousError{Kind: m.ItemType(), Value: nameOrID, Matches: len(items)}
	}
}

// ResolveExisting resolves nameOrID like Resolve, reporting a missing item as
// an ItemNotFoundError so callers can tell it apart from malformed input.
func ResolveExisting[T Item](ctx context.Context, nameOrID string, m Manager[T]) (string, error) {
	id, err := Resolve(ctx, nameOrID, m)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return "", &ItemNotFoundError{Kind: notFound.Kind, Value: notFound.Value, Err: err}
		}
		return "", err
	}
	return id, nil
}

// AssertExists returns true when nameOrID refers to exactly one item managed by m
func AssertExists[T Item](ctx context.Context, nameOrID string, m Manager[T]) (bool, error) {
	if _, err := ResolveExisting(ctx, nameOrID, m); err != nil {
		return false, err
	}
	return true, nil
}
