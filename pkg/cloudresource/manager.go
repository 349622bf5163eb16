package cloudresource

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
)

// Variant names the backend family a connector talks to
type Variant string

const (
	// VariantOpenStack selects the OpenStack backend
	VariantOpenStack Variant = "openstack"
	// VariantAWS selects the AWS backend
	VariantAWS Variant = "aws"
	// VariantMock selects the in-memory backend
	VariantMock Variant = "mock"
)

// Connector identifies the backend a manager talks to
type Connector interface {
	// Variant returns the backend family
	Variant() Variant
}

// Manager defines the operations shared by all resource managers
type Manager[T Item] interface {
	// ItemType returns the kind of items the manager handles
	ItemType() Kind

	// Connector returns the connector the manager was built with
	Connector() Connector

	// GetByID returns the item with the given identifier. The boolean is false
	// when no such item exists.
	GetByID(ctx context.Context, id string) (T, bool, error)

	// GetByName returns every item with the given name
	GetByName(ctx context.Context, name string) ([]T, error)

	// GetAll returns all items, duplicates collapsed by value
	GetAll(ctx context.Context) ([]T, error)

	// Create creates the item described by model, which must not have an
	// identifier, and returns it with the backend assigned identifier
	Create(ctx context.Context, model T) (T, error)

	// Delete deletes the item selected by target
	Delete(ctx context.Context, target DeleteTarget) error
}

// DeleteTarget selects the item to delete. Exactly one of Item and Identifier
// is required; when both are given their identifiers must agree.
type DeleteTarget struct {
	Item       Item
	Identifier string
}

// ByID returns a DeleteTarget for an identifier
func ByID(id string) DeleteTarget {
	return DeleteTarget{Identifier: id}
}

// ByItem returns a DeleteTarget for an item
func ByItem(item Item) DeleteTarget {
	return DeleteTarget{Item: item}
}

// ResolveIdentifier validates the target and returns the identifier to delete
func (t DeleteTarget) ResolveIdentifier() (string, error) {
	hasItem := !isNil(t.Item)
	switch {
	case !hasItem && t.Identifier == "":
		return "", fmt.Errorf("%w: an item or identifier must be provided", ErrInvalidInput)
	case hasItem && t.Identifier != "" && t.Item.GetIdentifier() != t.Identifier:
		return "", fmt.Errorf("%w: an item has been given with the identifier %q, along with a different identifier %q - provide either the item or the identifier",
			ErrInvalidInput, t.Item.GetIdentifier(), t.Identifier)
	case hasItem && t.Item.GetIdentifier() == "":
		return "", fmt.Errorf("%w: item %q has no identifier", ErrInvalidInput, t.Item.GetName())
	case hasItem:
		return t.Item.GetIdentifier(), nil
	default:
		return t.Identifier, nil
	}
}

// ManagerOptions holds settings shared by manager implementations
type ManagerOptions struct {
	Logger logr.Logger
}

// ManagerOption is a function that configures a manager
type ManagerOption func(*ManagerOptions)

// WithLogger sets the logger managers report operations to
func WithLogger(logger logr.Logger) ManagerOption {
	return func(o *ManagerOptions) {
		o.Logger = logger
	}
}

// BuildOptions applies opts over the defaults
func BuildOptions(opts ...ManagerOption) ManagerOptions {
	o := ManagerOptions{Logger: logr.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// RequireNoIdentifier rejects models that already carry an identifier
func RequireNoIdentifier(model Item) error {
	if isNil(model) {
		return fmt.Errorf("%w: a model is required", ErrInvalidInput)
	}
	if model.GetIdentifier() != "" {
		return fmt.Errorf("%w: model %q already has identifier %q", ErrInvalidInput, model.GetName(), model.GetIdentifier())
	}
	return nil
}
