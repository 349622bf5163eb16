package cloudresource

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for malformed calls
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when resolution finds no item by identifier or name
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when resolution finds several items with the same name
	ErrAmbiguous = errors.New("ambiguous name")
	// ErrItemNotFound is returned when a required item does not exist
	ErrItemNotFound = errors.New("item not found")
	// ErrDuplicateName is returned when creating a uniquely named item whose name is taken
	ErrDuplicateName = errors.New("duplicate name")
	// ErrUnsupportedConnector is returned by the factory for connectors it cannot serve
	ErrUnsupportedConnector = errors.New("unsupported connector")
	// ErrInvalidState is returned when the backend refuses an operation because of the item state
	ErrInvalidState = errors.New("invalid state")
	// ErrUnsupportedOperation is returned when a backend cannot perform an operation for a kind
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrInconsistentBackend is returned when a backend answer breaks a manager invariant
	ErrInconsistentBackend = errors.New("inconsistent backend response")
)

// NotFoundError reports that no item of Kind matches Value
type NotFoundError struct {
	Kind  Kind
	Value string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no item of type %q with identifier or name %q found", e.Kind, e.Value)
}

// Is matches ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AmbiguousError reports that several items of Kind are named Value
type AmbiguousError struct {
	Kind    Kind
	Value   string
	Matches int
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("there are %d items of type %q with the name %q - refer to the required item by identifier to resolve the ambiguity",
		e.Matches, e.Kind, e.Value)
}

// Is matches ErrAmbiguous
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}

// ItemNotFoundError reports that a required item does not exist
type ItemNotFoundError struct {
	Kind  Kind
	Value string
	Err   error
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("required %s %q does not exist", e.Kind, e.Value)
}

// Is matches ErrItemNotFound
func (e *ItemNotFoundError) Is(target error) bool {
	return target == ErrItemNotFound
}

// Unwrap returns the resolution failure
func (e *ItemNotFoundError) Unwrap() error {
	return e.Err
}

// DuplicateNameError reports an attempt to reuse the name of a uniquely named item
type DuplicateNameError struct {
	Kind Kind
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("items of type %q with duplicate names are not allowed: %q", e.Kind, e.Name)
}

// Is matches ErrDuplicateName
func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// UnsupportedConnectorError reports a connector the factory has no manager for
type UnsupportedConnectorError struct {
	Connector string
	Kind      Kind
}

func (e *UnsupportedConnectorError) Error() string {
	return fmt.Sprintf("no %s manager for connector of type %s", e.Kind, e.Connector)
}

// Is matches ErrUnsupportedConnector
func (e *UnsupportedConnectorError) Is(target error) bool {
	return target == ErrUnsupportedConnector
}

// InvalidStateError reports that the backend refused an operation on Identifier
type InvalidStateError struct {
	Kind       Kind
	Identifier string
	Err        error
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %q is in a state that forbids the operation: %v", e.Kind, e.Identifier, e.Err)
}

// Is matches ErrInvalidState
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// Unwrap returns the backend error
func (e *InvalidStateError) Unwrap() error {
	return e.Err
}
