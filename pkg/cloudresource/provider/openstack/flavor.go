package openstack

import (
	"context"
	"fmt"
	"slices"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/lazy"
	"github.com/go-logr/logr"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/flavors"
)

// FlavorManager manages Nova flavors. Flavors are read-only.
type FlavorManager struct {
	cr.Converting[*cr.Flavor, flavors.Flavor]

	connector *Connector
	api       *lazy.Value[FlavorAPI]
	log       logr.Logger
}

// NewFlavorManager returns a flavor manager for the connector's project
func NewFlavorManager(conn *Connector, opts ...cr.ManagerOption) *FlavorManager {
	return newFlavorManager(conn, lazy.New(func(ctx context.Context) (FlavorAPI, error) {
		return conn.newComputeClient(ctx)
	}), opts)
}

func newFlavorManager(conn *Connector, api *lazy.Value[FlavorAPI], opts []cr.ManagerOption) *FlavorManager {
	o := cr.BuildOptions(opts...)
	m := &FlavorManager{
		connector: conn,
		api:       api,
		log:       o.Logger.WithValues("backend", cr.VariantOpenStack, "kind", cr.KindFlavor),
	}
	m.Converting = cr.Converting[*cr.Flavor, flavors.Flavor]{Backend: m, Convert: convertFlavor}
	return m
}

// ItemType returns KindFlavor
func (m *FlavorManager) ItemType() cr.Kind {
	return cr.KindFlavor
}

// Connector returns the OpenStack connector
func (m *FlavorManager) Connector() cr.Connector {
	return m.connector
}

// RawGetByID fetches the flavor with the given identifier
func (m *FlavorManager) RawGetByID(ctx context.Context, id string) (flavors.Flavor, bool, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return flavors.Flavor{}, false, err
	}

	flavor, err := api.GetFlavor(id)
	if isNotFound(err) {
		return flavors.Flavor{}, false, nil
	}
	if err != nil {
		return flavors.Flavor{}, false, err
	}
	return *flavor, true, nil
}

// RawGetByName returns the flavors named name. Nova has no name filter for flavors.
func (m *FlavorManager) RawGetByName(ctx context.Context, name string) ([]flavors.Flavor, error) {
	all, err := m.RawGetAll(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(f flavors.Flavor) bool {
		return f.Name != name
	}), nil
}

// RawGetAll lists the flavors visible to the project
func (m *FlavorManager) RawGetAll(ctx context.Context) ([]flavors.Flavor, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}
	return api.ListFlavors()
}

// Create is not supported for flavors
func (m *FlavorManager) Create(_ context.Context, model *cr.Flavor) (*cr.Flavor, error) {
	return nil, fmt.Errorf("%w: creating flavor %q", cr.ErrUnsupportedOperation, model.GetName())
}

// Delete is not supported for flavors
func (m *FlavorManager) Delete(_ context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: deleting flavor %q", cr.ErrUnsupportedOperation, id)
}

func convertFlavor(f flavors.Flavor) (*cr.Flavor, error) {
	return &cr.Flavor{Metadata: cr.Metadata{Identifier: f.ID, Name: f.Name}}, nil
}
