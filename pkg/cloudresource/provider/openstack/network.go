package openstack

import (
	"context"
	"fmt"
	"slices"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/lazy"
	"github.com/go-logr/logr"
	"github.com/gophercloud/gophercloud/openstack/networking/v2/networks"
)

// NetworkManager manages Neutron networks
type NetworkManager struct {
	cr.Converting[*cr.Network, networks.Network]

	connector *Connector
	api       *lazy.Value[NetworkAPI]
	log       logr.Logger
}

// NewNetworkManager returns a network manager for the connector's project
func NewNetworkManager(conn *Connector, opts ...cr.ManagerOption) *NetworkManager {
	return newNetworkManager(conn, lazy.New(func(ctx context.Context) (NetworkAPI, error) {
		return conn.newNetworkClient(ctx)
	}), opts)
}

func newNetworkManager(conn *Connector, api *lazy.Value[NetworkAPI], opts []cr.ManagerOption) *NetworkManager {
	o := cr.BuildOptions(opts...)
	m := &NetworkManager{
		connector: conn,
		api:       api,
		log:       o.Logger.WithValues("backend", cr.VariantOpenStack, "kind", cr.KindNetwork),
	}
	m.Converting = cr.Converting[*cr.Network, networks.Network]{Backend: m, Convert: convertNetwork}
	return m
}

// ItemType returns KindNetwork
func (m *NetworkManager) ItemType() cr.Kind {
	return cr.KindNetwork
}

// Connector returns the OpenStack connector
func (m *NetworkManager) Connector() cr.Connector {
	return m.connector
}

// RawGetByID lists the networks with the given identifier, expecting at most one
func (m *NetworkManager) RawGetByID(ctx context.Context, id string) (networks.Network, bool, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return networks.Network{}, false, err
	}

	list, err := api.ListNetworks(networks.ListOpts{ID: id})
	if err != nil {
		return networks.Network{}, false, err
	}
	switch len(list) {
	case 0:
		return networks.Network{}, false, nil
	case 1:
		return list[0], true, nil
	default:
		return networks.Network{}, false, fmt.Errorf("%w: %d networks share identifier %q", cr.ErrInconsistentBackend, len(list), id)
	}
}

// RawGetByName lists the networks named name
func (m *NetworkManager) RawGetByName(ctx context.Context, name string) ([]networks.Network, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}

	list, err := api.ListNetworks(networks.ListOpts{Name: name})
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(list, func(n networks.Network) bool {
		return n.Name != name
	}), nil
}

// RawGetAll lists the networks visible to the project
func (m *NetworkManager) RawGetAll(ctx context.Context) ([]networks.Network, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}
	return api.ListNetworks(networks.ListOpts{})
}

// Create creates a network
func (m *NetworkManager) Create(ctx context.Context, model *cr.Network) (*cr.Network, error) {
	if err := cr.RequireNoIdentifier(model); err != nil {
		return nil, err
	}
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}

	network, err := api.CreateNetwork(networks.CreateOpts{Name: model.Name})
	if err != nil {
		return nil, err
	}

	m.log.Info("Created network", "id", network.ID, "name", network.Name)
	return convertNetwork(*network)
}

// Delete deletes the network. Neutron refuses while ports are still attached.
func (m *NetworkManager) Delete(ctx context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	api, err := m.api.Get(ctx)
	if err != nil {
		return err
	}

	err = api.DeleteNetwork(id)
	if isConflict(err) {
		return &cr.InvalidStateError{Kind: cr.KindNetwork, Identifier: id, Err: err}
	}
	if err != nil {
		return err
	}
	m.log.Info("Deleted network", "id", id)
	return nil
}

func convertNetwork(n networks.Network) (*cr.Network, error) {
	return &cr.Network{Metadata: cr.Metadata{Identifier: n.ID, Name: n.Name}}, nil
}
