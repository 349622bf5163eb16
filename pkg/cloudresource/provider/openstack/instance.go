package openstack

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/lazy"
	"github.com/go-logr/logr"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/extensions/keypairs"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/servers"
)

// InstanceManager manages Nova servers
type InstanceManager struct {
	cr.Converting[*cr.Instance, servers.Server]

	connector *Connector
	deps      cr.Dependencies
	api       *lazy.Value[ServerAPI]
	log       logr.Logger
}

// NewInstanceManager returns an instance manager for the connector's project.
// deps supplies the managers used to resolve instance references.
func NewInstanceManager(conn *Connector, deps cr.Dependencies, opts ...cr.ManagerOption) *InstanceManager {
	return newInstanceManager(conn, deps, lazy.New(func(ctx context.Context) (ServerAPI, error) {
		return conn.newComputeClient(ctx)
	}), opts)
}

func newInstanceManager(conn *Connector, deps cr.Dependencies, api *lazy.Value[ServerAPI], opts []cr.ManagerOption) *InstanceManager {
	o := cr.BuildOptions(opts...)
	m := &InstanceManager{
		connector: conn,
		deps:      deps,
		api:       api,
		log:       o.Logger.WithValues("backend", cr.VariantOpenStack, "kind", cr.KindInstance),
	}
	m.Converting = cr.Converting[*cr.Instance, servers.Server]{Backend: m, Convert: convertServer}
	return m
}

// ItemType returns KindInstance
func (m *InstanceManager) ItemType() cr.Kind {
	return cr.KindInstance
}

// Connector returns the OpenStack connector
func (m *InstanceManager) Connector() cr.Connector {
	return m.connector
}

// RawGetByID fetches the server with the given identifier
func (m *InstanceManager) RawGetByID(ctx context.Context, id string) (servers.Server, bool, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return servers.Server{}, false, err
	}

	m.log.V(1).Info("Getting server", "id", id)
	server, err := api.GetServer(id)
	if isNotFound(err) {
		return servers.Server{}, false, nil
	}
	if err != nil {
		return servers.Server{}, false, err
	}
	return *server, true, nil
}

// RawGetByName lists the servers named exactly name. Nova treats the name
// filter as a regular expression, so it is anchored and the results filtered.
func (m *InstanceManager) RawGetByName(ctx context.Context, name string) ([]servers.Server, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}

	list, err := api.ListServers(servers.ListOpts{Name: "^" + regexp.QuoteMeta(name) + "$"})
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(list, func(s servers.Server) bool {
		return s.Name != name
	}), nil
}

// RawGetAll lists every server of the project
func (m *InstanceManager) RawGetAll(ctx context.Context) ([]servers.Server, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}
	return api.ListServers(servers.ListOpts{})
}

// Create resolves the image, flavor, key-pair and network references of model
// and boots a server from the resolved identifiers
func (m *InstanceManager) Create(ctx context.Context, model *cr.Instance) (*cr.Instance, error) {
	return cr.CreateInstance(ctx, model, m.deps, m.createResolved)
}

func (m *InstanceManager) createResolved(ctx context.Context, resolved *cr.Instance) (*cr.Instance, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}

	serverOpts := servers.CreateOpts{
		Name:      resolved.Name,
		ImageRef:  resolved.Image,
		FlavorRef: resolved.Flavor,
	}
	if len(resolved.Networks) > 0 {
		nets := make([]servers.Network, 0, len(resolved.Networks))
		for _, id := range resolved.Networks {
			nets = append(nets, servers.Network{UUID: id})
		}
		serverOpts.Networks = nets
	}

	var opts servers.CreateOptsBuilder = serverOpts
	if resolved.KeyName != "" {
		opts = keypairs.CreateOptsExt{CreateOptsBuilder: serverOpts, KeyName: resolved.KeyName}
	}

	server, err := api.CreateServer(opts)
	if err != nil {
		return nil, fmt.Errorf("error creating server %q: %w", resolved.Name, err)
	}
	m.log.Info("Created server", "id", server.ID, "name", resolved.Name)

	created, ok, err := m.GetByID(ctx, server.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: server %q vanished after creation", cr.ErrInconsistentBackend, server.ID)
	}
	return created, nil
}

// Delete deletes the server. When Nova refuses because of the server state
// the state is reset and the deletion retried once.
func (m *InstanceManager) Delete(ctx context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	api, err := m.api.Get(ctx)
	if err != nil {
		return err
	}

	err = m.deleteServer(api, id)
	if !errors.Is(err, cr.ErrInvalidState) {
		return err
	}

	m.log.Info("Server in invalid state for deletion, resetting state and retrying", "id", id)
	if err := api.ResetServerState(id); err != nil {
		return fmt.Errorf("error resetting state of server %q: %w", id, err)
	}
	return m.deleteServer(api, id)
}

func (m *InstanceManager) deleteServer(api ServerAPI, id string) error {
	err := api.DeleteServer(id)
	if isConflict(err) {
		return &cr.InvalidStateError{Kind: cr.KindInstance, Identifier: id, Err: err}
	}
	if err != nil {
		return err
	}
	m.log.Info("Deleted server", "id", id)
	return nil
}

func convertServer(s servers.Server) (*cr.Instance, error) {
	networks := make([]string, 0, len(s.Addresses))
	for name := range s.Addresses {
		networks = append(networks, name)
	}
	slices.Sort(networks)

	return &cr.Instance{
		Metadata:   cr.Metadata{Identifier: s.ID, Name: s.Name},
		Timestamps: cr.Timestamps{CreatedAt: s.Created, UpdatedAt: s.Updated},
		Image:      stringAttr(s.Image, "id"),
		Flavor:     stringAttr(s.Flavor, "id"),
		KeyName:    s.KeyName,
		Networks:   networks,
		Status:     s.Status,
	}, nil
}

func stringAttr(attrs map[string]interface{}, key string) string {
	v, _ := attrs[key].(string)
	return v
}
