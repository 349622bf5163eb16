package mock

import (
	"context"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
)

// KeypairManager is the mock key-pair manager. Names are unique.
type KeypairManager struct {
	*ItemManager[*cr.Keypair]
}

// NewKeypairManager returns a key-pair manager backed by the connector's store
func NewKeypairManager(conn *Connector, opts ...cr.ManagerOption) *KeypairManager {
	m := newItemManager(conn, cr.KindKeypair, keypairs, opts)
	m.checkCreate = func(existing []*cr.Keypair, model *cr.Keypair) error {
		for _, k := range existing {
			if k.Name == model.Name {
				return &cr.DuplicateNameError{Kind: cr.KindKeypair, Name: model.Name}
			}
		}
		return nil
	}
	return &KeypairManager{ItemManager: m}
}

// InstanceManager is the mock instance manager
type InstanceManager struct {
	*ItemManager[*cr.Instance]
	deps cr.Dependencies
}

// NewInstanceManager returns an instance manager backed by the connector's
// store. deps supplies the managers used to resolve instance references.
func NewInstanceManager(conn *Connector, deps cr.Dependencies, opts ...cr.ManagerOption) *InstanceManager {
	return &InstanceManager{
		ItemManager: newItemManager(conn, cr.KindInstance, instances, opts),
		deps:        deps,
	}
}

// Create resolves the instance references then stores it
func (m *InstanceManager) Create(ctx context.Context, model *cr.Instance) (*cr.Instance, error) {
	return cr.CreateInstance(ctx, model, m.deps, m.ItemManager.Create)
}

// ImageManager is the mock image manager
type ImageManager struct {
	*ItemManager[*cr.Image]
}

// NewImageManager returns an image manager backed by the connector's store
func NewImageManager(conn *Connector, opts ...cr.ManagerOption) *ImageManager {
	return &ImageManager{ItemManager: newItemManager(conn, cr.KindImage, images, opts)}
}

// FlavorManager is the mock flavor manager
type FlavorManager struct {
	*ItemManager[*cr.Flavor]
}

// NewFlavorManager returns a flavor manager backed by the connector's store
func NewFlavorManager(conn *Connector, opts ...cr.ManagerOption) *FlavorManager {
	return &FlavorManager{ItemManager: newItemManager(conn, cr.KindFlavor, flavors, opts)}
}

// NetworkManager is the mock network manager
type NetworkManager struct {
	*ItemManager[*cr.Network]
}

// NewNetworkManager returns a network manager backed by the connector's store
func NewNetworkManager(conn *Connector, opts ...cr.ManagerOption) *NetworkManager {
	return &NetworkManager{ItemManager: newItemManager(conn, cr.KindNetwork, networks, opts)}
}
