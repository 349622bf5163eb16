package openstack

import (
	"context"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/lazy"
	"github.com/go-logr/logr"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/extensions/keypairs"
)

// KeypairManager manages Nova key-pairs. Nova addresses key-pairs by name, so
// the identifier of a key-pair is its name.
type KeypairManager struct {
	cr.Converting[*cr.Keypair, keypairs.KeyPair]

	connector *Connector
	api       *lazy.Value[KeypairAPI]
	log       logr.Logger
}

// NewKeypairManager returns a key-pair manager for the connector's project
func NewKeypairManager(conn *Connector, opts ...cr.ManagerOption) *KeypairManager {
	return newKeypairManager(conn, lazy.New(func(ctx context.Context) (KeypairAPI, error) {
		return conn.newComputeClient(ctx)
	}), opts)
}

func newKeypairManager(conn *Connector, api *lazy.Value[KeypairAPI], opts []cr.ManagerOption) *KeypairManager {
	o := cr.BuildOptions(opts...)
	m := &KeypairManager{
		connector: conn,
		api:       api,
		log:       o.Logger.WithValues("backend", cr.VariantOpenStack, "kind", cr.KindKeypair),
	}
	m.Converting = cr.Converting[*cr.Keypair, keypairs.KeyPair]{Backend: m, Convert: convertKeypair}
	return m
}

// ItemType returns KindKeypair
func (m *KeypairManager) ItemType() cr.Kind {
	return cr.KindKeypair
}

// Connector returns the OpenStack connector
func (m *KeypairManager) Connector() cr.Connector {
	return m.connector
}

// RawGetByID fetches the key-pair with the given name
func (m *KeypairManager) RawGetByID(ctx context.Context, id string) (keypairs.KeyPair, bool, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return keypairs.KeyPair{}, false, err
	}

	m.log.V(1).Info("Getting keypair", "id", id)
	kp, err := api.GetKeypair(id)
	if isNotFound(err) {
		return keypairs.KeyPair{}, false, nil
	}
	if err != nil {
		return keypairs.KeyPair{}, false, err
	}
	return *kp, true, nil
}

// RawGetByName fetches the key-pair with the given name
func (m *KeypairManager) RawGetByName(ctx context.Context, name string) ([]keypairs.KeyPair, error) {
	kp, ok, err := m.RawGetByID(ctx, name)
	if err != nil || !ok {
		return nil, err
	}
	return []keypairs.KeyPair{kp}, nil
}

// RawGetAll lists the key-pairs of the user
func (m *KeypairManager) RawGetAll(ctx context.Context) ([]keypairs.KeyPair, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}
	return api.ListKeypairs()
}

// Create uploads the public key of model, or lets Nova generate a key-pair when it has none
func (m *KeypairManager) Create(ctx context.Context, model *cr.Keypair) (*cr.Keypair, error) {
	if err := cr.RequireNoIdentifier(model); err != nil {
		return nil, err
	}
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}

	kp, err := api.CreateKeypair(keypairs.CreateOpts{Name: model.Name, PublicKey: model.PublicKey()})
	if isConflict(err) {
		return nil, &cr.DuplicateNameError{Kind: cr.KindKeypair, Name: model.Name}
	}
	if err != nil {
		return nil, err
	}

	m.log.Info("Created keypair", "name", kp.Name)
	return convertKeypair(*kp)
}

// Delete deletes the key-pair
func (m *KeypairManager) Delete(ctx context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	api, err := m.api.Get(ctx)
	if err != nil {
		return err
	}

	if err := api.DeleteKeypair(id); err != nil {
		return err
	}
	m.log.Info("Deleted keypair", "name", id)
	return nil
}

func convertKeypair(kp keypairs.KeyPair) (*cr.Keypair, error) {
	keypair := &cr.Keypair{
		Metadata:   cr.Metadata{Identifier: kp.Name, Name: kp.Name},
		PrivateKey: kp.PrivateKey,
	}
	if err := keypair.SetPublicKey(kp.PublicKey); err != nil {
		return nil, err
	}
	if err := keypair.SetFingerprint(kp.Fingerprint); err != nil {
		return nil, err
	}
	return keypair, nil
}
