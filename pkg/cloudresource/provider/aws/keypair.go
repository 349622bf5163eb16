package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/lazy"
	"github.com/go-logr/logr"
)

// KeypairManager manages EC2 key-pairs
type KeypairManager struct {
	cr.Converting[*cr.Keypair, types.KeyPairInfo]

	connector *Connector
	session   *lazy.Value[EC2Client]
	log       logr.Logger
}

// NewKeypairManager returns a key-pair manager for the connector's region
func NewKeypairManager(conn *Connector, opts ...cr.ManagerOption) *KeypairManager {
	o := cr.BuildOptions(opts...)
	m := &KeypairManager{
		connector: conn,
		session:   conn.session(),
		log:       o.Logger.WithValues("backend", cr.VariantAWS, "kind", cr.KindKeypair),
	}
	m.Converting = cr.Converting[*cr.Keypair, types.KeyPairInfo]{Backend: m, Convert: convertKeyPair}
	return m
}

// ItemType returns KindKeypair
func (m *KeypairManager) ItemType() cr.Kind {
	return cr.KindKeypair
}

// Connector returns the AWS connector
func (m *KeypairManager) Connector() cr.Connector {
	return m.connector
}

// RawGetByID fetches the key-pair with the given key-pair id
func (m *KeypairManager) RawGetByID(ctx context.Context, id string) (types.KeyPairInfo, bool, error) {
	list, err := m.describe(ctx, filter("key-pair-id", id))
	if err != nil {
		return types.KeyPairInfo{}, false, err
	}
	list = exact(list, id, keyPairID)
	if len(list) == 0 {
		return types.KeyPairInfo{}, false, nil
	}
	return list[0], true, nil
}

// RawGetByName fetches the key-pairs with the given key name
func (m *KeypairManager) RawGetByName(ctx context.Context, name string) ([]types.KeyPairInfo, error) {
	list, err := m.describe(ctx, filter("key-name", name))
	if err != nil {
		return nil, err
	}
	return exact(list, name, keyPairName), nil
}

// RawGetAll lists the key-pairs of the region
func (m *KeypairManager) RawGetAll(ctx context.Context) ([]types.KeyPairInfo, error) {
	return m.describe(ctx)
}

func (m *KeypairManager) describe(ctx context.Context, filters ...types.Filter) ([]types.KeyPairInfo, error) {
	client, err := m.session.Get(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{Filters: filters})
	if err != nil {
		return nil, err
	}
	return resp.KeyPairs, nil
}

// Create imports the public key of model, or lets EC2 generate a key-pair when it has none
func (m *KeypairManager) Create(ctx context.Context, model *cr.Keypair) (*cr.Keypair, error) {
	if err := cr.RequireNoIdentifier(model); err != nil {
		return nil, err
	}
	client, err := m.session.Get(ctx)
	if err != nil {
		return nil, err
	}

	var created types.KeyPairInfo
	var privateKey string
	if model.PublicKey() != "" {
		resp, err := client.ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
			KeyName:           awssdk.String(model.Name),
			PublicKeyMaterial: []byte(model.PublicKey()),
		})
		if err != nil {
			return nil, m.createError(model, err)
		}
		created = types.KeyPairInfo{KeyPairId: resp.KeyPairId, KeyName: resp.KeyName, KeyFingerprint: resp.KeyFingerprint}
	} else {
		resp, err := client.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{KeyName: awssdk.String(model.Name)})
		if err != nil {
			return nil, m.createError(model, err)
		}
		created = types.KeyPairInfo{KeyPairId: resp.KeyPairId, KeyName: resp.KeyName, KeyFingerprint: resp.KeyFingerprint}
		privateKey = awssdk.ToString(resp.KeyMaterial)
	}

	keypair, err := convertKeyPair(created)
	if err != nil {
		return nil, err
	}
	keypair.PrivateKey = privateKey

	m.log.Info("Created keypair", "id", keypair.Identifier, "name", keypair.Name)
	return keypair, nil
}

func (m *KeypairManager) createError(model *cr.Keypair, err error) error {
	if hasErrorCode(err, "InvalidKeyPair.Duplicate") {
		return &cr.DuplicateNameError{Kind: cr.KindKeypair, Name: model.Name}
	}
	return fmt.Errorf("error creating keypair %q: %w", model.Name, err)
}

// Delete deletes the key-pair
func (m *KeypairManager) Delete(ctx context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	client, err := m.session.Get(ctx)
	if err != nil {
		return err
	}

	if _, err := client.DeleteKeyPair(ctx, &ec2.DeleteKeyPairInput{KeyPairId: awssdk.String(id)}); err != nil {
		return err
	}
	m.log.Info("Deleted keypair", "id", id)
	return nil
}

// convertKeyPair keeps the fingerprint only. EC2 computes fingerprints over
// the DER encoded key, which cannot be checked against an OpenSSH public key.
func convertKeyPair(kp types.KeyPairInfo) (*cr.Keypair, error) {
	keypair := &cr.Keypair{
		Metadata: cr.Metadata{Identifier: awssdk.ToString(kp.KeyPairId), Name: awssdk.ToString(kp.KeyName)},
	}
	if err := keypair.SetFingerprint(awssdk.ToString(kp.KeyFingerprint)); err != nil {
		return nil, err
	}
	return keypair, nil
}

func keyPairID(kp types.KeyPairInfo) string { return awssdk.ToString(kp.KeyPairId) }

func keyPairName(kp types.KeyPairInfo) string { return awssdk.ToString(kp.KeyName) }
