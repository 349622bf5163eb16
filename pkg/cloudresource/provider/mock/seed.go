package mock

import (
	"context"
	"fmt"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
)

// Seed lists items to pre-create in a store, by name
type Seed struct {
	Images   []string
	Flavors  []string
	Networks []string
	Keypairs map[string]string // name -> public key
}

// Apply creates the seeded items in the connector's store
func (s Seed) Apply(ctx context.Context, conn *Connector) error {
	for _, name := range s.Images {
		if _, err := NewImageManager(conn).Create(ctx, &cr.Image{Metadata: cr.Metadata{Name: name}}); err != nil {
			return fmt.Errorf("error seeding image %q: %w", name, err)
		}
	}
	for _, name := range s.Flavors {
		if _, err := NewFlavorManager(conn).Create(ctx, &cr.Flavor{Metadata: cr.Metadata{Name: name}}); err != nil {
			return fmt.Errorf("error seeding flavor %q: %w", name, err)
		}
	}
	for _, name := range s.Networks {
		if _, err := NewNetworkManager(conn).Create(ctx, &cr.Network{Metadata: cr.Metadata{Name: name}}); err != nil {
			return fmt.Errorf("error seeding network %q: %w", name, err)
		}
	}
	for name, publicKey := range s.Keypairs {
		keypair, err := cr.NewKeypair(name, publicKey)
		if err != nil {
			return fmt.Errorf("error seeding keypair %q: %w", name, err)
		}
		if _, err := NewKeypairManager(conn).Create(ctx, keypair); err != nil {
			return fmt.Errorf("error seeding keypair %q: %w", name, err)
		}
	}
	return nil
}
