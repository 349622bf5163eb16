package mock

import (
	"sync"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
)

// Store is an in-memory backend holding one ordered collection per kind.
// It is owned by the caller, usually a test, and shared through a Connector.
type Store struct {
	mu        sync.Mutex
	keypairs  []*cr.Keypair
	instances []*cr.Instance
	images    []*cr.Image
	flavors   []*cr.Flavor
	networks  []*cr.Network
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of items of the given kind
func (s *Store) Len(kind cr.Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case cr.KindKeypair:
		return len(s.keypairs)
	case cr.KindInstance:
		return len(s.instances)
	case cr.KindImage:
		return len(s.images)
	case cr.KindFlavor:
		return len(s.flavors)
	case cr.KindNetwork:
		return len(s.networks)
	}
	return 0
}

// Connector connects managers to a Store
type Connector struct {
	Store *Store
}

// NewConnector returns a connector for store
func NewConnector(store *Store) *Connector {
	return &Connector{Store: store}
}

// Variant returns VariantMock
func (c *Connector) Variant() cr.Variant {
	return cr.VariantMock
}

func keypairs(s *Store) *[]*cr.Keypair   { return &s.keypairs }
func instances(s *Store) *[]*cr.Instance { return &s.instances }
func images(s *Store) *[]*cr.Image       { return &s.images }
func flavors(s *Store) *[]*cr.Flavor     { return &s.flavors }
func networks(s *Store) *[]*cr.Network   { return &s.networks }
