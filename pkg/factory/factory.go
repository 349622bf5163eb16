// Package factory builds the resource manager matching a connector and kind.
package factory

import (
	"context"
	"fmt"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/cloudresource/provider/aws"
	"github.com/eliran89c/cloudkeeper/pkg/cloudresource/provider/mock"
	"github.com/eliran89c/cloudkeeper/pkg/cloudresource/provider/openstack"
	"github.com/eliran89c/cloudkeeper/pkg/metrics"
	"github.com/go-logr/logr"
)

// Factory constructs managers. Every call returns a fresh manager; managers
// are not cached.
type Factory struct {
	log      logr.Logger
	recorder *metrics.Recorder
}

// Option is a function that configures the factory
type Option func(*Factory)

// WithLogger sets the logger passed to every manager
func WithLogger(logger logr.Logger) Option {
	return func(f *Factory) {
		f.log = logger
	}
}

// WithRecorder records the operations of every manager with r
func WithRecorder(r *metrics.Recorder) Option {
	return func(f *Factory) {
		f.recorder = r
	}
}

// New creates a new factory with the specified options
func New(opts ...Option) *Factory {
	f := &Factory{log: logr.Discard()}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Keypairs returns a key-pair manager for conn
func (f *Factory) Keypairs(conn cr.Connector) (cr.Manager[*cr.Keypair], error) {
	var m cr.Manager[*cr.Keypair]
	switch c := conn.(type) {
	case *openstack.Connector:
		m = openstack.NewKeypairManager(c, f.managerOptions()...)
	case *aws.Connector:
		m = aws.NewKeypairManager(c, f.managerOptions()...)
	case *mock.Connector:
		m = mock.NewKeypairManager(c, f.managerOptions()...)
	default:
		return nil, unsupported(conn, cr.KindKeypair)
	}
	return metrics.Instrument(m, f.recorder), nil
}

// Instances returns an instance manager for conn. Its references are resolved
// through managers this factory builds for the same connector.
func (f *Factory) Instances(conn cr.Connector) (cr.Manager[*cr.Instance], error) {
	deps := f.Dependencies(conn)

	var m cr.Manager[*cr.Instance]
	switch c := conn.(type) {
	case *openstack.Connector:
		m = openstack.NewInstanceManager(c, deps, f.managerOptions()...)
	case *aws.Connector:
		m = aws.NewInstanceManager(c, deps, f.managerOptions()...)
	case *mock.Connector:
		m = mock.NewInstanceManager(c, deps, f.managerOptions()...)
	default:
		return nil, unsupported(conn, cr.KindInstance)
	}
	return metrics.Instrument(m, f.recorder), nil
}

// Images returns an image manager for conn
func (f *Factory) Images(conn cr.Connector) (cr.Manager[*cr.Image], error) {
	var m cr.Manager[*cr.Image]
	switch c := conn.(type) {
	case *openstack.Connector:
		m = openstack.NewImageManager(c, f.managerOptions()...)
	case *aws.Connector:
		m = aws.NewImageManager(c, f.managerOptions()...)
	case *mock.Connector:
		m = mock.NewImageManager(c, f.managerOptions()...)
	default:
		return nil, unsupported(conn, cr.KindImage)
	}
	return metrics.Instrument(m, f.recorder), nil
}

// Flavors returns a flavor manager for conn
func (f *Factory) Flavors(conn cr.Connector) (cr.Manager[*cr.Flavor], error) {
	var m cr.Manager[*cr.Flavor]
	switch c := conn.(type) {
	case *openstack.Connector:
		m = openstack.NewFlavorManager(c, f.managerOptions()...)
	case *aws.Connector:
		m = aws.NewFlavorManager(c, f.managerOptions()...)
	case *mock.Connector:
		m = mock.NewFlavorManager(c, f.managerOptions()...)
	default:
		return nil, unsupported(conn, cr.KindFlavor)
	}
	return metrics.Instrument(m, f.recorder), nil
}

// Networks returns a network manager for conn
func (f *Factory) Networks(conn cr.Connector) (cr.Manager[*cr.Network], error) {
	var m cr.Manager[*cr.Network]
	switch c := conn.(type) {
	case *openstack.Connector:
		m = openstack.NewNetworkManager(c, f.managerOptions()...)
	case *aws.Connector:
		m = aws.NewNetworkManager(c, f.managerOptions()...)
	case *mock.Connector:
		m = mock.NewNetworkManager(c, f.managerOptions()...)
	default:
		return nil, unsupported(conn, cr.KindNetwork)
	}
	return metrics.Instrument(m, f.recorder), nil
}

// Create returns the manager for kind and conn with its item type erased
func (f *Factory) Create(kind cr.Kind, conn cr.Connector) (cr.Manager[cr.Item], error) {
	switch kind {
	case cr.KindKeypair:
		return erase(f.Keypairs(conn))
	case cr.KindInstance:
		return erase(f.Instances(conn))
	case cr.KindImage:
		return erase(f.Images(conn))
	case cr.KindFlavor:
		return erase(f.Flavors(conn))
	case cr.KindNetwork:
		return erase(f.Networks(conn))
	default:
		return nil, fmt.Errorf("%w: unknown resource kind %q", cr.ErrInvalidInput, kind)
	}
}

// CreateInstance creates an instance on conn, resolving its references first
func (f *Factory) CreateInstance(ctx context.Context, conn cr.Connector, model *cr.Instance) (*cr.Instance, error) {
	instances, err := f.Instances(conn)
	if err != nil {
		return nil, err
	}
	return instances.Create(ctx, model)
}

// Dependencies returns the managers an instance on conn references
func (f *Factory) Dependencies(conn cr.Connector) cr.Dependencies {
	return &dependencies{factory: f, conn: conn}
}

type dependencies struct {
	factory *Factory
	conn    cr.Connector
}

func (d *dependencies) Images() (cr.Manager[*cr.Image], error) {
	return d.factory.Images(d.conn)
}

func (d *dependencies) Flavors() (cr.Manager[*cr.Flavor], error) {
	return d.factory.Flavors(d.conn)
}

func (d *dependencies) Keypairs() (cr.Manager[*cr.Keypair], error) {
	return d.factory.Keypairs(d.conn)
}

func (d *dependencies) Networks() (cr.Manager[*cr.Network], error) {
	return d.factory.Networks(d.conn)
}

func (f *Factory) managerOptions() []cr.ManagerOption {
	return []cr.ManagerOption{cr.WithLogger(f.log)}
}

func erase[T cr.Item](m cr.Manager[T], err error) (cr.Manager[cr.Item], error) {
	if err != nil {
		return nil, err
	}
	return cr.Erase(m), nil
}

func unsupported(conn cr.Connector, kind cr.Kind) error {
	return &cr.UnsupportedConnectorError{Connector: fmt.Sprintf("%T", conn), Kind: kind}
}
