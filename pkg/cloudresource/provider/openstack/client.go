package openstack

import (
	"errors"

	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/extensions/keypairs"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/extensions/resetstate"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/flavors"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/servers"
	"github.com/gophercloud/gophercloud/openstack/imageservice/v2/images"
	"github.com/gophercloud/gophercloud/openstack/networking/v2/networks"
)

// KeypairAPI defines the Nova key-pair calls used by KeypairManager
type KeypairAPI interface {
	GetKeypair(name string) (*keypairs.KeyPair, error)
	ListKeypairs() ([]keypairs.KeyPair, error)
	CreateKeypair(opts keypairs.CreateOpts) (*keypairs.KeyPair, error)
	DeleteKeypair(name string) error
}

// ServerAPI defines the Nova server calls used by InstanceManager
type ServerAPI interface {
	GetServer(id string) (*servers.Server, error)
	ListServers(opts servers.ListOpts) ([]servers.Server, error)
	CreateServer(opts servers.CreateOptsBuilder) (*servers.Server, error)
	DeleteServer(id string) error
	ResetServerState(id string) error
}

// FlavorAPI defines the Nova flavor calls used by FlavorManager
type FlavorAPI interface {
	GetFlavor(id string) (*flavors.Flavor, error)
	ListFlavors() ([]flavors.Flavor, error)
}

// ImageAPI defines the Glance calls used by ImageManager
type ImageAPI interface {
	GetImage(id string) (*images.Image, error)
	ListImages(opts images.ListOpts) ([]images.Image, error)
	CreateImage(opts images.CreateOpts) (*images.Image, error)
	DeleteImage(id string) error
}

// NetworkAPI defines the Neutron calls used by NetworkManager
type NetworkAPI interface {
	ListNetworks(opts networks.ListOpts) ([]networks.Network, error)
	CreateNetwork(opts networks.CreateOpts) (*networks.Network, error)
	DeleteNetwork(id string) error
}

type computeClient struct {
	sc *gophercloud.ServiceClient
}

func (c *computeClient) GetKeypair(name string) (*keypairs.KeyPair, error) {
	return keypairs.Get(c.sc, name, nil).Extract()
}

func (c *computeClient) ListKeypairs() ([]keypairs.KeyPair, error) {
	pages, err := keypairs.List(c.sc, nil).AllPages()
	if err != nil {
		return nil, err
	}
	return keypairs.ExtractKeyPairs(pages)
}

func (c *computeClient) CreateKeypair(opts keypairs.CreateOpts) (*keypairs.KeyPair, error) {
	return keypairs.Create(c.sc, opts).Extract()
}

func (c *computeClient) DeleteKeypair(name string) error {
	return keypairs.Delete(c.sc, name, nil).ExtractErr()
}

func (c *computeClient) GetServer(id string) (*servers.Server, error) {
	return servers.Get(c.sc, id).Extract()
}

func (c *computeClient) ListServers(opts servers.ListOpts) ([]servers.Server, error) {
	pages, err := servers.List(c.sc, opts).AllPages()
	if err != nil {
		return nil, err
	}
	return servers.ExtractServers(pages)
}

func (c *computeClient) CreateServer(opts servers.CreateOptsBuilder) (*servers.Server, error) {
	return servers.Create(c.sc, opts).Extract()
}

func (c *computeClient) DeleteServer(id string) error {
	return servers.Delete(c.sc, id).ExtractErr()
}

func (c *computeClient) ResetServerState(id string) error {
	return resetstate.ResetState(c.sc, id, resetstate.StateError).ExtractErr()
}

func (c *computeClient) GetFlavor(id string) (*flavors.Flavor, error) {
	return flavors.Get(c.sc, id).Extract()
}

func (c *computeClient) ListFlavors() ([]flavors.Flavor, error) {
	pages, err := flavors.ListDetail(c.sc, nil).AllPages()
	if err != nil {
		return nil, err
	}
	return flavors.ExtractFlavors(pages)
}

type imageClient struct {
	sc *gophercloud.ServiceClient
}

func (c *imageClient) GetImage(id string) (*images.Image, error) {
	return images.Get(c.sc, id).Extract()
}

func (c *imageClient) ListImages(opts images.ListOpts) ([]images.Image, error) {
	pages, err := images.List(c.sc, opts).AllPages()
	if err != nil {
		return nil, err
	}
	return images.ExtractImages(pages)
}

func (c *imageClient) CreateImage(opts images.CreateOpts) (*images.Image, error) {
	return images.Create(c.sc, opts).Extract()
}

func (c *imageClient) DeleteImage(id string) error {
	return images.Delete(c.sc, id).ExtractErr()
}

type networkClient struct {
	sc *gophercloud.ServiceClient
}

func (c *networkClient) ListNetworks(opts networks.ListOpts) ([]networks.Network, error) {
	pages, err := networks.List(c.sc, opts).AllPages()
	if err != nil {
		return nil, err
	}
	return networks.ExtractNetworks(pages)
}

func (c *networkClient) CreateNetwork(opts networks.CreateOpts) (*networks.Network, error) {
	return networks.Create(c.sc, opts).Extract()
}

func (c *networkClient) DeleteNetwork(id string) error {
	return networks.Delete(c.sc, id).ExtractErr()
}

func isNotFound(err error) bool {
	var notFound gophercloud.ErrDefault404
	return errors.As(err, &notFound)
}

func isForbidden(err error) bool {
	var forbidden gophercloud.ErrDefault403
	return errors.As(err, &forbidden)
}

func isConflict(err error) bool {
	var conflict gophercloud.ErrDefault409
	return errors.As(err, &conflict)
}
