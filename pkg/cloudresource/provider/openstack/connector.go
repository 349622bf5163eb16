package openstack

import (
	"context"
	"fmt"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack"
)

// Connector holds the credentials of an OpenStack project
type Connector struct {
	AuthURL    string
	Tenant     string
	Username   string
	Password   string
	Region     string
	DomainName string
}

// Variant returns VariantOpenStack
func (c *Connector) Variant() cr.Variant {
	return cr.VariantOpenStack
}

func (c *Connector) authenticate() (*gophercloud.ProviderClient, error) {
	provider, err := openstack.AuthenticatedClient(gophercloud.AuthOptions{
		IdentityEndpoint: c.AuthURL,
		Username:         c.Username,
		Password:         c.Password,
		TenantName:       c.Tenant,
		DomainName:       c.DomainName,
		AllowReauth:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("error authenticating against %s: %w", c.AuthURL, err)
	}
	return provider, nil
}

func (c *Connector) endpointOpts() gophercloud.EndpointOpts {
	return gophercloud.EndpointOpts{Region: c.Region}
}

// newComputeClient authenticates and returns a Nova client
func (c *Connector) newComputeClient(context.Context) (*computeClient, error) {
	provider, err := c.authenticate()
	if err != nil {
		return nil, err
	}
	sc, err := openstack.NewComputeV2(provider, c.endpointOpts())
	if err != nil {
		return nil, fmt.Errorf("error locating compute endpoint: %w", err)
	}
	return &computeClient{sc: sc}, nil
}

// newImageClient authenticates and returns a Glance client
func (c *Connector) newImageClient(context.Context) (*imageClient, error) {
	provider, err := c.authenticate()
	if err != nil {
		return nil, err
	}
	sc, err := openstack.NewImageServiceV2(provider, c.endpointOpts())
	if err != nil {
		return nil, fmt.Errorf("error locating image endpoint: %w", err)
	}
	return &imageClient{sc: sc}, nil
}

// newNetworkClient authenticates and returns a Neutron client
func (c *Connector) newNetworkClient(context.Context) (*networkClient, error) {
	provider, err := c.authenticate()
	if err != nil {
		return nil, err
	}
	sc, err := openstack.NewNetworkV2(provider, c.endpointOpts())
	if err != nil {
		return nil, fmt.Errorf("error locating network endpoint: %w", err)
	}
	return &networkClient{sc: sc}, nil
}
