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

// NetworkManager exposes VPC subnets as networks. The network name is the
// Name tag of the subnet.
type NetworkManager struct {
	cr.Converting[*cr.Network, types.Subnet]

	connector *Connector
	session   *lazy.Value[EC2Client]
	log       logr.Logger
}

// NewNetworkManager returns a network manager for the connector's region
func NewNetworkManager(conn *Connector, opts ...cr.ManagerOption) *NetworkManager {
	o := cr.BuildOptions(opts...)
	m := &NetworkManager{
		connector: conn,
		session:   conn.session(),
		log:       o.Logger.WithValues("backend", cr.VariantAWS, "kind", cr.KindNetwork),
	}
	m.Converting = cr.Converting[*cr.Network, types.Subnet]{Backend: m, Convert: convertSubnet}
	return m
}

// ItemType returns KindNetwork
func (m *NetworkManager) ItemType() cr.Kind {
	return cr.KindNetwork
}

// Connector returns the AWS connector
func (m *NetworkManager) Connector() cr.Connector {
	return m.connector
}

// RawGetByID fetches the subnet with the given subnet id
func (m *NetworkManager) RawGetByID(ctx context.Context, id string) (types.Subnet, bool, error) {
	list, err := m.describe(ctx, filter("subnet-id", id))
	if err != nil {
		return types.Subnet{}, false, err
	}
	list = exact(list, id, subnetID)
	if len(list) == 0 {
		return types.Subnet{}, false, nil
	}
	return list[0], true, nil
}

// RawGetByName lists the subnets tagged with the given name
func (m *NetworkManager) RawGetByName(ctx context.Context, name string) ([]types.Subnet, error) {
	list, err := m.describe(ctx, filter("tag:"+nameTag, name))
	if err != nil {
		return nil, err
	}
	return exact(list, name, subnetName), nil
}

// RawGetAll lists the subnets of the region
func (m *NetworkManager) RawGetAll(ctx context.Context) ([]types.Subnet, error) {
	return m.describe(ctx)
}

func (m *NetworkManager) describe(ctx context.Context, filters ...types.Filter) ([]types.Subnet, error) {
	client, err := m.session.Get(ctx)
	if err != nil {
		return nil, err
	}

	var subnets []types.Subnet
	var nextToken *string

	for {
		resp, err := client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
			Filters:   filters,
			NextToken: nextToken,
		})
		if err != nil {
			return nil, err
		}

		subnets = append(subnets, resp.Subnets...)

		if resp.NextToken != nil {
			nextToken = resp.NextToken
		} else {
			break
		}
	}

	return subnets, nil
}

// Create is not supported, subnets need a VPC and an address range
func (m *NetworkManager) Create(_ context.Context, model *cr.Network) (*cr.Network, error) {
	return nil, fmt.Errorf("%w: creating network %q", cr.ErrUnsupportedOperation, model.GetName())
}

// Delete deletes the subnet. EC2 refuses while interfaces are still attached.
func (m *NetworkManager) Delete(ctx context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	client, err := m.session.Get(ctx)
	if err != nil {
		return err
	}

	_, err = client.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{SubnetId: awssdk.String(id)})
	if hasErrorCode(err, "DependencyViolation") {
		return &cr.InvalidStateError{Kind: cr.KindNetwork, Identifier: id, Err: err}
	}
	if err != nil {
		return err
	}
	m.log.Info("Deleted subnet", "id", id)
	return nil
}

func convertSubnet(s types.Subnet) (*cr.Network, error) {
	return &cr.Network{Metadata: cr.Metadata{Identifier: awssdk.ToString(s.SubnetId), Name: tagValue(s.Tags, nameTag)}}, nil
}

func subnetID(s types.Subnet) string { return awssdk.ToString(s.SubnetId) }

func subnetName(s types.Subnet) string { return tagValue(s.Tags, nameTag) }
