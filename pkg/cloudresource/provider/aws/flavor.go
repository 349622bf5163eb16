package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/lazy"
	"github.com/go-logr/logr"
)

// FlavorManager exposes EC2 instance types as flavors. The instance type name
// is both identifier and name.
type FlavorManager struct {
	cr.Converting[*cr.Flavor, types.InstanceTypeInfo]

	connector *Connector
	session   *lazy.Value[EC2Client]
	log       logr.Logger
}

// NewFlavorManager returns a flavor manager for the connector's region
func NewFlavorManager(conn *Connector, opts ...cr.ManagerOption) *FlavorManager {
	o := cr.BuildOptions(opts...)
	m := &FlavorManager{
		connector: conn,
		session:   conn.session(),
		log:       o.Logger.WithValues("backend", cr.VariantAWS, "kind", cr.KindFlavor),
	}
	m.Converting = cr.Converting[*cr.Flavor, types.InstanceTypeInfo]{Backend: m, Convert: convertInstanceType}
	return m
}

// ItemType returns KindFlavor
func (m *FlavorManager) ItemType() cr.Kind {
	return cr.KindFlavor
}

// Connector returns the AWS connector
func (m *FlavorManager) Connector() cr.Connector {
	return m.connector
}

// RawGetByID fetches the instance type with the given name
func (m *FlavorManager) RawGetByID(ctx context.Context, id string) (types.InstanceTypeInfo, bool, error) {
	list, err := m.describe(ctx, filter("instance-type", id))
	if err != nil {
		return types.InstanceTypeInfo{}, false, err
	}
	list = exact(list, id, instanceTypeName)
	if len(list) == 0 {
		return types.InstanceTypeInfo{}, false, nil
	}
	return list[0], true, nil
}

// RawGetByName fetches the instance type with the given name
func (m *FlavorManager) RawGetByName(ctx context.Context, name string) ([]types.InstanceTypeInfo, error) {
	list, err := m.describe(ctx, filter("instance-type", name))
	if err != nil {
		return nil, err
	}
	return exact(list, name, instanceTypeName), nil
}

// RawGetAll lists the instance types offered in the region
func (m *FlavorManager) RawGetAll(ctx context.Context) ([]types.InstanceTypeInfo, error) {
	return m.describe(ctx)
}

func (m *FlavorManager) describe(ctx context.Context, filters ...types.Filter) ([]types.InstanceTypeInfo, error) {
	client, err := m.session.Get(ctx)
	if err != nil {
		return nil, err
	}

	m.log.V(1).Info("Describing instance types", "filters", len(filters))

	var instanceTypes []types.InstanceTypeInfo
	var nextToken *string

	for {
		resp, err := client.DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{
			Filters:   filters,
			NextToken: nextToken,
		})
		if err != nil {
			return nil, err
		}

		instanceTypes = append(instanceTypes, resp.InstanceTypes...)

		if resp.NextToken != nil {
			nextToken = resp.NextToken
		} else {
			break
		}
	}

	return instanceTypes, nil
}

// Create is not supported for instance types
func (m *FlavorManager) Create(_ context.Context, model *cr.Flavor) (*cr.Flavor, error) {
	return nil, fmt.Errorf("%w: creating flavor %q", cr.ErrUnsupportedOperation, model.GetName())
}

// Delete is not supported for instance types
func (m *FlavorManager) Delete(_ context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: deleting flavor %q", cr.ErrUnsupportedOperation, id)
}

func convertInstanceType(t types.InstanceTypeInfo) (*cr.Flavor, error) {
	name := instanceTypeName(t)
	return &cr.Flavor{Metadata: cr.Metadata{Identifier: name, Name: name}}, nil
}

func instanceTypeName(t types.InstanceTypeInfo) string {
	return string(t.InstanceType)
}
