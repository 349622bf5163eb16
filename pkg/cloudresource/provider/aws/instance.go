package aws

import (
	"context"
	"errors"
	"fmt"
	"slices"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/lazy"
	"github.com/go-logr/logr"
)

// liveStates excludes terminated instances, which EC2 keeps listing for a while
var liveStates = []string{"pending", "running", "shutting-down", "stopping", "stopped"}

// InstanceManager manages EC2 instances. The instance name is its Name tag.
type InstanceManager struct {
	cr.Converting[*cr.Instance, types.Instance]

	connector *Connector
	session   *lazy.Value[EC2Client]
	deps      cr.Dependencies
	log       logr.Logger
}

// NewInstanceManager returns an instance manager for the connector's region.
// deps supplies the managers used to resolve instance references.
func NewInstanceManager(conn *Connector, deps cr.Dependencies, opts ...cr.ManagerOption) *InstanceManager {
	o := cr.BuildOptions(opts...)
	m := &InstanceManager{
		connector: conn,
		session:   conn.session(),
		deps:      deps,
		log:       o.Logger.WithValues("backend", cr.VariantAWS, "kind", cr.KindInstance),
	}
	m.Converting = cr.Converting[*cr.Instance, types.Instance]{Backend: m, Convert: convertInstance}
	return m
}

// ItemType returns KindInstance
func (m *InstanceManager) ItemType() cr.Kind {
	return cr.KindInstance
}

// Connector returns the AWS connector
func (m *InstanceManager) Connector() cr.Connector {
	return m.connector
}

// RawGetByID fetches the live instance with the given instance id
func (m *InstanceManager) RawGetByID(ctx context.Context, id string) (types.Instance, bool, error) {
	list, err := m.describe(ctx, filter("instance-id", id))
	if err != nil {
		return types.Instance{}, false, err
	}
	list = exact(list, id, instanceID)
	if len(list) == 0 {
		return types.Instance{}, false, nil
	}
	return list[0], true, nil
}

// RawGetByName lists the live instances tagged with the given name
func (m *InstanceManager) RawGetByName(ctx context.Context, name string) ([]types.Instance, error) {
	list, err := m.describe(ctx, filter("tag:"+nameTag, name))
	if err != nil {
		return nil, err
	}
	return exact(list, name, instanceName), nil
}

// RawGetAll lists the live instances of the region
func (m *InstanceManager) RawGetAll(ctx context.Context) ([]types.Instance, error) {
	return m.describe(ctx)
}

func (m *InstanceManager) describe(ctx context.Context, filters ...types.Filter) ([]types.Instance, error) {
	client, err := m.session.Get(ctx)
	if err != nil {
		return nil, err
	}

	var instances []types.Instance
	var nextToken *string

	for {
		resp, err := client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
			Filters:   append(filters, filter("instance-state-name", liveStates...)),
			NextToken: nextToken,
		})
		if err != nil {
			return nil, err
		}

		for _, reservation := range resp.Reservations {
			instances = append(instances, reservation.Instances...)
		}

		if resp.NextToken != nil {
			nextToken = resp.NextToken
		} else {
			break
		}
	}

	return instances, nil
}

// Create resolves the image, flavor, key-pair and network references of model
// and launches a single instance from the resolved identifiers
func (m *InstanceManager) Create(ctx context.Context, model *cr.Instance) (*cr.Instance, error) {
	return cr.CreateInstance(ctx, model, m.deps, m.createResolved)
}

func (m *InstanceManager) createResolved(ctx context.Context, resolved *cr.Instance) (*cr.Instance, error) {
	client, err := m.session.Get(ctx)
	if err != nil {
		return nil, err
	}

	input := &ec2.RunInstancesInput{
		ImageId:      awssdk.String(resolved.Image),
		InstanceType: types.InstanceType(resolved.Flavor),
		MinCount:     awssdk.Int32(1),
		MaxCount:     awssdk.Int32(1),
		TagSpecifications: []types.TagSpecification{{
			ResourceType: types.ResourceTypeInstance,
			Tags:         []types.Tag{{Key: awssdk.String(nameTag), Value: awssdk.String(resolved.Name)}},
		}},
	}
	if resolved.KeyName != "" {
		keypair, err := m.keyName(ctx, resolved.KeyName)
		if err != nil {
			return nil, err
		}
		input.KeyName = awssdk.String(keypair)
	}
	switch len(resolved.Networks) {
	case 0:
	case 1:
		input.SubnetId = awssdk.String(resolved.Networks[0])
	default:
		for i, subnet := range resolved.Networks {
			input.NetworkInterfaces = append(input.NetworkInterfaces, types.InstanceNetworkInterfaceSpecification{
				DeviceIndex: awssdk.Int32(int32(i)),
				SubnetId:    awssdk.String(subnet),
			})
		}
	}

	resp, err := client.RunInstances(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("error launching instance %q: %w", resolved.Name, err)
	}
	if len(resp.Instances) != 1 {
		return nil, fmt.Errorf("%w: launching instance %q returned %d instances", cr.ErrInconsistentBackend, resolved.Name, len(resp.Instances))
	}

	launched := resp.Instances[0]
	if tagValue(launched.Tags, nameTag) == "" {
		launched.Tags = append(launched.Tags, types.Tag{Key: awssdk.String(nameTag), Value: awssdk.String(resolved.Name)})
	}

	created, err := convertInstance(launched)
	if err != nil {
		return nil, err
	}
	m.log.Info("Launched instance", "id", created.Identifier, "name", created.Name)
	return created, nil
}

// keyName maps a resolved key-pair id to the key name RunInstances expects
func (m *InstanceManager) keyName(ctx context.Context, id string) (string, error) {
	keypairs, err := m.deps.Keypairs()
	if err != nil {
		return "", err
	}
	keypair, ok, err := keypairs.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &cr.ItemNotFoundError{Kind: cr.KindKeypair, Value: id}
	}
	return keypair.GetName(), nil
}

// Delete terminates the instance. When EC2 refuses because of the instance
// state the instance is force stopped and the termination retried once.
func (m *InstanceManager) Delete(ctx context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	client, err := m.session.Get(ctx)
	if err != nil {
		return err
	}

	err = m.terminate(ctx, client, id)
	if !errors.Is(err, cr.ErrInvalidState) {
		return err
	}

	m.log.Info("Instance in invalid state for termination, stopping and retrying", "id", id)
	if _, err := client.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: []string{id}, Force: awssdk.Bool(true)}); err != nil {
		return fmt.Errorf("error stopping instance %q: %w", id, err)
	}
	return m.terminate(ctx, client, id)
}

func (m *InstanceManager) terminate(ctx context.Context, client EC2Client, id string) error {
	_, err := client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: []string{id}})
	if hasErrorCode(err, "IncorrectInstanceState") {
		return &cr.InvalidStateError{Kind: cr.KindInstance, Identifier: id, Err: err}
	}
	if err != nil {
		return err
	}
	m.log.Info("Terminated instance", "id", id)
	return nil
}

func convertInstance(i types.Instance) (*cr.Instance, error) {
	var networks []string
	for _, eni := range i.NetworkInterfaces {
		if subnet := awssdk.ToString(eni.SubnetId); subnet != "" && !slices.Contains(networks, subnet) {
			networks = append(networks, subnet)
		}
	}
	if subnet := awssdk.ToString(i.SubnetId); subnet != "" && !slices.Contains(networks, subnet) {
		networks = append(networks, subnet)
	}

	instance := &cr.Instance{
		Metadata: cr.Metadata{Identifier: awssdk.ToString(i.InstanceId), Name: tagValue(i.Tags, nameTag)},
		Image:    awssdk.ToString(i.ImageId),
		Flavor:   string(i.InstanceType),
		KeyName:  awssdk.ToString(i.KeyName),
		Networks: networks,
	}
	if i.LaunchTime != nil {
		instance.CreatedAt = *i.LaunchTime
		instance.UpdatedAt = *i.LaunchTime
	}
	if i.State != nil {
		instance.Status = string(i.State.Name)
	}
	return instance, nil
}

func instanceID(i types.Instance) string { return awssdk.ToString(i.InstanceId) }

func instanceName(i types.Instance) string { return tagValue(i.Tags, nameTag) }
