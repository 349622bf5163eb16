package aws

import (
	"context"
	"fmt"
	"strings"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/lazy"
	"github.com/go-logr/logr"
)

// ImageManager manages AMIs. Listing and name lookups are limited to images
// owned by the account; any AMI can be fetched by id.
type ImageManager struct {
	cr.Converting[*cr.Image, types.Image]

	connector *Connector
	session   *lazy.Value[EC2Client]
	log       logr.Logger
}

// NewImageManager returns an image manager for the connector's region
func NewImageManager(conn *Connector, opts ...cr.ManagerOption) *ImageManager {
	o := cr.BuildOptions(opts...)
	m := &ImageManager{
		connector: conn,
		session:   conn.session(),
		log:       o.Logger.WithValues("backend", cr.VariantAWS, "kind", cr.KindImage),
	}
	m.Converting = cr.Converting[*cr.Image, types.Image]{Backend: m, Convert: convertImage}
	return m
}

// ItemType returns KindImage
func (m *ImageManager) ItemType() cr.Kind {
	return cr.KindImage
}

// Connector returns the AWS connector
func (m *ImageManager) Connector() cr.Connector {
	return m.connector
}

// RawGetByID fetches the AMI with the given image id
func (m *ImageManager) RawGetByID(ctx context.Context, id string) (types.Image, bool, error) {
	list, err := m.describe(ctx, nil, filter("image-id", id))
	if err != nil {
		return types.Image{}, false, err
	}
	list = exact(list, id, imageID)
	if len(list) == 0 {
		return types.Image{}, false, nil
	}
	return list[0], true, nil
}

// RawGetByName lists the owned AMIs with the given name
func (m *ImageManager) RawGetByName(ctx context.Context, name string) ([]types.Image, error) {
	list, err := m.describe(ctx, []string{"self"}, filter("name", name))
	if err != nil {
		return nil, err
	}
	return exact(list, name, imageName), nil
}

// RawGetAll lists the owned AMIs
func (m *ImageManager) RawGetAll(ctx context.Context) ([]types.Image, error) {
	return m.describe(ctx, []string{"self"})
}

func (m *ImageManager) describe(ctx context.Context, owners []string, filters ...types.Filter) ([]types.Image, error) {
	client, err := m.session.Get(ctx)
	if err != nil {
		return nil, err
	}

	var images []types.Image
	var nextToken *string

	for {
		resp, err := client.DescribeImages(ctx, &ec2.DescribeImagesInput{
			Owners:    owners,
			Filters:   filters,
			NextToken: nextToken,
		})
		if err != nil {
			return nil, err
		}

		images = append(images, resp.Images...)

		if resp.NextToken != nil {
			nextToken = resp.NextToken
		} else {
			break
		}
	}

	return images, nil
}

// Create is not supported, AMIs are registered from instances or snapshots
func (m *ImageManager) Create(_ context.Context, model *cr.Image) (*cr.Image, error) {
	return nil, fmt.Errorf("%w: creating image %q", cr.ErrUnsupportedOperation, model.GetName())
}

// Delete deregisters the AMI
func (m *ImageManager) Delete(ctx context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	client, err := m.session.Get(ctx)
	if err != nil {
		return err
	}

	if _, err := client.DeregisterImage(ctx, &ec2.DeregisterImageInput{ImageId: awssdk.String(id)}); err != nil {
		return err
	}
	m.log.Info("Deregistered image", "id", id)
	return nil
}

func convertImage(i types.Image) (*cr.Image, error) {
	image := &cr.Image{
		Metadata:  cr.Metadata{Identifier: awssdk.ToString(i.ImageId), Name: awssdk.ToString(i.Name)},
		Protected: strings.HasPrefix(awssdk.ToString(i.DeregistrationProtection), "enabled"),
	}
	if created := awssdk.ToString(i.CreationDate); created != "" {
		t, err := time.Parse(time.RFC3339, created)
		if err != nil {
			return nil, fmt.Errorf("error parsing creation date of image %q: %w", image.Identifier, err)
		}
		image.CreatedAt, image.UpdatedAt = t, t
	}
	return image, nil
}

func imageID(i types.Image) string { return awssdk.ToString(i.ImageId) }

func imageName(i types.Image) string { return awssdk.ToString(i.Name) }
