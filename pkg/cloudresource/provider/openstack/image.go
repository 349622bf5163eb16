package openstack

import (
	"context"
	"slices"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/lazy"
	"github.com/go-logr/logr"
	"github.com/gophercloud/gophercloud/openstack/imageservice/v2/images"
)

// ImageManager manages Glance images
type ImageManager struct {
	cr.Converting[*cr.Image, images.Image]

	connector *Connector
	api       *lazy.Value[ImageAPI]
	log       logr.Logger
}

// NewImageManager returns an image manager for the connector's project
func NewImageManager(conn *Connector, opts ...cr.ManagerOption) *ImageManager {
	return newImageManager(conn, lazy.New(func(ctx context.Context) (ImageAPI, error) {
		return conn.newImageClient(ctx)
	}), opts)
}

func newImageManager(conn *Connector, api *lazy.Value[ImageAPI], opts []cr.ManagerOption) *ImageManager {
	o := cr.BuildOptions(opts...)
	m := &ImageManager{
		connector: conn,
		api:       api,
		log:       o.Logger.WithValues("backend", cr.VariantOpenStack, "kind", cr.KindImage),
	}
	m.Converting = cr.Converting[*cr.Image, images.Image]{Backend: m, Convert: convertImage}
	return m
}

// ItemType returns KindImage
func (m *ImageManager) ItemType() cr.Kind {
	return cr.KindImage
}

// Connector returns the OpenStack connector
func (m *ImageManager) Connector() cr.Connector {
	return m.connector
}

// RawGetByID fetches the image with the given identifier
func (m *ImageManager) RawGetByID(ctx context.Context, id string) (images.Image, bool, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return images.Image{}, false, err
	}

	image, err := api.GetImage(id)
	if isNotFound(err) {
		return images.Image{}, false, nil
	}
	if err != nil {
		return images.Image{}, false, err
	}
	return *image, true, nil
}

// RawGetByName lists the images named name
func (m *ImageManager) RawGetByName(ctx context.Context, name string) ([]images.Image, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}

	list, err := api.ListImages(images.ListOpts{Name: name})
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(list, func(i images.Image) bool {
		return i.Name != name
	}), nil
}

// RawGetAll lists the images visible to the project
func (m *ImageManager) RawGetAll(ctx context.Context) ([]images.Image, error) {
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}
	return api.ListImages(images.ListOpts{})
}

// Create registers an image record. Uploading image data is left to the caller.
func (m *ImageManager) Create(ctx context.Context, model *cr.Image) (*cr.Image, error) {
	if err := cr.RequireNoIdentifier(model); err != nil {
		return nil, err
	}
	api, err := m.api.Get(ctx)
	if err != nil {
		return nil, err
	}

	protected := model.Protected
	image, err := api.CreateImage(images.CreateOpts{Name: model.Name, Protected: &protected})
	if err != nil {
		return nil, err
	}

	m.log.Info("Created image", "id", image.ID, "name", image.Name)
	return convertImage(*image)
}

// Delete deletes the image. Glance refuses to delete protected images.
func (m *ImageManager) Delete(ctx context.Context, target cr.DeleteTarget) error {
	id, err := target.ResolveIdentifier()
	if err != nil {
		return err
	}
	api, err := m.api.Get(ctx)
	if err != nil {
		return err
	}

	err = api.DeleteImage(id)
	if isForbidden(err) || isConflict(err) {
		return &cr.InvalidStateError{Kind: cr.KindImage, Identifier: id, Err: err}
	}
	if err != nil {
		return err
	}
	m.log.Info("Deleted image", "id", id)
	return nil
}

func convertImage(i images.Image) (*cr.Image, error) {
	return &cr.Image{
		Metadata:   cr.Metadata{Identifier: i.ID, Name: i.Name},
		Timestamps: cr.Timestamps{CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt},
		Protected:  i.Protected,
	}, nil
}
