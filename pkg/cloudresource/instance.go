package cloudresource

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Dependencies provides managers for the kinds an instance references. The
// factory implements it for the connector the instance manager was built with.
type Dependencies interface {
	Images() (Manager[*Image], error)
	Flavors() (Manager[*Flavor], error)
	Keypairs() (Manager[*Keypair], error)
	Networks() (Manager[*Network], error)
}

// InstanceCreateFunc creates an instance whose references are canonical identifiers
type InstanceCreateFunc func(ctx context.Context, resolved *Instance) (*Instance, error)

// CreateInstance resolves the image, flavor, key-pair and network references of
// model and only then calls create with the identifiers substituted. Nothing is
// created when any reference fails to resolve.
//
// Image and flavor are required. An empty key name means no key-pair.
func CreateInstance(ctx context.Context, model *Instance, deps Dependencies, create InstanceCreateFunc) (*Instance, error) {
	if err := RequireNoIdentifier(model); err != nil {
		return nil, err
	}
	if model.Image == "" {
		return nil, fmt.Errorf("%w: instance %q has no image", ErrInvalidInput, model.Name)
	}
	if model.Flavor == "" {
		return nil, fmt.Errorf("%w: instance %q has no flavor", ErrInvalidInput, model.Name)
	}

	images, err := deps.Images()
	if err != nil {
		return nil, err
	}
	flavors, err := deps.Flavors()
	if err != nil {
		return nil, err
	}
	keypairs, err := deps.Keypairs()
	if err != nil {
		return nil, err
	}
	networks, err := deps.Networks()
	if err != nil {
		return nil, err
	}

	resolved := model.DeepCopyItem().(*Instance)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		resolved.Image, err = ResolveExisting(gctx, model.Image, images)
		return err
	})
	g.Go(func() (err error) {
		resolved.Flavor, err = ResolveExisting(gctx, model.Flavor, flavors)
		return err
	})
	if model.KeyName != "" {
		g.Go(func() (err error) {
			resolved.KeyName, err = ResolveExisting(gctx, model.KeyName, keypairs)
			return err
		})
	}
	for i, network := range model.Networks {
		g.Go(func() (err error) {
			resolved.Networks[i], err = ResolveExisting(gctx, network, networks)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error resolving dependencies of instance %q: %w", model.Name, err)
	}

	return create(ctx, resolved)
}
