package cloudresource_test

import (
	"context"
	"errors"
	"testing"

	cr "github.com/eliran89c/cloudkeeper/pkg/cloudresource"
	"github.com/eliran89c/cloudkeeper/pkg/cloudresource/managertest"
	"github.com/eliran89c/cloudkeeper/pkg/cloudresource/provider/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deps struct {
	conn       *mock.Connector
	keypairErr error
}

func (d deps) Images() (cr.Manager[*cr.Image], error)   { return mock.NewImageManager(d.conn), nil }
func (d deps) Flavors() (cr.Manager[*cr.Flavor], error) { return mock.NewFlavorManager(d.conn), nil }
func (d deps) Networks() (cr.Manager[*cr.Network], error) {
	return mock.NewNetworkManager(d.conn), nil
}

func (d deps) Keypairs() (cr.Manager[*cr.Keypair], error) {
	if d.keypairErr != nil {
		return nil, d.keypairErr
	}
	return mock.NewKeypairManager(d.conn), nil
}

// recorder is an InstanceCreateFunc that keeps what it was called with
type recorder struct {
	calls []*cr.Instance
}

func (r *recorder) create(_ context.Context, resolved *cr.Instance) (*cr.Instance, error) {
	r.calls = append(r.calls, resolved)
	created := resolved.DeepCopyItem().(*cr.Instance)
	created.SetIdentifier("i-1")
	return created, nil
}

func newDeps(t *testing.T) deps {
	t.Helper()
	conn := mock.NewConnector(mock.NewStore())
	seed := mock.Seed{
		Images:   []string{"ubuntu", "debian", "debian"},
		Flavors:  []string{"small"},
		Networks: []string{"private", "public"},
		Keypairs: map[string]string{"deploy": managertest.PublicKey(t)},
	}
	require.NoError(t, seed.Apply(context.Background(), conn))
	return deps{conn: conn}
}

func resolve[T cr.Item](t *testing.T, m cr.Manager[T], err error, nameOrID string) string {
	t.Helper()
	require.NoError(t, err)
	id, err := cr.Resolve(context.Background(), nameOrID, m)
	require.NoError(t, err)
	return id
}

func TestCreateInstance(t *testing.T) {
	ctx := context.Background()

	t.Run("References Resolved", func(t *testing.T) {
		d := newDeps(t)
		images, err := d.Images()
		imageID := resolve(t, images, err, "ubuntu")
		flavors, err := d.Flavors()
		flavorID := resolve(t, flavors, err, "small")
		keypairs, err := d.Keypairs()
		keyID := resolve(t, keypairs, err, "deploy")
		networks, err := d.Networks()
		privateID := resolve(t, networks, err, "private")
		publicID := resolve(t, networks, err, "public")

		model := &cr.Instance{
			Metadata: cr.Metadata{Name: "web"},
			Image:    "ubuntu",
			Flavor:   flavorID,
			KeyName:  "deploy",
			Networks: []string{"private", publicID},
		}
		r := &recorder{}

		created, err := cr.CreateInstance(ctx, model, d, r.create)
		require.NoError(t, err)
		require.Len(t, r.calls, 1)

		resolved := r.calls[0]
		assert.Equal(t, imageID, resolved.Image)
		assert.Equal(t, flavorID, resolved.Flavor)
		assert.Equal(t, keyID, resolved.KeyName)
		assert.Equal(t, []string{privateID, publicID}, resolved.Networks)
		assert.Equal(t, "i-1", created.Identifier)

		assert.Equal(t, "ubuntu", model.Image, "the model is not modified")
		assert.Equal(t, []string{"private", publicID}, model.Networks)
	})

	t.Run("Optional References", func(t *testing.T) {
		r := &recorder{}
		_, err := cr.CreateInstance(ctx, &cr.Instance{
			Metadata: cr.Metadata{Name: "web"},
			Image:    "ubuntu",
			Flavor:   "small",
		}, newDeps(t), r.create)
		require.NoError(t, err)
		require.Len(t, r.calls, 1)
		assert.Empty(t, r.calls[0].KeyName)
		assert.Empty(t, r.calls[0].Networks)
	})

	failures := []struct {
		name   string
		model  *cr.Instance
		deps   func(deps) deps
		target error
	}{
		{
			name:   "Missing Flavor",
			model:  &cr.Instance{Metadata: cr.Metadata{Name: "web"}, Image: "ubuntu", Flavor: "huge"},
			target: cr.ErrItemNotFound,
		},
		{
			name:   "Missing Network",
			model:  &cr.Instance{Metadata: cr.Metadata{Name: "web"}, Image: "ubuntu", Flavor: "small", Networks: []string{"private", "storage"}},
			target: cr.ErrItemNotFound,
		},
		{
			name:   "Missing Keypair",
			model:  &cr.Instance{Metadata: cr.Metadata{Name: "web"}, Image: "ubuntu", Flavor: "small", KeyName: "ops"},
			target: cr.ErrItemNotFound,
		},
		{
			name:   "Ambiguous Image",
			model:  &cr.Instance{Metadata: cr.Metadata{Name: "web"}, Image: "debian", Flavor: "small"},
			target: cr.ErrAmbiguous,
		},
		{
			name:   "No Image",
			model:  &cr.Instance{Metadata: cr.Metadata{Name: "web"}, Flavor: "small"},
			target: cr.ErrInvalidInput,
		},
		{
			name:   "No Flavor",
			model:  &cr.Instance{Metadata: cr.Metadata{Name: "web"}, Image: "ubuntu"},
			target: cr.ErrInvalidInput,
		},
		{
			name:   "Identifier Set",
			model:  &cr.Instance{Metadata: cr.Metadata{Identifier: "i-0", Name: "web"}, Image: "ubuntu", Flavor: "small"},
			target: cr.ErrInvalidInput,
		},
		{
			name:  "Dependency Unavailable",
			model: &cr.Instance{Metadata: cr.Metadata{Name: "web"}, Image: "ubuntu", Flavor: "small"},
			deps: func(d deps) deps {
				d.keypairErr = &cr.UnsupportedConnectorError{Connector: "*mock.Connector", Kind: cr.KindKeypair}
				return d
			},
			target: cr.ErrUnsupportedConnector,
		},
	}

	for _, tc := range failures {
		t.Run(tc.name, func(t *testing.T) {
			d := newDeps(t)
			if tc.deps != nil {
				d = tc.deps(d)
			}
			r := &recorder{}

			created, err := cr.CreateInstance(ctx, tc.model, d, r.create)
			assert.ErrorIs(t, err, tc.target)
			assert.Nil(t, created)
			assert.Empty(t, r.calls, "nothing is created when a reference fails")
		})
	}

	t.Run("Create Error Returned", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := cr.CreateInstance(ctx, &cr.Instance{Metadata: cr.Metadata{Name: "web"}, Image: "ubuntu", Flavor: "small"},
			newDeps(t), func(context.Context, *cr.Instance) (*cr.Instance, error) { return nil, boom })
		assert.ErrorIs(t, err, boom)
	})
}

func TestAssertExists(t *testing.T) {
	ctx := context.Background()
	d := newDeps(t)
	images, err := d.Images()
	require.NoError(t, err)

	ok, err := cr.AssertExists(ctx, "ubuntu", images)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cr.AssertExists(ctx, "fedora", images)
	assert.False(t, ok)
	assert.ErrorIs(t, err, cr.ErrItemNotFound)

	ok, err = cr.AssertExists(ctx, "debian", images)
	assert.False(t, ok)
	assert.ErrorIs(t, err, cr.ErrAmbiguous)

	_, err = cr.Resolve(ctx, "", images)
	assert.ErrorIs(t, err, cr.ErrInvalidInput)
}
